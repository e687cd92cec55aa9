// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import (
	"log"
	"os"

	"github.com/pkg/errors"
)

// Logger is the package-level logger rare, non-fatal notices are written
// to (e.g. opening a version-1 file, whose affine transform carries the
// host-order anomaly). It defaults to the standard library's own default
// logger.
var Logger = log.Default()

// Create builds a new SIF file at path: validates arguments,
// truncates/creates the file, writes the header and the fully-uniform
// initial tile-header table, and writes no blocks.
func Create(path string, p CreateParams) (*File, error) {
	if path == "" {
		return nil, errInvalidParam("empty filename")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	f := &File{readOnly: false}
	fa, err := openFileAdapter(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644, &f.errs)
	if err != nil {
		return nil, errors.Wrap(err, "create")
	}
	f.fa = fa

	h := &Header{
		Version:        LibraryVersion,
		UseFileVersion: LibraryVersion,
		Width:          p.Width,
		Height:         p.Height,
		Bands:          p.Bands,
		TileWidth:      p.TileWidth,
		TileHeight:     p.TileHeight,
		DataUnitSize:   p.DataUnitSize,
		UserDataType:   p.UserDataType,
	}
	if p.Consolidate {
		h.Consolidate = 1
	}
	if p.Defragment {
		h.Defragment = 1
	}
	if p.IntrinsicWrite {
		h.IntrinsicWrite = 1
	}
	h.AffineGeoTransform = p.AffineGeoTransform
	deriveLayout(h)
	f.hdr = h

	f.tiles = newTileTable(int(h.NTiles), h.Bands, h.DataUnitSize, h.NUniformFlags)
	f.alloc = newBlockAllocator(int(h.NTiles))
	f.meta = newMetaStore()
	f.scratch1 = make([]byte, h.TileBytes)
	f.scratch2 = make([]byte, h.TileBytes)

	if err := f.writeHeader(); err != nil {
		f.fa.close()
		return nil, err
	}
	if err := f.writeTileTable(); err != nil {
		f.fa.close()
		return nil, err
	}
	if err := f.writeMetaData(); err != nil {
		f.fa.close()
		return nil, err
	}

	return f, nil
}
