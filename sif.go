// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// File is a handle to an open SIF file: the header, the tile-header table,
// the block allocator, the meta-data store and the underlying I/O adapter,
// plus the sticky per-handle error slot. Every public operation holds the
// full file state for its duration; a File is not safe to share between
// goroutines.
type File struct {
	fa    *fileAdapter
	hdr   *Header
	tiles *tileTable
	alloc *blockAllocator
	meta  *metaStore
	errs  errState

	readOnly bool

	// scratch1/scratch2 are the two tile_bytes-sized buffers the raster
	// mapper and defragmenter share for the lifetime of the handle.
	scratch1, scratch2 []byte
}

// Open opens an existing SIF file. readOnly selects write protection: every
// mutating call on a read-only handle sets InvalidFileMode and returns
// without side effects, except Flush and Consolidate, which return nil
// without doing anything, and the flag/header setters, which change only
// the in-memory header that a read-only handle never writes back. A failed open returns (nil, err); the caller must
// not assume a handle exists on failure.
func Open(path string, readOnly bool) (*File, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f := &File{readOnly: readOnly}
	fa, err := openFileAdapter(path, flag, 0644, &f.errs)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	f.fa = fa

	if err := f.readHeader(); err != nil {
		f.fa.close()
		return nil, err
	}
	if f.hdr.Version == 1 {
		Logger.Printf("sif: %s opened at format version 1; affine transform is host-order on disk (legacy anomaly)", path)
	}
	f.hdr.UseFileVersion = f.hdr.Version

	if err := f.readTileTable(); err != nil {
		f.fa.close()
		return nil, err
	}
	f.alloc = rebuildBlockAllocator(f.tiles)
	f.scratch1 = make([]byte, f.hdr.TileBytes)
	f.scratch2 = make([]byte, f.hdr.TileBytes)

	if err := f.readMetaData(); err != nil {
		f.fa.close()
		return nil, err
	}

	return f, nil
}

// Flush rewrites the header, the tile-header table and the meta-data
// region; if Consolidate is set it runs lazy consolidation first, and if
// Defragment is set it then runs defragmentation. It is a no-op on a
// read-only handle.
func (f *File) Flush() error {
	if f.readOnly {
		return nil
	}
	if f.errs.sticky() {
		return f.errs.Err()
	}

	if f.hdr.Consolidate != 0 {
		if err := f.Consolidate(); err != nil {
			return err
		}
	}
	if f.hdr.Defragment != 0 {
		if err := f.Defragment(); err != nil {
			return err
		}
	}

	if err := f.writeHeader(); err != nil {
		return err
	}
	if err := f.writeTileTable(); err != nil {
		return err
	}
	if err := f.writeMetaData(); err != nil {
		return err
	}
	if !f.fa.flushSync() {
		return f.errs.Err()
	}
	return nil
}

// Close flushes the handle and releases every in-memory structure,
// returning the first error encountered (if any). The underlying
// descriptor is released exactly once, on every path, even when Flush
// itself fails.
func (f *File) Close() error {
	flushErr := f.Flush()
	closeErr := f.fa.close()
	f.tiles = nil
	f.alloc = nil
	f.meta = nil
	f.scratch1, f.scratch2 = nil, nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// CreateCopy byte-copies the entire file through a fixed-size buffer to
// path, then opens the copy.
func CreateCopy(src *File, path string) (*File, error) {
	if err := src.Flush(); err != nil {
		return nil, err
	}
	size, ok := src.fa.size()
	if !ok {
		return nil, src.errs.Err()
	}

	dst, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "create_copy")
	}
	defer dst.Close()

	const bufSize = 1 << 20
	buf := make([]byte, bufSize)
	var off int64
	for off < size {
		n := bufSize
		if remaining := size - off; remaining < int64(bufSize) {
			n = int(remaining)
		}
		if _, err := src.fa.f.ReadAt(buf[:n], off); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "create_copy: read")
		}
		if _, err := dst.WriteAt(buf[:n], off); err != nil {
			return nil, errors.Wrap(err, "create_copy: write")
		}
		off += int64(n)
	}

	return Open(path, false)
}

// Err returns the handle's sticky error, or nil.
func (f *File) Err() error { return f.errs.Err() }

// ClearError drops the sticky error, resuming normal operation on the
// handle.
func (f *File) ClearError() { f.errs.Clear() }

// IsConsolidateFlag, IsDefragmentFlag and IsIntrinsicWriteFlag report the
// three behavior flags.
func (f *File) IsConsolidateFlag() bool    { return f.hdr.Consolidate != 0 }
func (f *File) IsDefragmentFlag() bool     { return f.hdr.Defragment != 0 }
func (f *File) IsIntrinsicWriteFlag() bool { return f.hdr.IntrinsicWrite != 0 }

func (f *File) setFlag(slot *int32, v bool) {
	if v {
		*slot = 1
	} else {
		*slot = 0
	}
}

// SetConsolidateFlag/UnsetConsolidateFlag toggle lazy consolidation on
// Flush.
func (f *File) SetConsolidateFlag()   { f.setFlag(&f.hdr.Consolidate, true) }
func (f *File) UnsetConsolidateFlag() { f.setFlag(&f.hdr.Consolidate, false) }

// SetDefragmentFlag/UnsetDefragmentFlag toggle defragmentation on Flush.
func (f *File) SetDefragmentFlag()   { f.setFlag(&f.hdr.Defragment, true) }
func (f *File) UnsetDefragmentFlag() { f.setFlag(&f.hdr.Defragment, false) }

// SetIntrinsicWriteFlag/UnsetIntrinsicWriteFlag toggle the intrinsic
// (write-time) uniformity test.
func (f *File) SetIntrinsicWriteFlag()   { f.setFlag(&f.hdr.IntrinsicWrite, true) }
func (f *File) UnsetIntrinsicWriteFlag() { f.setFlag(&f.hdr.IntrinsicWrite, false) }

// SetUserDataType/GetUserDataType access the opaque user-data-type tag.
func (f *File) SetUserDataType(v int32) { f.hdr.UserDataType = v }
func (f *File) GetUserDataType() int32  { return f.hdr.UserDataType }

// SetAffineGeoTransform/GetAffineGeoTransform access the six-element
// affine georeferencing transform.
func (f *File) SetAffineGeoTransform(v [6]float64) { f.hdr.AffineGeoTransform = v }
func (f *File) GetAffineGeoTransform() [6]float64  { return f.hdr.AffineGeoTransform }

// GetVersion returns the file's on-disk format version.
func (f *File) GetVersion() int32 { return f.hdr.Version }

// Width, Height and Bands return the image's logical dimensions.
func (f *File) Width() int32  { return f.hdr.Width }
func (f *File) Height() int32 { return f.hdr.Height }
func (f *File) Bands() int32  { return f.hdr.Bands }

// TileWidth, TileHeight and DataUnitSize return the tile geometry and the
// per-band-per-pixel byte width. Subpackage simple uses these to size its
// swap scratch buffer.
func (f *File) TileWidth() int32    { return f.hdr.TileWidth }
func (f *File) TileHeight() int32   { return f.hdr.TileHeight }
func (f *File) DataUnitSize() int32 { return f.hdr.DataUnitSize }

// SliceByteLen returns the byte length of one band's tile-sized slice
// buffer (tile_width * tile_height * data_unit_size).
func (f *File) SliceByteLen() int { return f.sliceByteLen() }

// NTilesAcross and NTilesDown return the tile grid dimensions.
func (f *File) NTilesAcross() int32 { return f.hdr.NTilesAcross }
func (f *File) NTilesDown() int32   { return f.hdr.nTilesDown() }

// UseFileFormatVersion selects the wire version subsequent writes use.
// Writing with a version below 1 fails CannotWriteVersion.
func (f *File) UseFileFormatVersion(v int32) error {
	if v < 1 {
		return f.errs.set(KindCannotWriteVersion, "use_file_format_version", errors.Errorf("cannot write version %d", v))
	}
	f.hdr.UseFileVersion = v
	return nil
}

// IsPossiblySIFFile does a cheap magic-only check of path, without
// validating the rest of the header.
func IsPossiblySIFFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 8)
	if _, err := f.ReadAt(buf, 4); err != nil {
		return false
	}
	return string(buf) == string(magicLiteral[:])
}
