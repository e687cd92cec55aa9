// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import "github.com/pkg/errors"

// Defragment compacts used blocks to the low end of the block region so
// that allocated indices are 0..U-1 in tile order. It keeps the tile/block
// bijection intact at every step: before returning, it rewrites the
// meta-data region, which implicitly truncates the file past the new last
// used block.
func (f *File) Defragment() error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "defragment", errors.New("file is read-only"))
	}

	bn1 := int32(0)
	for i := range f.tiles.records {
		rec := &f.tiles.records[i]
		if rec.BlockNum == -1 {
			continue
		}
		bn2 := rec.BlockNum
		if bn1 == bn2 {
			bn1++
			continue
		}

		tnEvicted := f.alloc.owner(bn1)
		f.alloc.setOwner(f.tiles, bn1, int32(i))
		f.alloc.setOwner(f.tiles, bn2, tnEvicted)

		if err := f.swapBlockContents(bn1, bn2, tnEvicted == -1); err != nil {
			return err
		}

		if err := f.writeTileRecord(i); err != nil {
			return err
		}
		if tnEvicted != -1 {
			if err := f.writeTileRecord(int(tnEvicted)); err != nil {
				return err
			}
		}
		bn1++
	}

	return f.writeMetaData()
}

// swapBlockContents exchanges the on-disk bytes of blocks bn1 and bn2.
// oneWay degenerates the swap into a single copy (bn2's content moves to
// bn1, bn2 is left with stale bytes) when bn1 held no tile of interest
// before the reassignment.
func (f *File) swapBlockContents(bn1, bn2 int32, oneWay bool) error {
	if oneWay {
		buf := f.scratch1[:f.hdr.TileBytes]
		if !f.fa.readAt(buf, f.blockOffset(bn2)) {
			return f.errs.Err()
		}
		if !f.fa.writeAt(buf, f.blockOffset(bn1)) {
			return f.errs.Err()
		}
		return nil
	}

	at1 := f.scratch1[:f.hdr.TileBytes]
	at2 := f.scratch2[:f.hdr.TileBytes]
	if !f.fa.readAt(at1, f.blockOffset(bn1)) {
		return f.errs.Err()
	}
	if !f.fa.readAt(at2, f.blockOffset(bn2)) {
		return f.errs.Err()
	}
	if !f.fa.writeAt(at2, f.blockOffset(bn1)) {
		return f.errs.Err()
	}
	if !f.fa.writeAt(at1, f.blockOffset(bn2)) {
		return f.errs.Err()
	}
	return nil
}
