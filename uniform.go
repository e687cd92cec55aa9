// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import "bytes"

// tileExtent returns the in-image sub-rectangle of tile (tx,ty): border
// tiles cover fewer than tile_width x tile_height real pixels when the
// image dimensions are not multiples of the tile dimensions.
func (f *File) tileExtent(tx, ty int32) (extentX, extentY int32) {
	h := f.hdr
	extentX = h.TileWidth
	if rem := h.Width - tx*h.TileWidth; rem < extentX {
		extentX = rem
	}
	extentY = h.TileHeight
	if rem := h.Height - ty*h.TileHeight; rem < extentY {
		extentY = rem
	}
	return extentX, extentY
}

// deepUniform scans a single band's tile-sized slice buffer and reports
// whether every data_unit_size-byte element within the in-image
// extentX x extentY sub-rectangle equals the first element. Bytes outside
// that sub-rectangle are junk and must not disqualify uniformity. On
// success it also returns the common element's bytes.
func deepUniform(buf []byte, dataUnitSize int, extentX, extentY, tileWidth int32) (bool, []byte) {
	rowStride := int(tileWidth) * dataUnitSize
	first := buf[0:dataUnitSize]

	switch dataUnitSize {
	case 1:
		v := first[0]
		for y := int32(0); y < extentY; y++ {
			row := buf[int(y)*rowStride : int(y)*rowStride+int(extentX)]
			for _, b := range row {
				if b != v {
					return false, nil
				}
			}
		}
	case 2:
		v0, v1 := first[0], first[1]
		for y := int32(0); y < extentY; y++ {
			base := int(y) * rowStride
			for x := int32(0); x < extentX; x++ {
				off := base + int(x)*2
				if buf[off] != v0 || buf[off+1] != v1 {
					return false, nil
				}
			}
		}
	default:
		for y := int32(0); y < extentY; y++ {
			base := int(y) * rowStride
			for x := int32(0); x < extentX; x++ {
				off := base + int(x)*dataUnitSize
				if !bytes.Equal(buf[off:off+dataUnitSize], first) {
					return false, nil
				}
			}
		}
	}
	return true, append([]byte(nil), first...)
}

// collapseTile releases tile t's block when every band of it is now
// shallow uniform. It does not persist the tile header; callers write it
// out after whatever else they changed.
func (f *File) collapseTile(t int) {
	rec := &f.tiles.records[t]
	if rec.BlockNum != -1 && allBandsUniform(rec.UniformFlags, f.hdr.Bands) {
		f.alloc.release(f.tiles, t)
	}
}

// consolidateTile deep-scans every non-uniform band of a dirty tile with an
// allocated block, collapsing any band that has become uniform. This is the
// lazy-consolidation unit of work; Consolidate drives it across every dirty
// tile.
func (f *File) consolidateTile(t int) error {
	rec := &f.tiles.records[t]
	if !f.tiles.dirty[t] || rec.BlockNum == -1 {
		f.tiles.dirty[t] = false
		return nil
	}

	buf := f.scratch1[:f.hdr.TileBytes]
	if !f.fa.readAt(buf, f.blockOffset(rec.BlockNum)) {
		return f.errs.Err()
	}

	sliceBytes := int(f.hdr.unitsPerSlice()) * int(f.hdr.DataUnitSize)
	extentX, extentY := f.tileExtent(int32(t)%f.hdr.NTilesAcross, int32(t)/f.hdr.NTilesAcross)

	changed := false
	for b := int32(0); b < f.hdr.Bands; b++ {
		if bitSet(rec.UniformFlags, int(b)) {
			continue
		}
		sliceBuf := buf[int(b)*sliceBytes : int(b+1)*sliceBytes]
		uniform, value := deepUniform(sliceBuf, int(f.hdr.DataUnitSize), extentX, extentY, f.hdr.TileWidth)
		if uniform {
			copy(rec.UniformPixelValues[int(b)*int(f.hdr.DataUnitSize):], value)
			setBit(rec.UniformFlags, int(b), true)
			padTrailingBits(rec.UniformFlags, f.hdr.Bands)
			changed = true
		}
	}

	if changed {
		f.collapseTile(t)
	}
	f.tiles.dirty[t] = false
	if changed {
		return f.writeTileRecord(t)
	}
	return nil
}

// Consolidate runs lazy consolidation over every dirty tile. It is a no-op
// on a read-only handle.
func (f *File) Consolidate() error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return nil
	}
	for t := range f.tiles.records {
		if err := f.consolidateTile(t); err != nil {
			return err
		}
	}
	return nil
}
