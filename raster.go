// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import (
	"bytes"

	"github.com/pkg/errors"
)

func (f *File) tileIndex(tx, ty int32) int32 {
	return ty*f.hdr.NTilesAcross + tx
}

func (f *File) checkBand(band int32) error {
	if band < 0 || band >= f.hdr.Bands {
		return f.errs.set(KindInvalidBand, "band", errors.Errorf("band %d out of range [0,%d)", band, f.hdr.Bands))
	}
	return nil
}

func (f *File) checkTileCoord(tx, ty int32) error {
	if tx < 0 || tx >= f.hdr.NTilesAcross || ty < 0 || ty >= f.hdr.nTilesDown() {
		return f.errs.set(KindInvalidCoord, "tile_coord", errors.Errorf("tile (%d,%d) out of range", tx, ty))
	}
	return nil
}

func (f *File) checkRegion(x, y, w, h int32) error {
	if w < 1 || h < 1 || x < 0 || y < 0 || x+w > f.hdr.Width || y+h > f.hdr.Height {
		return f.errs.set(KindInvalidRegionSize, "region", errors.Errorf("region (%d,%d,%d,%d) out of bounds for %dx%d image", x, y, w, h, f.hdr.Width, f.hdr.Height))
	}
	return nil
}

// sliceByteLen is the length, in bytes, of one band's tile-sized slice
// buffer (tile_width * tile_height * data_unit_size).
func (f *File) sliceByteLen() int {
	return int(f.hdr.unitsPerSlice()) * int(f.hdr.DataUnitSize)
}

// GetTileSlice fills buf (which must be sliceByteLen() bytes) with band b
// of tile (tx,ty): replicated from uniform_pixel_values when the band is
// shallow uniform, otherwise read from its block.
func (f *File) GetTileSlice(tx, ty, band int32, buf []byte) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if err := f.checkTileCoord(tx, ty); err != nil {
		return err
	}
	if err := f.checkBand(band); err != nil {
		return err
	}
	t := f.tileIndex(tx, ty)
	rec := &f.tiles.records[t]
	dus := int(f.hdr.DataUnitSize)

	if len(buf) != f.sliceByteLen() {
		return f.errs.set(KindInvalidBuffer, "get_tile_slice", errors.Errorf("buffer of %d bytes does not match slice size %d", len(buf), f.sliceByteLen()))
	}

	if bitSet(rec.UniformFlags, int(band)) {
		value := rec.UniformPixelValues[int(band)*dus : int(band+1)*dus]
		for off := 0; off < len(buf); off += dus {
			copy(buf[off:off+dus], value)
		}
		return nil
	}

	sliceBytes := f.sliceByteLen()
	off := f.blockOffset(rec.BlockNum) + int64(band)*int64(sliceBytes)
	if !f.fa.readAt(buf, off) {
		return f.errs.Err()
	}
	return nil
}

// SetTileSlice writes buf into band b of tile (tx,ty), implementing both
// the intrinsic-write and the plain non-uniform write paths.
func (f *File) SetTileSlice(tx, ty, band int32, buf []byte) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "set_tile_slice", errors.New("file is read-only"))
	}
	if err := f.checkTileCoord(tx, ty); err != nil {
		return err
	}
	if err := f.checkBand(band); err != nil {
		return err
	}
	t := int(f.tileIndex(tx, ty))
	rec := &f.tiles.records[t]
	dus := int(f.hdr.DataUnitSize)

	if len(buf) != f.sliceByteLen() {
		return f.errs.set(KindInvalidBuffer, "set_tile_slice", errors.Errorf("buffer of %d bytes does not match slice size %d", len(buf), f.sliceByteLen()))
	}

	if f.hdr.IntrinsicWrite != 0 {
		extentX, extentY := f.tileExtent(tx, ty)
		if uniform, value := deepUniform(buf, dus, extentX, extentY, f.hdr.TileWidth); uniform {
			copy(rec.UniformPixelValues[int(band)*dus:], value)
			setBit(rec.UniformFlags, int(band), true)
			padTrailingBits(rec.UniformFlags, f.hdr.Bands)
			f.collapseTile(t)
			return f.writeTileRecord(t)
		}
	}

	sliceBytes := f.sliceByteLen()
	if rec.BlockNum == -1 {
		k, err := f.alloc.allocate(f.tiles, t)
		if err != nil {
			return f.errs.set(KindInvalidBlockNo, "set_tile_slice", err)
		}
		// Placeholder fill: every band's slot gets the same bytes so that
		// untouched bands (whose uniform bit is still set and therefore
		// never read from the block) leave harmless data behind.
		base := f.blockOffset(k)
		for b := int32(0); b < f.hdr.Bands; b++ {
			if !f.fa.writeAt(buf, base+int64(b)*int64(sliceBytes)) {
				return f.errs.Err()
			}
		}
	}

	off := f.blockOffset(rec.BlockNum) + int64(band)*int64(sliceBytes)
	if !f.fa.writeAt(buf, off) {
		return f.errs.Err()
	}
	setBit(rec.UniformFlags, int(band), false)
	if f.hdr.IntrinsicWrite == 0 {
		f.tiles.dirty[t] = true
	}
	return f.writeTileRecord(t)
}

// FillTileSlice sets band b of tile (tx,ty) uniform to value, touching only
// the tile header.
func (f *File) FillTileSlice(tx, ty, band int32, value []byte) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "fill_tile_slice", errors.New("file is read-only"))
	}
	if err := f.checkTileCoord(tx, ty); err != nil {
		return err
	}
	if err := f.checkBand(band); err != nil {
		return err
	}
	t := int(f.tileIndex(tx, ty))
	rec := &f.tiles.records[t]
	dus := int(f.hdr.DataUnitSize)
	if len(value) < dus {
		return f.errs.set(KindInvalidBuffer, "fill_tile_slice", errors.Errorf("value of %d bytes shorter than data unit size %d", len(value), dus))
	}
	copy(rec.UniformPixelValues[int(band)*dus:int(band+1)*dus], value)
	setBit(rec.UniformFlags, int(band), true)
	padTrailingBits(rec.UniformFlags, f.hdr.Bands)
	f.collapseTile(t)
	return f.writeTileRecord(t)
}

// FillTiles applies FillTileSlice's effect to every tile for band b, then
// rewrites the whole tile-header table in one pass.
func (f *File) FillTiles(band int32, value []byte) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "fill_tiles", errors.New("file is read-only"))
	}
	if err := f.checkBand(band); err != nil {
		return err
	}
	dus := int(f.hdr.DataUnitSize)
	if len(value) < dus {
		return f.errs.set(KindInvalidBuffer, "fill_tiles", errors.Errorf("value of %d bytes shorter than data unit size %d", len(value), dus))
	}
	for t := range f.tiles.records {
		rec := &f.tiles.records[t]
		copy(rec.UniformPixelValues[int(band)*dus:int(band+1)*dus], value)
		setBit(rec.UniformFlags, int(band), true)
		padTrailingBits(rec.UniformFlags, f.hdr.Bands)
		f.collapseTile(t)
	}
	return f.writeTileTable()
}

// GetRaster reads a rectangular (x,y,w,h) window of band `band` into buf,
// decomposing the window into the tiles it overlaps. buf's row stride is
// w*data_unit_size.
func (f *File) GetRaster(buf []byte, x, y, w, h, band int32) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if err := f.checkRegion(x, y, w, h); err != nil {
		return err
	}
	if err := f.checkBand(band); err != nil {
		return err
	}
	dus := int(f.hdr.DataUnitSize)
	if len(buf) < int(w)*int(h)*dus {
		return f.errs.set(KindInvalidBuffer, "get_raster", errors.Errorf("buffer of %d bytes too small for %dx%d region", len(buf), w, h))
	}
	destStride := int(w) * dus
	tileStride := int(f.hdr.TileWidth) * dus
	slice := f.scratch1[:f.sliceByteLen()]

	return f.forEachOverlappedTile(x, y, w, h, func(tx, ty, sxt, ext, syt, eyt, sxd, syd int32) error {
		if err := f.GetTileSlice(tx, ty, band, slice); err != nil {
			return err
		}
		for row := syt; row <= eyt; row++ {
			srcOff := int(row)*tileStride + int(sxt)*dus
			dstOff := int(syd+(row-syt))*destStride + int(sxd)*dus
			n := int(ext-sxt+1) * dus
			copy(buf[dstOff:dstOff+n], slice[srcOff:srcOff+n])
		}
		return nil
	})
}

// SetRaster writes buf into a rectangular (x,y,w,h) window of band `band`,
// fetch-modify-storing every overlapped tile slice.
func (f *File) SetRaster(buf []byte, x, y, w, h, band int32) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "set_raster", errors.New("file is read-only"))
	}
	if err := f.checkRegion(x, y, w, h); err != nil {
		return err
	}
	if err := f.checkBand(band); err != nil {
		return err
	}
	dus := int(f.hdr.DataUnitSize)
	if len(buf) < int(w)*int(h)*dus {
		return f.errs.set(KindInvalidBuffer, "set_raster", errors.Errorf("buffer of %d bytes too small for %dx%d region", len(buf), w, h))
	}
	srcStride := int(w) * dus
	tileStride := int(f.hdr.TileWidth) * dus
	slice := f.scratch1[:f.sliceByteLen()]

	return f.forEachOverlappedTile(x, y, w, h, func(tx, ty, sxt, ext, syt, eyt, sxd, syd int32) error {
		if err := f.GetTileSlice(tx, ty, band, slice); err != nil {
			return err
		}
		for row := syt; row <= eyt; row++ {
			dstOff := int(row)*tileStride + int(sxt)*dus
			srcOff := int(syd+(row-syt))*srcStride + int(sxd)*dus
			n := int(ext-sxt+1) * dus
			copy(slice[dstOff:dstOff+n], buf[srcOff:srcOff+n])
		}
		return f.SetTileSlice(tx, ty, band, slice)
	})
}

// forEachOverlappedTile decomposes window (x,y,w,h) into the tiles it
// overlaps and invokes fn with, for each tile: its (tx,ty) coordinate, the
// in-tile column/row range [sxt,ext]/[syt,eyt] the window covers, and the
// corresponding top-left offset (sxd,syd) within the caller's raster
// buffer. Row stride within the tile buffer is tile_width*data_unit_size,
// the dimensionally correct value throughout.
func (f *File) forEachOverlappedTile(x, y, w, h int32, fn func(tx, ty, sxt, ext, syt, eyt, sxd, syd int32) error) error {
	h_ := f.hdr
	txStart := x / h_.TileWidth
	txEnd := (x + w - 1) / h_.TileWidth
	tyStart := y / h_.TileHeight
	tyEnd := (y + h - 1) / h_.TileHeight

	for ty := tyStart; ty <= tyEnd; ty++ {
		for tx := txStart; tx <= txEnd; tx++ {
			sxt := maxI32(0, x-tx*h_.TileWidth)
			ext := minI32(h_.TileWidth-1, x+w-1-tx*h_.TileWidth)
			syt := maxI32(0, y-ty*h_.TileHeight)
			eyt := minI32(h_.TileHeight-1, y+h-1-ty*h_.TileHeight)
			sxd := tx*h_.TileWidth + sxt - x
			syd := ty*h_.TileHeight + syt - y
			if err := fn(tx, ty, sxt, ext, syt, eyt, sxd, syd); err != nil {
				return err
			}
		}
	}
	return nil
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// IsShallowUniform reports whether region (x,y,w,h) of band is shallow
// uniform: every tile it overlaps is shallow uniform in that band and
// carries the identical uniform pixel value.
func (f *File) IsShallowUniform(x, y, w, h, band int32) (bool, []byte, error) {
	if f.errs.sticky() {
		return false, nil, f.errs.Err()
	}
	if err := f.checkRegion(x, y, w, h); err != nil {
		return false, nil, err
	}
	if err := f.checkBand(band); err != nil {
		return false, nil, err
	}
	dus := int(f.hdr.DataUnitSize)
	var first []byte
	uniform := true

	err := f.forEachOverlappedTile(x, y, w, h, func(tx, ty, _, _, _, _, _, _ int32) error {
		t := f.tileIndex(tx, ty)
		rec := &f.tiles.records[t]
		if !bitSet(rec.UniformFlags, int(band)) {
			uniform = false
			return nil
		}
		value := rec.UniformPixelValues[int(band)*dus : int(band+1)*dus]
		if first == nil {
			first = append([]byte(nil), value...)
		} else if !bytes.Equal(first, value) {
			uniform = false
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	if !uniform {
		return false, nil, nil
	}
	return true, first, nil
}

// IsSliceShallowUniform reports whether band `band` of tile (tx,ty) is
// shallow uniform, and if so, its common pixel value.
func (f *File) IsSliceShallowUniform(tx, ty, band int32) (bool, []byte, error) {
	if f.errs.sticky() {
		return false, nil, f.errs.Err()
	}
	if err := f.checkTileCoord(tx, ty); err != nil {
		return false, nil, err
	}
	if err := f.checkBand(band); err != nil {
		return false, nil, err
	}
	t := f.tileIndex(tx, ty)
	rec := &f.tiles.records[t]
	if !bitSet(rec.UniformFlags, int(band)) {
		return false, nil, nil
	}
	dus := int(f.hdr.DataUnitSize)
	value := append([]byte(nil), rec.UniformPixelValues[int(band)*dus:int(band+1)*dus]...)
	return true, value, nil
}
