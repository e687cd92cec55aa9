// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import "github.com/pkg/errors"

// TileRecord is one entry of the fixed-length tile-header table that
// immediately follows the file header.
type TileRecord struct {
	// UniformFlags is a bit vector of length Bands; bit b (0-indexed) lives
	// at byte b/8, bit position 7-(b mod 8) (MSB-first within a byte).
	UniformFlags []byte
	// UniformPixelValues holds Bands*DataUnitSize bytes; slot b is the
	// common pixel for band b when its uniform bit is set.
	UniformPixelValues []byte
	// BlockNum is the block region index for this tile, or -1 when every
	// band is uniform.
	BlockNum int32
}

// tileTable is the in-memory array of tile records plus the per-tile dirty
// flag consulted by lazy consolidation.
type tileTable struct {
	records []TileRecord
	dirty   []bool
}

func newTileTable(n int, bands, dataUnitSize, nUniformFlags int32) *tileTable {
	t := &tileTable{
		records: make([]TileRecord, n),
		dirty:   make([]bool, n),
	}
	for i := range t.records {
		t.records[i] = TileRecord{
			UniformFlags:       make([]byte, nUniformFlags),
			UniformPixelValues: make([]byte, int64(bands)*int64(dataUnitSize)),
			BlockNum:           -1,
		}
		setAllUniformBits(&t.records[i], bands)
	}
	return t
}

// setAllUniformBits sets every real bit (0..bands-1) plus pads the trailing
// bits of the last flag byte to 1: unused bits are always written as 1.
func setAllUniformBits(t *TileRecord, bands int32) {
	for i := range t.UniformFlags {
		t.UniformFlags[i] = 0xFF
	}
	padTrailingBits(t.UniformFlags, bands)
}

// padTrailingBits ORs 0xFF>>(bands%8) into the last flag byte so that
// bits beyond bands-1 always read as 1 (with MSB-first bit order, those are
// the low 8-bands%8 bit positions of the byte).
func padTrailingBits(flags []byte, bands int32) {
	if len(flags) == 0 {
		return
	}
	if r := bands % 8; r != 0 {
		mask := byte(0xFF) >> uint(r)
		flags[len(flags)-1] |= mask
	}
}

// bitSet reports whether bit b of flags is set, using an MSB-first
// within-byte convention.
func bitSet(flags []byte, b int) bool {
	byteIdx, bitPos := b/8, 7-(b%8)
	return flags[byteIdx]&(1<<uint(bitPos)) != 0
}

// setBit sets or clears bit b of flags.
func setBit(flags []byte, b int, v bool) {
	byteIdx, bitPos := b/8, 7-(b%8)
	if v {
		flags[byteIdx] |= 1 << uint(bitPos)
	} else {
		flags[byteIdx] &^= 1 << uint(bitPos)
	}
}

// allBandsUniform reports whether every band 0..bands-1 has its uniform bit
// set, masking the trailing pad bits neutral first.
func allBandsUniform(flags []byte, bands int32) bool {
	if len(flags) == 0 {
		return true
	}
	tmp := append([]byte(nil), flags...)
	padTrailingBits(tmp, bands)
	for _, b := range tmp {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// encodeTileRecord returns the encoded on-disk layout of one tile record:
// uniform_pixel_values, then uniform_flags, then block_num (i32 BE).
func encodeTileRecord(t *TileRecord) []byte {
	buf := make([]byte, 0, len(t.UniformPixelValues)+len(t.UniformFlags)+4)
	buf = append(buf, t.UniformPixelValues...)
	buf = append(buf, t.UniformFlags...)
	buf = append(buf, encodeI32(t.BlockNum)...)
	return buf
}

func decodeTileRecord(buf []byte, bands, dataUnitSize, nUniformFlags int32) TileRecord {
	pixN := int(bands * dataUnitSize)
	t := TileRecord{
		UniformPixelValues: append([]byte(nil), buf[:pixN]...),
		UniformFlags:       append([]byte(nil), buf[pixN:pixN+int(nUniformFlags)]...),
		BlockNum:           decodeI32(buf[pixN+int(nUniformFlags):]),
	}
	return t
}

// readTileTable reads the entire tile-header table from disk, positioned
// immediately after the file header.
func (f *File) readTileTable() error {
	h := f.hdr
	recBytes := int(h.TileHeaderBytes)
	table := &tileTable{
		records: make([]TileRecord, h.NTiles),
		dirty:   make([]bool, h.NTiles),
	}
	buf := make([]byte, recBytes)
	base := int64(h.HeaderBytes)
	for i := int32(0); i < h.NTiles; i++ {
		if !f.fa.readAt(buf, base+int64(i)*int64(recBytes)) {
			return f.errs.Err()
		}
		table.records[i] = decodeTileRecord(buf, h.Bands, h.DataUnitSize, h.NUniformFlags)
	}
	f.tiles = table
	return nil
}

// writeTileTable rewrites the entire tile-header table in one pass (used by
// Flush and by fill_tiles).
func (f *File) writeTileTable() error {
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "write_tile_table", errors.New("file is read-only"))
	}
	base := int64(f.hdr.HeaderBytes)
	recBytes := int64(f.hdr.TileHeaderBytes)
	for i := range f.tiles.records {
		buf := encodeTileRecord(&f.tiles.records[i])
		if !f.fa.writeAt(buf, base+int64(i)*recBytes) {
			return f.errs.Err()
		}
	}
	return nil
}

// writeTileRecord positioned-writes a single tile record.
func (f *File) writeTileRecord(t int) error {
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "write_tile", errors.New("file is read-only"))
	}
	if t < 0 || t >= len(f.tiles.records) {
		return f.errs.set(KindInvalidTileNo, "write_tile", errors.Errorf("tile %d out of range", t))
	}
	base := int64(f.hdr.HeaderBytes) + int64(t)*int64(f.hdr.TileHeaderBytes)
	buf := encodeTileRecord(&f.tiles.records[t])
	if !f.fa.writeAt(buf, base) {
		return f.errs.Err()
	}
	return nil
}
