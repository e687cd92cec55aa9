// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import "github.com/pkg/errors"

// blockAllocator owns the tile<->block indirection behind a single API
// rather than maintaining two parallel arrays by caller discipline:
// allocate, release and swapBlocks are its only mutators, and every one of
// them leaves the tile_to_block/block_to_tile bijection holding.
//
// tile_to_block is not stored separately: tiles[t].BlockNum already is that
// array, so duplicating it here would just be another place for the two to
// drift out of sync.
type blockAllocator struct {
	blockToTile []int32
}

// newBlockAllocator returns an allocator over n blocks, all initially free.
func newBlockAllocator(n int) *blockAllocator {
	bt := make([]int32, n)
	for i := range bt {
		bt[i] = -1
	}
	return &blockAllocator{blockToTile: bt}
}

// rebuildBlockAllocator reconstructs block_to_tile from each tile's persisted BlockNum,
// as Open must do: the on-disk tile records are the only source of truth
// for which blocks are in use.
func rebuildBlockAllocator(tiles *tileTable) *blockAllocator {
	a := newBlockAllocator(len(tiles.records))
	for t, rec := range tiles.records {
		if rec.BlockNum >= 0 {
			a.blockToTile[rec.BlockNum] = int32(t)
		}
	}
	return a
}

// owner returns the tile index occupying block k, or -1.
func (a *blockAllocator) owner(k int32) int32 {
	return a.blockToTile[k]
}

// setOwner reassigns block k to tile t (t may be -1 to mark it free),
// updating both sides of the bijection in one place.
func (a *blockAllocator) setOwner(tiles *tileTable, k int32, t int32) {
	a.blockToTile[k] = t
	if t >= 0 {
		tiles.records[t].BlockNum = k
	}
}

// allocate returns the smallest free block index and assigns it to tile t.
// An image never needs more than n_tiles blocks, so running out indicates
// a bookkeeping bug rather than a legitimate out-of-space condition.
func (a *blockAllocator) allocate(tiles *tileTable, t int) (int32, error) {
	for k, owner := range a.blockToTile {
		if owner == -1 {
			a.setOwner(tiles, int32(k), int32(t))
			return int32(k), nil
		}
	}
	return -1, errors.Errorf("no free block for tile %d (table exhausted)", t)
}

// release frees the block owned by tile t, if any.
func (a *blockAllocator) release(tiles *tileTable, t int) {
	k := tiles.records[t].BlockNum
	if k < 0 {
		return
	}
	a.blockToTile[k] = -1
	tiles.records[t].BlockNum = -1
}

// lastUsed returns the highest-numbered occupied block, or -1 if none.
func (a *blockAllocator) lastUsed() int32 {
	last := int32(-1)
	for k, owner := range a.blockToTile {
		if owner != -1 {
			last = int32(k)
		}
	}
	return last
}

// blockOffset returns the byte offset of block k within the file.
func (f *File) blockOffset(k int32) int64 {
	return f.hdr.baseLocation() + int64(k)*int64(f.hdr.TileBytes)
}
