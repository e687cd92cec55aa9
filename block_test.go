package sif

import "testing"

func TestBlockAllocatorAllocateAssignsLowestFree(t *testing.T) {
	tiles := newTileTable(4, 1, 1, 1)
	a := newBlockAllocator(4)

	k, err := a.allocate(tiles, 2)
	if err != nil {
		t.Fatal(err)
	}
	if k != 0 {
		t.Errorf("allocate() = %d, want 0 (lowest free)", k)
	}
	if tiles.records[2].BlockNum != 0 {
		t.Errorf("tile 2 BlockNum = %d, want 0", tiles.records[2].BlockNum)
	}
	if a.owner(0) != 2 {
		t.Errorf("owner(0) = %d, want 2", a.owner(0))
	}
}

func TestBlockAllocatorReleaseFreesBlock(t *testing.T) {
	tiles := newTileTable(2, 1, 1, 1)
	a := newBlockAllocator(2)
	k, _ := a.allocate(tiles, 0)

	a.release(tiles, 0)
	if tiles.records[0].BlockNum != -1 {
		t.Errorf("tile 0 BlockNum = %d after release, want -1", tiles.records[0].BlockNum)
	}
	if a.owner(k) != -1 {
		t.Errorf("owner(%d) = %d after release, want -1", k, a.owner(k))
	}
}

func TestBlockAllocatorExhaustion(t *testing.T) {
	tiles := newTileTable(1, 1, 1, 1)
	a := newBlockAllocator(1)
	if _, err := a.allocate(tiles, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := a.allocate(tiles, 0); err == nil {
		t.Fatal("expected error allocating from an exhausted allocator")
	}
}

func TestRebuildBlockAllocatorFromTileRecords(t *testing.T) {
	tiles := newTileTable(3, 1, 1, 1)
	tiles.records[1].BlockNum = 0
	a := rebuildBlockAllocator(tiles)
	if a.owner(0) != 1 {
		t.Errorf("owner(0) = %d, want 1", a.owner(0))
	}
	if a.lastUsed() != 0 {
		t.Errorf("lastUsed() = %d, want 0", a.lastUsed())
	}
}

func TestBlockAllocatorLastUsedEmptyIsMinusOne(t *testing.T) {
	a := newBlockAllocator(3)
	if a.lastUsed() != -1 {
		t.Errorf("lastUsed() on empty allocator = %d, want -1", a.lastUsed())
	}
}

func TestBijectionHoldsAcrossAllocateReleaseCycles(t *testing.T) {
	tiles := newTileTable(5, 1, 1, 1)
	a := newBlockAllocator(5)

	for _, t0 := range []int{0, 1, 2} {
		if _, err := a.allocate(tiles, t0); err != nil {
			t.Fatal(err)
		}
	}
	a.release(tiles, 1)
	if _, err := a.allocate(tiles, 3); err != nil {
		t.Fatal(err)
	}

	for k, owner := range a.blockToTile {
		if owner == -1 {
			continue
		}
		if tiles.records[owner].BlockNum != int32(k) {
			t.Errorf("tile/block bijection broken: block %d owned by tile %d, but tile %d.BlockNum = %d", k, owner, owner, tiles.records[owner].BlockNum)
		}
	}
}
