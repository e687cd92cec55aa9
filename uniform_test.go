package sif

import "testing"

func TestDeepUniformDataUnitSize1(t *testing.T) {
	buf := make([]byte, 4*4)
	for i := range buf {
		buf[i] = 0x55
	}
	uniform, value := deepUniform(buf, 1, 4, 4, 4)
	if !uniform {
		t.Fatal("expected uniform")
	}
	if value[0] != 0x55 {
		t.Errorf("value = %x, want 55", value)
	}
}

func TestDeepUniformIgnoresJunkOutsideExtent(t *testing.T) {
	// 4x4 tile buffer, but the image only covers a 2x2 border-tile extent.
	// Junk in the unused columns/rows must not break uniformity.
	buf := make([]byte, 4*4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 && y < 2 {
				buf[y*4+x] = 0x7
			} else {
				buf[y*4+x] = 0xFF // junk
			}
		}
	}
	uniform, value := deepUniform(buf, 1, 2, 2, 4)
	if !uniform {
		t.Fatal("expected uniform over the valid 2x2 extent despite junk outside it")
	}
	if value[0] != 0x7 {
		t.Errorf("value = %x, want 07", value)
	}
}

func TestDeepUniformDetectsDifference(t *testing.T) {
	buf := []byte{1, 1, 1, 2}
	uniform, _ := deepUniform(buf, 1, 2, 2, 2)
	if uniform {
		t.Fatal("expected non-uniform buffer to be detected")
	}
}

func TestDeepUniformDataUnitSize2(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x12, 0x34, 0x12, 0x34, 0x12, 0x34}
	uniform, value := deepUniform(buf, 2, 2, 2, 2)
	if !uniform {
		t.Fatal("expected uniform")
	}
	if value[0] != 0x12 || value[1] != 0x34 {
		t.Errorf("value = %x, want 1234", value)
	}
}

func TestDeepUniformGeneralPath(t *testing.T) {
	dus := 3
	elem := []byte{9, 9, 9}
	buf := make([]byte, 0, 4*dus)
	for i := 0; i < 4; i++ {
		buf = append(buf, elem...)
	}
	uniform, value := deepUniform(buf, dus, 2, 2, 2)
	if !uniform {
		t.Fatal("expected uniform")
	}
	if len(value) != dus || value[0] != 9 {
		t.Errorf("value = %v, want %v", value, elem)
	}
}

func TestCollapseTileReleasesBlockWhenAllBandsUniform(t *testing.T) {
	tiles := newTileTable(1, 2, 1, 1)
	alloc := newBlockAllocator(1)
	k, _ := alloc.allocate(tiles, 0)
	f := &File{hdr: &Header{Bands: 2}, tiles: tiles, alloc: alloc}

	setBit(tiles.records[0].UniformFlags, 0, true)
	setBit(tiles.records[0].UniformFlags, 1, true)
	f.collapseTile(0)

	if tiles.records[0].BlockNum != -1 {
		t.Errorf("BlockNum = %d after collapse, want -1", tiles.records[0].BlockNum)
	}
	if alloc.owner(k) != -1 {
		t.Errorf("block %d still owned after collapse", k)
	}
}

func TestCollapseTileLeavesBlockWhenAnyBandNonUniform(t *testing.T) {
	tiles := newTileTable(1, 2, 1, 1)
	alloc := newBlockAllocator(1)
	alloc.allocate(tiles, 0)
	f := &File{hdr: &Header{Bands: 2}, tiles: tiles, alloc: alloc}

	setBit(tiles.records[0].UniformFlags, 0, true)
	setBit(tiles.records[0].UniformFlags, 1, false)
	f.collapseTile(0)

	if tiles.records[0].BlockNum == -1 {
		t.Error("tile collapsed despite a non-uniform band")
	}
}
