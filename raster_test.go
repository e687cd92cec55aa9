package sif

import (
	"path/filepath"
	"testing"
)

func TestCheckBandOutOfRange(t *testing.T) {
	f := newTestFile(t, "band.sif")
	if err := f.checkBand(-1); err == nil {
		t.Error("expected error for negative band")
	}
	f.ClearError()
	if err := f.checkBand(1); err == nil {
		t.Error("expected error for band >= bands (file has 1 band)")
	}
	f.ClearError()
	if err := f.checkBand(0); err != nil {
		t.Errorf("band 0 should be valid, got %v", err)
	}
}

func TestCheckTileCoordOutOfRange(t *testing.T) {
	f := newTestFile(t, "tilecoord.sif")
	if err := f.checkTileCoord(-1, 0); err == nil {
		t.Error("expected error for negative tx")
	}
	f.ClearError()
	if err := f.checkTileCoord(0, 99); err == nil {
		t.Error("expected error for ty out of range")
	}
}

func TestCheckRegionOutOfBounds(t *testing.T) {
	f := newTestFile(t, "region.sif")
	if err := f.checkRegion(0, 0, 0, 1); err == nil {
		t.Error("expected error for w < 1")
	}
	f.ClearError()
	if err := f.checkRegion(3, 3, 2, 2); err == nil {
		t.Error("expected error for a region exceeding the image bounds")
	}
}

// Border tiles: image dims not a multiple of tile dims must still uniquely
// decompose into the right overlapped tiles and extents.
func TestBorderTileRasterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "border.sif")
	f, err := Create(path, CreateParams{
		Width: 5, Height: 5, Bands: 1,
		TileWidth: 4, TileHeight: 4, DataUnitSize: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf := make([]byte, 25)
	for i := range buf {
		buf[i] = byte(i + 1)
	}
	if err := f.SetRaster(buf, 0, 0, 5, 5, 0); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 25)
	if err := f.GetRaster(out, 0, 0, 5, 5, 0); err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		if buf[i] != out[i] {
			t.Fatalf("border-tile round trip mismatch at %d: got %d, want %d", i, out[i], buf[i])
		}
	}
}

func TestIsShallowUniformAcrossMultipleTiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shallow.sif")
	f, err := Create(path, CreateParams{
		Width: 8, Height: 4, Bands: 1,
		TileWidth: 4, TileHeight: 4, DataUnitSize: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Freshly created tiles start fully uniform at the zero value.
	ok, value, err := f.IsShallowUniform(0, 0, 8, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected freshly created region to be shallow uniform")
	}
	if value[0] != 0 {
		t.Errorf("uniform value = %d, want 0", value[0])
	}

	if err := f.FillTileSlice(1, 0, 0, []byte{9}); err != nil {
		t.Fatal(err)
	}
	ok, _, err = f.IsShallowUniform(0, 0, 8, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected region spanning two differently-valued tiles to be non-uniform")
	}
}

func TestIsSliceShallowUniformReflectsBlockAllocation(t *testing.T) {
	f := newTestFile(t, "sliceuniform.sif")
	ok, _, err := f.IsSliceShallowUniform(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("freshly created tile should be shallow uniform")
	}

	buf := make([]byte, f.sliceByteLen())
	for i := range buf {
		buf[i] = byte(i + 1)
	}
	if err := f.SetTileSlice(0, 0, 0, buf); err != nil {
		t.Fatal(err)
	}
	ok, _, err = f.IsSliceShallowUniform(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("tile with a non-uniform block should not report shallow uniform")
	}
}
