package simple

import (
	"path/filepath"
	"testing"

	"github.com/zchee/go-sif"
)

func TestCreateSetsAgreementTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agree.sif")
	f, err := Create(path, 4, 4, 1, sif.BigEndian, U8, 4, 4, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.Underlying().GetAgreement(); got != agreementTag {
		t.Errorf("GetAgreement() = %q, want %q", got, agreementTag)
	}
	if !IsSimple(f.Underlying()) {
		t.Error("IsSimple() = false on a file this package just created")
	}
}

func TestOpenRejectsNonSimpleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.sif")
	plain, err := sif.Create(path, sif.CreateParams{
		Width: 4, Height: 4, Bands: 1,
		TileWidth: 4, TileHeight: 4, DataUnitSize: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	plain.Close()

	if _, err := Open(path, true); err == nil {
		t.Fatal("expected Open to reject a file with no _sif_agree=simple tag")
	}
}

func TestIsSimpleByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "byname.sif")
	f, err := CreateDefaults(path, 8, 8, 1, sif.LittleEndian, U16)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	if !IsSimpleByName(path) {
		t.Error("IsSimpleByName() = false on a file this package just created")
	}
}

func TestCreateDefaultsUsesSixtyFourTileAndAllFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.sif")
	f, err := CreateDefaults(path, 200, 200, 1, sif.BigEndian, F32)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	u := f.Underlying()
	if u.TileWidth() != 64 || u.TileHeight() != 64 {
		t.Errorf("tile size = %dx%d, want 64x64", u.TileWidth(), u.TileHeight())
	}
	if !u.IsConsolidateFlag() || !u.IsDefragmentFlag() || !u.IsIntrinsicWriteFlag() {
		t.Error("expected all three behavior flags set by CreateDefaults")
	}
}

// A big-endian "simple" file read on a little-endian host must present
// host-order bytes to the caller on both get and set, regardless of the
// file's stored endian.
func TestSetGetRasterSwapsAtEndianBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endian.sif")
	f, err := Create(path, 2, 1, 1, sif.BigEndian, U16, 2, 1, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	host := []byte{0x34, 0x12, 0x78, 0x56} // host-order uint16 0x1234, 0x5678 on a little-endian host
	if err := f.SetRaster(host, 0, 0, 2, 1, 0); err != nil {
		t.Fatal(err)
	}

	if sif.HostEndian() != sif.BigEndian {
		raw := make([]byte, 4)
		if err := f.Underlying().GetRaster(raw, 0, 0, 2, 1, 0); err != nil {
			t.Fatal(err)
		}
		wantRaw := []byte{0x12, 0x34, 0x56, 0x78}
		for i := range wantRaw {
			if raw[i] != wantRaw[i] {
				t.Fatalf("on-disk bytes = %x, want %x (big-endian)", raw, wantRaw)
			}
		}
	}

	got := make([]byte, 4)
	if err := f.GetRaster(got, 0, 0, 2, 1, 0); err != nil {
		t.Fatal(err)
	}
	for i := range host {
		if got[i] != host[i] {
			t.Fatalf("GetRaster() = %x, want host-order %x", got, host)
		}
	}
}

func TestSetDataTypeRejectsUndefinedBaseType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baddt.sif")
	f, err := Create(path, 4, 4, 1, sif.LittleEndian, U8, 4, 4, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := f.SetDataType(BaseType(99)); err == nil {
		t.Fatal("expected error setting an undefined base type")
	}
}

func TestFillTileSliceSwapsValueAtBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filltile.sif")
	f, err := Create(path, 2, 2, 1, sif.BigEndian, U16, 2, 2, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	host := []byte{0x34, 0x12}
	if err := f.FillTileSlice(0, 0, 0, host); err != nil {
		t.Fatal(err)
	}
	ok, value, err := f.IsSliceShallowUniform(0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected tile to be shallow uniform after FillTileSlice")
	}
	for i := range host {
		if value[i] != host[i] {
			t.Fatalf("IsSliceShallowUniform value = %x, want host-order %x", value, host)
		}
	}
}
