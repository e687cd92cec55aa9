package sif

import "testing"

func TestEncodeDecodeI32RoundTrip(t *testing.T) {
	for _, n := range []int32{0, 1, -1, 1 << 30, -(1 << 30)} {
		got := decodeI32(encodeI32(n))
		if got != n {
			t.Errorf("decodeI32(encodeI32(%d)) = %d", n, got)
		}
	}
}

func TestEncodeDecodeI64RoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		got := decodeI64(encodeI64(n))
		if got != n {
			t.Errorf("decodeI64(encodeI64(%d)) = %d", n, got)
		}
	}
}

func TestEncodeI64BytesAreBigEndian(t *testing.T) {
	// Every byte of this test value is distinct, so a byte written twice or
	// skipped shows up immediately.
	buf := encodeI64(0x0102030405060708)
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("encodeI64 byte %d = %#x, want %#x (full buf %x)", i, buf[i], want[i], buf)
		}
	}
}

func TestEncodeDecodeF64RoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1.5, -1.5, 3.14159265358979} {
		got := decodeF64(encodeF64(f))
		if got != f {
			t.Errorf("decodeF64(encodeF64(%v)) = %v", f, got)
		}
	}
}

func TestSwapBytesElement2(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x56, 0x78}
	swapBytes(buf, 2)
	want := []byte{0x34, 0x12, 0x78, 0x56}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("swapBytes(elemSize=2) = %x, want %x", buf, want)
		}
	}
}

func TestSwapBytesElement8MirrorsWithinElement(t *testing.T) {
	// Each byte must trade with its mirror position within its own element,
	// not a fixed global index, and no out-of-bounds read may occur.
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	swapBytes(buf, 8)
	want := []byte{8, 7, 6, 5, 4, 3, 2, 1}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("swapBytes(elemSize=8) = %v, want %v", buf, want)
		}
	}
}

func TestSwapBytesNoOpOnElemSize1(t *testing.T) {
	buf := []byte{1, 2, 3}
	swapBytes(buf, 1)
	want := []byte{1, 2, 3}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("swapBytes(elemSize=1) mutated buf: got %v, want %v", buf, want)
		}
	}
}

func TestHostToCodeCodeToHostRoundTrip(t *testing.T) {
	for _, code := range []Endianness{LittleEndian, BigEndian} {
		orig := []byte{1, 2, 3, 4}
		buf := append([]byte(nil), orig...)
		hostToCode(buf, 4, code)
		codeToHost(buf, 4, code)
		for i := range orig {
			if buf[i] != orig[i] {
				t.Fatalf("round trip through code=%v: got %v, want %v", code, buf, orig)
			}
		}
	}
}
