// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Endianness names the two byte orders the format and its "simple" façade
// reason about explicitly (as opposed to Go's own host order).
type Endianness int

const (
	// LittleEndian pixel data stored least-significant byte first.
	LittleEndian Endianness = 0
	// BigEndian pixel data stored most-significant byte first.
	BigEndian Endianness = 1
)

// hostEndian is resolved once via the classic uint16-in-memory probe.
var hostEndian = func() Endianness {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	if b[0] == 0 {
		return BigEndian
	}
	return LittleEndian
}()

// encodeI32 converts n to 4 big-endian bytes.
func encodeI32(n int32) []byte {
	dst := [4]byte{}
	binary.BigEndian.PutUint32(dst[:], uint32(n))
	return dst[:]
}

// decodeI32 reads a 4-byte big-endian int32.
func decodeI32(buf []byte) int32 {
	return int32(binary.BigEndian.Uint32(buf))
}

// encodeI64 converts n to 8 big-endian bytes.
func encodeI64(n int64) []byte {
	dst := [8]byte{}
	binary.BigEndian.PutUint64(dst[:], uint64(n))
	return dst[:]
}

// decodeI64 reads an 8-byte big-endian int64.
func decodeI64(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf))
}

// encodeF64 converts x to 8 big-endian bytes (IEEE-754 double).
func encodeF64(x float64) []byte {
	dst := [8]byte{}
	binary.BigEndian.PutUint64(dst[:], math.Float64bits(x))
	return dst[:]
}

// decodeF64 reads an 8-byte big-endian IEEE-754 double.
func decodeF64(buf []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(buf))
}

// swapBytes reverses the byte order of every elemSize-wide element of buf in
// place. elemSize must be one of 1, 2, 4, 8; 1 is a no-op. Each byte is
// swapped with its mirror within the element (buf[base+elemSize-1-i]), and
// one routine covers every element width rather than a separate helper per
// type.
func swapBytes(buf []byte, elemSize int) {
	if elemSize <= 1 {
		return
	}
	for base := 0; base+elemSize <= len(buf); base += elemSize {
		for i, j := base, base+elemSize-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
}

// hostToCode converts buf from host order to code, swapping only if the two
// differ.
func hostToCode(buf []byte, elemSize int, code Endianness) {
	if code == hostEndian {
		return
	}
	swapBytes(buf, elemSize)
}

// codeToHost converts buf from code to host order. The swap is its own
// inverse, so this performs the identical operation to hostToCode; both
// names are kept to match the symmetric pair the format specifies.
func codeToHost(buf []byte, elemSize int, code Endianness) {
	hostToCode(buf, elemSize, code)
}

// HostEndian reports the running process's native byte order. Subpackage
// simple uses this to decide whether a raster/slice buffer needs swapping
// against a file's declared endianness.
func HostEndian() Endianness { return hostEndian }

// SwapElements reverses the byte order of every elemSize-wide element of buf
// in place. elemSize must be one of 1, 2, 4, 8.
func SwapElements(buf []byte, elemSize int) { swapBytes(buf, elemSize) }
