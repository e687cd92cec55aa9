// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

// magicLiteral is the 8-byte ASCII magic stored at header offset 4.
var magicLiteral = [8]byte{'!', '*', '*', 'S', 'I', 'F', '*', '*'}

// LibraryVersion is the current format version this package writes by
// default on Create.
const LibraryVersion = 2

// headerFixedBytes is the total byte size of the fixed header: 80 bytes of
// scalar fields followed by 6 float64 affine transform entries.
const headerFixedBytes = 80 + 6*8

// Header holds every field of the on-disk file header. Image
// parameters are immutable after Create except for the fields the
// flag/metadata sugar API is explicitly allowed to touch (UserDataType, the
// three behavior flags, AffineGeoTransform, and UseFileVersion).
type Header struct {
	HeaderBytes int32 //  [0:3]  total bytes consumed by the header
	Version     int32 // [12:15] format version

	Width, Height, Bands int32 // [16:27]
	NKeys                int32 // [28:31] meta-data entry count

	NTiles         int32 // [32:35]
	TileWidth      int32 // [36:39]
	TileHeight     int32 // [40:43]
	TileBytes      int32 // [44:47]
	NTilesAcross   int32 // [48:51]
	DataUnitSize   int32 // [52:55]
	UserDataType   int32 // [56:59]
	Defragment     int32 // [60:63]
	Consolidate    int32 // [64:67]
	IntrinsicWrite int32 // [68:71]

	TileHeaderBytes int32 // [72:75]
	NUniformFlags   int32 // [76:79]

	AffineGeoTransform [6]float64 // [80:127]

	// UseFileVersion selects the wire version for subsequent writes. It
	// defaults to the library version on Create, and to the file's own
	// version on Open.
	UseFileVersion int32
}

// nTilesDown derives n_tiles_down from n_tiles / n_tiles_across, which
// always divide exactly by construction.
func (h *Header) nTilesDown() int32 {
	if h.NTilesAcross == 0 {
		return 0
	}
	return h.NTiles / h.NTilesAcross
}

func (h *Header) unitsPerSlice() int64 {
	return int64(h.TileWidth) * int64(h.TileHeight)
}

func (h *Header) baseLocation() int64 {
	return int64(h.HeaderBytes) + int64(h.NTiles)*int64(h.TileHeaderBytes)
}

// deriveLayout fills in every field computable from the image parameters:
// n_tiles_across, n_tiles (via n_tiles_down), tile_bytes,
// tile_header_bytes and n_uniform_flags.
func deriveLayout(h *Header) {
	h.NTilesAcross = ceilDiv(h.Width, h.TileWidth)
	ntilesDown := ceilDiv(h.Height, h.TileHeight)
	h.NTiles = h.NTilesAcross * ntilesDown
	h.NUniformFlags = int32(ceilDiv(h.Bands, 8))
	h.TileBytes = int32(h.unitsPerSlice()) * h.Bands * h.DataUnitSize
	h.TileHeaderBytes = h.Bands*h.DataUnitSize + h.NUniformFlags + 4
}

func ceilDiv(a, b int32) int32 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// encodeHeader serializes h into the fixed-size on-disk representation. The
// affine transform is written big-endian for version >= 2 and raw
// host-order for version 1, a legacy anomaly that readers and writers must
// branch on.
func encodeHeader(h *Header, version int32) []byte {
	buf := make([]byte, headerFixedBytes)
	putI32 := func(off int, v int32) { copy(buf[off:off+4], encodeI32(v)) }

	putI32(0, h.HeaderBytes)
	copy(buf[4:12], magicLiteral[:])
	putI32(12, h.Version)
	putI32(16, h.Width)
	putI32(20, h.Height)
	putI32(24, h.Bands)
	putI32(28, h.NKeys)
	putI32(32, h.NTiles)
	putI32(36, h.TileWidth)
	putI32(40, h.TileHeight)
	putI32(44, h.TileBytes)
	putI32(48, h.NTilesAcross)
	putI32(52, h.DataUnitSize)
	putI32(56, h.UserDataType)
	putI32(60, h.Defragment)
	putI32(64, h.Consolidate)
	putI32(68, h.IntrinsicWrite)
	putI32(72, h.TileHeaderBytes)
	putI32(76, h.NUniformFlags)

	for i, v := range h.AffineGeoTransform {
		off := 80 + i*8
		if version >= 2 {
			copy(buf[off:off+8], encodeF64(v))
		} else {
			hostPutF64(buf[off:off+8], v)
		}
	}
	return buf
}

// decodeHeader parses the fixed-size on-disk representation back into a
// Header. version must already be known by the caller (it is the first
// field decoded, before the affine transform whose encoding depends on it).
func decodeHeader(buf []byte, version int32) *Header {
	h := &Header{}
	getI32 := func(off int) int32 { return decodeI32(buf[off : off+4]) }

	h.HeaderBytes = getI32(0)
	h.Version = getI32(12)
	h.Width = getI32(16)
	h.Height = getI32(20)
	h.Bands = getI32(24)
	h.NKeys = getI32(28)
	h.NTiles = getI32(32)
	h.TileWidth = getI32(36)
	h.TileHeight = getI32(40)
	h.TileBytes = getI32(44)
	h.NTilesAcross = getI32(48)
	h.DataUnitSize = getI32(52)
	h.UserDataType = getI32(56)
	h.Defragment = getI32(60)
	h.Consolidate = getI32(64)
	h.IntrinsicWrite = getI32(68)
	h.TileHeaderBytes = getI32(72)
	h.NUniformFlags = getI32(76)

	for i := range h.AffineGeoTransform {
		off := 80 + i*8
		if version >= 2 {
			h.AffineGeoTransform[i] = decodeF64(buf[off : off+8])
		} else {
			h.AffineGeoTransform[i] = hostGetF64(buf[off : off+8])
		}
	}
	return h
}

// hostPutF64/hostGetF64 implement the version-1 legacy anomaly: six raw
// host-order doubles instead of big-endian ones.
func hostPutF64(dst []byte, f float64) {
	copy(dst, encodeF64(f))
	if hostEndian != BigEndian {
		swapBytes(dst, 8)
	}
}

func hostGetF64(src []byte) float64 {
	buf := append([]byte(nil), src...)
	if hostEndian != BigEndian {
		swapBytes(buf, 8)
	}
	return decodeF64(buf)
}
