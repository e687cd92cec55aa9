// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import "github.com/pkg/errors"

// writeMagic writes the SIF magic string.
func (f *File) writeMagic() {
	// 4 - 11: magic
	f.fa.writeAt(magicLiteral[:], 4)
}

// writeVersion writes the format version for this write.
func (f *File) writeVersion() {
	// 12 - 15: version
	f.fa.writeAt(encodeI32(f.hdr.UseFileVersion), 12)
}

// writeDims writes width, height and bands.
func (f *File) writeDims() {
	// 16 - 27: width, height, bands
	f.fa.writeAt(encodeI32(f.hdr.Width), 16)
	f.fa.writeAt(encodeI32(f.hdr.Height), 20)
	f.fa.writeAt(encodeI32(f.hdr.Bands), 24)
}

// writeNKeys writes the meta-data entry count.
func (f *File) writeNKeys() {
	// 28 - 31: n_keys
	f.fa.writeAt(encodeI32(f.hdr.NKeys), 28)
}

// writeTileParams writes the tile geometry fields.
func (f *File) writeTileParams() {
	// 32 - 51: n_tiles, tile_width, tile_height, tile_bytes, n_tiles_across
	f.fa.writeAt(encodeI32(f.hdr.NTiles), 32)
	f.fa.writeAt(encodeI32(f.hdr.TileWidth), 36)
	f.fa.writeAt(encodeI32(f.hdr.TileHeight), 40)
	f.fa.writeAt(encodeI32(f.hdr.TileBytes), 44)
	f.fa.writeAt(encodeI32(f.hdr.NTilesAcross), 48)
}

// writeDataUnit writes the per-pixel-per-band byte width and the user data
// type tag.
func (f *File) writeDataUnit() {
	// 52 - 59: data_unit_size, user_data_type
	f.fa.writeAt(encodeI32(f.hdr.DataUnitSize), 52)
	f.fa.writeAt(encodeI32(f.hdr.UserDataType), 56)
}

// writeFlags writes the three behavior flags.
func (f *File) writeFlags() {
	// 60 - 71: defragment, consolidate, intrinsic_write
	f.fa.writeAt(encodeI32(f.hdr.Defragment), 60)
	f.fa.writeAt(encodeI32(f.hdr.Consolidate), 64)
	f.fa.writeAt(encodeI32(f.hdr.IntrinsicWrite), 68)
}

// writeTileHeaderMeta writes the derived tile-header geometry.
func (f *File) writeTileHeaderMeta() {
	// 72 - 79: tile_header_bytes, n_uniform_flags
	f.fa.writeAt(encodeI32(f.hdr.TileHeaderBytes), 72)
	f.fa.writeAt(encodeI32(f.hdr.NUniformFlags), 76)
}

// writeAffine writes the six affine transform doubles, branching on version
// for the version-1 host-order legacy anomaly.
func (f *File) writeAffine() {
	// 80 - 127: affine_geo_transform[0..5]
	for i, v := range f.hdr.AffineGeoTransform {
		off := int64(80 + i*8)
		if f.hdr.UseFileVersion >= 2 {
			f.fa.writeAt(encodeF64(v), off)
		} else {
			buf := make([]byte, 8)
			hostPutF64(buf, v)
			f.fa.writeAt(buf, off)
		}
	}
}

// writeHeaderBytesField rewrites just the header_bytes field, once its true
// value is known: it must be written last, after every other field, so the
// value is settled.
func (f *File) writeHeaderBytesField() {
	f.fa.writeAt(encodeI32(f.hdr.HeaderBytes), 0)
}

// writeHeader writes every header field, then rewinds and rewrites
// header_bytes now that the true length is known.
func (f *File) writeHeader() error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "write_header", errors.New("file is read-only"))
	}

	f.hdr.HeaderBytes = int32(headerFixedBytes)
	f.hdr.NKeys = int32(len(f.meta.entries))
	f.writeMagic()
	f.writeVersion()
	f.writeDims()
	f.writeNKeys()
	f.writeTileParams()
	f.writeDataUnit()
	f.writeFlags()
	f.writeTileHeaderMeta()
	f.writeAffine()
	f.writeHeaderBytesField()

	return f.errs.Err()
}

// readHeader reads and validates the fixed header: magic, the version
// gate, and a header_bytes self-check against the sum of the other fields
// it just decoded.
func (f *File) readHeader() error {
	raw := make([]byte, headerFixedBytes)
	if !f.fa.readAt(raw, 0) {
		return f.errs.Err()
	}
	var magic [8]byte
	copy(magic[:], raw[4:12])
	if magic != magicLiteral {
		return f.errs.set(KindNullHdr, "read_header", errors.New("bad magic"))
	}
	version := decodeI32(raw[12:16])
	if version > LibraryVersion {
		return f.errs.set(KindIncompatibleVersion, "read_header",
			errors.Errorf("file version %d newer than library version %d", version, LibraryVersion))
	}
	h := decodeHeader(raw, version)
	if h.HeaderBytes != int32(headerFixedBytes) {
		return f.errs.set(KindRead, "read_header",
			errors.Errorf("header_bytes %d does not match decoded header size %d", h.HeaderBytes, headerFixedBytes))
	}
	h.UseFileVersion = version
	f.hdr = h
	return nil
}
