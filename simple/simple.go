// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package simple is the typed façade over package sif's untyped raster API:
// the "simple" user-data-type convention, encoding endian·10+base_type into
// the file's opaque user_data_type word and self-tagging every file it
// creates with the _sif_agree="simple" meta-data key.
package simple

import (
	"github.com/pkg/errors"

	"github.com/zchee/go-sif"
)

// BaseType is the scalar type half of the "simple" user-data-type word.
type BaseType int32

const (
	U8  BaseType = 0
	I8  BaseType = 1
	U16 BaseType = 2
	I16 BaseType = 3
	U32 BaseType = 4
	I32 BaseType = 5
	U64 BaseType = 6
	I64 BaseType = 7
	F32 BaseType = 8
	F64 BaseType = 9
)

// baseTypeSize maps a BaseType to its width in bytes, one of which every
// "simple" file's data_unit_size must equal.
var baseTypeSize = map[BaseType]int32{
	U8: 1, I8: 1,
	U16: 2, I16: 2,
	U32: 4, I32: 4,
	U64: 8, I64: 8,
	F32: 4, F64: 8,
}

// agreementTag is the meta-data value simple_create writes and simple_open
// verifies.
const agreementTag = "simple"

// File wraps a *sif.File with the "simple" convention's endian-aware
// read/write path. Every raster, slice and fill operation swaps the buffer
// at the boundary so callers always see host-order values regardless of how
// the file is stored on disk.
type File struct {
	f *sif.File

	endian sif.Endianness
	base   BaseType

	// scratch is the façade's own swap buffer, grown on demand and never
	// shrunk: once it reaches a high-water mark it stays there.
	scratch []byte
}

// decodeUserDataType splits a user_data_type word into its endian and base
// type halves.
func decodeUserDataType(udt int32) (sif.Endianness, BaseType) {
	return sif.Endianness(udt / 10), BaseType(udt % 10)
}

func encodeUserDataType(e sif.Endianness, b BaseType) int32 {
	return int32(e)*10 + int32(b)
}

// Create builds a new SIF file under the "simple" convention: it forwards
// to sif.Create, then tags the result with _sif_agree="simple" and encodes
// (endian, base) into the header's user_data_type word.
func Create(path string, width, height, bands int32, endian sif.Endianness, base BaseType, tileWidth, tileHeight int32, consolidate, defragment, intrinsic bool) (*File, error) {
	size, ok := baseTypeSize[base]
	if !ok {
		return nil, sif.NewError(sif.KindUndefinedDataType, "simple_create", errors.Errorf("undefined base type %d", base))
	}

	p := sif.CreateParams{
		Width:          width,
		Height:         height,
		Bands:          bands,
		TileWidth:      tileWidth,
		TileHeight:     tileHeight,
		DataUnitSize:   size,
		UserDataType:   encodeUserDataType(endian, base),
		Consolidate:    consolidate,
		Defragment:     defragment,
		IntrinsicWrite: intrinsic,
	}
	f, err := sif.Create(path, p)
	if err != nil {
		return nil, err
	}
	if err := f.SetAgreement(agreementTag); err != nil {
		f.Close()
		return nil, err
	}

	return &File{f: f, endian: endian, base: base}, nil
}

// CreateDefaults is simple_create_defaults: every flag on, 64x64 tiles.
func CreateDefaults(path string, width, height, bands int32, endian sif.Endianness, base BaseType) (*File, error) {
	return Create(path, width, height, bands, endian, base, 64, 64, true, true, true)
}

// Open opens an existing "simple" file. It fails (closing the underlying
// handle) if the _sif_agree meta-data key is missing or not "simple".
func Open(path string, readOnly bool) (*File, error) {
	f, err := sif.Open(path, readOnly)
	if err != nil {
		return nil, err
	}
	if f.GetAgreement() != agreementTag {
		f.Close()
		return nil, sif.NewError(sif.KindIncorrectDataType, "simple_open", errors.New("file was not created under the \"simple\" convention"))
	}
	endian, base := decodeUserDataType(f.GetUserDataType())
	if _, ok := baseTypeSize[base]; !ok {
		f.Close()
		return nil, sif.NewError(sif.KindUndefinedDataType, "simple_open", errors.Errorf("undefined base type %d", base))
	}
	return &File{f: f, endian: endian, base: base}, nil
}

// IsSimple reports whether an already-open handle was created under the
// "simple" convention, without disturbing its sticky error state.
func IsSimple(f *sif.File) bool {
	return f.GetAgreement() == agreementTag
}

// IsSimpleByName combines sif.IsPossiblySIFFile (a magic-byte check only)
// with the agreement check, opening and closing the file read-only in the
// process.
func IsSimpleByName(path string) bool {
	if !sif.IsPossiblySIFFile(path) {
		return false
	}
	f, err := sif.Open(path, true)
	if err != nil {
		return false
	}
	defer f.Close()
	return IsSimple(f)
}

// Close flushes and releases the underlying handle.
func (sf *File) Close() error { return sf.f.Close() }

// Underlying returns the wrapped *sif.File for callers that need the
// untyped API alongside the typed one.
func (sf *File) Underlying() *sif.File { return sf.f }

// GetEndian and SetEndian access the "simple" convention's stored endian
// half of the user_data_type word.
func (sf *File) GetEndian() sif.Endianness { return sf.endian }

func (sf *File) SetEndian(e sif.Endianness) {
	sf.endian = e
	sf.f.SetUserDataType(encodeUserDataType(e, sf.base))
}

// GetDataType and SetDataType access the convention's base-type half.
func (sf *File) GetDataType() BaseType { return sf.base }

func (sf *File) SetDataType(b BaseType) error {
	if _, ok := baseTypeSize[b]; !ok {
		return sif.NewError(sif.KindUndefinedDataType, "simple_set_data_type", errors.Errorf("undefined base type %d", b))
	}
	sf.base = b
	sf.f.SetUserDataType(encodeUserDataType(sf.endian, b))
	return nil
}

func (sf *File) elemSize() int {
	return int(baseTypeSize[sf.base])
}

// growScratch ensures the façade's swap buffer is at least n bytes, growing
// (never shrinking) it if needed.
func (sf *File) growScratch(n int) []byte {
	if cap(sf.scratch) < n {
		sf.scratch = make([]byte, n)
	}
	return sf.scratch[:n]
}

// swapIfNeeded reverses every elemSize-wide element of buf in place if the
// file's declared endian differs from the host's.
func (sf *File) swapIfNeeded(buf []byte) {
	if sf.endian == sif.HostEndian() {
		return
	}
	sif.SwapElements(buf, sf.elemSize())
}

// GetRaster reads window (x,y,w,h) of band into buf and swaps it into host
// order if the file's declared endian differs from the host's.
func (sf *File) GetRaster(buf []byte, x, y, w, h, band int32) error {
	if err := sf.f.GetRaster(buf, x, y, w, h, band); err != nil {
		return err
	}
	sf.swapIfNeeded(buf)
	return nil
}

// SetRaster swaps a copy of buf into the file's declared endian and writes
// it through the core raster API, leaving the caller's buffer untouched.
func (sf *File) SetRaster(buf []byte, x, y, w, h, band int32) error {
	scratch := sf.growScratch(len(buf))
	copy(scratch, buf)
	sf.swapIfNeeded(scratch)
	return sf.f.SetRaster(scratch, x, y, w, h, band)
}

// GetTileSlice reads band of tile (tx,ty) into buf, host-order.
func (sf *File) GetTileSlice(tx, ty, band int32, buf []byte) error {
	if err := sf.f.GetTileSlice(tx, ty, band, buf); err != nil {
		return err
	}
	sf.swapIfNeeded(buf)
	return nil
}

// SetTileSlice writes buf (host-order) into band of tile (tx,ty), via the
// façade's scratch buffer.
func (sf *File) SetTileSlice(tx, ty, band int32, buf []byte) error {
	scratch := sf.growScratch(len(buf))
	copy(scratch, buf)
	sf.swapIfNeeded(scratch)
	return sf.f.SetTileSlice(tx, ty, band, scratch)
}

// FillTileSlice fills band of tile (tx,ty) with value (one element,
// host-order), swapping it through the façade's scratch buffer first.
func (sf *File) FillTileSlice(tx, ty, band int32, value []byte) error {
	scratch := sf.growScratch(len(value))
	copy(scratch, value)
	sf.swapIfNeeded(scratch)
	return sf.f.FillTileSlice(tx, ty, band, scratch)
}

// FillRaster is the "simple" convenience over FillTiles: it fills every
// tile's band with value, swapped to the file's declared endian.
func (sf *File) FillRaster(band int32, value []byte) error {
	scratch := sf.growScratch(len(value))
	copy(scratch, value)
	sf.swapIfNeeded(scratch)
	return sf.f.FillTiles(band, scratch)
}

// IsShallowUniform reports whether region (x,y,w,h) of band is shallow
// uniform, returning the common value in host order.
func (sf *File) IsShallowUniform(x, y, w, h, band int32) (bool, []byte, error) {
	ok, value, err := sf.f.IsShallowUniform(x, y, w, h, band)
	if err != nil || !ok {
		return ok, value, err
	}
	sf.swapIfNeeded(value)
	return true, value, nil
}

// IsSliceShallowUniform is the per-tile form of IsShallowUniform.
func (sf *File) IsSliceShallowUniform(tx, ty, band int32) (bool, []byte, error) {
	ok, value, err := sf.f.IsSliceShallowUniform(tx, ty, band)
	if err != nil || !ok {
		return ok, value, err
	}
	sf.swapIfNeeded(value)
	return true, value, nil
}
