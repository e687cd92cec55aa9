// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

// CreateParams describes the image a caller wants Create to build: the
// immutable-after-create image parameters, structured the way an options
// struct for Create usually is, as the single config surface this package
// offers — there is no flag/config-file layer, since CLI wrappers are out
// of scope here.
type CreateParams struct {
	Width, Height int32
	Bands         int32

	TileWidth, TileHeight int32

	// DataUnitSize is the number of bytes per pixel per band.
	DataUnitSize int32
	// UserDataType is an opaque tag; the "simple" façade (subpackage
	// simple) is the only consumer that gives it meaning.
	UserDataType int32

	Consolidate    bool
	Defragment     bool
	IntrinsicWrite bool

	// AffineGeoTransform is the six-element affine georeferencing
	// transform. Left at the zero value when the image carries no
	// georeferencing.
	AffineGeoTransform [6]float64
}

// validate checks CreateParams against the bounds Create requires (all
// dimensions >= 1).
func (p CreateParams) validate() error {
	switch {
	case p.Width < 1 || p.Height < 1:
		return errInvalidParam("width/height must be >= 1")
	case p.Bands < 1:
		return errInvalidParam("bands must be >= 1")
	case p.TileWidth < 1 || p.TileHeight < 1:
		return errInvalidParam("tile_width/tile_height must be >= 1")
	case p.DataUnitSize < 1:
		return errInvalidParam("data_unit_size must be >= 1")
	}
	return nil
}

func errInvalidParam(msg string) error {
	return &paramError{msg: msg}
}

type paramError struct{ msg string }

func (e *paramError) Error() string { return "sif: invalid create parameter: " + e.msg }
