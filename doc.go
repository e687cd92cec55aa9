// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sif implements the Sparse Image Format: an on-disk container for
// large, multi-band raster images in which uniform tile-bands (every pixel
// of a band within a tile carrying identical bytes) are collapsed to a
// single stored value, so file size scales with non-uniform area rather
// than with image area.
//
// A File is opened with Open or created with Create, read and written
// through GetRaster/SetRaster (or the lower-level GetTileSlice/SetTileSlice),
// and always closed with Close. Flush, Consolidate and Defragment expose the
// maintenance operations described in the format's design: periodic
// uniformity re-detection and block compaction.
//
// The on-disk layout is big-endian and documented field-by-field in
// header.go, tiles.go and metadata.go; subpackage simple layers a
// byte-order-portable, typed raster API on top of the core file handle.
package sif
