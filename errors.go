// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import (
	"fmt"
	"runtime"

	stderrors "errors"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Kind identifies the class of failure a File operation encountered. The
// numeric values are part of the wire-compatible error registry and must
// not be renumbered.
type Kind int

// Error kinds, numbered to match the format's stable error registry.
const (
	KindNone                Kind = 0
	KindMem                 Kind = 1
	KindNullFp              Kind = 2
	KindNullHdr             Kind = 3
	KindInvalidBlockNo      Kind = 4
	KindInvalidTileNo       Kind = 5
	KindRead                Kind = 6
	KindWrite               Kind = 7
	KindSeek                Kind = 8
	KindTruncate            Kind = 9
	KindInvalidFileMode     Kind = 10
	KindIncompatibleVersion Kind = 11
	KindMetaDataKey         Kind = 12
	KindMetaDataValue       Kind = 13
	KindCannotWriteVersion  Kind = 14
	KindInvalidBand         Kind = 15
	KindInvalidCoord        Kind = 16
	KindInvalidTileSize     Kind = 17
	KindInvalidRegionSize   Kind = 18
	KindInvalidBuffer       Kind = 19

	// KindExportUnsupported..KindExportBuffer reserve the PNM/PGM/PPM/PAM
	// export error codes. The exporters themselves are out of scope for
	// this package; the codes are reserved so any future exporter built
	// over GetRaster lines up with existing tooling.
	KindExportUnsupported Kind = 20
	KindExportWrite       Kind = 21
	KindExportFormat      Kind = 22
	KindExportBuffer      Kind = 23

	// KindUndefinedDataType..KindUndefinedEndian belong to the "simple"
	// typed façade (subpackage simple).
	KindUndefinedDataType Kind = 100
	KindIncorrectDataType Kind = 101
	KindUndefinedEndian   Kind = 102
)

var kindNames = map[Kind]string{
	KindNone:                "no error",
	KindMem:                 "memory allocation failure",
	KindNullFp:              "null file pointer",
	KindNullHdr:             "null header",
	KindInvalidBlockNo:      "invalid block number",
	KindInvalidTileNo:       "invalid tile number",
	KindRead:                "read error",
	KindWrite:               "write error",
	KindSeek:                "seek error",
	KindTruncate:            "truncate error",
	KindInvalidFileMode:     "invalid file mode",
	KindIncompatibleVersion: "incompatible version",
	KindMetaDataKey:         "meta-data key error",
	KindMetaDataValue:       "meta-data value error",
	KindCannotWriteVersion:  "cannot write version",
	KindInvalidBand:         "invalid band",
	KindInvalidCoord:        "invalid coordinate",
	KindInvalidTileSize:     "invalid tile size",
	KindInvalidRegionSize:   "invalid region size",
	KindInvalidBuffer:       "invalid buffer",
	KindExportUnsupported:   "export unsupported",
	KindExportWrite:         "export write error",
	KindExportFormat:        "export format error",
	KindExportBuffer:        "export buffer error",
	KindUndefinedDataType:   "undefined data type",
	KindIncorrectDataType:   "incorrect data type",
	KindUndefinedEndian:     "undefined endian",
}

// GetErrorDescription returns the human-readable description for an error
// kind, matching get_error_description from the format's API surface.
func GetErrorDescription(k Kind) string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// Error is the error type returned by every fallible File operation. It
// carries the failure kind, the operation that failed, the source location
// of the first failure, and the underlying OS error code when known.
type Error struct {
	Kind  Kind
	Op    string
	Where string
	errno int
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("sif: %s: %s (at %s): %v", e.Op, GetErrorDescription(e.Kind), e.Where, e.cause)
	}
	return fmt.Sprintf("sif: %s: %s (at %s)", e.Op, GetErrorDescription(e.Kind), e.Where)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Errno returns the underlying OS error code, or 0 if the failure did not
// originate from a syscall.
func (e *Error) Errno() int { return e.errno }

func extractErrno(err error) int {
	if err == nil {
		return 0
	}
	var errno unix.Errno
	if stderrors.As(err, &errno) {
		return int(errno)
	}
	return 0
}

func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// errState is the sticky, handle-wide error slot: the first error latched
// on a handle is retained; every subsequent mutating or reading call
// short-circuits until the caller clears it or closes and reopens the
// file.
type errState struct {
	err *Error
}

// set latches kind/op/cause as the handle's error if none is set yet, and
// always returns the (possibly pre-existing) sticky error.
func (s *errState) set(kind Kind, op string, cause error) *Error {
	if s.err != nil {
		return s.err
	}
	e := &Error{
		Kind:  kind,
		Op:    op,
		Where: callerLocation(2),
		errno: extractErrno(cause),
		cause: cause,
	}
	if cause != nil {
		e.cause = errors.Wrap(cause, op)
	}
	s.err = e
	return e
}

// NewError builds a Kind-tagged error for callers outside this package that
// need to report into the same registry — the "simple" façade (subpackage
// simple) uses this for its own UndefinedDataType/IncorrectDataType/
// UndefinedEndian family, since it wraps a *File rather than embedding one.
func NewError(kind Kind, op string, cause error) error {
	e := &Error{Kind: kind, Op: op, Where: callerLocation(1), errno: extractErrno(cause)}
	if cause != nil {
		e.cause = errors.Wrap(cause, op)
	}
	return e
}

// Err returns the sticky error, or nil if none has been set.
func (s *errState) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

func (s *errState) sticky() bool { return s.err != nil }

// Clear drops the sticky error, allowing further operations on the handle.
// The caller is responsible for knowing the handle's in-memory state is
// still trustworthy; this is rarely the right thing to do after an I/O
// error, only after a validation error on an otherwise healthy handle.
func (s *errState) Clear() { s.err = nil }
