// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// fileAdapter wraps positioned I/O over a 64-bit offset file, latching the
// handle's sticky error on the first failure so every later call becomes a
// no-op. It is the sole owner of the *os.File; nothing else in this package
// touches it directly.
type fileAdapter struct {
	f    *os.File
	errs *errState
}

func openFileAdapter(path string, flag int, perm os.FileMode, errs *errState) (*fileAdapter, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	return &fileAdapter{f: f, errs: errs}, nil
}

// readAt reads len(p) bytes at off. It reports whether the read succeeded;
// on failure the handle's sticky error is set to KindRead.
func (fa *fileAdapter) readAt(p []byte, off int64) bool {
	if fa.errs.sticky() {
		return false
	}
	n, err := fa.f.ReadAt(p, off)
	if err != nil && !(err == io.EOF && n == len(p)) {
		fa.errs.set(KindRead, "read", err)
		return false
	}
	return true
}

// writeAt writes p at off. It reports whether the write succeeded; on
// failure the handle's sticky error is set to KindWrite.
func (fa *fileAdapter) writeAt(p []byte, off int64) bool {
	if fa.errs.sticky() {
		return false
	}
	if _, err := fa.f.WriteAt(p, off); err != nil {
		fa.errs.set(KindWrite, "write", err)
		return false
	}
	return true
}

// seek repositions the adapter's cursor; reports success.
func (fa *fileAdapter) seek(offset int64, whence int) (int64, bool) {
	if fa.errs.sticky() {
		return 0, false
	}
	n, err := fa.f.Seek(offset, whence)
	if err != nil {
		fa.errs.set(KindSeek, "seek", err)
		return 0, false
	}
	return n, true
}

// truncate resizes the underlying file; reports success.
func (fa *fileAdapter) truncate(size int64) bool {
	if fa.errs.sticky() {
		return false
	}
	if err := fa.f.Truncate(size); err != nil {
		fa.errs.set(KindTruncate, "truncate", err)
		return false
	}
	return true
}

// flushSync flushes the underlying file to stable storage.
func (fa *fileAdapter) flushSync() bool {
	if fa.errs.sticky() {
		return false
	}
	if err := fa.f.Sync(); err != nil {
		fa.errs.set(KindWrite, "flush", err)
		return false
	}
	return true
}

// size returns the current file size in bytes.
func (fa *fileAdapter) size() (int64, bool) {
	if fa.errs.sticky() {
		return 0, false
	}
	info, err := fa.f.Stat()
	if err != nil {
		fa.errs.set(KindRead, "stat", err)
		return 0, false
	}
	return info.Size(), true
}

// close releases the underlying file descriptor. Unlike the other adapter
// methods, close always runs, even on a handle with a sticky error: a
// handle in a bad state must still release its descriptor exactly once.
func (fa *fileAdapter) close() error {
	if fa.f == nil {
		return nil
	}
	err := fa.f.Close()
	fa.f = nil
	return err
}
