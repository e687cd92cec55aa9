// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sif

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
)

// reservedMetaPrefix marks keys the format itself manages.
const reservedMetaPrefix = "_sif_"

// projectionKey is the reserved key get/set_projection maps to.
const projectionKey = "_sif_proj"

// agreementKey is the reserved key the "simple" façade writes to self-tag
// files it created.
const agreementKey = "_sif_agree"

// metaEntry is one meta-data record: an arbitrary byte-string value keyed
// by a non-empty byte string.
type metaEntry struct {
	value []byte
}

// metaStore is the unordered key->value dictionary backing a file's
// meta-data. A plain Go map already amortizes hashing and collision
// handling, and the on-disk records are a flat, unordered sequence, so the
// in-memory bucket strategy never touches the wire format.
type metaStore struct {
	entries map[string]*metaEntry
}

func newMetaStore() *metaStore {
	return &metaStore{entries: make(map[string]*metaEntry)}
}

// GetMetaData returns the value stored under key.
func (f *File) GetMetaData(key []byte) ([]byte, error) {
	if f.errs.sticky() {
		return nil, f.errs.Err()
	}
	e, ok := f.meta.entries[string(key)]
	if !ok {
		return nil, f.errs.set(KindMetaDataKey, "get_meta_data", errors.Errorf("key %q not found", key))
	}
	return append([]byte(nil), e.value...), nil
}

// GetMetaDataString is like GetMetaData but additionally requires the value
// to contain a NUL byte, matching get_string's contract.
func (f *File) GetMetaDataString(key []byte) (string, error) {
	v, err := f.GetMetaData(key)
	if err != nil {
		return "", err
	}
	idx := bytes.IndexByte(v, 0)
	if idx < 0 {
		return "", f.errs.set(KindMetaDataValue, "get_meta_data_string", errors.Errorf("value for key %q has no NUL terminator", key))
	}
	return string(v[:idx]), nil
}

// SetMetaData inserts or in-place updates key's value.
func (f *File) SetMetaData(key, value []byte) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "set_meta_data", errors.New("file is read-only"))
	}
	if len(key) == 0 {
		return f.errs.set(KindMetaDataKey, "set_meta_data", errors.New("empty key"))
	}
	f.meta.entries[string(key)] = &metaEntry{value: append([]byte(nil), value...)}
	return nil
}

// SetMetaDataString is the NUL-terminated string convenience wrapper for
// SetMetaData.
func (f *File) SetMetaDataString(key []byte, value string) error {
	return f.SetMetaData(key, append([]byte(value), 0))
}

// RemoveMetaDataItem unlinks key, if present.
func (f *File) RemoveMetaDataItem(key []byte) error {
	if f.errs.sticky() {
		return f.errs.Err()
	}
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "remove_meta_data_item", errors.New("file is read-only"))
	}
	delete(f.meta.entries, string(key))
	return nil
}

// GetMetaDataNumItems returns the number of meta-data entries.
func (f *File) GetMetaDataNumItems() int {
	return len(f.meta.entries)
}

// GetMetaDataKeys returns every meta-data key, in a stable (sorted) order.
// The format itself promises no key ordering on disk; this package sorts
// purely for deterministic test and caller behavior.
func (f *File) GetMetaDataKeys() [][]byte {
	keys := make([]string, 0, len(f.meta.entries))
	for k := range f.meta.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out
}

// GetProjection returns the projection WKT string, or "" if unset, clearing
// the not-found error rather than propagating it.
func (f *File) GetProjection() string {
	prior := f.errs.sticky()
	s, err := f.GetMetaDataString([]byte(projectionKey))
	if err != nil {
		if !prior {
			f.errs.Clear()
		}
		return ""
	}
	return s
}

// SetProjection sets the projection WKT string.
func (f *File) SetProjection(wkt string) error {
	return f.SetMetaDataString([]byte(projectionKey), wkt)
}

// GetAgreement returns the data-type convention tag (e.g. "simple"), or ""
// if unset.
func (f *File) GetAgreement() string {
	prior := f.errs.sticky()
	s, err := f.GetMetaDataString([]byte(agreementKey))
	if err != nil {
		if !prior {
			f.errs.Clear()
		}
		return ""
	}
	return s
}

// SetAgreement sets the data-type convention tag.
func (f *File) SetAgreement(tag string) error {
	return f.SetMetaDataString([]byte(agreementKey), tag)
}

// encodeMetaData serializes every entry as a flat, unordered sequence of
// i32 key_length | key | i32 value_length | value records.
func (f *File) encodeMetaData() []byte {
	var buf bytes.Buffer
	for _, key := range f.GetMetaDataKeys() {
		e := f.meta.entries[string(key)]
		buf.Write(encodeI32(int32(len(key))))
		buf.Write(key)
		buf.Write(encodeI32(int32(len(e.value))))
		buf.Write(e.value)
	}
	return buf.Bytes()
}

// writeMetaData persists the meta-data region immediately after the last
// used block, then truncates the file to one byte past the last meta-data
// byte.
func (f *File) writeMetaData() error {
	if f.readOnly {
		return f.errs.set(KindInvalidFileMode, "write_meta_data", errors.New("file is read-only"))
	}
	base := f.metaDataBase()
	buf := f.encodeMetaData()
	f.hdr.NKeys = int32(len(f.meta.entries))
	if len(buf) > 0 {
		if !f.fa.writeAt(buf, base) {
			return f.errs.Err()
		}
	}
	if !f.fa.truncate(base + int64(len(buf)) + 1) {
		return f.errs.Err()
	}
	return nil
}

// metaDataBase returns the byte offset immediately after the last used
// block (or after the tile-header table, if no block is in use).
func (f *File) metaDataBase() int64 {
	last := f.alloc.lastUsed()
	if last < 0 {
		return f.hdr.baseLocation()
	}
	return f.blockOffset(last) + int64(f.hdr.TileBytes)
}

// readMetaData consumes exactly header.n_keys records starting at
// metaDataBase. A short read aborts the open.
func (f *File) readMetaData() error {
	store := newMetaStore()
	off := f.metaDataBase()
	for i := int32(0); i < f.hdr.NKeys; i++ {
		lbuf := make([]byte, 4)
		if !f.fa.readAt(lbuf, off) {
			return f.errs.Err()
		}
		klen := decodeI32(lbuf)
		if klen <= 0 {
			return f.errs.set(KindMetaDataKey, "read_meta_data", errors.Errorf("corrupt meta-data key length %d", klen))
		}
		off += 4
		key := make([]byte, klen)
		if !f.fa.readAt(key, off) {
			return f.errs.set(KindRead, "read_meta_data", errors.New("short read of meta-data key"))
		}
		off += int64(klen)

		if !f.fa.readAt(lbuf, off) {
			return f.errs.Err()
		}
		vlen := decodeI32(lbuf)
		if vlen < 0 {
			return f.errs.set(KindMetaDataValue, "read_meta_data", errors.Errorf("corrupt meta-data value length %d", vlen))
		}
		off += 4
		value := make([]byte, vlen)
		if vlen > 0 && !f.fa.readAt(value, off) {
			return f.errs.set(KindRead, "read_meta_data", errors.New("short read of meta-data value"))
		}
		off += int64(vlen)

		store.entries[string(key)] = &metaEntry{value: value}
	}
	f.meta = store
	return nil
}
