// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package singlethread exposes a wasmalloc.Serializable allocator as
// wasmalloc.Shareable by caller assertion rather than by any runtime check.
// Use it only when the process is known to be single-threaded, or when
// external discipline already serializes every call into the allocator —
// a wasm32 instance with no threads proposal enabled is the common case.
package singlethread

import (
	"unsafe"

	"github.com/cznic/wasmalloc"
)

// Assume forwards every operation directly to the wrapped allocator. It
// adds no locking and no bookkeeping of its own.
type Assume struct {
	wasmalloc.ShareableTag
	inner wasmalloc.Serializable
}

// NewUnchecked wraps inner, asserting — without any runtime check — that
// the caller guarantees single-threaded access or external serialization.
// The function name is the unsafety acknowledgement: calling it on an
// allocator that can actually be reached concurrently is undefined
// behavior.
func NewUnchecked(inner wasmalloc.Serializable) *Assume {
	return &Assume{inner: inner}
}

// Allocate forwards to the wrapped allocator.
func (w *Assume) Allocate(size, align uintptr) unsafe.Pointer {
	return w.inner.Allocate(size, align)
}

// Deallocate forwards to the wrapped allocator.
func (w *Assume) Deallocate(ptr unsafe.Pointer, size, align uintptr) {
	w.inner.Deallocate(ptr, size, align)
}

var _ wasmalloc.Shareable = (*Assume)(nil)
