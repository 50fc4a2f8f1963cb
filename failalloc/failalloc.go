// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package failalloc implements the degenerate baseline allocator: every
// request fails. It is portable to all targets, wasm32 included, since it
// never touches linear memory.
package failalloc

import (
	"unsafe"

	"github.com/cznic/wasmalloc"
)

// Allocator rejects every allocation request. Its zero value is ready to
// use.
type Allocator struct {
	wasmalloc.ShareableTag
}

// New returns a ready-to-use fail allocator.
func New() *Allocator { return &Allocator{} }

// Allocate always returns nil.
func (*Allocator) Allocate(size, align uintptr) unsafe.Pointer {
	wasmalloc.TraceAllocate("failalloc", size, align, nil)
	return nil
}

// Deallocate is a no-op. It must tolerate any pointer, since the host
// runtime only ever hands back pointers it received, and it never received
// any from this allocator.
func (*Allocator) Deallocate(ptr unsafe.Pointer, size, align uintptr) {
	wasmalloc.TraceDeallocate("failalloc", ptr, size, align)
}

var _ wasmalloc.Shareable = (*Allocator)(nil)
