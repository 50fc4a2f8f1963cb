// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pagealloc implements the leaking page allocator: every request
// rounds up to whole pages grown from a wasmalloc.Grower and is never
// freed. Because every allocation starts at a page boundary, any power-of-
// two alignment up to wasmalloc.PageSize is satisfied by construction.
package pagealloc

import (
	"unsafe"

	"github.com/cznic/wasmalloc"
)

// Allocator grows by whole pages and never reclaims them. It holds only an
// immutable reference to its Grower, so it never mutates allocator-owned
// state between calls and is safe to share without external locking —
// whether the Grower it was built with can tolerate concurrent callers is
// the Grower's concern, not this allocator's.
type Allocator struct {
	wasmalloc.ShareableTag
	g wasmalloc.Grower
}

// New returns a page allocator drawing pages from g.
func New(g wasmalloc.Grower) *Allocator {
	return &Allocator{g: g}
}

// Allocate rounds max(size, align) up to whole pages and grows into them.
// Alignments greater than wasmalloc.PageSize are not supported and fail.
func (a *Allocator) Allocate(size, align uintptr) unsafe.Pointer {
	if align > wasmalloc.PageSize {
		wasmalloc.TraceAllocate("pagealloc", size, align, nil)
		return nil
	}

	need := size
	if align > need {
		need = align
	}

	pages := uint32(wasmalloc.AlignUp(need, wasmalloc.PageSize) / wasmalloc.PageSize)
	if pages == 0 {
		pages = 1
	}

	prev := a.g.Grow(pages)
	if prev == wasmalloc.FailedGrow {
		wasmalloc.TraceAllocate("pagealloc", size, align, nil)
		return nil
	}

	p := unsafe.Pointer(a.g.Base() + uintptr(prev)*wasmalloc.PageSize)
	wasmalloc.TraceAllocate("pagealloc", size, align, p)
	return p
}

// Deallocate is a no-op: pages are never returned to the grower.
func (a *Allocator) Deallocate(ptr unsafe.Pointer, size, align uintptr) {
	wasmalloc.TraceDeallocate("pagealloc", ptr, size, align)
}

var _ wasmalloc.Shareable = (*Allocator)(nil)
