// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bumpalloc implements the leaking bump-pointer allocator: a
// monotonically increasing high-water mark within a region grown on demand
// from a wasmalloc.Grower. Deallocate is a no-op; slack from alignment is
// never reclaimed.
package bumpalloc

import (
	"unsafe"

	"github.com/cznic/wasmalloc"
)

// Allocator maintains (next, end) and mutates both on every call. It is not
// safe for concurrent use — wrap it with singlethread or spinlock before
// installing it as the process-wide allocator.
type Allocator struct {
	wasmalloc.SerializableTag
	g    wasmalloc.Grower
	next uintptr
	end  uintptr // 0 means "never grown"; see Allocate
}

// New returns a bump allocator drawing its region from g. Its (next, end)
// pair is left at its zero value, interpreted as uninitialized until the
// first Allocate call establishes a real region.
func New(g wasmalloc.Grower) *Allocator {
	return &Allocator{g: g}
}

// Allocate aligns the high-water mark up to align, grows the region if the
// request doesn't fit before end, and bumps next past the new allocation.
func (a *Allocator) Allocate(size, align uintptr) unsafe.Pointer {
	if a.end == 0 {
		prev := a.g.Grow(1)
		if prev == wasmalloc.FailedGrow {
			wasmalloc.TraceAllocate("bumpalloc", size, align, nil)
			return nil
		}
		a.next = a.g.Base() + uintptr(prev)*wasmalloc.PageSize
		a.end = a.next + wasmalloc.PageSize
	}

	next := wasmalloc.AlignUp(a.next, align)
	if next+size > a.end {
		delta := next + size - a.end
		pages := uint32(wasmalloc.AlignUp(delta, wasmalloc.PageSize) / wasmalloc.PageSize)

		prev := a.g.Grow(pages)
		if prev == wasmalloc.FailedGrow {
			wasmalloc.TraceAllocate("bumpalloc", size, align, nil)
			return nil
		}
		a.end += uintptr(pages) * wasmalloc.PageSize
	}

	result := next
	a.next = next + size

	p := unsafe.Pointer(result)
	wasmalloc.TraceAllocate("bumpalloc", size, align, p)
	return p
}

// Deallocate is a no-op: the bump pointer never moves backward.
func (a *Allocator) Deallocate(ptr unsafe.Pointer, size, align uintptr) {
	wasmalloc.TraceDeallocate("bumpalloc", ptr, size, align)
}

var _ wasmalloc.Serializable = (*Allocator)(nil)
