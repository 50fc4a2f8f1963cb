// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wasmalloc defines the shared contract a family of minimal global
// allocators for a wasm32 host implements: the Allocator and Reallocator
// interfaces the host runtime calls across the wasm ABI, the Grower
// interface an allocator calls when it needs more linear memory, and the
// capability markers (Shareable, Serializable) that let the type system
// refuse to install a non-serialized stateful allocator as the process-wide
// singleton.
//
// Concrete allocators live in subpackages: failalloc (reject everything),
// pagealloc (leak whole pages), bumpalloc (leak via a bump pointer),
// freelist (first-fit, coalescing — the one with real engineering in it).
// singlethread and spinlock wrap a Serializable allocator and expose it as
// Shareable, the former by an unchecked caller assertion, the latter with a
// real lock.
package wasmalloc

import "unsafe"

const (
	// WordSize is the machine word size on wasm32.
	WordSize = 4

	// PageSize is the wasm linear memory page size: 64 KiB.
	PageSize = 1 << 16

	// FailedGrow is the sentinel Grower.Grow returns when the host cannot
	// supply more linear memory. It is the u32 bit pattern wasm's
	// memory.grow instruction itself returns on failure (-1 as i32).
	FailedGrow = ^uint32(0)
)

// Allocator is the two-operation contract the host runtime drives directly.
// Both operations receive the same (size, align) pair; the host is
// responsible for remembering the layout across the pair of calls, since no
// header is stored alongside live allocations.
type Allocator interface {
	// Allocate returns a pointer to size bytes aligned to align, or nil on
	// failure. align is a power of two; size is a non-negative byte count.
	Allocate(size, align uintptr) unsafe.Pointer

	// Deallocate frees a pointer previously returned by Allocate with the
	// same (size, align). Deallocating an invalid pointer is undefined
	// behavior, per the caller's contract.
	Deallocate(ptr unsafe.Pointer, size, align uintptr)
}

// Reallocator is implemented by allocators offering a dedicated resize
// operation; others get the naive allocate/copy/free default at the call
// site.
type Reallocator interface {
	Allocator

	// Reallocate resizes the allocation at ptr (originally oldSize bytes,
	// aligned to align) to newSize bytes, returning the new pointer. The
	// contents are preserved up to min(oldSize, newSize).
	Reallocate(ptr unsafe.Pointer, oldSize, newSize, align uintptr) unsafe.Pointer
}

// Grower abstracts the primitive that extends linear memory by whole pages.
type Grower interface {
	// Grow extends linear memory by deltaPages pages and returns the page
	// count before the growth (so prevPages*PageSize is the base address of
	// the newly acquired region), or FailedGrow if the host refused.
	Grow(deltaPages uint32) (prevPages uint32)

	// Base returns the address linear memory logically starts at: 0 for a
	// real wasm32 instance, the backing region's address for a test double.
	Base() uintptr
}

// Shareable is implemented by allocators safe to install directly as the
// process-wide allocator: either they carry no mutable state (failalloc,
// pagealloc) or they are a wrapper that has already taken on the obligation
// to serialize access to a Serializable allocator (singlethread, spinlock).
// The unexported shareable method can only be supplied by embedding
// ShareableTag, so an install site that requires a Shareable rejects a bare
// Serializable at compile time, not at runtime.
type Shareable interface {
	Allocator
	shareable()
}

// Serializable is implemented by allocators that mutate shared state on
// every call and therefore require external serialization before they can
// be installed as the process-wide allocator. Wrap one in singlethread or
// spinlock to obtain a Shareable.
type Serializable interface {
	Allocator
	serializable()
}

// ShareableTag confers Shareable on whatever type embeds it. Unexported
// interface methods can only be satisfied by a method literally declared in
// this package, so embedding is the only way a type outside this package
// can claim the capability.
type ShareableTag struct{}

func (ShareableTag) shareable() {}

// SerializableTag confers Serializable on whatever type embeds it, the same
// way ShareableTag confers Shareable.
type SerializableTag struct{}

func (SerializableTag) serializable() {}

// AlignUp rounds n up to the nearest multiple of a, which must be a power
// of two. It generalizes cznic/memory's roundup helper to the address and
// size arithmetic every allocator in this module performs.
func AlignUp(n, a uintptr) uintptr {
	return (n + a - 1) &^ (a - 1)
}
