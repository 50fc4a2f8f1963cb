// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package freelist implements the core allocator of this module: a
// first-fit, boundary-coalescing, alignment-preserving free-list allocator
// that grows its backing region one or more whole pages at a time from a
// wasmalloc.Grower.
//
// The free list is a singly-linked chain of in-place node headers kept in
// strictly ascending address order — the invariant that makes coalescing at
// insertion time an O(1) check against the immediate neighbors rather than
// a scan of the whole list.
package freelist

import (
	"unsafe"

	"github.com/cznic/mathutil"
	"github.com/cznic/wasmalloc"
)

// nodeSize is the minimum free-block size: two words, enough to hold a
// node's own header in place.
const nodeSize = 2 * wasmalloc.WordSize

// intBits mirrors cznic/memory's own constant: the width of the host int
// type, used to pick a large-enough array-of-bytes cast for the raw copy in
// Reallocate.
const intBits = 1 << (^uint(0)>>32&1 + ^uint(0)>>16&1 + ^uint(0)>>8&1 + 3)

// node is the in-place free-list header stored at the start of every free
// block. It is never present inside a live allocation.
type node struct {
	size uintptr
	next *node
}

func nodeAt(addr uintptr) *node { return (*node)(unsafe.Pointer(addr)) }
func addrOf(n *node) uintptr    { return uintptr(unsafe.Pointer(n)) }

// Allocator holds the address-ordered free list's head. Its zero value
// (nil head, no Grower) is not usable; construct one with New.
type Allocator struct {
	wasmalloc.SerializableTag
	g    wasmalloc.Grower
	head *node
}

// New returns a free-list allocator drawing new regions from g.
func New(g wasmalloc.Grower) *Allocator {
	return &Allocator{g: g}
}

// Allocate finds the first free block, in address order, that a suitably
// aligned S-byte allocation fits inside; splits off any prefix/suffix
// fragments of at least nodeSize back into the free list; and, if nothing
// fits, grows enough pages to guarantee the retry succeeds.
func (a *Allocator) Allocate(size, align uintptr) unsafe.Pointer {
	S := wasmalloc.AlignUp(uintptr(mathutil.Max(int(size), nodeSize)), nodeSize)
	A := uintptr(mathutil.Max(int(align), nodeSize))

	for {
		if p := a.findFit(S, A); p != 0 {
			ptr := unsafe.Pointer(p)
			wasmalloc.TraceAllocate("freelist", size, align, ptr)
			return ptr
		}

		// A fresh region starts at least nodeSize-aligned, so at most
		// A-nodeSize bytes of padding precede an A-aligned start in it.
		pages := uint32(wasmalloc.AlignUp(S+A-nodeSize, wasmalloc.PageSize) / wasmalloc.PageSize)
		prev := a.g.Grow(pages)
		if prev == wasmalloc.FailedGrow {
			wasmalloc.TraceAllocate("freelist", size, align, nil)
			return nil
		}

		regionStart := a.g.Base() + uintptr(prev)*wasmalloc.PageSize
		regionSize := uintptr(pages) * wasmalloc.PageSize
		a.insertAndCoalesce(regionStart, regionSize)
	}
}

// findFit walks the list in address order and, on the first block a
// suitably-aligned S-byte allocation fits inside, detaches it and splits
// off any leftover fragments, returning the allocation's address. Returns 0
// if nothing in the current list fits.
func (a *Allocator) findFit(S, A uintptr) uintptr {
	var prev *node
	n := a.head
	for n != nil {
		blockAddr := addrOf(n)
		start := wasmalloc.AlignUp(blockAddr, A)
		if start+S <= blockAddr+n.size {
			a.split(prev, n, blockAddr, start, S)
			return start
		}
		prev = n
		n = n.next
	}
	return 0
}

// split detaches n from the list and reinserts whatever prefix and suffix
// fragments remain once [start, start+S) is carved out of it.
func (a *Allocator) split(prev, n *node, blockAddr, start, S uintptr) {
	blockEnd := blockAddr + n.size
	next := n.next

	if prev == nil {
		a.head = next
	} else {
		prev.next = next
	}

	if prefix := start - blockAddr; prefix >= nodeSize {
		a.insertAndCoalesce(blockAddr, prefix)
	}
	if suffixStart := start + S; blockEnd-suffixStart >= nodeSize {
		a.insertAndCoalesce(suffixStart, blockEnd-suffixStart)
	}
}

// insertAndCoalesce inserts a free block of the given address and size into
// the list in address order, then merges it with its immediate predecessor
// and/or successor if physically adjacent. Used for split fragments,
// newly-grown regions, and deallocated blocks alike — the same routine
// handles all three, since a correct address-ordered insert-and-coalesce is
// a no-op on neighbors that aren't actually touching.
func (a *Allocator) insertAndCoalesce(addr, size uintptr) {
	var prev *node
	cur := a.head
	for cur != nil && addrOf(cur) < addr {
		prev = cur
		cur = cur.next
	}

	n := nodeAt(addr)
	n.size = size
	n.next = cur
	if prev == nil {
		a.head = n
	} else {
		prev.next = n
	}

	if cur != nil && addr+size == addrOf(cur) {
		n.size += cur.size
		n.next = cur.next
	}

	if prev != nil && addrOf(prev)+prev.size == addr {
		prev.size += n.size
		prev.next = n.next
	}
}

// Deallocate returns [ptr, ptr+S) to the free list, where S is the same
// rounded size Allocate would have used for (size, align), then coalesces
// with any adjacent free neighbors.
func (a *Allocator) Deallocate(ptr unsafe.Pointer, size, align uintptr) {
	if ptr == nil {
		return
	}

	S := wasmalloc.AlignUp(uintptr(mathutil.Max(int(size), nodeSize)), nodeSize)
	a.insertAndCoalesce(uintptr(ptr), S)
	wasmalloc.TraceDeallocate("freelist", ptr, size, align)
}

// Reallocate is the naive allocate/copy/free default: no in-place grow is
// attempted.
func (a *Allocator) Reallocate(ptr unsafe.Pointer, oldSize, newSize, align uintptr) unsafe.Pointer {
	if ptr == nil {
		return a.Allocate(newSize, align)
	}
	if newSize == 0 {
		a.Deallocate(ptr, oldSize, align)
		return nil
	}

	np := a.Allocate(newSize, align)
	if np == nil {
		return nil
	}

	n := oldSize
	if newSize < n {
		n = newSize
	}
	if n > 0 {
		switch {
		case intBits > 32:
			copy((*[1 << 49]byte)(np)[:n], (*[1 << 49]byte)(ptr)[:n])
		default:
			copy((*[1 << 31]byte)(np)[:n], (*[1 << 31]byte)(ptr)[:n])
		}
	}

	a.Deallocate(ptr, oldSize, align)
	return np
}

var (
	_ wasmalloc.Serializable = (*Allocator)(nil)
	_ wasmalloc.Reallocator  = (*Allocator)(nil)
)
