// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !(wasm32 || (js && wasm) || wasip1)

package wasmalloc

import "unsafe"

// SimGrower is an in-process simulator of the wasm grow primitive, backed
// by a real anonymously-mmap'd region sized to a fixed page capacity at
// construction. It exists so the allocators above it can be exercised by
// ordinary `go test` on any host, without a wasm runtime.
type SimGrower struct {
	raw      []byte // the full mmap'd mapping, for Close
	region   []byte // PageSize-aligned view into raw
	capacity uint32
	pages    uint32
}

// NewSimGrower allocates a region big enough for capacityPages pages and
// returns a Grower that can grow into it page by page, failing once
// exhausted. mmap makes no page-size-multiple alignment guarantee on the
// address it hands back, so an extra page is requested and the region's
// usable view is shifted up to the next PageSize boundary — pagealloc's
// "any alignment up to PageSize is satisfied by a fresh page" guarantee
// depends on Base() itself being page-aligned.
func NewSimGrower(capacityPages uint32) (*SimGrower, error) {
	raw, err := mmapRegion(int(capacityPages)*PageSize + PageSize)
	if err != nil {
		return nil, err
	}

	base := uintptr(unsafe.Pointer(&raw[0]))
	offset := AlignUp(base, PageSize) - base
	region := raw[offset : offset+uintptr(capacityPages)*PageSize]

	return &SimGrower{raw: raw, region: region, capacity: capacityPages}, nil
}

// Grow implements Grower.
func (g *SimGrower) Grow(deltaPages uint32) uint32 {
	prev := g.pages
	if g.pages+deltaPages > g.capacity {
		TraceGrow("simgrower", deltaPages, FailedGrow)
		return FailedGrow
	}

	g.pages += deltaPages
	TraceGrow("simgrower", deltaPages, prev)
	return prev
}

// Base implements Grower: the address of the backing mmap region.
func (g *SimGrower) Base() uintptr {
	return uintptr(unsafe.Pointer(&g.region[0]))
}

// Pages reports the number of pages grown so far.
func (g *SimGrower) Pages() uint32 { return g.pages }

// Close releases the backing region. Not necessary to call when a test
// process is about to exit, but keeps long test runs from exhausting
// address space.
func (g *SimGrower) Close() error {
	return munmapRegion(g.raw)
}
