// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build wasm32 || (js && wasm) || wasip1

package wasmalloc

// HostGrower issues the wasm memory.grow instruction directly. Its zero
// value is ready to use — it owns no state of its own, since the
// authoritative page count lives in the wasm instance's linear memory, not
// in any Go-side bookkeeping.
type HostGrower struct{}

// Grow implements Grower.
func (HostGrower) Grow(deltaPages uint32) uint32 {
	prev := wasmMemoryGrow(deltaPages)
	TraceGrow("hostgrower", deltaPages, prev)
	return prev
}

// Base implements Grower. Wasm linear memory starts at address 0 by
// definition; Grow's returned previous-page-count already accounts for
// whatever occupies the lower pages (static data, an earlier grow), so the
// allocator never needs an explicit non-zero origin.
func (HostGrower) Base() uintptr { return 0 }

// wasmMemoryGrow is implemented in grower_wasm.s: it emits the wasm
// memory.grow instruction against memory index 0 and returns its result,
// the u32 bit pattern of memory.grow's i32 result (FailedGrow on failure).
func wasmMemoryGrow(deltaPages uint32) uint32
