// Copyright 2024 The Wasmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spinlock exposes a wasmalloc.Serializable allocator as
// wasmalloc.Shareable by serializing every call through a test-and-set lock
// on a single word. The lock covers the entire operation, including any
// call the inner allocator makes into its Grower; the inner allocator is
// never touched outside the critical section.
package spinlock

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/cznic/wasmalloc"
)

// Locking wraps inner with a spinlock. The lock word is padded on both
// sides with a cache line to keep the lock itself from false-sharing a
// cache line with the wrapped allocator's own fields — a real cost given
// the lock is acquired on every single allocation and deallocation.
type Locking struct {
	wasmalloc.ShareableTag
	_     cpu.CacheLinePad
	lock  uint32
	_     cpu.CacheLinePad
	inner wasmalloc.Serializable
}

// New wraps inner behind a spinlock.
func New(inner wasmalloc.Serializable) *Locking {
	return &Locking{inner: inner}
}

func (w *Locking) acquire() {
	for !atomic.CompareAndSwapUint32(&w.lock, 0, 1) {
		runtime.Gosched()
	}
}

func (w *Locking) release() {
	atomic.StoreUint32(&w.lock, 0)
}

// Allocate acquires the lock, calls the wrapped allocator (which may in
// turn call its Grower), and releases the lock before returning.
func (w *Locking) Allocate(size, align uintptr) unsafe.Pointer {
	w.acquire()
	defer w.release()
	return w.inner.Allocate(size, align)
}

// Deallocate acquires the lock, calls the wrapped allocator, and releases
// the lock before returning.
func (w *Locking) Deallocate(ptr unsafe.Pointer, size, align uintptr) {
	w.acquire()
	defer w.release()
	w.inner.Deallocate(ptr, size, align)
}

var _ wasmalloc.Shareable = (*Locking)(nil)
