package singlethread

import (
	"testing"

	"github.com/cznic/wasmalloc"
	"github.com/cznic/wasmalloc/bumpalloc"
)

func TestForwardsAllocateAndDeallocate(t *testing.T) {
	g, err := wasmalloc.NewSimGrower(4)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	inner := bumpalloc.New(g)
	w := NewUnchecked(inner)

	p := w.Allocate(16, 8)
	if p == nil {
		t.Fatal("Allocate failed")
	}
	w.Deallocate(p, 16, 8) // no-op on a bump allocator, must not panic

	var _ wasmalloc.Shareable = w
}
