package bumpalloc

import (
	"testing"

	"github.com/cznic/wasmalloc"
)

func newGrower(t *testing.T, capacityPages uint32) *wasmalloc.SimGrower {
	t.Helper()
	g, err := wasmalloc.NewSimGrower(capacityPages)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// Each allocation lands immediately after the previous one, aligned up as
// needed.
func TestMonotonicBumpSequence(t *testing.T) {
	g := newGrower(t, 4)
	a := New(g)
	base := g.Base()

	p1 := a.Allocate(3, 1)
	if uintptr(p1) != base {
		t.Fatalf("alloc(3,1) = %v, want base %v", p1, base)
	}

	p2 := a.Allocate(5, 1)
	if uintptr(p2) != base+3 {
		t.Fatalf("alloc(5,1) = %v, want %v", p2, base+3)
	}

	p3 := a.Allocate(1, 8)
	if uintptr(p3) != base+8 {
		t.Fatalf("alloc(1,8) = %v, want %v", p3, base+8)
	}

	p4 := a.Allocate(1, 1)
	if uintptr(p4) != base+9 {
		t.Fatalf("alloc(1,1) = %v, want %v", p4, base+9)
	}
}

func TestAllocationsNeverRegress(t *testing.T) {
	g := newGrower(t, 8)
	a := New(g)

	var last uintptr
	var lastSize uintptr
	for i := 0; i < 200; i++ {
		size := uintptr(1 + i%37)
		p := a.Allocate(size, 1)
		if p == nil {
			t.Fatalf("allocation %d failed", i)
		}
		if i > 0 && uintptr(p) < last+lastSize {
			t.Fatalf("allocation %d at %v regressed before previous end %v", i, p, last+lastSize)
		}
		last, lastSize = uintptr(p), size
	}
}

func TestGrowsRegionOnDemand(t *testing.T) {
	g := newGrower(t, 4)
	a := New(g)

	p := a.Allocate(wasmalloc.PageSize*2, 1)
	if p == nil {
		t.Fatal("large allocation failed")
	}
	if g.Pages() < 2 {
		t.Fatalf("Pages() = %d, want at least 2 after a 2-page allocation", g.Pages())
	}
}

func TestFailsOnExhaustion(t *testing.T) {
	g := newGrower(t, 1)
	a := New(g)

	if p := a.Allocate(wasmalloc.PageSize, 1); p == nil {
		t.Fatal("first allocation unexpectedly failed")
	}
	if p := a.Allocate(1, 1); p != nil {
		t.Fatalf("allocation past capacity = %v, want nil", p)
	}
}
