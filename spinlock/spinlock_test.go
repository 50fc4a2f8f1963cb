package spinlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cznic/wasmalloc"
	"github.com/cznic/wasmalloc/freelist"
)

func TestConcurrentAllocFreePairsLeaveNoLeak(t *testing.T) {
	g, err := wasmalloc.NewSimGrower(64)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })

	inner := freelist.New(g)
	w := New(inner)

	const goroutines = 8
	const pairsPerGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(seed int) {
			defer wg.Done()
			sizes := []uintptr{8, 24, 64, 200, 1024}
			for j := 0; j < pairsPerGoroutine; j++ {
				size := sizes[(seed+j)%len(sizes)]
				p := w.Allocate(size, 8)
				if p == nil {
					continue
				}
				w.Deallocate(p, size, 8)
			}
		}(i)
	}
	wg.Wait()

	// Post-condition: every allocation was paired with a free and each
	// goroutine holds at most one allocation at a time, so the grower
	// never had to grow beyond the single page the very first allocation
	// required.
	require.Equal(t, uint32(1), g.Pages())
}

func TestAllocateReturnsNonNilUnderLock(t *testing.T) {
	g, err := wasmalloc.NewSimGrower(4)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })

	w := New(freelist.New(g))
	p := w.Allocate(16, 8)
	require.NotNil(t, p)
	w.Deallocate(p, 16, 8)

	var _ wasmalloc.Shareable = w
}
