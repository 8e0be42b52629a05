package ebr

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestQueueFIFOSingleThread(t *testing.T) {
	q := NewQueue[int]()
	p := Register()
	defer p.Unregister()

	p.Pin(func(g *Guard) {
		_, ok := q.Pop(g)
		require.False(t, ok)

		for i := 0; i < 10; i++ {
			q.Push(g, i)
		}
		for i := 0; i < 10; i++ {
			v, ok := q.Pop(g)
			require.True(t, ok)
			require.Equal(t, i, v)
		}
		_, ok = q.Pop(g)
		require.False(t, ok)
	})
}

// TestQueueUniqueDeliveryConcurrent covers spec scenario S1/S2:
// N producers each push a disjoint range of values, M consumers drain
// concurrently, and every value is observed by exactly one consumer.
func TestQueueUniqueDeliveryConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	const perProducer = 2000
	const producers = 4
	const consumers = 4

	q := NewQueue[int]()

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		base := i * perProducer
		h := Spawn(func() {
			defer wg.Done()
			p := Register()
			defer p.Unregister()
			for j := 0; j < perProducer; j++ {
				p.Pin(func(g *Guard) {
					q.Push(g, base+j)
				})
			}
		})
		defer h.Join()
	}
	wg.Wait()

	var mu sync.Mutex
	var got []int
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for i := 0; i < consumers; i++ {
		h := Spawn(func() {
			defer cwg.Done()
			p := Register()
			defer p.Unregister()
			var local []int
			for {
				var v int
				var ok bool
				p.Pin(func(g *Guard) {
					v, ok = q.Pop(g)
				})
				if !ok {
					break
				}
				local = append(local, v)
			}
			mu.Lock()
			got = append(got, local...)
			mu.Unlock()
		})
		defer h.Join()
	}
	cwg.Wait()

	require.Len(t, got, producers*perProducer)
	sort.Ints(got)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

type countingValue struct {
	destroyed *int
}

func (c countingValue) Destroy() { *c.destroyed++ }

func TestQueueCloseDestroysRemaining(t *testing.T) {
	q := NewQueue[countingValue]()
	p := Register()
	defer p.Unregister()

	destroyed := 0
	p.Pin(func(g *Guard) {
		for i := 0; i < 5; i++ {
			q.Push(g, countingValue{destroyed: &destroyed})
		}
		v, ok := q.Pop(g)
		require.True(t, ok)
		v.Destroy()
	})
	require.Equal(t, 1, destroyed)

	p.Pin(func(g *Guard) {
		q.Close(g)
	})
	require.Equal(t, 5, destroyed)
}

func TestQueuePopIfLenIsEmpty(t *testing.T) {
	q := NewQueue[int]()
	p := Register()
	defer p.Unregister()

	p.Pin(func(g *Guard) {
		require.True(t, q.IsEmpty(g))
		require.Equal(t, 0, q.Len(g))

		_, ok := q.PopIf(g, func(int) bool { return true })
		require.False(t, ok)

		q.Push(g, 1)
		q.Push(g, 2)
		require.False(t, q.IsEmpty(g))
		require.Equal(t, 2, q.Len(g))

		_, ok = q.PopIf(g, func(v int) bool { return v == 2 })
		require.False(t, ok, "front is 1, not 2")
		require.Equal(t, 2, q.Len(g))

		v, ok := q.PopIf(g, func(v int) bool { return v == 1 })
		require.True(t, ok)
		require.Equal(t, 1, v)
		require.Equal(t, 1, q.Len(g))
	})
}
