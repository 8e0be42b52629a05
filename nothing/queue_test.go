package nothing

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFOSingleThread(t *testing.T) {
	q := NewQueue[int]()

	_, ok := q.Pop()
	require.False(t, ok)

	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	for i := 0; i < 10; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok = q.Pop()
	require.False(t, ok)
}

// TestQueueUniqueDeliveryConcurrent has no goleak check: unlike ebr and
// hp, nothing spawns no participant goroutines of its own, so there is
// nothing persistent to leak -- the queue itself needs no guard or
// token to push or pop.
func TestQueueUniqueDeliveryConcurrent(t *testing.T) {
	const perProducer = 2000
	const producers = 4
	const consumers = 4

	q := NewQueue[int]()

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		base := i * perProducer
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Push(base + j)
			}
		}()
	}
	wg.Wait()

	var mu sync.Mutex
	var got []int
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for i := 0; i < consumers; i++ {
		go func() {
			defer cwg.Done()
			var local []int
			for {
				v, ok := q.Pop()
				if !ok {
					break
				}
				local = append(local, v)
			}
			mu.Lock()
			got = append(got, local...)
			mu.Unlock()
		}()
	}
	cwg.Wait()

	require.Len(t, got, producers*perProducer)
	sort.Ints(got)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestQueuePopIfLenIsEmpty(t *testing.T) {
	q := NewQueue[int]()

	require.True(t, q.IsEmpty())
	require.Equal(t, 0, q.Len())

	_, ok := q.PopIf(func(int) bool { return true })
	require.False(t, ok)

	q.Push(1)
	q.Push(2)
	require.False(t, q.IsEmpty())
	require.Equal(t, 2, q.Len())

	_, ok = q.PopIf(func(v int) bool { return v == 2 })
	require.False(t, ok, "front is 1, not 2")
	require.Equal(t, 2, q.Len())

	v, ok := q.PopIf(func(v int) bool { return v == 1 })
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, q.Len())
}
