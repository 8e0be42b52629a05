package hp

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestQueueFIFOSingleThread(t *testing.T) {
	q := NewQueue[int]()
	p := Register(ModeWait)
	defer p.Unregister()

	_, ok := q.Pop(p)
	require.False(t, ok)

	for i := 0; i < 10; i++ {
		q.Push(p, i)
	}
	for i := 0; i < 10; i++ {
		v, ok := q.Pop(p)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok = q.Pop(p)
	require.False(t, ok)
}

func testQueueUniqueDelivery(t *testing.T, mode Mode) {
	defer goleak.VerifyNone(t)

	const perProducer = 1000
	const producers = 4
	const consumers = 4

	q := NewQueue[int]()

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		base := i * perProducer
		h := Spawn(mode, func(p *Participant) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Push(p, base+j)
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
		h := Spawn(mode, func(p *Participant) {
			defer cwg.Done()
			var local []int
			for {
				v, ok := q.Pop(p)
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

func TestQueueUniqueDeliveryWaitMode(t *testing.T) {
	testQueueUniqueDelivery(t, ModeWait)
}

func TestQueueUniqueDeliveryQueueMode(t *testing.T) {
	testQueueUniqueDelivery(t, ModeQueue)
}

type countingValue struct {
	destroyed *int
}

func (c countingValue) Destroy() { *c.destroyed++ }

func TestQueueCloseDestroysRemaining(t *testing.T) {
	q := NewQueue[countingValue]()
	p := Register(ModeWait)
	defer p.Unregister()

	destroyed := 0
	for i := 0; i < 5; i++ {
		q.Push(p, countingValue{destroyed: &destroyed})
	}
	v, ok := q.Pop(p)
	require.True(t, ok)
	v.Destroy()
	require.Equal(t, 1, destroyed)

	q.Close(p)
	require.Equal(t, 5, destroyed)
}

func TestQueuePopIfLenIsEmpty(t *testing.T) {
	q := NewQueue[int]()
	p := Register(ModeWait)
	defer p.Unregister()

	require.True(t, q.IsEmpty(p))
	require.Equal(t, 0, q.Len(p))

	_, ok := q.PopIf(p, func(int) bool { return true })
	require.False(t, ok)

	q.Push(p, 1)
	q.Push(p, 2)
	require.False(t, q.IsEmpty(p))
	require.Equal(t, 2, q.Len(p))

	_, ok = q.PopIf(p, func(v int) bool { return v == 2 })
	require.False(t, ok, "front is 1, not 2")
	require.Equal(t, 2, q.Len(p))

	v, ok := q.PopIf(p, func(v int) bool { return v == 1 })
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, q.Len(p))
}
