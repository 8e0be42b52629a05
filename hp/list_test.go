package hp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func intLess(a, b int) bool { return a < b }

func TestListInsertContainsRemove(t *testing.T) {
	l := NewList[int](intLess)
	p := Register(ModeWait)
	defer p.Unregister()

	require.True(t, l.Insert(p, 5))
	require.True(t, l.Insert(p, 1))
	require.True(t, l.Insert(p, 3))
	require.False(t, l.Insert(p, 3))

	require.True(t, l.Contains(p, 1))
	require.True(t, l.Contains(p, 3))
	require.True(t, l.Contains(p, 5))
	require.False(t, l.Contains(p, 2))

	v, ok := l.Remove(p, 3)
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.False(t, l.Contains(p, 3))

	_, ok = l.Remove(p, 3)
	require.False(t, ok)
}

func testListConcurrentInsertRemove(t *testing.T, mode Mode) {
	defer goleak.VerifyNone(t)

	const n = 1000
	const workers = 8
	l := NewList[int](intLess)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		h := Spawn(mode, func(p *Participant) {
			defer wg.Done()
			for i := w; i < n; i += workers {
				require.True(t, l.Insert(p, i))
			}
		})
		defer h.Join()
	}
	wg.Wait()

	p := Register(mode)
	defer p.Unregister()
	for i := 0; i < n; i++ {
		require.True(t, l.Contains(p, i), "missing %d", i)
	}

	var rwg sync.WaitGroup
	rwg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		h := Spawn(mode, func(p *Participant) {
			defer rwg.Done()
			for i := w; i < n; i += workers {
				if i%2 == 0 {
					v, ok := l.Remove(p, i)
					require.True(t, ok)
					require.Equal(t, i, v)
				}
			}
		})
		defer h.Join()
	}
	rwg.Wait()

	for i := 0; i < n; i++ {
		if i%2 == 0 {
			require.False(t, l.Contains(p, i), "%d should have been removed", i)
		} else {
			require.True(t, l.Contains(p, i), "%d should still be present", i)
		}
	}
}

func TestListConcurrentInsertRemoveWaitMode(t *testing.T) {
	testListConcurrentInsertRemove(t, ModeWait)
}

func TestListConcurrentInsertRemoveQueueMode(t *testing.T) {
	testListConcurrentInsertRemove(t, ModeQueue)
}

type countingKV struct {
	key       int
	destroyed *int
}

func (c countingKV) Destroy() { *c.destroyed++ }

func TestListCloseDestroysRemaining(t *testing.T) {
	less := func(a, b countingKV) bool { return a.key < b.key }
	l := NewList[countingKV](less)
	p := Register(ModeWait)
	defer p.Unregister()

	destroyed := 0
	for i := 0; i < 5; i++ {
		l.Insert(p, countingKV{key: i, destroyed: &destroyed})
	}
	_, ok := l.Remove(p, countingKV{key: 2})
	require.True(t, ok)

	l.Close(p)
	require.Equal(t, 4, destroyed)
}

func TestListRemoveFrontIter(t *testing.T) {
	l := NewList[int](intLess)
	p := Register(ModeWait)
	defer p.Unregister()

	require.Empty(t, l.Iter(p))
	_, ok := l.RemoveFront(p)
	require.False(t, ok)

	l.Insert(p, 5)
	l.Insert(p, 1)
	l.Insert(p, 3)
	require.Equal(t, []int{1, 3, 5}, l.Iter(p))

	v, ok := l.RemoveFront(p)
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, []int{3, 5}, l.Iter(p))
}
