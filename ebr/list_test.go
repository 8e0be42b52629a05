package ebr

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func intLess(a, b int) bool { return a < b }

func TestListInsertContainsRemove(t *testing.T) {
	l := NewList[int](intLess)
	p := Register()
	defer p.Unregister()

	p.Pin(func(g *Guard) {
		require.True(t, l.Insert(g, 5))
		require.True(t, l.Insert(g, 1))
		require.True(t, l.Insert(g, 3))
		require.False(t, l.Insert(g, 3))

		require.True(t, l.Contains(g, 1))
		require.True(t, l.Contains(g, 3))
		require.True(t, l.Contains(g, 5))
		require.False(t, l.Contains(g, 2))

		v, ok := l.Remove(g, 3)
		require.True(t, ok)
		require.Equal(t, 3, v)
		require.False(t, l.Contains(g, 3))

		_, ok = l.Remove(g, 3)
		require.False(t, ok)
	})
}

// TestListConcurrentInsertRemove covers spec scenario S5: concurrent
// insert/remove of a disjoint key space must leave the list with
// exactly the keys nobody removed.
func TestListConcurrentInsertRemove(t *testing.T) {
	defer goleak.VerifyNone(t)

	const n = 2000
	const workers = 8
	l := NewList[int](intLess)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		h := Spawn(func() {
			defer wg.Done()
			p := Register()
			defer p.Unregister()
			r := rand.New(rand.NewSource(int64(w) + 1))
			for i := w; i < n; i += workers {
				p.Pin(func(g *Guard) {
					require.True(t, l.Insert(g, i))
				})
				_ = r.Int()
			}
		})
		defer h.Join()
	}
	wg.Wait()

	p := Register()
	defer p.Unregister()
	p.Pin(func(g *Guard) {
		for i := 0; i < n; i++ {
			require.True(t, l.Contains(g, i), "missing %d", i)
		}
	})

	var rwg sync.WaitGroup
	rwg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		h := Spawn(func() {
			defer rwg.Done()
			p := Register()
			defer p.Unregister()
			for i := w; i < n; i += workers {
				if i%2 == 0 {
					p.Pin(func(g *Guard) {
						v, ok := l.Remove(g, i)
						require.True(t, ok)
						require.Equal(t, i, v)
					})
				}
			}
		})
		defer h.Join()
	}
	rwg.Wait()

	p.Pin(func(g *Guard) {
		for i := 0; i < n; i++ {
			if i%2 == 0 {
				require.False(t, l.Contains(g, i), "%d should have been removed", i)
			} else {
				require.True(t, l.Contains(g, i), "%d should still be present", i)
			}
		}
	})
}

type countingKV struct {
	key       int
	destroyed *int
}

func (c countingKV) Destroy() { *c.destroyed++ }

func TestListCloseDestroysRemaining(t *testing.T) {
	less := func(a, b countingKV) bool { return a.key < b.key }
	l := NewList[countingKV](less)
	p := Register()
	defer p.Unregister()

	destroyed := 0
	p.Pin(func(g *Guard) {
		for i := 0; i < 5; i++ {
			l.Insert(g, countingKV{key: i, destroyed: &destroyed})
		}
		_, ok := l.Remove(g, countingKV{key: 2})
		require.True(t, ok)
	})

	p.Pin(func(g *Guard) {
		l.Close(g)
	})
	require.Equal(t, 4, destroyed)
}

func TestListRemoveFrontIter(t *testing.T) {
	l := NewList[int](intLess)
	p := Register()
	defer p.Unregister()

	p.Pin(func(g *Guard) {
		require.Empty(t, l.Iter(g))
		_, ok := l.RemoveFront(g)
		require.False(t, ok)

		l.Insert(g, 5)
		l.Insert(g, 1)
		l.Insert(g, 3)
		require.Equal(t, []int{1, 3, 5}, l.Iter(g))

		v, ok := l.RemoveFront(g)
		require.True(t, ok)
		require.Equal(t, 1, v)
		require.Equal(t, []int{3, 5}, l.Iter(g))
	})
}
