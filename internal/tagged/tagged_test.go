package tagged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	v    int
	next *payload // forces >=8-byte alignment so 3 tag bits are free
}

func TestOwnedRoundTrip(t *testing.T) {
	o := New(payload{v: 42})
	require.False(t, o.IsNull())
	require.Equal(t, 42, o.Deref().v)
}

func TestTagBits(t *testing.T) {
	o := New(payload{v: 7})
	tagged := o.WithTag(1)
	require.Equal(t, uintptr(1), tagged.Tag())
	require.Equal(t, o.AsRaw(), tagged.AsRaw())
	require.Equal(t, 7, tagged.Deref().v)
}

func TestAtomicLoadStoreCAS(t *testing.T) {
	a := NullAtomic[payload]()
	require.True(t, a.Load(SeqCst).IsNull())

	o := New(payload{v: 1})
	a.Store(o, SeqCst)
	b := a.Load(SeqCst)
	require.Equal(t, 1, b.Deref().v)

	next := New(payload{v: 2})
	ok, cur := a.CompareAndSet(b, next, SeqCst)
	require.True(t, ok)
	require.True(t, cur.Equal(b))
	require.Equal(t, 2, a.Load(SeqCst).Deref().v)

	stale := b
	ok, cur = a.CompareAndSet(stale, New(payload{v: 3}), SeqCst)
	require.False(t, ok)
	require.Equal(t, 2, cur.Deref().v)
}

func TestFetchBitOps(t *testing.T) {
	o := New(payload{v: 9})
	a := FromOwned(o)

	old := a.FetchOr(1, SeqCst)
	require.Equal(t, uintptr(0), old.Tag())
	require.Equal(t, uintptr(1), a.Load(SeqCst).Tag())

	old = a.FetchXor(1, SeqCst)
	require.Equal(t, uintptr(1), old.Tag())
	require.Equal(t, uintptr(0), a.Load(SeqCst).Tag())

	_ = a.FetchAnd(0, SeqCst)
	require.Equal(t, 9, a.Load(SeqCst).Deref().v)
}
