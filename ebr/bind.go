package ebr

import "github.com/skipor/comere"

// queueBinding adapts a *Queue[T] to comere.Queue[T] by pinning p for
// the duration of each call -- the Go equivalent of the source's
// blanket `impl<T> Queue<T> for ebr::queue::Queue<T>`, which does not
// need a scope threaded through the trait signature because Rust's
// thread-local Participant makes pinning implicit.
type queueBinding[T any] struct {
	p *Participant
	q *Queue[T]
}

// BindQueue adapts q to comere.Queue[T], pinning p once per call.
func BindQueue[T any](p *Participant, q *Queue[T]) comere.Queue[T] {
	return queueBinding[T]{p: p, q: q}
}

func (b queueBinding[T]) Push(v T) {
	b.p.Pin(func(g *Guard) { b.q.Push(g, v) })
}

func (b queueBinding[T]) Pop() (v T, ok bool) {
	b.p.Pin(func(g *Guard) { v, ok = b.q.Pop(g) })
	return v, ok
}

func (b queueBinding[T]) PopIf(pred func(T) bool) (v T, ok bool) {
	b.p.Pin(func(g *Guard) { v, ok = b.q.PopIf(g, pred) })
	return v, ok
}

func (b queueBinding[T]) Len() (n int) {
	b.p.Pin(func(g *Guard) { n = b.q.Len(g) })
	return n
}

func (b queueBinding[T]) IsEmpty() (empty bool) {
	b.p.Pin(func(g *Guard) { empty = b.q.IsEmpty(g) })
	return empty
}

type listBinding[T any] struct {
	p *Participant
	l *List[T]
}

// BindList adapts l to comere.List[T], pinning p once per call.
func BindList[T any](p *Participant, l *List[T]) comere.List[T] {
	return listBinding[T]{p: p, l: l}
}

func (b listBinding[T]) Insert(v T) (added bool) {
	b.p.Pin(func(g *Guard) { added = b.l.Insert(g, v) })
	return added
}

func (b listBinding[T]) Contains(v T) (found bool) {
	b.p.Pin(func(g *Guard) { found = b.l.Contains(g, v) })
	return found
}

func (b listBinding[T]) Remove(v T) (removed T, ok bool) {
	b.p.Pin(func(g *Guard) { removed, ok = b.l.Remove(g, v) })
	return removed, ok
}

func (b listBinding[T]) RemoveFront() (removed T, ok bool) {
	b.p.Pin(func(g *Guard) { removed, ok = b.l.RemoveFront(g) })
	return removed, ok
}

func (b listBinding[T]) Iter() (out []T) {
	b.p.Pin(func(g *Guard) { out = b.l.Iter(g) })
	return out
}

// spawnerHandle adapts *Handle to comere.Handle.
type spawnerHandle struct{ h *Handle }

func (s spawnerHandle) Join() { s.h.Join() }

// Spawner is a comere.Spawner backed by Spawn. It starts a bare
// goroutine only -- f itself is responsible for calling Register,
// BindQueue/BindList, and Unregister, the same division of labor
// hp.Spawner uses, since comere.Spawner's Spawn(f func()) has no slot
// for handing f a *Participant.
type Spawner struct{}

func (Spawner) Spawn(f func()) comere.Handle {
	return spawnerHandle{h: Spawn(f)}
}
