package hp

import "github.com/skipor/comere"

// queueBinding adapts a *Queue[T] to comere.Queue[T] for a single,
// already-registered Participant -- the Go equivalent of the source's
// blanket `impl<T> Queue<T> for hp::queue::Queue<T>`.
type queueBinding[T any] struct {
	p *Participant
	q *Queue[T]
}

// BindQueue adapts q to comere.Queue[T] using p's hazard slots.
func BindQueue[T any](p *Participant, q *Queue[T]) comere.Queue[T] {
	return queueBinding[T]{p: p, q: q}
}

func (b queueBinding[T]) Push(v T) { b.q.Push(b.p, v) }

func (b queueBinding[T]) Pop() (T, bool) { return b.q.Pop(b.p) }

func (b queueBinding[T]) PopIf(pred func(T) bool) (T, bool) { return b.q.PopIf(b.p, pred) }

func (b queueBinding[T]) Len() int { return b.q.Len(b.p) }

func (b queueBinding[T]) IsEmpty() bool { return b.q.IsEmpty(b.p) }

type listBinding[T any] struct {
	p *Participant
	l *List[T]
}

// BindList adapts l to comere.List[T] using p's hazard slots.
func BindList[T any](p *Participant, l *List[T]) comere.List[T] {
	return listBinding[T]{p: p, l: l}
}

func (b listBinding[T]) Insert(v T) bool      { return b.l.Insert(b.p, v) }
func (b listBinding[T]) Contains(v T) bool    { return b.l.Contains(b.p, v) }
func (b listBinding[T]) Remove(v T) (T, bool) { return b.l.Remove(b.p, v) }

func (b listBinding[T]) RemoveFront() (T, bool) { return b.l.RemoveFront(b.p) }

func (b listBinding[T]) Iter() []T { return b.l.Iter(b.p) }

// bareHandle is a plain goroutine join, independent of Participant
// registration.
type bareHandle struct{ done chan struct{} }

func (h bareHandle) Join() { <-h.done }

// Spawner is a comere.Spawner that only launches and joins a
// goroutine; f is responsible for calling Register(mode) and
// Unregister itself (typically immediately before binding a container
// with BindQueue/BindList), matching the division of labor cmd/bench
// uses for every variant: the spawner starts the worker, the worker
// owns its own scope.
type Spawner struct{}

func (Spawner) Spawn(f func()) comere.Handle {
	h := bareHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		f()
	}()
	return h
}
