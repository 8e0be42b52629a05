// Package mpsc is an unbounded, lock-free, Michael-Scott-style FIFO
// used internally by the ebr and hp runtimes to hold deferred garbage
// (sealed epoch bags, retired hazard-pointer nodes) until it is safe
// to run their destructors.
//
// It is deliberately not exported as one of this repository's Queue[T]
// containers: its nodes need no reclamation scheme of their own. In a
// manually-memory-managed language unlinking a node and continuing to
// read it from a concurrent thread is a use-after-free; in Go the
// garbage collector keeps any node reachable through a goroutine's
// local variables alive regardless of what the shared head/tail
// atomics point at, so a plain CAS-loop queue is already safe. EBR and
// HP exist in this repository to gate *when a user-supplied
// destructor runs*, not to keep the node memory itself alive -- see
// DESIGN.md.
package mpsc

import "github.com/skipor/comere/internal/tagged"

type node[T any] struct {
	val  T
	next tagged.Atomic[node[T]]
}

// Queue is an unbounded multi-producer, single-or-multi-consumer FIFO.
type Queue[T any] struct {
	head *tagged.Atomic[node[T]]
	tail *tagged.Atomic[node[T]]
}

// New returns an empty Queue.
func New[T any]() *Queue[T] {
	sentinel := tagged.Adopt(&node[T]{}).IntoBorrowed()
	q := &Queue[T]{
		head: tagged.NullAtomic[node[T]](),
		tail: tagged.NullAtomic[node[T]](),
	}
	q.head.Store(sentinel, tagged.SeqCst)
	q.tail.Store(sentinel, tagged.SeqCst)
	return q
}

// Push appends v to the tail of the queue.
func (q *Queue[T]) Push(v T) {
	n := tagged.Adopt(&node[T]{val: v}).IntoBorrowed()
	for {
		tail := q.tail.Load(tagged.SeqCst)
		next := tail.Deref().next.Load(tagged.SeqCst)
		if !next.IsNull() {
			q.tail.CompareAndSet(tail, next, tagged.SeqCst)
			continue
		}
		if ok, _ := tail.Deref().next.CompareAndSet(tagged.NullBorrowed[node[T]](), n, tagged.SeqCst); ok {
			q.tail.CompareAndSet(tail, n, tagged.SeqCst)
			return
		}
	}
}

// PeekFront returns the value at the front of the queue without
// removing it.
func (q *Queue[T]) PeekFront() (v T, ok bool) {
	head := q.head.Load(tagged.SeqCst)
	next := head.Deref().next.Load(tagged.SeqCst)
	if next.IsNull() {
		return v, false
	}
	return next.Deref().val, true
}

// PopFront removes and returns the value at the front of the queue.
func (q *Queue[T]) PopFront() (v T, ok bool) {
	for {
		head := q.head.Load(tagged.SeqCst)
		next := head.Deref().next.Load(tagged.SeqCst)
		if next.IsNull() {
			return v, false
		}
		val := next.Deref().val
		if done, _ := q.head.CompareAndSet(head, next, tagged.SeqCst); done {
			return val, true
		}
	}
}
