// Package nothing implements the Michael-Scott queue and Harris list
// with no reclamation scheme at all: a popped or removed node is
// simply unlinked and left for whatever the host language does with
// unreachable memory. In the source this is a genuine, deliberate
// leak (nothing ever frees it); in Go the garbage collector reclaims
// an unlinked node exactly as soon as it becomes unreachable, so this
// package is both the reclamation-free baseline the benchmarks compare
// ebr and hp against, and -- unlike its source -- not actually a leak.
package nothing

import "github.com/skipor/comere/internal/tagged"

type queueNode[T any] struct {
	val  T
	next tagged.Atomic[queueNode[T]]
}

// Queue is a Michael-Scott lock-free FIFO with no SMR: container
// methods take no guard or participant, since nothing here ever
// refers back to a reclamation scheme.
type Queue[T any] struct {
	head *tagged.Atomic[queueNode[T]]
	tail *tagged.Atomic[queueNode[T]]
}

// NewQueue returns an empty Queue.
func NewQueue[T any]() *Queue[T] {
	sentinel := tagged.Adopt(&queueNode[T]{}).IntoBorrowed()
	q := &Queue[T]{
		head: tagged.NullAtomic[queueNode[T]](),
		tail: tagged.NullAtomic[queueNode[T]](),
	}
	q.head.Store(sentinel, tagged.SeqCst)
	q.tail.Store(sentinel, tagged.SeqCst)
	return q
}

// Push appends v to the tail of the queue.
func (q *Queue[T]) Push(v T) {
	n := tagged.Adopt(&queueNode[T]{val: v}).IntoBorrowed()
	for {
		tail := q.tail.Load(tagged.SeqCst)
		next := tail.Deref().next.Load(tagged.SeqCst)
		if !next.IsNull() {
			q.tail.CompareAndSet(tail, next, tagged.SeqCst)
			continue
		}
		if ok, _ := tail.Deref().next.CompareAndSet(tagged.NullBorrowed[queueNode[T]](), n, tagged.SeqCst); ok {
			q.tail.CompareAndSet(tail, n, tagged.SeqCst)
			return
		}
	}
}

// Pop removes and returns the value at the front of the queue, or
// (zero, false) if it was empty. The old dummy head is simply
// dropped -- no retire step of any kind.
func (q *Queue[T]) Pop() (v T, ok bool) {
	for {
		head := q.head.Load(tagged.SeqCst)
		tail := q.tail.Load(tagged.SeqCst)
		next := head.Deref().next.Load(tagged.SeqCst)
		if head.Equal(tail) {
			if next.IsNull() {
				return v, false
			}
			q.tail.CompareAndSet(tail, next, tagged.SeqCst)
			continue
		}
		val := next.Deref().val
		if done, _ := q.head.CompareAndSet(head, next, tagged.SeqCst); done {
			return val, true
		}
	}
}

// PopIf pops the front value only if pred reports true for it. A
// rejecting pred returns (zero, false) immediately rather than
// retrying, matching the source's pop_if.
func (q *Queue[T]) PopIf(pred func(T) bool) (v T, ok bool) {
	for {
		head := q.head.Load(tagged.SeqCst)
		tail := q.tail.Load(tagged.SeqCst)
		next := head.Deref().next.Load(tagged.SeqCst)
		if head.Equal(tail) {
			if next.IsNull() {
				return v, false
			}
			q.tail.CompareAndSet(tail, next, tagged.SeqCst)
			continue
		}
		val := next.Deref().val
		if !pred(val) {
			return v, false
		}
		if done, _ := q.head.CompareAndSet(head, next, tagged.SeqCst); done {
			return val, true
		}
	}
}

// Len counts the nodes linked after the dummy head, the same O(n)
// walk the source runs -- practical for tests, not meant for hot
// paths.
func (q *Queue[T]) Len() int {
	n := 0
	node := q.head.Load(tagged.SeqCst)
	for {
		next := node.Deref().next.Load(tagged.SeqCst)
		if next.IsNull() {
			return n
		}
		node = next
		n++
	}
}

// IsEmpty reports whether the dummy head has no successor.
func (q *Queue[T]) IsEmpty() bool {
	return q.head.Load(tagged.SeqCst).Deref().next.Load(tagged.SeqCst).IsNull()
}
