package ebr

import (
	"github.com/skipor/comere/internal/reclaim"
	"github.com/skipor/comere/internal/tag"
	"github.com/skipor/comere/internal/tagged"
)

type queueNode[T any] struct {
	val  T
	next tagged.Atomic[queueNode[T]]
}

// Queue is a Michael-Scott lock-free FIFO whose dummy-head node is
// reclaimed with epoch-based reclamation once no Guard live at the
// time of a Pop could still be dereferencing it. A popped value's
// Destroyer, if any, is the caller's responsibility from the moment
// Pop returns it; only Close runs the Destroyer of values still left
// in the queue when it is discarded. The sentinel node's data slot is
// never read, the same fakeHead idiom cache/lru.go uses to avoid nil
// checks at the boundary.
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
func (q *Queue[T]) Push(g *Guard, v T) {
	n := tagged.Adopt(&queueNode[T]{val: v}).IntoBorrowed()
	for {
		tail := q.tail.Load(tagged.SeqCst)
		next := tail.Deref().next.Load(tagged.SeqCst)
		if !next.IsNull() {
			// Tail lagged behind by one link; help it catch up before retrying.
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
// (zero, false) if it was empty.
func (q *Queue[T]) Pop(g *Guard) (v T, ok bool) {
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
			// next becomes the new dummy head; its data has already
			// been copied into val and is never read again through that
			// role. head (the old dummy) never held a live, un-returned
			// value -- whatever it carried was consumed by an earlier
			// Pop -- so only the node itself, not a T, needs reclaiming.
			old := head
			g.Retire(old, func() {
				if tag.Debug {
					// Only runs once drainGarbage has proven no live Guard
					// can still observe old; poisoning here is the
					// epoch-reclamation analog of cache/lru.go's
					// detach/disown field-nilling.
					old.Deref().next = tagged.Atomic[queueNode[T]]{}
				}
			})
			return val, true
		}
	}
}

// PopIf pops the front value only if pred reports true for it,
// checking pred against the snapshot read before attempting the CAS
// and returning (zero, false) without modifying the queue if pred
// rejects it -- a failed predicate is never retried against a later
// snapshot, matching the source's pop_if.
func (q *Queue[T]) PopIf(g *Guard, pred func(T) bool) (v T, ok bool) {
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
			old := head
			g.Retire(old, func() {
				if tag.Debug {
					old.Deref().next = tagged.Atomic[queueNode[T]]{}
				}
			})
			return val, true
		}
	}
}

// Len counts the nodes linked after the dummy head, the same O(n)
// walk the source runs -- practical for tests, not meant for hot
// paths.
func (q *Queue[T]) Len(g *Guard) int {
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
func (q *Queue[T]) IsEmpty(g *Guard) bool {
	return q.head.Load(tagged.SeqCst).Deref().next.Load(tagged.SeqCst).IsNull()
}

// Close runs the Destroyer of every value still queued, the Go analog
// of the source's Queue::drop. It does not reclaim node memory (the
// garbage collector does that once Close's caller drops its last
// reference to q).
func (q *Queue[T]) Close(g *Guard) {
	curr := q.head.Load(tagged.SeqCst)
	for {
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.IsNull() {
			return
		}
		reclaim.DestroyFunc(next.Deref().val)()
		curr = next
	}
}
