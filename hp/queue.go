package hp

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
// reclaimed with hazard pointers instead of epochs: Pop protects both
// the node it reads as head and the node it reads as next before
// dereferencing either, the textbook two-hazard-slot pop.
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
func (q *Queue[T]) Push(p *Participant, v T) {
	n := tagged.Adopt(&queueNode[T]{val: v}).IntoBorrowed()
	for {
		tail, tok, err := Protect(p, q.tail)
		if err != nil {
			panic(err)
		}
		next := tail.Deref().next.Load(tagged.SeqCst)
		if !next.IsNull() {
			tok.Release()
			q.tail.CompareAndSet(tail, next, tagged.SeqCst)
			continue
		}
		ok, _ := tail.Deref().next.CompareAndSet(tagged.NullBorrowed[queueNode[T]](), n, tagged.SeqCst)
		if ok {
			q.tail.CompareAndSet(tail, n, tagged.SeqCst)
		}
		tok.Release()
		if ok {
			return
		}
	}
}

// Pop removes and returns the value at the front of the queue, or
// (zero, false) if it was empty.
func (q *Queue[T]) Pop(p *Participant) (v T, ok bool) {
	for {
		head, headTok, err := Protect(p, q.head)
		if err != nil {
			panic(err)
		}
		if head.IsNull() {
			return v, false
		}
		tail := q.tail.Load(tagged.SeqCst)
		next, nextTok, err := Protect(p, &head.Deref().next)
		if err != nil {
			headTok.Release()
			panic(err)
		}
		if cur := q.head.Load(tagged.SeqCst); !cur.Equal(head) {
			if nextTok != nil {
				nextTok.Release()
			}
			headTok.Release()
			continue
		}
		if head.Equal(tail) {
			if nextTok != nil {
				nextTok.Release()
			}
			if next.IsNull() {
				headTok.Release()
				return v, false
			}
			q.tail.CompareAndSet(tail, next, tagged.SeqCst)
			headTok.Release()
			continue
		}
		val := next.Deref().val
		done, _ := q.head.CompareAndSet(head, next, tagged.SeqCst)
		if nextTok != nil {
			nextTok.Release()
		}
		headTok.Release()
		if done {
			// next becomes the new dummy head; head (the old dummy)
			// never held a live, un-returned value, so only the node
			// itself needs reclaiming -- see ebr.Queue.Pop.
			old := head
			p.Retire(old.AsRaw(), func() {
				if tag.Debug {
					old.Deref().next = tagged.Atomic[queueNode[T]]{}
				}
			})
			return val, true
		}
	}
}

// PopIf pops the front value only if pred reports true for it. pred is
// checked against the snapshot protected by the hazard tokens already
// held, before any CAS is attempted; a rejecting pred returns (zero,
// false) immediately rather than retrying, matching the source's
// pop_if.
func (q *Queue[T]) PopIf(p *Participant, pred func(T) bool) (v T, ok bool) {
	for {
		head, headTok, err := Protect(p, q.head)
		if err != nil {
			panic(err)
		}
		if head.IsNull() {
			headTok.Release()
			return v, false
		}
		tail := q.tail.Load(tagged.SeqCst)
		next, nextTok, err := Protect(p, &head.Deref().next)
		if err != nil {
			headTok.Release()
			panic(err)
		}
		if cur := q.head.Load(tagged.SeqCst); !cur.Equal(head) {
			if nextTok != nil {
				nextTok.Release()
			}
			headTok.Release()
			continue
		}
		if head.Equal(tail) {
			if nextTok != nil {
				nextTok.Release()
			}
			if next.IsNull() {
				headTok.Release()
				return v, false
			}
			q.tail.CompareAndSet(tail, next, tagged.SeqCst)
			headTok.Release()
			continue
		}
		val := next.Deref().val
		if !pred(val) {
			if nextTok != nil {
				nextTok.Release()
			}
			headTok.Release()
			return v, false
		}
		done, _ := q.head.CompareAndSet(head, next, tagged.SeqCst)
		if nextTok != nil {
			nextTok.Release()
		}
		headTok.Release()
		if done {
			old := head
			p.Retire(old.AsRaw(), func() {
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
func (q *Queue[T]) Len(p *Participant) int {
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
func (q *Queue[T]) IsEmpty(p *Participant) bool {
	return q.head.Load(tagged.SeqCst).Deref().next.Load(tagged.SeqCst).IsNull()
}

// Close runs the Destroyer of every value still queued, the Go analog
// of the source's Queue::drop.
func (q *Queue[T]) Close(p *Participant) {
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
