package ebr

import (
	"github.com/skipor/comere/internal/reclaim"
	"github.com/skipor/comere/internal/tag"
	"github.com/skipor/comere/internal/tagged"
)

type listNode[T any] struct {
	val  T
	next tagged.Atomic[listNode[T]]
}

// List is a Harris-style sorted singly linked set: removal is a
// two-step logical-mark-then-physical-unlink, using the low tag bit
// of a node's own next pointer as the mark. Remove and RemoveFront
// mark a node and then try to unlink it themselves; a marked node
// whose unlink lost its race is unlinked by the next find that passes
// it. Whichever call unlinks a node hands it to Guard.Retire.
type List[T any] struct {
	head *tagged.Atomic[listNode[T]]
	less func(a, b T) bool
}

// NewList returns an empty List ordered by less.
func NewList[T any](less func(a, b T) bool) *List[T] {
	return &List[T]{head: tagged.NullAtomic[listNode[T]](), less: less}
}

func (l *List[T]) equal(a, b T) bool {
	return !l.less(a, b) && !l.less(b, a)
}

// find returns the predecessor slot and the first live node whose
// value is not less than key -- the insertion point, or the node
// itself if key is present. Marked nodes encountered along the way
// are physically unlinked and retired before find continues.
func (l *List[T]) find(g *Guard, key T) (pred *tagged.Atomic[listNode[T]], curr tagged.Borrowed[listNode[T]]) {
retry:
	pred = l.head
	curr = pred.Load(tagged.SeqCst)
	for {
		if curr.IsNull() {
			return pred, curr
		}
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() == 1 {
			unmarked := next.WithTag(0)
			if ok, _ := pred.CompareAndSet(curr, unmarked, tagged.SeqCst); !ok {
				goto retry
			}
			// The node was already logically removed by whichever
			// Remove call marked it, and that call already returned its
			// value to its caller; only the node itself is reclaimed
			// here, never the value's Destroyer.
			unlinked := curr
			g.Retire(unlinked, func() {
				if tag.Debug {
					unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
				}
			})
			curr = unmarked
			continue
		}
		if !l.less(curr.Deref().val, key) {
			return pred, curr
		}
		pred = &curr.Deref().next
		curr = next
	}
}

// Contains reports whether key is present.
func (l *List[T]) Contains(g *Guard, key T) bool {
	_, curr := l.find(g, key)
	return !curr.IsNull() && l.equal(curr.Deref().val, key)
}

// Insert adds v, returning false without modifying the list if a
// value equal to v is already present.
func (l *List[T]) Insert(g *Guard, v T) bool {
	for {
		pred, curr := l.find(g, v)
		if !curr.IsNull() && l.equal(curr.Deref().val, v) {
			return false
		}
		owned := tagged.Adopt(&listNode[T]{val: v})
		owned.Deref().next.Store(curr, tagged.SeqCst)
		n := owned.IntoBorrowed()
		if ok, _ := pred.CompareAndSet(curr, n, tagged.SeqCst); ok {
			return true
		}
	}
}

// Remove deletes the value equal to key, if any, and returns it.
// Physical unlinking may be left to a later find() call made by this
// or another goroutine; either way the node is retired exactly once
// via Guard.Retire. The returned value's Destroyer is not run.
func (l *List[T]) Remove(g *Guard, key T) (v T, ok bool) {
	for {
		pred, curr := l.find(g, key)
		if curr.IsNull() || !l.equal(curr.Deref().val, key) {
			return v, false
		}
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() == 1 {
			continue
		}
		marked := next.WithTag(1)
		if done, _ := curr.Deref().next.CompareAndSet(next, marked, tagged.SeqCst); !done {
			continue
		}
		val := curr.Deref().val
		if done, _ := pred.CompareAndSet(curr, next, tagged.SeqCst); done {
			// val is returned below, satisfying the "destroyed exactly
			// once" contract via the caller; only the node is reclaimed.
			unlinked := curr
			g.Retire(unlinked, func() {
				if tag.Debug {
					unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
				}
			})
		}
		return val, true
	}
}

// RemoveFront deletes and returns the value at the head of the list,
// the degenerate Harris remove find() never needs to run for: mark
// the head node's own next pointer, then CAS the list's head past it.
func (l *List[T]) RemoveFront(g *Guard) (v T, ok bool) {
	for {
		head := l.head.Load(tagged.SeqCst)
		if head.IsNull() {
			return v, false
		}
		next := head.Deref().next.Load(tagged.SeqCst)
		if next.Tag() == 1 {
			// Already logically removed by a concurrent Remove/
			// RemoveFront; help finish the physical unlink and retry.
			unmarked := next.WithTag(0)
			if ok, _ := l.head.CompareAndSet(head, unmarked, tagged.SeqCst); ok {
				unlinked := head
				g.Retire(unlinked, func() {
					if tag.Debug {
						unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
					}
				})
			}
			continue
		}
		marked := next.WithTag(1)
		if done, _ := head.Deref().next.CompareAndSet(next, marked, tagged.SeqCst); !done {
			continue
		}
		val := head.Deref().val
		if done, _ := l.head.CompareAndSet(head, next, tagged.SeqCst); done {
			unlinked := head
			g.Retire(unlinked, func() {
				if tag.Debug {
					unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
				}
			})
		}
		return val, true
	}
}

// Iter returns a snapshot of every value live at some instant during
// the walk. Encountering a marked next pointer means a concurrent
// Remove raced the walk, so Iter restarts from the head rather than
// risk skipping or duplicating a value.
func (l *List[T]) Iter(g *Guard) []T {
retry:
	var out []T
	curr := l.head.Load(tagged.SeqCst)
	for !curr.IsNull() {
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() == 1 {
			goto retry
		}
		out = append(out, curr.Deref().val)
		curr = next
	}
	return out
}

// Close walks whatever remains of the list and runs the Destroyer of
// every live value still present, the Go analog of the source's
// List::drop running each remaining node's destructor. It does not
// reclaim node memory (the garbage collector does that once Close's
// caller drops its last reference to l); it exists purely so that
// "destroyed exactly once" holds even for values nobody ever removed.
func (l *List[T]) Close(g *Guard) {
	curr := l.head.Load(tagged.SeqCst)
	for !curr.IsNull() {
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() != 1 {
			reclaim.DestroyFunc(curr.Deref().val)()
		}
		curr = next.WithTag(0)
	}
}
