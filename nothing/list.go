package nothing

import "github.com/skipor/comere/internal/tagged"

type listNode[T any] struct {
	val  T
	next tagged.Atomic[listNode[T]]
}

// List is an unordered singly linked set, newest insert first, with
// no reclamation scheme: Remove marks a node's next pointer before
// unlinking it, exactly like ebr.List and hp.List, but once unlinked
// the node is simply abandoned rather than retired through any
// scheme. As in the source, a thread that marks a node and never
// returns to physically unlink it blocks every other thread's
// traversal past that point forever; this port accepts that, as the
// source does.
type List[T any] struct {
	head  *tagged.Atomic[listNode[T]]
	equal func(a, b T) bool
}

// NewList returns an empty List whose membership test uses equal.
func NewList[T any](equal func(a, b T) bool) *List[T] {
	return &List[T]{head: tagged.NullAtomic[listNode[T]](), equal: equal}
}

// Insert adds v at the head of the list unconditionally, never
// checking for an existing equal value the way ebr.List and hp.List
// do. It always returns true, satisfying comere.List[T]'s signature
// with the source's actual, dedup-free insert semantics.
func (l *List[T]) Insert(v T) bool {
	n := tagged.Adopt(&listNode[T]{val: v})
	for {
		head := l.head.Load(tagged.SeqCst)
		n.Deref().next.Store(head, tagged.SeqCst)
		borrowed := n.IntoBorrowed()
		if ok, _ := l.head.CompareAndSet(head, borrowed, tagged.SeqCst); ok {
			return true
		}
		n = borrowed.IntoOwned()
	}
}

// Contains reports whether a value equal to key is present.
func (l *List[T]) Contains(key T) bool {
retry:
	curr := l.head.Load(tagged.SeqCst)
	for !curr.IsNull() {
		if l.equal(curr.Deref().val, key) {
			return true
		}
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() != 0 {
			goto retry
		}
		curr = next
	}
	return false
}

// Remove deletes the first node equal to key, if any, and returns its
// value. As soon as the mark CAS below succeeds the value is logically
// gone -- Remove returns true whether or not the subsequent physical
// unlink also wins its race, the same as ebr.List.Remove. Unlinked
// nodes are never revisited, never destroyed: in the source this
// leaks; in Go it is simply left for the collector.
func (l *List[T]) Remove(key T) (v T, ok bool) {
retry:
	pred := l.head
	curr := pred.Load(tagged.SeqCst)
	for {
		if curr.IsNull() {
			return v, false
		}
		if l.equal(curr.Deref().val, key) {
			next := curr.Deref().next.Load(tagged.SeqCst)
			if next.Tag() != 0 {
				goto retry
			}
			marked := next.WithTag(1)
			if done, _ := curr.Deref().next.CompareAndSet(next, marked, tagged.SeqCst); !done {
				goto retry
			}
			val := curr.Deref().val
			pred.CompareAndSet(curr, next, tagged.SeqCst)
			return val, true
		}
		pred = &curr.Deref().next
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() != 0 {
			goto retry
		}
		if next.IsNull() {
			return v, false
		}
		curr = next
	}
}

// RemoveFront deletes and returns the value at the head of the list,
// the same mark-then-CAS-head sequence Remove runs against the head
// slot specifically. As with Remove, once the mark CAS succeeds the
// value is logically gone regardless of whether the head CAS also
// wins its race; a losing head CAS leaves the mark in place for a
// later Remove/RemoveFront to clean up, rather than leak memory
// trying to roll it back.
func (l *List[T]) RemoveFront() (v T, ok bool) {
retry:
	head := l.head.Load(tagged.SeqCst)
	if head.IsNull() {
		return v, false
	}
	next := head.Deref().next.Load(tagged.SeqCst)
	if next.Tag() != 0 {
		goto retry
	}
	if done, _ := head.Deref().next.CompareAndSet(next, next.WithTag(1), tagged.SeqCst); !done {
		goto retry
	}
	val := head.Deref().val
	l.head.CompareAndSet(head, next, tagged.SeqCst)
	return val, true
}

// Iter returns a snapshot of every value present at some instant
// during the walk. Encountering a marked next pointer means a
// concurrent Remove raced the walk, so Iter restarts from the head
// rather than risk skipping or duplicating a value.
func (l *List[T]) Iter() []T {
retry:
	var out []T
	curr := l.head.Load(tagged.SeqCst)
	for !curr.IsNull() {
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() != 0 {
			goto retry
		}
		out = append(out, curr.Deref().val)
		curr = next
	}
	return out
}
