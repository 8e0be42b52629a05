package hp

import (
	"github.com/skipor/comere/internal/reclaim"
	"github.com/skipor/comere/internal/tag"
	"github.com/skipor/comere/internal/tagged"
)

type listNode[T any] struct {
	val  T
	next tagged.Atomic[listNode[T]]
}

// List is a Harris-style sorted singly linked set, reclaimed with
// hazard pointers: find protects both the node it treats as current
// and the node it treats as next before dereferencing either, helping
// physically unlink (and retire) any marked node it passes over.
//
// Remove's mark-then-unlink race can in principle livelock: a thread
// that marks a node but loses the subsequent CAS to physically unlink
// it leaves that work for the next find() to pick up, and under
// pathological scheduling that next find() could itself keep losing
// its own unlink race indefinitely. The source accepts this; so does
// this port -- see SPEC_FULL.md §9(b).
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

func release(t *HazardToken) {
	if t != nil {
		t.Release()
	}
}

// find returns the predecessor slot and the first live node whose
// value is not less than key, with a (possibly nil, if curr is null)
// HazardToken protecting curr that the caller must release.
func (l *List[T]) find(p *Participant, key T) (pred *tagged.Atomic[listNode[T]], curr tagged.Borrowed[listNode[T]], currTok *HazardToken) {
retry:
	pred = l.head
	var err error
	curr, currTok, err = Protect(p, pred)
	if err != nil {
		panic(err)
	}
	for {
		if curr.IsNull() {
			return pred, curr, currTok
		}
		next, nextTok, err := Protect(p, &curr.Deref().next)
		if err != nil {
			release(currTok)
			panic(err)
		}
		if next.Tag() == 1 {
			unmarked := next.WithTag(0)
			if ok, _ := pred.CompareAndSet(curr, unmarked, tagged.SeqCst); !ok {
				release(nextTok)
				release(currTok)
				goto retry
			}
			release(currTok)
			unlinked := curr
			p.Retire(unlinked.AsRaw(), func() {
				if tag.Debug {
					unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
				}
			})
			curr, currTok = unmarked, nextTok
			continue
		}
		if !l.less(curr.Deref().val, key) {
			release(nextTok)
			return pred, curr, currTok
		}
		pred = &curr.Deref().next
		release(currTok)
		curr, currTok = next, nextTok
	}
}

// Contains reports whether key is present.
func (l *List[T]) Contains(p *Participant, key T) bool {
	_, curr, tok := l.find(p, key)
	defer release(tok)
	return !curr.IsNull() && l.equal(curr.Deref().val, key)
}

// Insert adds v, returning false without modifying the list if a
// value equal to v is already present.
func (l *List[T]) Insert(p *Participant, v T) bool {
	for {
		pred, curr, currTok := l.find(p, v)
		if !curr.IsNull() && l.equal(curr.Deref().val, v) {
			release(currTok)
			return false
		}
		owned := tagged.Adopt(&listNode[T]{val: v})
		owned.Deref().next.Store(curr, tagged.SeqCst)
		n := owned.IntoBorrowed()
		ok, _ := pred.CompareAndSet(curr, n, tagged.SeqCst)
		release(currTok)
		if ok {
			return true
		}
	}
}

// Remove deletes the value equal to key, if any, and returns it.
func (l *List[T]) Remove(p *Participant, key T) (v T, ok bool) {
	for {
		pred, curr, currTok := l.find(p, key)
		if curr.IsNull() || !l.equal(curr.Deref().val, key) {
			release(currTok)
			return v, false
		}
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() == 1 {
			release(currTok)
			continue
		}
		marked := next.WithTag(1)
		if done, _ := curr.Deref().next.CompareAndSet(next, marked, tagged.SeqCst); !done {
			release(currTok)
			continue
		}
		val := curr.Deref().val
		done, _ := pred.CompareAndSet(curr, next, tagged.SeqCst)
		release(currTok)
		if done {
			unlinked := curr
			p.Retire(unlinked.AsRaw(), func() {
				if tag.Debug {
					unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
				}
			})
		}
		return val, true
	}
}

// RemoveFront deletes and returns the value at the head of the list,
// protecting the head node with a hazard token the same way find does
// for its curr slot before marking and unlinking it.
func (l *List[T]) RemoveFront(p *Participant) (v T, ok bool) {
	for {
		head, headTok, err := Protect(p, l.head)
		if err != nil {
			panic(err)
		}
		if head.IsNull() {
			release(headTok)
			return v, false
		}
		next := head.Deref().next.Load(tagged.SeqCst)
		if next.Tag() == 1 {
			unmarked := next.WithTag(0)
			done, _ := l.head.CompareAndSet(head, unmarked, tagged.SeqCst)
			release(headTok)
			if done {
				unlinked := head
				p.Retire(unlinked.AsRaw(), func() {
					if tag.Debug {
						unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
					}
				})
			}
			continue
		}
		marked := next.WithTag(1)
		if done, _ := head.Deref().next.CompareAndSet(next, marked, tagged.SeqCst); !done {
			release(headTok)
			continue
		}
		val := head.Deref().val
		done, _ := l.head.CompareAndSet(head, next, tagged.SeqCst)
		release(headTok)
		if done {
			unlinked := head
			p.Retire(unlinked.AsRaw(), func() {
				if tag.Debug {
					unlinked.Deref().next = tagged.Atomic[listNode[T]]{}
				}
			})
		}
		return val, true
	}
}

// Iter returns a snapshot of every value live at some instant during
// the walk, protecting each node in turn with a hazard token.
// Encountering a marked next pointer means a concurrent Remove raced
// the walk, so Iter restarts from the head rather than risk skipping
// or duplicating a value.
func (l *List[T]) Iter(p *Participant) []T {
retry:
	var out []T
	curr, currTok, err := Protect(p, l.head)
	if err != nil {
		panic(err)
	}
	for !curr.IsNull() {
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() == 1 {
			release(currTok)
			goto retry
		}
		out = append(out, curr.Deref().val)
		nextBorrowed, nextTok, err := Protect(p, &curr.Deref().next)
		if err != nil {
			release(currTok)
			panic(err)
		}
		release(currTok)
		curr, currTok = nextBorrowed, nextTok
	}
	release(currTok)
	return out
}

// Close runs the Destroyer of every value still present, the Go
// analog of the source's List::drop.
func (l *List[T]) Close(p *Participant) {
	curr := l.head.Load(tagged.SeqCst)
	for !curr.IsNull() {
		next := curr.Deref().next.Load(tagged.SeqCst)
		if next.Tag() != 1 {
			reclaim.DestroyFunc(curr.Deref().val)()
		}
		curr = next.WithTag(0)
	}
}
