// Package ebr implements epoch-based reclamation: a global epoch
// counter advanced only when every pinned participant has been seen at
// the current epoch, and a per-participant bag of deferred destructor
// calls that moves to a global FIFO once it is full and runs once two
// epochs have passed since it was sealed.
//
// The registry of participants and the global garbage FIFO are both
// built on internal/tagged.Atomic and internal/mpsc -- the same
// primitives the Queue and List containers in this package are built
// on, rather than on sync.Mutex-guarded slices.
package ebr

import (
	"sync/atomic"

	"github.com/facebookgo/stackerr"
	"github.com/skipor/comere/internal/mpsc"
	"github.com/skipor/comere/internal/reclaim"
	"github.com/skipor/comere/internal/tagged"
)

const (
	// pinsBetweenAdvance caps how often a Pin call pays for a registry
	// scan: trying on every pin would make every hot loop O(participants).
	pinsBetweenAdvance = 1000
	// bagCapacity bounds how many destructors a Bag holds before it is
	// sealed and pushed to the global queue.
	bagCapacity = 32
	// garbageAgeThreshold is the number of epoch advances a sealed bag
	// must survive before it is provably unreachable by any pinned
	// participant and safe to run.
	garbageAgeThreshold = 2
)

// Destroyer is the per-value cleanup hook; see internal/reclaim.
type Destroyer = reclaim.Destroyer

var globalEpoch atomic.Uint64

type regNode struct {
	p    *Participant
	next tagged.Atomic[regNode]
}

var registry = tagged.NullAtomic[regNode]()
var garbage = mpsc.New[sealedBag]()

// Participant is one goroutine's registration with the collector.
// Obtain one with Register, reuse it across every Pin call made by
// that goroutine, and Unregister it when the goroutine exits. A fresh
// Participant per Pin defeats the scheme: the registry never shrinks,
// and a short-lived entry only adds scanning cost to tryAdvance.
type Participant struct {
	// packed is (observedEpoch<<1)|pinned. Any participant running
	// tryAdvance may load it; only this Participant's own goroutine
	// ever writes it, so the write is a plain atomic Store, not a CAS.
	packed atomic.Uint64

	// pinCount and bag are touched only by the owning goroutine.
	pinCount uint64
	bag      *Bag
}

// Register creates a Participant and links it into the global,
// lock-free, insert-only registry.
func Register() *Participant {
	p := &Participant{}
	owned := tagged.Adopt(&regNode{p: p})
	node := owned.Deref()
	self := owned.IntoBorrowed()
	for {
		head := registry.Load(tagged.SeqCst)
		node.next.Store(head, tagged.SeqCst)
		if ok, _ := registry.CompareAndSet(head, self, tagged.SeqCst); ok {
			return p
		}
	}
}

// Unregister marks p as permanently unpinned. The registry is
// insert-only (spec.md §4.2), so p's entry is never unlinked; it
// simply stops participating in future tryAdvance scans, matching the
// source's own never-deallocated ThreadPin list.
func (p *Participant) Unregister() {
	p.packed.Store(p.packed.Load() &^ 1)
}

// Bag holds deferred destructor calls collected by one Participant
// between epoch advances.
type Bag struct {
	entries [bagCapacity]func()
	n       int
}

func (b *Bag) push(destroy func()) bool {
	if b.n >= bagCapacity {
		return false
	}
	b.entries[b.n] = destroy
	b.n++
	return true
}

func (b *Bag) run() {
	for i := 0; i < b.n; i++ {
		b.entries[i]()
	}
}

type sealedBag struct {
	epoch uint64
	bag   *Bag
}

// Guard is proof that its Participant is pinned at a stable epoch; it
// is the scope token Queue and List methods require before
// dereferencing a shared Atomic. See SPEC_FULL.md §3.1.
type Guard struct {
	p *Participant
}

// Retire schedules destroy to run once no participant pinned at the
// current epoch (or later) can still be holding a reference obtained
// before this call -- i.e. once two epoch advances have passed. obj is
// kept reachable alongside destroy until then, mirroring the source's
// Retire<T>(t: T): even though Go's GC would keep obj alive anyway as
// long as destroy closes over it, passing it explicitly documents the
// ownership transfer the same way the source's call site does.
//
// destroy must not panic: a panic here is PanicInUserData (spec.md
// §7) and is not recovered.
func (g *Guard) Retire(obj any, destroy func()) {
	wrapped := func() {
		_ = obj
		destroy()
	}
	p := g.p
	if p.bag == nil {
		p.bag = &Bag{}
	}
	if p.bag.push(wrapped) {
		return
	}
	garbage.Push(sealedBag{epoch: globalEpoch.Load(), bag: p.bag})
	p.bag = &Bag{}
	p.bag.push(wrapped)
}

// RetireValue is a convenience over Retire for values that may
// implement Destroyer, so a caller need not write its own destroy
// closure. Queue[T]/List[T] do not use it: they retire nodes, not
// values, through Retire directly.
func (g *Guard) RetireValue(v any) {
	g.Retire(v, reclaim.DestroyFunc(v))
}

// Pin marks p as pinned at the current global epoch, runs f with a
// Guard proving that pin, and unpins afterward even if f panics.
// Pinning is not reentrant.
func (p *Participant) Pin(f func(g *Guard)) {
	if p.packed.Load()&1 == 1 {
		panic(stackerr.Newf("ebr: participant is already pinned"))
	}
	e := globalEpoch.Load()
	p.packed.Store(e<<1 | 1)
	defer p.packed.Store(e << 1)

	p.pinCount++
	if p.pinCount%pinsBetweenAdvance == 0 {
		tryAdvance()
	}

	f(&Guard{p: p})
}

// tryAdvance scans the registry for a participant pinned behind the
// current epoch; if none exists, it advances the global epoch by one
// and reclaims any bag old enough to be provably unreachable.
func tryAdvance() {
	e := globalEpoch.Load()
	cur := registry.Load(tagged.SeqCst)
	for !cur.IsNull() {
		packed := cur.Deref().p.packed.Load()
		if packed&1 == 1 && packed>>1 != e {
			return
		}
		cur = cur.Deref().next.Load(tagged.SeqCst)
	}
	if !globalEpoch.CompareAndSwap(e, e+1) {
		return
	}
	drainGarbage(e + 1)
}

// drainGarbage runs every sealed bag old enough to be provably
// unreachable as of newEpoch.
func drainGarbage(newEpoch uint64) {
	for {
		sb, ok := garbage.PeekFront()
		if !ok || newEpoch-sb.epoch < garbageAgeThreshold {
			return
		}
		sb, ok = garbage.PopFront()
		if !ok {
			return
		}
		sb.bag.run()
	}
}
