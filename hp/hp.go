// Package hp implements hazard pointers: each participant publishes
// the addresses it is about to dereference into a small, fixed-size
// array of shared slots, and a retiring thread either spins until no
// slot anywhere still names the address (Wait mode) or defers the
// check to a periodic sweep of a global queue (Queue mode) -- the two
// retire protocols the original implementation calls "hp-wait" and
// its default.
//
// As in ebr, Go's garbage collector already keeps a node reachable for
// as long as any goroutine holds a Borrowed/Owned value naming it, so
// nothing here is load-bearing for memory safety the way it is in the
// source; it exists to reproduce the source's observable retire-timing
// contract (a destructor runs only once no hazard slot protects its
// node) so the three schemes remain comparable under the same
// benchmark harness.
package hp

import (
	"runtime"
	"sync/atomic"

	"github.com/facebookgo/stackerr"
	"github.com/skipor/comere/internal/mpsc"
	"github.com/skipor/comere/internal/reclaim"
	"github.com/skipor/comere/internal/tagged"
)

// NumHazardPointers is the number of hazard slots each participant
// carries. The list's find holds at most 2 at once (current, next) and
// Remove keeps only current; the predecessor link is not
// hazard-protected. Fixed at 5, the source's own NUM_HP, which leaves
// headroom for nested helper calls.
const NumHazardPointers = 5

// queueDrainBatch mirrors the source's free_from_queue N=32: the
// number of entries a Queue-mode sweep inspects per drain.
const queueDrainBatch = 32

// Destroyer is the per-value cleanup hook; see internal/reclaim.
type Destroyer = reclaim.Destroyer

// ErrNoSlot is returned when a Participant's NumHazardPointers slots
// are all occupied. It signals a programmer error -- nested helper
// calls protecting more concurrent addresses than NumHazardPointers
// allows -- rather than contention, so callers are expected to treat
// it as fatal.
var ErrNoSlot = stackerr.New("hp: no free hazard slot")

// Mode selects a Participant's retire protocol.
type Mode int

const (
	// ModeWait spins (yielding between checks) until no hazard slot
	// anywhere still names a retired address, then runs its destroyer
	// inline. Simpler, and the default in the source when "hp-wait" is
	// enabled.
	ModeWait Mode = iota
	// ModeQueue defers the check: retired entries sit on a global FIFO
	// and are swept queueDrainBatch at a time every queueDrainBatch
	// retires, re-queuing any still-protected entry.
	ModeQueue
)

type entryNode struct {
	hazards [NumHazardPointers]atomic.Uintptr
	id      uint64
	next    tagged.Atomic[entryNode]
}

var registry = tagged.NullAtomic[entryNode]()
var nextID atomic.Uint64

type garbageEntry struct {
	addr    uintptr
	destroy func()
}

var deferredGarbage = mpsc.New[garbageEntry]()

// Participant is one goroutine's registration with the collector.
// Obtain one with Register, reuse it across every Protect/Retire call
// made by that goroutine, and Unregister it when the goroutine exits.
type Participant struct {
	entry      *entryNode
	mode       Mode
	queueCount uint64
}

// Register creates a Participant in the given Mode and links its
// hazard-slot entry into the global, lock-free, insert-only registry.
func Register(mode Mode) *Participant {
	e := &entryNode{id: nextID.Add(1)}
	owned := tagged.Adopt(e)
	self := owned.IntoBorrowed()
	for {
		head := registry.Load(tagged.SeqCst)
		e.next.Store(head, tagged.SeqCst)
		if ok, _ := registry.CompareAndSet(head, self, tagged.SeqCst); ok {
			break
		}
	}
	return &Participant{entry: e, mode: mode}
}

// Unregister clears every hazard slot p owns. Like ebr's registry, the
// registry itself is insert-only: p's entry stays linked (with all
// slots cleared, so it is never reported as protecting anything) for
// the collector's lifetime, the same as the source's ENTRIES list.
func (p *Participant) Unregister() {
	for i := range p.entry.hazards {
		p.entry.hazards[i].Store(0)
	}
}

// HazardToken is proof that an address is currently published in one
// of its Participant's hazard slots. Release it as soon as the
// protected pointer is no longer being dereferenced.
type HazardToken struct {
	entry *entryNode
	idx   int
}

// Release clears the slot HazardToken was issued for.
func (t *HazardToken) Release() {
	t.entry.hazards[t.idx].Store(0)
}

func (p *Participant) protectAddr(addr uintptr) (*HazardToken, error) {
	for i := range p.entry.hazards {
		if p.entry.hazards[i].Load() == 0 {
			p.entry.hazards[i].Store(addr)
			return &HazardToken{entry: p.entry, idx: i}, nil
		}
	}
	return nil, ErrNoSlot
}

// Protect publishes a's current value into a free hazard slot and
// re-loads a to confirm it hasn't already changed, retrying until a
// stable (pointer, protection) pair is observed. It returns the null
// Borrowed with a nil token if a is empty.
func Protect[T any](p *Participant, a *tagged.Atomic[T]) (tagged.Borrowed[T], *HazardToken, error) {
	for {
		cur := a.Load(tagged.SeqCst)
		if cur.IsNull() {
			return cur, nil, nil
		}
		tok, err := p.protectAddr(cur.AsRaw())
		if err != nil {
			var zero tagged.Borrowed[T]
			return zero, nil, err
		}
		again := a.Load(tagged.SeqCst)
		if again.AsRaw() == cur.AsRaw() {
			return cur, tok, nil
		}
		tok.Release()
	}
}

func scanAddr(addr uintptr) bool {
	cur := registry.Load(tagged.SeqCst)
	for !cur.IsNull() {
		e := cur.Deref()
		for i := range e.hazards {
			if e.hazards[i].Load() == addr {
				return true
			}
		}
		cur = e.next.Load(tagged.SeqCst)
	}
	return false
}

// Retire schedules destroy to run once no participant's hazard slot
// still names addr. destroy must not panic; see spec.md §7's
// PanicInUserData.
func (p *Participant) Retire(addr uintptr, destroy func()) {
	switch p.mode {
	case ModeWait:
		for scanAddr(addr) {
			runtime.Gosched()
		}
		destroy()
	case ModeQueue:
		deferredGarbage.Push(garbageEntry{addr: addr, destroy: destroy})
		p.queueCount++
		if p.queueCount%queueDrainBatch == 0 {
			drainDeferred()
		}
	default:
		panic(stackerr.Newf("hp: unknown mode %d", p.mode))
	}
}

func drainDeferred() {
	for i := 0; i < queueDrainBatch; i++ {
		g, ok := deferredGarbage.PopFront()
		if !ok {
			return
		}
		if scanAddr(g.addr) {
			deferredGarbage.Push(g)
		} else {
			g.destroy()
		}
	}
}

