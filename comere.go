// Package comere defines the container and spawner interfaces shared
// by the ebr, hp and nothing reclamation schemes, mirroring the source
// crate's root-level `pub trait Queue<T>` / `pub trait List<T>`. The
// three schemes implement these differently: nothing.Queue/nothing.List
// need no scope argument at all and satisfy the interfaces directly;
// ebr and hp containers take a *Guard or *Participant on every call, so
// BindQueue/BindList in each of those packages close over one to
// produce an adapter satisfying the interface here.
package comere

// Queue is a concurrent FIFO: Push never fails, Pop returns (zero,
// false) on an empty queue. PopIf only pops the front value if pred
// reports true for it, leaving the queue untouched otherwise. Len and
// IsEmpty are the testing/introspection pair every source queue
// variant exposes alongside push/pop.
type Queue[T any] interface {
	Push(v T)
	Pop() (T, bool)
	PopIf(pred func(T) bool) (T, bool)
	Len() int
	IsEmpty() bool
}

// List is a concurrent sorted (ebr, hp) or insertion-ordered (nothing)
// set: Insert reports whether v was actually added, Remove reports
// whether a matching value was found and returns it. RemoveFront is
// the degenerate Harris remove at the head every source list variant
// also exposes. Iter returns a load-validate snapshot of every live
// value present at some instant during the call.
type List[T any] interface {
	Insert(v T) bool
	Contains(v T) bool
	Remove(v T) (T, bool)
	RemoveFront() (T, bool)
	Iter() []T
}

// Handle is returned by Spawner.Spawn; Join blocks until the spawned
// goroutine has returned.
type Handle interface {
	Join()
}

// Spawner runs f in a new goroutine, returning a Handle to join it.
// No Spawner in this repository registers a participant: for ebr and
// hp, f itself calls Register and Unregister.
type Spawner interface {
	Spawn(f func()) Handle
}
