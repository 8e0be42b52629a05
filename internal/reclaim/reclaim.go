// Package reclaim defines the optional per-value cleanup hook shared
// by the ebr and hp reclamation schemes; nothing does not use it.
package reclaim

// Destroyer is implemented by values that need deterministic cleanup
// when a container still holding them is closed -- the Go analog of
// the source's per-T Drop. Values that don't implement it are simply
// left for the garbage collector once their node becomes unreachable.
type Destroyer interface {
	Destroy()
}

// DestroyFunc returns a func() that calls v.Destroy() if v implements
// Destroyer, or a no-op otherwise. The Close methods of ebr's and hp's
// Queue[T]/List[T] call this once per value still held, so they never
// need to know whether T actually carries a destructor.
func DestroyFunc(v any) func() {
	if d, ok := v.(Destroyer); ok {
		return d.Destroy
	}
	return func() {}
}
