package nothing

import "github.com/skipor/comere"

// Handle is returned by Spawner.Spawn.
type Handle struct{ done chan struct{} }

// Join blocks until the spawned goroutine returns.
func (h Handle) Join() { <-h.done }

// Spawner is the trivial comere.Spawner for the no-reclamation
// baseline: there is no registration of any kind to perform, so it is
// a bare goroutine launch, unlike ebr's and hp's spawners which exist
// to document (or, for hp, enforce) a registration/deregistration
// handshake around f.
type Spawner struct{}

func (Spawner) Spawn(f func()) comere.Handle {
	h := Handle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		f()
	}()
	return h
}
