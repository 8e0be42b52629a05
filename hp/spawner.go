package hp

// Handle is returned by Spawn. Unlike ebr's spawner, Join here first
// signals the worker goroutine to deregister its hazard entry (so its
// cleared slots stop matching in scanAddr) and only then waits for it
// to exit,
// mirroring the source's JoinHandle::join -- which sends on a channel
// to wake the worker's deferred remove_thread_local() before joining
// the OS thread.
type Handle struct {
	done   chan struct{}
	signal chan struct{}
}

// Spawn registers a fresh Participant in the given Mode, runs f with
// it in a new goroutine, and returns a Handle. The Participant stays
// registered (and its hazard slots populated) until Join is called,
// even though f itself has already returned -- so a concurrent
// scanAddr from another goroutine's Retire still sees this
// Participant's slots as cleared only once Join actually runs.
func Spawn(mode Mode, f func(p *Participant)) *Handle {
	h := &Handle{done: make(chan struct{}), signal: make(chan struct{})}
	go func() {
		defer close(h.done)
		p := Register(mode)
		f(p)
		<-h.signal
		p.Unregister()
	}()
	return h
}

// Join signals the spawned goroutine to deregister its Participant,
// then blocks until it exits.
func (h *Handle) Join() {
	close(h.signal)
	<-h.done
}
