package ebr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPinNotReentrant(t *testing.T) {
	p := Register()
	defer p.Unregister()

	require.Panics(t, func() {
		p.Pin(func(g *Guard) {
			p.Pin(func(g2 *Guard) {})
		})
	})
}

func TestPinUnpinsOnPanic(t *testing.T) {
	p := Register()
	defer p.Unregister()

	require.Panics(t, func() {
		p.Pin(func(g *Guard) {
			panic("boom")
		})
	})
	require.Equal(t, uint64(0), p.packed.Load()&1)
}

func TestRetireEventuallyRuns(t *testing.T) {
	p := Register()
	defer p.Unregister()

	ran := false
	p.Pin(func(g *Guard) {
		g.Retire(nil, func() { ran = true })
	})

	// Bag capacity is 32 and reclamation only happens once a bag is
	// sealed and two epochs have passed. Only p's own later retires can
	// seal the bag holding that destructor, so drive enough pins from p
	// to force both.
	for i := 0; i < bagCapacity*(garbageAgeThreshold+2)*pinsBetweenAdvance; i++ {
		p.Pin(func(g *Guard) {
			g.Retire(nil, func() {})
		})
	}

	require.True(t, ran)
}
