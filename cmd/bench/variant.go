package main

import (
	"github.com/skipor/comere"
	"github.com/skipor/comere/ebr"
	"github.com/skipor/comere/hp"
	"github.com/skipor/comere/nothing"
)

// queueSpace and listSpace let a benchmark obtain a container handle
// bound to the calling goroutine. For ebr and hp that means
// registering a fresh Participant and unregistering it when the
// goroutine is done; nothing needs neither, since its containers
// already satisfy comere.Queue/comere.List directly.
type queueSpace interface {
	Enter() (q comere.Queue[int], leave func())
}

type listSpace interface {
	Enter() (l comere.List[int], leave func())
}

// variant bundles everything one column of the benchmark matrix
// (ebr, hp, hp-wait, nothing) needs: how to spawn workers and how each
// worker obtains its queue/list handle.
type variant struct {
	name     string
	spawner  comere.Spawner
	newQueue func() queueSpace
	newList  func() listSpace
}

var variants = []variant{
	{
		name:    "ebr",
		spawner: ebr.Spawner{},
		newQueue: func() queueSpace {
			return ebrQueueSpace{q: ebr.NewQueue[int]()}
		},
		newList: func() listSpace {
			return ebrListSpace{l: ebr.NewList[int](func(a, b int) bool { return a < b })}
		},
	},
	{
		name:    "hp",
		spawner: hp.Spawner{},
		newQueue: func() queueSpace {
			return hpQueueSpace{q: hp.NewQueue[int](), mode: hp.ModeQueue}
		},
		newList: func() listSpace {
			return hpListSpace{l: hp.NewList[int](func(a, b int) bool { return a < b }), mode: hp.ModeQueue}
		},
	},
	{
		name:    "hp-wait",
		spawner: hp.Spawner{},
		newQueue: func() queueSpace {
			return hpQueueSpace{q: hp.NewQueue[int](), mode: hp.ModeWait}
		},
		newList: func() listSpace {
			return hpListSpace{l: hp.NewList[int](func(a, b int) bool { return a < b }), mode: hp.ModeWait}
		},
	},
	{
		name:    "nothing",
		spawner: nothing.Spawner{},
		newQueue: func() queueSpace {
			return nothingQueueSpace{q: nothing.NewQueue[int]()}
		},
		newList: func() listSpace {
			return nothingListSpace{l: nothing.NewList[int](func(a, b int) bool { return a == b })}
		},
	},
}

type ebrQueueSpace struct{ q *ebr.Queue[int] }

func (s ebrQueueSpace) Enter() (comere.Queue[int], func()) {
	p := ebr.Register()
	return ebr.BindQueue(p, s.q), func() { p.Unregister() }
}

type ebrListSpace struct{ l *ebr.List[int] }

func (s ebrListSpace) Enter() (comere.List[int], func()) {
	p := ebr.Register()
	return ebr.BindList(p, s.l), func() { p.Unregister() }
}

type hpQueueSpace struct {
	q    *hp.Queue[int]
	mode hp.Mode
}

func (s hpQueueSpace) Enter() (comere.Queue[int], func()) {
	p := hp.Register(s.mode)
	return hp.BindQueue(p, s.q), func() { p.Unregister() }
}

type hpListSpace struct {
	l    *hp.List[int]
	mode hp.Mode
}

func (s hpListSpace) Enter() (comere.List[int], func()) {
	p := hp.Register(s.mode)
	return hp.BindList(p, s.l), func() { p.Unregister() }
}

type nothingQueueSpace struct{ q *nothing.Queue[int] }

func (s nothingQueueSpace) Enter() (comere.Queue[int], func()) { return s.q, func() {} }

type nothingListSpace struct{ l *nothing.List[int] }

func (s nothingListSpace) Enter() (comere.List[int], func()) { return s.l, func() {} }
