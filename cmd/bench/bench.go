package main

import (
	"sync"
	"time"
)

const opsPerThread = 10000

// bench is one of the three scenarios spec.md §6 (via scenarios S3/S5)
// asks the harness to drive: given a variant and a thread count, run
// the scenario and return one latency sample (nanoseconds) per
// completed operation, across all threads.
type bench struct {
	name string
	run  func(v variant, threads int) []int64
}

var benches = []bench{
	{name: "queue-push-pop", run: queuePushPop},
	{name: "queue-transfer", run: queueTransfer},
	{name: "list-insert-remove", run: listInsertRemove},
}

// queuePushPop has every thread push a value then immediately pop the
// queue's front value opsPerThread times, timing the push+pop round
// trip.
func queuePushPop(v variant, threads int) []int64 {
	space := v.newQueue()

	var mu sync.Mutex
	var samples []int64
	var wg sync.WaitGroup
	wg.Add(threads)
	for t := 0; t < threads; t++ {
		h := v.spawner.Spawn(func() {
			defer wg.Done()
			q, leave := space.Enter()
			defer leave()
			local := make([]int64, 0, opsPerThread)
			for i := 0; i < opsPerThread; i++ {
				start := time.Now()
				q.Push(i)
				q.Pop()
				local = append(local, time.Since(start).Nanoseconds())
			}
			mu.Lock()
			samples = append(samples, local...)
			mu.Unlock()
		})
		defer h.Join()
	}
	wg.Wait()
	return samples
}

// queueTransfer splits threads into producers and consumers around a
// shared queue (spec scenario S3: source to sink), timing each
// consumer's successful Pop. Each producer pushes opsPerThread values;
// consumers keep popping until all producers*opsPerThread values have
// been received between them.
func queueTransfer(v variant, threads int) []int64 {
	if threads < 2 {
		threads = 2
	}
	producers := threads / 2
	consumers := threads - producers
	space := v.newQueue()

	total := producers * opsPerThread

	var pwg sync.WaitGroup
	pwg.Add(producers)
	for p := 0; p < producers; p++ {
		h := v.spawner.Spawn(func() {
			defer pwg.Done()
			q, leave := space.Enter()
			defer leave()
			for i := 0; i < opsPerThread; i++ {
				q.Push(i)
			}
		})
		defer h.Join()
	}

	var mu sync.Mutex
	var samples []int64
	var received int
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		h := v.spawner.Spawn(func() {
			defer cwg.Done()
			q, leave := space.Enter()
			defer leave()
			var local []int64
			for {
				mu.Lock()
				if received >= total {
					mu.Unlock()
					break
				}
				mu.Unlock()
				start := time.Now()
				_, ok := q.Pop()
				if !ok {
					continue
				}
				local = append(local, time.Since(start).Nanoseconds())
				mu.Lock()
				received++
				mu.Unlock()
			}
			mu.Lock()
			samples = append(samples, local...)
			mu.Unlock()
		})
		defer h.Join()
	}

	pwg.Wait()
	cwg.Wait()
	return samples
}

// listInsertRemove has every thread insert then remove a value it
// owns exclusively (its slot in a [0, threads*opsPerThread) range),
// timing the insert+remove round trip.
func listInsertRemove(v variant, threads int) []int64 {
	space := v.newList()

	var mu sync.Mutex
	var samples []int64
	var wg sync.WaitGroup
	wg.Add(threads)
	for t := 0; t < threads; t++ {
		t := t
		h := v.spawner.Spawn(func() {
			defer wg.Done()
			l, leave := space.Enter()
			defer leave()
			local := make([]int64, 0, opsPerThread)
			base := t * opsPerThread
			for i := 0; i < opsPerThread; i++ {
				key := base + i
				start := time.Now()
				l.Insert(key)
				l.Remove(key)
				local = append(local, time.Since(start).Nanoseconds())
			}
			mu.Lock()
			samples = append(samples, local...)
			mu.Unlock()
		})
		defer h.Join()
	}
	wg.Wait()
	return samples
}
