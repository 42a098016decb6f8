// Package timers is the per-peer one-shot timer service. Timers live in a
// min-heap ordered by (deadline, schedule order) and only fire from Advance,
// which the simulation calls once per tick, so callbacks always run on the
// simulation goroutine.
package timers

import (
	"container/heap"
	"time"
)

// Handle identifies a scheduled timer. The zero Handle is never issued.
type Handle uint64

type timer struct {
	handle   Handle
	deadline time.Duration
	fn       func()
	index    int
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].handle < h[j].handle
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler owns the simulation clock and the pending timers of one peer.
// It is not safe for concurrent use.
type Scheduler struct {
	now     time.Duration
	next    Handle
	pending timerHeap
	byID    map[Handle]*timer
}

func New() *Scheduler {
	return &Scheduler{
		byID: make(map[Handle]*timer),
	}
}

// Now is the simulation time accumulated by Advance.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once the clock has advanced by at least delay.
func (s *Scheduler) After(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	s.next++
	t := &timer{
		handle:   s.next,
		deadline: s.now + delay,
		fn:       fn,
	}
	heap.Push(&s.pending, t)
	s.byID[t.handle] = t
	return t.handle
}

// Cancel removes a pending timer. It reports false if the timer already
// fired or was never scheduled.
func (s *Scheduler) Cancel(h Handle) bool {
	t, ok := s.byID[h]
	if !ok {
		return false
	}
	heap.Remove(&s.pending, t.index)
	delete(s.byID, h)
	return true
}

// Active reports whether h is still waiting to fire.
func (s *Scheduler) Active(h Handle) bool {
	_, ok := s.byID[h]
	return ok
}

// Remaining is the time left before h fires, or zero if it is not pending.
func (s *Scheduler) Remaining(h Handle) time.Duration {
	t, ok := s.byID[h]
	if !ok {
		return 0
	}
	return t.deadline - s.now
}

// Len is the number of pending timers.
func (s *Scheduler) Len() int {
	return len(s.pending)
}

// Advance moves the clock forward by dt and runs every timer whose deadline
// has been reached, in deadline order. Timers scheduled by a callback never
// run in the same Advance, even with a zero delay.
func (s *Scheduler) Advance(dt time.Duration) int {
	s.now += dt
	last := s.next
	fired := 0
	var deferred []*timer
	for len(s.pending) > 0 {
		t := s.pending[0]
		if t.deadline > s.now {
			break
		}
		heap.Pop(&s.pending)
		if t.handle > last {
			deferred = append(deferred, t)
			continue
		}
		delete(s.byID, t.handle)
		t.fn()
		fired++
	}
	for _, t := range deferred {
		heap.Push(&s.pending, t)
	}
	return fired
}
