package ecs

import (
	"container/heap"
	"time"
)

// Timers is a one-shot timer queue driven by the simulation clock. Callbacks
// run inside Advance, on the caller's goroutine.
type Timers struct {
	now   time.Duration
	seq   uint64
	queue timerQueue
}

func NewTimers() *Timers {
	return &Timers{}
}

// Timer is a handle to a scheduled callback.
type Timer struct {
	due       time.Duration
	seq       uint64
	fn        func()
	index     int
	cancelled bool
	fired     bool
}

// Cancel discards the callback if it has not run yet.
func (t *Timer) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
	t.fn = nil
}

func (t *Timer) Pending() bool {
	return t != nil && !t.cancelled && !t.fired
}

// After schedules fn to run once the clock has advanced by delay. A zero
// delay fires on the next Advance.
func (ts *Timers) After(delay time.Duration, fn func()) *Timer {
	if delay < 0 {
		delay = 0
	}
	ts.seq++
	t := &Timer{due: ts.now + delay, seq: ts.seq, fn: fn}
	heap.Push(&ts.queue, t)
	return t
}

// Advance moves the clock forward and runs every due callback in due order.
// Callbacks scheduled during Advance with a zero delay run in the same call.
func (ts *Timers) Advance(dt time.Duration) int {
	ts.now += dt
	fired := 0
	for ts.queue.Len() > 0 {
		next := ts.queue[0]
		if next.due > ts.now {
			break
		}
		heap.Pop(&ts.queue)
		if next.cancelled || next.fn == nil {
			continue
		}
		next.fired = true
		fn := next.fn
		next.fn = nil
		fn()
		fired++
	}
	return fired
}

func (ts *Timers) Now() time.Duration {
	return ts.now
}

// Pending counts callbacks that are scheduled and not cancelled.
func (ts *Timers) Pending() int {
	n := 0
	for _, t := range ts.queue {
		if !t.cancelled {
			n++
		}
	}
	return n
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}
func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
