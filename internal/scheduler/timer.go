package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// timerEntry is one pending timeout.
type timerEntry struct {
	id       int
	deadline time.Time
	fn       Func
	data     interface{}
	dead     bool
	index    int // heap.Interface bookkeeping
}

// timerHeap is a container/heap min-heap keyed by deadline.
type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x interface{}) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Timers runs a dedicated goroutine ("timer thread") that sleeps until
// the heap's earliest deadline, then enqueues that timeout's callback
// as a pool task.
type Timers struct {
	pool *Pool

	mu      sync.Mutex
	h       timerHeap
	byID    map[int]*timerEntry
	nextID  int
	wake    chan struct{}
	stopped chan struct{}
}

// NewTimers starts the timer thread, delivering fired callbacks as
// tasks on pool.
func NewTimers(pool *Pool) *Timers {
	t := &Timers{pool: pool, byID: make(map[int]*timerEntry), wake: make(chan struct{}, 1), stopped: make(chan struct{})}
	go t.run()
	return t
}

// SetTimeout schedules fn to run (as a spawned task, with data as its
// closure data) after ms milliseconds, returning an id usable with
// CancelTimeout.
func (t *Timers) SetTimeout(ms int64, fn Func, data interface{}) int {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	e := &timerEntry{id: id, deadline: time.Now().Add(time.Duration(ms) * time.Millisecond), fn: fn, data: data}
	heap.Push(&t.h, e)
	t.byID[id] = e
	t.mu.Unlock()
	select {
	case t.wake <- struct{}{}:
	default:
	}
	return id
}

// CancelTimeout marks id dead; the timer thread drops it when it
// reaches the head.
func (t *Timers) CancelTimeout(id int) {
	t.mu.Lock()
	if e, ok := t.byID[id]; ok {
		e.dead = true
		delete(t.byID, id)
	}
	t.mu.Unlock()
}

// Stop ends the timer goroutine.
func (t *Timers) Stop() { close(t.stopped) }

func (t *Timers) run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		t.mu.Lock()
		for len(t.h) > 0 && t.h[0].dead {
			heap.Pop(&t.h)
		}
		var wait time.Duration
		if len(t.h) == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(t.h[0].deadline)
			if wait < 0 {
				wait = 0
			}
		}
		t.mu.Unlock()

		timer.Reset(wait)
		select {
		case <-t.stopped:
			return
		case <-t.wake:
			continue
		case <-timer.C:
			t.fireExpired()
		}
	}
}

func (t *Timers) fireExpired() {
	now := time.Now()
	for {
		t.mu.Lock()
		if len(t.h) == 0 || t.h[0].deadline.After(now) {
			t.mu.Unlock()
			return
		}
		e := heap.Pop(&t.h).(*timerEntry)
		delete(t.byID, e.id)
		t.mu.Unlock()
		if !e.dead {
			t.pool.SpawnClosure(e.fn, e.data)
		}
	}
}

// Sleep blocks the calling goroutine for ms milliseconds with a plain
// time.Sleep. Called from a task, that goroutine is the worker running
// it, so the worker runs nothing else meanwhile; tasks left in its local
// queue can still be stolen by other workers.
func Sleep(ms int64) { time.Sleep(time.Duration(ms) * time.Millisecond) }
