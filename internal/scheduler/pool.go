package scheduler

import (
	"math/rand"
	"runtime"
	"sync"
)

// Pool is a fixed-size worker pool with per-worker local queues, a
// global overflow queue, and random-peer work stealing. Pool is the
// scheduler-level object `spawn_closure` and `wait_all` are methods on.
type Pool struct {
	workers []*worker
	global  *globalQueue

	mu       sync.Mutex
	cond     *sync.Cond
	inFlight int // tasks spawned but not yet complete, for wait_all

	startOnce sync.Once
	stopCh    chan struct{}
}

type worker struct {
	id    int
	local chan *Task
	pool  *Pool
}

type globalQueue struct {
	mu    sync.Mutex
	tasks []*Task
}

func (g *globalQueue) push(t *Task) {
	g.mu.Lock()
	g.tasks = append(g.tasks, t)
	g.mu.Unlock()
}

func (g *globalQueue) pop() *Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.tasks) == 0 {
		return nil
	}
	t := g.tasks[0]
	g.tasks = g.tasks[1:]
	return t
}

// NewPool creates a pool sized to the number of logical CPUs, per
// "size defaulting to the number of cores". size <= 0
// uses runtime.GOMAXPROCS(0).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	p := &Pool{global: &globalQueue{}, stopCh: make(chan struct{})}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < size; i++ {
		w := &worker{id: i, local: make(chan *Task, 256), pool: p}
		p.workers = append(p.workers, w)
	}
	return p
}

// Start launches the worker goroutines. Safe to call once; subsequent
// calls are no-ops.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for _, w := range p.workers {
			go w.run()
		}
	})
}

// Stop signals every worker to exit. A worker checks the signal only
// when it finds no task in its own queue, the global overflow queue, or
// a peer's queue, so tasks already queued still run before it exits.
func (p *Pool) Stop() { close(p.stopCh) }

// SpawnClosure enqueues a new task. It is invoked
// by generated trampoline code with the captured closure data.
func (p *Pool) SpawnClosure(fn Func, data interface{}) *Task {
	t := newTask(fn, data)
	p.mu.Lock()
	p.inFlight++
	p.mu.Unlock()

	// Push onto a randomly chosen worker's local queue; fall back to the
	// global overflow queue if that worker is saturated, 	// "a global queue holds overflow".
	w := p.workers[rand.Intn(len(p.workers))]
	select {
	case w.local <- t:
	default:
		p.global.push(t)
	}
	return t
}

// WaitAll blocks until every task spawned so far has completed: a
// counter incremented on spawn and decremented on completion, with a
// condition variable signaled at zero.
func (p *Pool) WaitAll() {
	p.mu.Lock()
	for p.inFlight > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

func (p *Pool) taskDone() {
	p.mu.Lock()
	p.inFlight--
	if p.inFlight == 0 {
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

func (w *worker) run() {
	for {
		t := w.next()
		if t == nil {
			select {
			case <-w.pool.stopCh:
				return
			default:
				runtime.Gosched()
				continue
			}
		}
		t.state = Running
		t.fn(t.closureData, t.exc)
		t.state = Complete
		w.pool.taskDone()
	}
}

// next implements work-stealing order: local queue
// first, then the global overflow queue, then a random peer's queue.
func (w *worker) next() *Task {
	select {
	case t := <-w.local:
		return t
	default:
	}
	if t := w.pool.global.pop(); t != nil {
		return t
	}
	peers := w.pool.workers
	if len(peers) <= 1 {
		return nil
	}
	start := rand.Intn(len(peers))
	for i := 0; i < len(peers); i++ {
		peer := peers[(start+i)%len(peers)]
		if peer == w {
			continue
		}
		select {
		case t := <-peer.local:
			return t
		default:
		}
	}
	return nil
}
