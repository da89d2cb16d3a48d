// Package scheduler implements the M:N cooperative task pool: a fixed
// worker pool with per-worker run queues, work stealing, spawn/wait_all,
// and a timer wheel, built on the goroutine/channel concurrency idiom.
// The pool itself is plain goroutines plus mutex-guarded queues; x/sync
// has no work-stealing primitive of its own, so that part stays hand
// rolled while the driver's own file-parsing fan-out uses x/sync/errgroup
// directly.
package scheduler

import "github.com/naml-lang/namlc/internal/exception"

// TaskState mirrors Task states.
type TaskState int

const (
	Runnable TaskState = iota
	Running
	Waiting
	Complete
)

// Func is a spawned task's body: a closure-compiled function that reads
// its captured data back into locals and executes the spawn/lambda
// body. It receives
// its own per-task exception State, per-task deviation.
type Func func(closureData interface{}, exc *exception.State)

// Task is a scheduler handle: a function pointer,
// its captured-data pointer/size (collapsed to a single interface{}
// payload, since Go closures already carry their captured environment
// and there is no separate byte-size concept to track), and its state.
type Task struct {
	fn          Func
	closureData interface{}
	state       TaskState
	exc         *exception.State
}

func newTask(fn Func, data interface{}) *Task {
	return &Task{fn: fn, closureData: data, state: Runnable, exc: exception.NewState()}
}

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState { return t.state }

// Exception returns this task's per-task exception state.
func (t *Task) Exception() *exception.State { return t.exc }
