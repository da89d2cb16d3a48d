// Package exception implements the exception runtime // describes: a "thread-local" slot holding the currently-thrown
// exception plus a shadow stack for trace capture. mandates
// one deviation from the original Rust source here: these must be
// per-task, not process-wide thread-locals, because Go gives goroutines
// no ergonomic TLS and a per-task object is the natural fit for an M:N
// scheduler where many tasks share an OS thread over their lifetime.
// internal/scheduler's Task holds a *State from this package and
// passes it to every generated function alongside the closure-data
// pointer.
package exception

import (
	"fmt"
	"strings"

	"github.com/naml-lang/namlc/internal/heap"
)

// Frame is one shadow-stack entry: {function_name_ptr, file_ptr, line}.
type Frame struct {
	FuncName string
	File     string
	Line     int
}

// State is the per-task exception machinery: the "currently thrown"
// slot plus its shadow stack. Zero value is ready to use.
type State struct {
	current  heap.Ref
	typeID   uint32
	hasError bool
	stack    []Frame
}

// NewState returns an empty exception state for a freshly spawned task.
func NewState() *State { return &State{} }

// Set records ptr as the currently-thrown exception, writing both the
// pointer and its type id. typeID is read from the exception object's
// own type id by convention; callers pass it explicitly here since this
// package doesn't know struct layout.
func (s *State) Set(ptr heap.Ref, typeID uint32) {
	s.current = ptr
	s.typeID = typeID
	s.hasError = true
}

// Check reports whether an exception is currently set.
func (s *State) Check() bool { return s.hasError }

// Get returns the currently-set exception pointer.
func (s *State) Get() heap.Ref { return s.current }

// IsType reports whether the current exception's type id equals id.
func (s *State) IsType(id uint32) bool { return s.hasError && s.typeID == id }

// TypeID returns the current exception's type id; only meaningful when
// Check() is true.
func (s *State) TypeID() uint32 { return s.typeID }

// Clear zeros both the pointer and type-id fields of the slot.
func (s *State) Clear() {
	s.current = heap.Ref{}
	s.typeID = 0
	s.hasError = false
}

// Push records entry into the shadow stack on function entry.
func (s *State) Push(f Frame) { s.stack = append(s.stack, f) }

// Pop removes the most recently pushed frame on every exit path (normal
// return, throw, or propagation); generated code pushes on function entry
// and pops on every exit path.
func (s *State) Pop() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Capture snapshots the current shadow stack into a plain copy;
// generated code that wants it on the heap wraps the result in a
// heap.ArrayObj itself.
func (s *State) Capture() []Frame {
	out := make([]Frame, len(s.stack))
	copy(out, s.stack)
	return out
}

// Format renders a captured trace as a newline-separated string, most
// recent call first.
func Format(trace []Frame) string {
	var b strings.Builder
	for i := len(trace) - 1; i >= 0; i-- {
		f := trace[i]
		fmt.Fprintf(&b, "%s (%s:%d)\n", f.FuncName, f.File, f.Line)
	}
	return strings.TrimRight(b.String(), "\n")
}
