// Package codegen executes the checked, annotated AST directly as a
// tree-walking interpreter: Exec evaluates each AST node against a
// Frame every time it runs, with no separate compile step per node.
// This is the Go stand-in for a machine-code backend — Go gives no
// portable way to emit and link native machine code without cgo or an
// assembler. A Frame holds its locals in a map keyed by name. The module
// layout, calling convention (closure-data first), per-struct decref
// generation, and exception/trace plumbing all still follow the same
// runtime ABI a machine-code backend would; only the "compiles to a
// relocatable object" half is reinterpreted as "compiles to an in-process
// callable function", with the JIT path (an in-memory module ready to
// call, with no object-file output) as the primary target.
package codegen

import "github.com/naml-lang/namlc/internal/exception"

// Frame is one function activation: its locals by name, the closure
// data it was invoked with (leading calling-convention
// parameter), a link to the enclosing frame for nested block scopes
// (lambdas and spawn bodies instead copy their captured values into a
// fresh frame), and the per-task exception state the
// generated code checks after every call that may throw.
type Frame struct {
	locals      map[string]interface{}
	closureData interface{}
	parent      *Frame
	exc         *exception.State
}

// NewFrame creates a top-level call frame.
func NewFrame(closureData interface{}, exc *exception.State) *Frame {
	return &Frame{locals: make(map[string]interface{}), closureData: closureData, exc: exc}
}

// Child creates a nested frame for a block/lambda body, chaining to f
// for outer-variable lookups.
func (f *Frame) Child() *Frame {
	return &Frame{locals: make(map[string]interface{}), closureData: f.closureData, parent: f, exc: f.exc}
}

// Get resolves name by walking the frame chain outward, matching naml's
// lexical scoping.
func (f *Frame) Get(name string) (interface{}, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.locals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds name in the frame it was already declared in, or in f
// itself if it's not yet bound anywhere in the chain (a fresh `var`).
func (f *Frame) Set(name string, v interface{}) {
	for fr := f; fr != nil; fr = fr.parent {
		if _, ok := fr.locals[name]; ok {
			fr.locals[name] = v
			return
		}
	}
	f.locals[name] = v
}

// Bind declares name in f specifically (used for parameter binding and
// fresh `var`/pattern-binding introductions, which must not overwrite an
// outer scope's same-named variable).
func (f *Frame) Bind(name string, v interface{}) { f.locals[name] = v }

// ClosureData returns the closure-data payload this frame's function
// was invoked with.
func (f *Frame) ClosureData() interface{} { return f.closureData }

// Exception returns the frame's task-level exception state.
func (f *Frame) Exception() *exception.State { return f.exc }
