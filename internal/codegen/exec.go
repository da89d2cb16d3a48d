package codegen

import (
	"fmt"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/exception"
	"github.com/naml-lang/namlc/internal/heap"
)

// Exec is the interpreting backend's execution context: the
// compiled Module plus the (stateless) dispatch methods that walk typed
// AST nodes against a Frame (see internal/codegen/frame.go's package
// doc for the interpreter-over-frames shape). Exec itself carries no
// mutable state beyond Mod so it is safe to share across concurrently-
// running tasks.
type Exec struct {
	Mod *Module
}

// NewExec creates an executor over mod.
func NewExec(mod *Module) *Exec { return &Exec{Mod: mod} }

// Run invokes the module's `main` function, matching // control-flow summary: "invoked through a generated main trampoline
// that initializes the runtime, enters the scheduler, and tears it
// down." The scheduler pool is started before main runs (so spawn has
// somewhere to enqueue work) and drained with wait_all afterward so the
// process doesn't exit with stragglers still running.
func (e *Exec) Run() error {
	fd, ok := e.Mod.Funcs["main"]
	if !ok {
		return RuntimeError("no main function defined")
	}
	e.Mod.Pool.Start()
	defer e.Mod.Pool.Stop()
	exc := exception.NewState()
	fr := NewFrame(nil, exc)
	sig := e.execBlock(fd.Body, fr)
	e.Mod.Pool.WaitAll()
	if sig.kind == sigThrow || exc.Check() {
		return e.describeUncaught(exc)
	}
	return nil
}

// describeUncaught renders an uncaught exception as a Go error the driver
// surfaces: the exception's "message" field, followed by whatever frames
// are still on the shadow stack. Run calls it after main's body has
// returned, when every CallFunction frame has already been popped, so the
// error carries the message only and no stack trace.
func (e *Exec) describeUncaught(exc *exception.State) error {
	ref := exc.Get()
	msg := "uncaught exception"
	if so, ok := ref.Obj.(*heap.StructObj); ok {
		if i := so.FieldIndex("message"); i >= 0 {
			if s, ok := fieldAsString(so.Fields[i]); ok {
				msg = s
			}
		}
	}
	trace := exception.Format(exc.Capture())
	if trace != "" {
		return fmt.Errorf("%s\n%s", msg, trace)
	}
	return fmt.Errorf("%s", msg)
}

func fieldAsString(v interface{}) (string, bool) {
	if r, ok := v.(heap.Ref); ok {
		if s, ok := r.Obj.(*heap.StringObj); ok {
			return s.Bytes, true
		}
		return "", false
	}
	if s, ok := v.(*heap.StringObj); ok {
		return s.Bytes, true
	}
	return "", false
}

// CallFunction invokes a free function (or, via methodRecv != nil, a
// method) by name with already-evaluated args, pushing a shadow-stack
// frame for throw-site trace capture and returning the function's
// result. exc is the calling task's exception state; a throw inside
// fd's body leaves exc set and CallFunction returns a nil result,
// matching the zero-sentinel return a throwing function produces while
// the exception propagates.
func (e *Exec) CallFunction(fd *ast.FuncDecl, args []interface{}, receiver interface{}, exc *exception.State) interface{} {
	callee := NewFrame(nil, exc)
	if fd.Receiver != nil {
		callee.Bind("self", receiver)
	}
	for i, p := range fd.Params {
		if i < len(args) {
			callee.Bind(p.Name, args[i])
		}
	}
	exc.Push(exception.Frame{FuncName: fd.Name})
	defer exc.Pop()
	sig := e.execBlock(fd.Body, callee)
	if sig.kind == sigThrow {
		return nil
	}
	return sig.value
}

// lookupCallable resolves a call's callee (a bare name, a method name, or
// a monomorphized generic) to the declaring *ast.FuncDecl. Since this
// backend interprets the generic body directly against dynamically
// typed Go values rather than emitting one native routine per mangled
// name, every monomorphization of the same generic symbol resolves to
// the same FuncDecl; Module.Compiled still records the mangled name so
// "Monomorphization coverage" property is observable.
func (e *Exec) lookupCallable(name string) (*ast.FuncDecl, bool) {
	fd, ok := e.Mod.Funcs[name]
	return fd, ok
}
