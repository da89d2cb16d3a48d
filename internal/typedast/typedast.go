// Package typedast attaches the "annotated-expression record" // describes to every expression the checker resolved, without mutating the
// AST arena: a resolved type, an lvalue flag, a needs-clone hint, and,
// for two-segment path calls, a module prefix. The monomorphization key
// field exists but Annotate never sets it.
//
// internal/types already computes the resolved Type per expression
// (Result.Types); this package is the second walk over the same tree that
// adds the backend-facing bits codegen needs and that the checker has no
// business computing itself.
package typedast

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/types"
)

// Annotation is the per-span record.
type Annotation struct {
	Type Type

	// LValue is true for an AssignStmt target and for the receivers of an
	// index/field target inside it; no other site is marked.
	LValue bool

	// NeedsClone marks a use of a reference-counted value (string, array,
	// map, struct, channel) that is not its last use in the enclosing
	// binding's lifetime — the codegen backend incref's these instead of
	// moving the pointer, "needs-clone hint (for backends
	// that distinguish value/reference moves)".
	NeedsClone bool

	// Mono is always nil: Annotate does not record per-call
	// monomorphizations (the checker's Result.Mono holds them per mangled
	// name, not per call site).
	Mono *types.MonoKey

	// ModulePrefix is the first segment of a two-segment `foo::bar(...)`
	// path call (a module name, or an enum name for a variant
	// constructor call), empty otherwise.
	ModulePrefix string
}

// Type is a re-export so callers of this package don't also need to import
// internal/types for the common case of reading an annotation's type.
type Type = types.Type

// Table holds one Annotation per expression node that the checker visited.
type Table struct {
	byExpr map[ast.Expr]*Annotation
}

// NewTable creates an empty annotation table.
func NewTable() *Table {
	return &Table{byExpr: make(map[ast.Expr]*Annotation)}
}

// Get returns the annotation recorded for e, if any.
func (t *Table) Get(e ast.Expr) (*Annotation, bool) {
	a, ok := t.byExpr[e]
	return a, ok
}

// Annotate walks f using the already-computed checker Result and builds
// the annotation table. Per function it first counts how often each
// identifier is read, then makes one walk that copies each resolved
// type, marks lvalues at assignment targets, sets the needs-clone hint
// on reference-typed identifier reads that are not the last read of that
// name, and records module prefixes. Mono keys are not filled in.
func Annotate(f *ast.File, res *types.Result) *Table {
	t := NewTable()
	for _, item := range f.Items {
		fd, ok := item.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		w := &walker{res: res, t: t, reads: make(map[string]int)}
		w.countReadsBlock(fd.Body)
		w.walkBlock(fd.Body, false)
	}
	return t
}

type walker struct {
	res   *types.Result
	t     *Table
	reads map[string]int // identifier name -> remaining read count in this function
}

func (w *walker) annotate(e ast.Expr, lvalue bool) *Annotation {
	ty, ok := w.res.Types[e]
	if !ok {
		return nil
	}
	a := &Annotation{Type: ty, LValue: lvalue}
	if id, ok := e.(*ast.Ident); ok {
		if isRefType(ty) {
			w.reads[id.Name]--
			a.NeedsClone = w.reads[id.Name] > 0
		}
	}
	if call, ok := e.(*ast.CallExpr); ok {
		if path, ok := call.Callee.(*ast.PathExpr); ok && len(path.Segments) == 2 {
			a.ModulePrefix = path.Segments[0]
		}
	}
	w.t.Set(e, a)
	return a
}

func (t *Table) Set(e ast.Expr, a *Annotation) { t.byExpr[e] = a }

// isRefType reports whether t is a heap-allocated, refcounted value per
// heap object header tag list (String, Array, Map, Struct,
// Channel) — the types whose moves a needs-clone-aware backend treats
// differently from a scalar copy.
func isRefType(t types.Type) bool {
	switch v := t.(type) {
	case *types.Prim:
		return v.Kind == types.String
	case *types.Array, *types.Map, *types.Channel, *types.Named:
		return true
	}
	return false
}

// countReadsBlock does a shallow pre-pass counting how many times each
// identifier name is read in the function body, seeding NeedsClone.
func (w *walker) countReadsBlock(b *ast.BlockExpr) {
	for _, s := range b.Stmts {
		w.countReadsStmt(s)
	}
	if b.Tail != nil {
		w.countReadsExpr(b.Tail)
	}
}

func (w *walker) countReadsStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarStmt:
		w.countReadsExpr(s.Value)
	case *ast.ConstStmt:
		w.countReadsExpr(s.Value)
	case *ast.AssignStmt:
		w.countReadsExpr(s.Target)
		w.countReadsExpr(s.Value)
	case *ast.ExprStmt:
		w.countReadsExpr(s.X)
	case *ast.ReturnStmt:
		if s.Value != nil {
			w.countReadsExpr(s.Value)
		}
	case *ast.ThrowStmt:
		w.countReadsExpr(s.Value)
	case *ast.IfStmt:
		w.countReadsExpr(s.Cond)
		w.countReadsBlock(s.Then)
		if blk, ok := s.Else.(*ast.BlockStmt); ok {
			w.countReadsBlock(blk.Block)
		} else if elseIf, ok := s.Else.(*ast.IfStmt); ok {
			w.countReadsStmt(elseIf)
		}
	case *ast.WhileStmt:
		w.countReadsExpr(s.Cond)
		w.countReadsBlock(s.Body)
	case *ast.ForStmt:
		w.countReadsExpr(s.Iterable)
		w.countReadsBlock(s.Body)
	case *ast.LoopStmt:
		w.countReadsBlock(s.Body)
	case *ast.SwitchStmt:
		w.countReadsExpr(s.Scrutinee)
		for _, c := range s.Cases {
			if c.Guard != nil {
				w.countReadsExpr(c.Guard)
			}
			w.countReadsBlock(c.Body)
		}
	case *ast.BlockStmt:
		w.countReadsBlock(s.Block)
	case *ast.LockedStmt:
		w.countReadsExpr(s.Target)
		w.countReadsBlock(s.Body)
	}
}

func (w *walker) countReadsExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		w.reads[e.Name]++
	case *ast.BinaryExpr:
		w.countReadsExpr(e.Left)
		w.countReadsExpr(e.Right)
	case *ast.UnaryExpr:
		w.countReadsExpr(e.Operand)
	case *ast.CallExpr:
		w.countReadsExpr(e.Callee)
		for _, a := range e.Args {
			w.countReadsExpr(a)
		}
	case *ast.MethodCallExpr:
		w.countReadsExpr(e.Receiver)
		for _, a := range e.Args {
			w.countReadsExpr(a)
		}
	case *ast.IndexExpr:
		w.countReadsExpr(e.Recv)
		w.countReadsExpr(e.Index)
	case *ast.FieldExpr:
		w.countReadsExpr(e.Recv)
	case *ast.CastExpr:
		w.countReadsExpr(e.Value)
	case *ast.FallibleCastExpr:
		w.countReadsExpr(e.Value)
	case *ast.ForceUnwrapExpr:
		w.countReadsExpr(e.Value)
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			w.countReadsExpr(el)
		}
	case *ast.MapLit:
		for _, en := range e.Entries {
			w.countReadsExpr(en.Key)
			w.countReadsExpr(en.Value)
		}
	case *ast.StructLit:
		for _, fi := range e.Fields {
			w.countReadsExpr(fi.Value)
		}
	case *ast.IfExpr:
		w.countReadsExpr(e.Cond)
		w.countReadsBlock(e.Then)
		if e.Else != nil {
			w.countReadsExpr(e.Else)
		}
	case *ast.BlockExpr:
		w.countReadsBlock(e)
	case *ast.LambdaExpr:
		if blk, ok := e.Body.(*ast.BlockExpr); ok {
			w.countReadsBlock(blk)
		} else {
			w.countReadsExpr(e.Body)
		}
	case *ast.SpawnExpr:
		w.countReadsBlock(e.Body)
	case *ast.TryExpr:
		w.countReadsExpr(e.Inner)
	case *ast.CatchExpr:
		w.countReadsExpr(e.Inner)
		w.countReadsBlock(e.Handler)
	case *ast.RangeExpr:
		w.countReadsExpr(e.Start)
		w.countReadsExpr(e.End)
	case *ast.GroupedExpr:
		w.countReadsExpr(e.Inner)
	case *ast.SomeExpr:
		w.countReadsExpr(e.Inner)
	case *ast.TernaryExpr:
		w.countReadsExpr(e.Cond)
		w.countReadsExpr(e.Then)
		w.countReadsExpr(e.Else)
	case *ast.ElvisExpr:
		w.countReadsExpr(e.Left)
		w.countReadsExpr(e.Right)
	}
}

func (w *walker) walkBlock(b *ast.BlockExpr, lvalue bool) {
	for _, s := range b.Stmts {
		w.walkStmt(s)
	}
	if b.Tail != nil {
		w.walkExpr(b.Tail, false)
	}
}

func (w *walker) walkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarStmt:
		w.walkExpr(s.Value, false)
	case *ast.ConstStmt:
		w.walkExpr(s.Value, false)
	case *ast.AssignStmt:
		w.walkExpr(s.Target, true)
		w.walkExpr(s.Value, false)
	case *ast.ExprStmt:
		w.walkExpr(s.X, false)
	case *ast.ReturnStmt:
		if s.Value != nil {
			w.walkExpr(s.Value, false)
		}
	case *ast.ThrowStmt:
		w.walkExpr(s.Value, false)
	case *ast.IfStmt:
		w.walkExpr(s.Cond, false)
		w.walkBlock(s.Then, false)
		if blk, ok := s.Else.(*ast.BlockStmt); ok {
			w.walkBlock(blk.Block, false)
		} else if elseIf, ok := s.Else.(*ast.IfStmt); ok {
			w.walkStmt(elseIf)
		}
	case *ast.WhileStmt:
		w.walkExpr(s.Cond, false)
		w.walkBlock(s.Body, false)
	case *ast.ForStmt:
		w.walkExpr(s.Iterable, false)
		w.walkBlock(s.Body, false)
	case *ast.LoopStmt:
		w.walkBlock(s.Body, false)
	case *ast.SwitchStmt:
		w.walkExpr(s.Scrutinee, false)
		for _, c := range s.Cases {
			if c.Guard != nil {
				w.walkExpr(c.Guard, false)
			}
			w.walkBlock(c.Body, false)
		}
	case *ast.BlockStmt:
		w.walkBlock(s.Block, false)
	case *ast.LockedStmt:
		w.walkExpr(s.Target, false)
		w.walkBlock(s.Body, false)
	}
}

func (w *walker) walkExpr(e ast.Expr, lvalue bool) {
	if e == nil {
		return
	}
	w.annotate(e, lvalue)
	switch e := e.(type) {
	case *ast.BinaryExpr:
		w.walkExpr(e.Left, false)
		w.walkExpr(e.Right, false)
	case *ast.UnaryExpr:
		w.walkExpr(e.Operand, false)
	case *ast.CallExpr:
		w.walkExpr(e.Callee, false)
		for _, a := range e.Args {
			w.walkExpr(a, false)
		}
	case *ast.MethodCallExpr:
		w.walkExpr(e.Receiver, false)
		for _, a := range e.Args {
			w.walkExpr(a, false)
		}
	case *ast.IndexExpr:
		w.walkExpr(e.Recv, lvalue)
		w.walkExpr(e.Index, false)
	case *ast.FieldExpr:
		w.walkExpr(e.Recv, lvalue)
	case *ast.CastExpr:
		w.walkExpr(e.Value, false)
	case *ast.FallibleCastExpr:
		w.walkExpr(e.Value, false)
	case *ast.ForceUnwrapExpr:
		w.walkExpr(e.Value, false)
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			w.walkExpr(el, false)
		}
	case *ast.MapLit:
		for _, en := range e.Entries {
			w.walkExpr(en.Key, false)
			w.walkExpr(en.Value, false)
		}
	case *ast.StructLit:
		for _, fi := range e.Fields {
			w.walkExpr(fi.Value, false)
		}
	case *ast.IfExpr:
		w.walkExpr(e.Cond, false)
		w.walkBlock(e.Then, false)
		if e.Else != nil {
			w.walkExpr(e.Else, false)
		}
	case *ast.BlockExpr:
		w.walkBlock(e, false)
	case *ast.LambdaExpr:
		if blk, ok := e.Body.(*ast.BlockExpr); ok {
			w.walkBlock(blk, false)
		} else {
			w.walkExpr(e.Body, false)
		}
	case *ast.SpawnExpr:
		w.walkBlock(e.Body, false)
	case *ast.TryExpr:
		w.walkExpr(e.Inner, false)
	case *ast.CatchExpr:
		w.walkExpr(e.Inner, false)
		w.walkBlock(e.Handler, false)
	case *ast.RangeExpr:
		w.walkExpr(e.Start, false)
		w.walkExpr(e.End, false)
	case *ast.GroupedExpr:
		w.walkExpr(e.Inner, false)
	case *ast.SomeExpr:
		w.walkExpr(e.Inner, false)
	case *ast.TernaryExpr:
		w.walkExpr(e.Cond, false)
		w.walkExpr(e.Then, false)
		w.walkExpr(e.Else, false)
	case *ast.ElvisExpr:
		w.walkExpr(e.Left, false)
		w.walkExpr(e.Right, false)
	}
}
