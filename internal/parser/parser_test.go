package parser

import (
	"testing"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
	"github.com/naml-lang/namlc/internal/intern"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/source"
)

func parse(t *testing.T, src string) (*ast.File, *diag.List) {
	t.Helper()
	in := intern.New()
	toks := lexer.New(0, string(lexer.Normalize([]byte(src))), in).Lex()
	arena := ast.NewArena(0, in)
	diags := diag.NewList(source.NewMap())
	f := Parse(toks, arena, diags, 0)
	return f, diags
}

func TestParseFuncWithArithmetic(t *testing.T) {
	f, diags := parse(t, `fn main() { var x = 2 + 3 * 4; }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
	if len(f.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(f.Items))
	}
	fn, ok := f.Items[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", f.Items[0])
	}
	if fn.Name != "main" {
		t.Fatalf("expected main, got %s", fn.Name)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 stmt, got %d", len(fn.Body.Stmts))
	}
	vs, ok := fn.Body.Stmts[0].(*ast.VarStmt)
	if !ok {
		t.Fatalf("expected VarStmt, got %T", fn.Body.Stmts[0])
	}
	bin, ok := vs.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", vs.Value)
	}
	if bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level '+' (precedence climb), got op %d", bin.Op)
	}
	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected right side to be the '*' subexpression")
	}
}

func TestParseStructAndFieldAccess(t *testing.T) {
	f, diags := parse(t, `struct Point { x: int, y: int }
fn main() { var p = Point { x: 1, y: 2 }; var z = p.x; }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
	sd, ok := f.Items[0].(*ast.StructDecl)
	if !ok || sd.Name != "Point" || len(sd.Fields) != 2 {
		t.Fatalf("bad struct decl: %+v", f.Items[0])
	}
	fn := f.Items[1].(*ast.FuncDecl)
	vs := fn.Body.Stmts[0].(*ast.VarStmt)
	lit, ok := vs.Value.(*ast.StructLit)
	if !ok || lit.TypeName != "Point" || len(lit.Fields) != 2 {
		t.Fatalf("bad struct literal: %+v", vs.Value)
	}
	vs2 := fn.Body.Stmts[1].(*ast.VarStmt)
	if _, ok := vs2.Value.(*ast.FieldExpr); !ok {
		t.Fatalf("expected FieldExpr, got %T", vs2.Value)
	}
}

func TestParseIfConditionNotStructLiteral(t *testing.T) {
	f, diags := parse(t, `fn main() { if x { return; } }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
	fn := f.Items[0].(*ast.FuncDecl)
	ifs, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", fn.Body.Stmts[0])
	}
	if _, ok := ifs.Cond.(*ast.Ident); !ok {
		t.Fatalf("condition should be bare Ident, not a struct literal: %T", ifs.Cond)
	}
}

func TestParseGenericFunctionAndCall(t *testing.T) {
	f, diags := parse(t, `fn id<T>(x: T) -> T { return x; }
fn main() { var a = id<int>(7); }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
	fd := f.Items[0].(*ast.FuncDecl)
	if len(fd.TypeParams) != 1 || fd.TypeParams[0].Name != "T" {
		t.Fatalf("bad type params: %+v", fd.TypeParams)
	}
	fn := f.Items[1].(*ast.FuncDecl)
	vs := fn.Body.Stmts[0].(*ast.VarStmt)
	call, ok := vs.Value.(*ast.CallExpr)
	if !ok || len(call.TypeArgs) != 1 {
		t.Fatalf("expected explicit type-arg call, got %+v", vs.Value)
	}
}

func TestParseThrowCatch(t *testing.T) {
	f, diags := parse(t, `exception E { reason: string }
fn f() throws E { throw E { reason: "bad" }; }
fn main() { var v = f() catch e { return; }; }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
	ed := f.Items[0].(*ast.ExceptionDecl)
	if ed.Name != "E" || len(ed.Fields) != 1 {
		t.Fatalf("bad exception decl: %+v", ed)
	}
	fd := f.Items[1].(*ast.FuncDecl)
	if len(fd.Throws) != 1 || fd.Throws[0] != "E" {
		t.Fatalf("bad throws clause: %+v", fd.Throws)
	}
	main := f.Items[2].(*ast.FuncDecl)
	vs := main.Body.Stmts[0].(*ast.VarStmt)
	if _, ok := vs.Value.(*ast.CatchExpr); !ok {
		t.Fatalf("expected CatchExpr, got %T", vs.Value)
	}
}

func TestParseSpawnAndLocked(t *testing.T) {
	f, diags := parse(t, `fn main() {
  spawn { var y = 1; }
  locked (m as write guard) { guard.push(1); }
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
	fn := f.Items[0].(*ast.FuncDecl)
	stmt0, ok := fn.Body.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt wrapping spawn, got %T", fn.Body.Stmts[0])
	}
	if _, ok := stmt0.X.(*ast.SpawnExpr); !ok {
		t.Fatalf("expected SpawnExpr, got %T", stmt0.X)
	}
	if _, ok := fn.Body.Stmts[1].(*ast.LockedStmt); !ok {
		t.Fatalf("expected LockedStmt, got %T", fn.Body.Stmts[1])
	}
}

func TestParseReportsErrorOnMutReceiver(t *testing.T) {
	_, diags := parse(t, `fn grow(mut self: Counter) { }`)
	if !diags.HasErrors() {
		t.Fatalf("expected a parse error for 'mut' on receiver")
	}
}
