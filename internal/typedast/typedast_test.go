package typedast

import (
	"testing"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
	"github.com/naml-lang/namlc/internal/intern"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/parser"
	"github.com/naml-lang/namlc/internal/source"
	"github.com/naml-lang/namlc/internal/types"
)

func checkSrc(t *testing.T, src string) (*ast.File, *types.Result) {
	t.Helper()
	in := intern.New()
	toks := lexer.New(0, string(lexer.Normalize([]byte(src))), in).Lex()
	arena := ast.NewArena(0, in)
	diags := diag.NewList(source.NewMap())
	f := parser.Parse(toks, arena, diags, 0)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags.Items())
	}
	c := types.NewChecker(diags)
	res := c.Check(f)
	if diags.HasErrors() {
		t.Fatalf("check errors: %v", diags.Items())
	}
	return f, res
}

func TestAnnotateAssignTargetIsLValue(t *testing.T) {
	f, res := checkSrc(t, `
fn main() {
  var x = 1;
  x = 2;
}`)
	table := Annotate(f, res)
	fd := f.Items[0].(*ast.FuncDecl)
	assign := fd.Body.Stmts[1].(*ast.AssignStmt)
	ann, ok := table.Get(assign.Target)
	if !ok {
		t.Fatalf("expected annotation for assign target")
	}
	if !ann.LValue {
		t.Fatalf("expected assign target to be marked lvalue")
	}
}

func TestAnnotateRepeatedArrayUseNeedsClone(t *testing.T) {
	f, res := checkSrc(t, `
fn main() {
  var xs = [1, 2, 3];
  var a = xs;
  var b = xs;
}`)
	table := Annotate(f, res)
	fd := f.Items[0].(*ast.FuncDecl)
	firstUse := fd.Body.Stmts[1].(*ast.VarStmt).Value
	secondUse := fd.Body.Stmts[2].(*ast.VarStmt).Value
	a1, ok := table.Get(firstUse)
	if !ok {
		t.Fatalf("expected annotation for first use")
	}
	a2, ok := table.Get(secondUse)
	if !ok {
		t.Fatalf("expected annotation for second use")
	}
	if !a1.NeedsClone {
		t.Fatalf("expected first use of a multiply-read array binding to need a clone")
	}
	if a2.NeedsClone {
		t.Fatalf("expected last use of the array binding to not need a clone")
	}
}
