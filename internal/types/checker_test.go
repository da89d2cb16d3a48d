package types

import (
	"testing"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
	"github.com/naml-lang/namlc/internal/intern"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/parser"
	"github.com/naml-lang/namlc/internal/source"
)

func checkSrc(t *testing.T, src string) (*Result, *diag.List) {
	t.Helper()
	in := intern.New()
	toks := lexer.New(0, string(lexer.Normalize([]byte(src))), in).Lex()
	arena := ast.NewArena(0, in)
	diags := diag.NewList(source.NewMap())
	f := parser.Parse(toks, arena, diags, 0)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags.Items())
	}
	c := NewChecker(diags)
	return c.Check(f), diags
}

func TestCheckArithmeticAndVarBinding(t *testing.T) {
	_, diags := checkSrc(t, `fn main() -> int { var x = 2 + 3 * 4; return x; }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
}

func TestCheckTypeMismatchReported(t *testing.T) {
	_, diags := checkSrc(t, `fn main() -> int { return "nope"; }`)
	if !diags.HasErrors() {
		t.Fatalf("expected a type mismatch error")
	}
}

func TestCheckStructFieldsAndMethod(t *testing.T) {
	_, diags := checkSrc(t, `
struct Point { x: int, y: int }
fn dist(self: Point) -> int { return self.x + self.y; }
fn main() -> int {
  var p = Point { x: 1, y: 2 };
  return p.dist();
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
}

func TestCheckGenericFunctionMonomorphization(t *testing.T) {
	res, diags := checkSrc(t, `
fn id<T>(x: T) -> T { return x; }
fn main() -> int {
  var a = id<int>(7);
  var b = id<int>(9);
  return a + b;
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
	if len(res.Mono.Items) != 1 {
		t.Fatalf("expected one deduplicated monomorphization, got %d: %+v", len(res.Mono.Items), res.Mono.Items)
	}
	if res.Mono.Items[0].MangledName != "id$int" {
		t.Fatalf("unexpected mangled name: %s", res.Mono.Items[0].MangledName)
	}
}

func TestCheckEnumSwitchExhaustivePattern(t *testing.T) {
	_, diags := checkSrc(t, `
enum Shape { Circle(radius: int), Square(side: int) }
fn area(s: Shape) -> int {
  switch s {
    case Shape::Circle(r) => { return r * r; }
    case Shape::Square(side) => { return side * side; }
  }
  return 0;
}
fn main() -> int { return area(Shape::Square(side: 4)); }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
}

func TestCheckUndefinedVariableReported(t *testing.T) {
	_, diags := checkSrc(t, `fn main() { var x = y; }`)
	if !diags.HasErrors() {
		t.Fatalf("expected undefined-variable error")
	}
}

func TestCheckOptionElvis(t *testing.T) {
	_, diags := checkSrc(t, `
fn main() -> int {
  var a: option<int> = none;
  var b = a ?? 5;
  return b;
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
}

func TestCheckAmbiguousBoundMethodRejected(t *testing.T) {
	_, diags := checkSrc(t, `
interface Show { fn text() -> string }
interface Display { fn text() -> string }
fn describe<T: Show + Display>(x: T) -> string { return x.text(); }
fn main() { }`)
	if !diags.HasErrors() {
		t.Fatalf("expected ambiguous-method error")
	}
}
