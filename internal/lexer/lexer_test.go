package lexer

import (
	"testing"

	"github.com/naml-lang/namlc/internal/intern"
)

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexArithmetic(t *testing.T) {
	in := intern.New()
	l := New(0, "var x = 2 + 3 * 4;", in)
	toks := l.Lex()
	want := []Kind{VAR, IDENT, ASSIGN, INT, PLUS, INT, STAR, INT, SEMI, EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexLineComment(t *testing.T) {
	in := intern.New()
	toks := New(0, "1 // trailing\n2", in).Lex()
	if len(toks) != 3 || toks[0].Kind != INT || toks[1].Kind != INT {
		t.Fatalf("comment not elided: %v", kinds(toks))
	}
}

func TestLexNestedBlockComment(t *testing.T) {
	in := intern.New()
	toks := New(0, "1 /* outer /* inner */ still */ 2", in).Lex()
	want := []Kind{INT, INT, EOF}
	if got := kinds(toks); len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	in := intern.New()
	toks := New(0, `"abc`, in).Lex()
	if toks[0].Kind != ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %s", toks[0].Kind)
	}
}

func TestLexStringEscapes(t *testing.T) {
	in := intern.New()
	toks := New(0, `"a\nb"`, in).Lex()
	if toks[0].Kind != STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Kind)
	}
	if got := in.Lookup(toks[0].Sym); got != "a\nb" {
		t.Fatalf("got %q", got)
	}
}

func TestLexKeywordsNotIdentifiers(t *testing.T) {
	in := intern.New()
	toks := New(0, "fn struct exception spawn locked", in).Lex()
	want := []Kind{FN, STRUCT, EXCEPTION, SPAWN, LOCKED, EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
