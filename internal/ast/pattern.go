package ast

import "github.com/naml-lang/namlc/internal/source"

// Pattern is a switch/match arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern (`_`) matches anything and binds nothing.
type WildcardPattern struct{ Sp source.Span }

func (p *WildcardPattern) Span() source.Span { return p.Sp }
func (p *WildcardPattern) patternNode()      {}

// LiteralPattern matches a literal value exactly.
type LiteralPattern struct {
	Value Expr // IntLit/FloatLit/BoolLit/StringLit
	Sp    source.Span
}

func (p *LiteralPattern) Span() source.Span { return p.Sp }
func (p *LiteralPattern) patternNode()      {}

// IdentPattern is a bare identifier: it binds the scrutinee's type unless
// the name matches a nullary enum-variant name, in which case it matches
// that variant instead of binding.
type IdentPattern struct {
	Name string
	Sp   source.Span
}

func (p *IdentPattern) Span() source.Span { return p.Sp }
func (p *IdentPattern) patternNode()      {}

// VariantPattern matches `Enum::Variant(binding, ...)`.
type VariantPattern struct {
	Enum, Variant string
	Bindings      []string
	Sp            source.Span
}

func (p *VariantPattern) Span() source.Span { return p.Sp }
func (p *VariantPattern) patternNode()      {}
