// Package ast defines the arena-allocated AST: a tagged variant tree
// whose nodes hold borrowed references into the arena.
//
// Go's garbage collector already releases an unreachable pointer graph as
// one unit once nothing outside it holds a reference, which is the
// observable behavior a bump arena provides; Arena here exists to mirror
// the "allocate only through the arena" discipline — it accepts either a
// literal bump arena or this pointer model — and to give the parser a
// single place to count nodes for diagnostics.
package ast

import (
	"github.com/naml-lang/namlc/internal/intern"
	"github.com/naml-lang/namlc/internal/source"
)

// Node is implemented by every AST node.
type Node interface {
	Span() source.Span
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Item is any top-level declaration.
type Item interface {
	Node
	itemNode()
}

// Arena bump-allocates AST nodes for one compilation unit. It is released
// as a unit when the File it produced goes out of scope.
type Arena struct {
	file   source.FileID
	nodes  int
	Interner *intern.Interner
}

// NewArena creates an arena for file, backed by shared interner in.
func NewArena(file source.FileID, in *intern.Interner) *Arena {
	return &Arena{file: file, Interner: in}
}

// NodeCount returns how many nodes this arena has allocated, for
// diagnostics only.
func (a *Arena) NodeCount() int { return a.nodes }

func (a *Arena) track() { a.nodes++ }

// ---- File ----

// File is the parsed result of one source file.
type File struct {
	ModuleDecl *ModuleDecl
	Uses       []*UseDecl
	Items      []Item
	Sp         source.Span
}

func (f *File) Span() source.Span { return f.Sp }

// ModuleDecl names the module a file belongs to.
type ModuleDecl struct {
	Path string
	Sp   source.Span
}

func (m *ModuleDecl) Span() source.Span { return m.Sp }

// UseImportKind distinguishes `use path::*`, `use path::{a, b as c}`, and
// `use path::single`.
type UseImportKind int

const (
	UseWildcard UseImportKind = iota
	UseList
	UseSingle
)

// UseAlias is one imported name, optionally aliased.
type UseAlias struct {
	Name  string
	Alias string // empty if not aliased
}

// UseDecl is a `use` import declaration.
type UseDecl struct {
	Path    string
	Kind    UseImportKind
	Symbols []UseAlias
	Sp      source.Span
}

func (u *UseDecl) Span() source.Span { return u.Sp }
func (u *UseDecl) itemNode()         {}

// ---- Type syntax ----

// TypeExpr is the parsed syntax for a type annotation, distinct from the
// semantic types the checker computes (internal/types.Type).
type TypeExpr interface {
	Node
	typeExprNode()
}

type NamedType struct {
	Name string
	Args []TypeExpr // generic args, e.g. Map<K, V>
	Sp   source.Span
}

func (t *NamedType) Span() source.Span { return t.Sp }
func (t *NamedType) typeExprNode()     {}

type ArrayType struct {
	Elem TypeExpr
	Sp   source.Span
}

func (t *ArrayType) Span() source.Span { return t.Sp }
func (t *ArrayType) typeExprNode()     {}

type FixedArrayType struct {
	Elem TypeExpr
	N    int64
	Sp   source.Span
}

func (t *FixedArrayType) Span() source.Span { return t.Sp }
func (t *FixedArrayType) typeExprNode()     {}

type OptionType struct {
	Elem TypeExpr
	Sp   source.Span
}

func (t *OptionType) Span() source.Span { return t.Sp }
func (t *OptionType) typeExprNode()     {}

type MapType struct {
	Key, Val TypeExpr
	Sp       source.Span
}

func (t *MapType) Span() source.Span { return t.Sp }
func (t *MapType) typeExprNode()     {}

type ChannelType struct {
	Elem TypeExpr
	Sp   source.Span
}

func (t *ChannelType) Span() source.Span { return t.Sp }
func (t *ChannelType) typeExprNode()     {}

type FuncType struct {
	Params     []TypeExpr
	Return     TypeExpr
	Throws     []string
	IsVariadic bool
	Sp         source.Span
}

func (t *FuncType) Span() source.Span { return t.Sp }
func (t *FuncType) typeExprNode()     {}

// ---- Generic/bound syntax ----

// TypeParam is a declared generic parameter, e.g. `T: Show + Eq`.
type TypeParam struct {
	Name   string
	Bounds []string
}

// Field is a struct field declaration.
type Field struct {
	Name string
	Type TypeExpr
	Sp   source.Span
}

// Param is a function parameter.
type Param struct {
	Name string
	Type TypeExpr
	Sp   source.Span
}

// Receiver is an implicit-mutable `(self: T)` method receiver.
type Receiver struct {
	Type string
	Sp   source.Span
}

// PlatformAttr is a `#[platforms(...)]` item attribute.
type PlatformAttr struct {
	Platforms []string
}

// ---- Items ----

type FuncDecl struct {
	Name       string
	Receiver   *Receiver
	TypeParams []TypeParam
	Params     []*Param
	Return     TypeExpr
	Throws     []string
	Body       *BlockExpr
	Attrs      *PlatformAttr
	Sp         source.Span
}

func (d *FuncDecl) Span() source.Span { return d.Sp }
func (d *FuncDecl) itemNode()         {}

type StructDecl struct {
	Name       string
	TypeParams []TypeParam
	Fields     []*Field
	Sp         source.Span
}

func (d *StructDecl) Span() source.Span { return d.Sp }
func (d *StructDecl) itemNode()         {}

type EnumVariant struct {
	Name   string
	Fields []*Field // empty when the variant carries no data
}

type EnumDecl struct {
	Name       string
	TypeParams []TypeParam
	Variants   []EnumVariant
	Sp         source.Span
}

func (d *EnumDecl) Span() source.Span { return d.Sp }
func (d *EnumDecl) itemNode()         {}

type InterfaceMethod struct {
	Name   string
	Params []TypeExpr
	Return TypeExpr
	Throws []string
}

type InterfaceDecl struct {
	Name    string
	Methods []InterfaceMethod
	Sp      source.Span
}

func (d *InterfaceDecl) Span() source.Span { return d.Sp }
func (d *InterfaceDecl) itemNode()         {}

type ExceptionDecl struct {
	Name   string
	Fields []*Field
	Sp     source.Span
}

func (d *ExceptionDecl) Span() source.Span { return d.Sp }
func (d *ExceptionDecl) itemNode()         {}

type TypeAliasDecl struct {
	Name       string
	TypeParams []TypeParam
	Target     TypeExpr
	Sp         source.Span
}

func (d *TypeAliasDecl) Span() source.Span { return d.Sp }
func (d *TypeAliasDecl) itemNode()         {}

type ExternDecl struct {
	Name   string
	Params []TypeExpr
	Return TypeExpr
	Sp     source.Span
}

func (d *ExternDecl) Span() source.Span { return d.Sp }
func (d *ExternDecl) itemNode()         {}

// TopLevelStmt wraps a bare top-level statement (e.g. a `fn main` call in
// script mode) as an Item so files can mix declarations and statements.
type TopLevelStmt struct {
	Stmt Stmt
	Sp   source.Span
}

func (d *TopLevelStmt) Span() source.Span { return d.Sp }
func (d *TopLevelStmt) itemNode()         {}
