package lexer

import (
	"fmt"

	"github.com/naml-lang/namlc/internal/intern"
	"github.com/naml-lang/namlc/internal/source"
)

// Kind is the category of a token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT
	INT
	FLOAT
	STRING
	TEMPLATE_STRING

	// Keywords
	FN
	VAR
	CONST
	IF
	ELSE
	WHILE
	FOR
	IN
	LOOP
	SWITCH
	CASE
	BREAK
	CONTINUE
	RETURN
	THROW
	THROWS
	TRY
	CATCH
	STRUCT
	ENUM
	INTERFACE
	EXCEPTION
	TYPE
	USE
	AS
	EXTERN
	MODULE
	SPAWN
	LOCKED
	MUT
	SELF
	TRUE
	FALSE
	NONE
	SOME
	IS

	// Operators and punctuation
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	ASSIGN
	EQ
	NEQ
	LT
	GT
	LTE
	GTE
	AND
	OR
	NOT
	BITAND
	BITOR
	BITXOR
	BITNOT
	SHL
	SHR
	ARROW   // ->
	FARROW  // =>
	DOTDOT  // ..
	QUESTION
	ELVIS  // ??
	BANG   // !
	DOT
	COMMA
	COLON
	COLONCOLON // ::
	SEMI
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	ATTR // #[
)

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT",
	STRING: "STRING", TEMPLATE_STRING: "TEMPLATE_STRING",
	FN: "fn", VAR: "var", CONST: "const", IF: "if", ELSE: "else", WHILE: "while",
	FOR: "for", IN: "in", LOOP: "loop", SWITCH: "switch", CASE: "case",
	BREAK: "break", CONTINUE: "continue", RETURN: "return", THROW: "throw",
	THROWS: "throws", TRY: "try", CATCH: "catch", STRUCT: "struct", ENUM: "enum",
	INTERFACE: "interface", EXCEPTION: "exception", TYPE: "type", USE: "use",
	AS: "as", EXTERN: "extern", MODULE: "module", SPAWN: "spawn",
	LOCKED: "locked", MUT: "mut", SELF: "self", TRUE: "true", FALSE: "false",
	NONE: "none", SOME: "some", IS: "is",
}

// Keywords maps reserved identifier text to its keyword Kind.
var Keywords = map[string]Kind{
	"fn": FN, "var": VAR, "const": CONST, "if": IF, "else": ELSE,
	"while": WHILE, "for": FOR, "in": IN, "loop": LOOP, "switch": SWITCH,
	"case": CASE, "break": BREAK, "continue": CONTINUE, "return": RETURN,
	"throw": THROW, "throws": THROWS, "try": TRY, "catch": CATCH, "struct": STRUCT, "enum": ENUM,
	"interface": INTERFACE, "exception": EXCEPTION, "type": TYPE, "use": USE,
	"as": AS, "extern": EXTERN, "module": MODULE, "spawn": SPAWN,
	"locked": LOCKED, "mut": MUT, "self": SELF, "true": TRUE, "false": FALSE,
	"none": NONE, "some": SOME, "is": IS,
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is the unit the parser consumes. Sym is populated only for
// identifiers and string literals.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
	Sym  intern.Symbol
}
