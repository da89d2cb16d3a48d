// Package parser implements a recursive-descent, Pratt-precedence parser:
// tokens plus an AST arena in, a list of top-level items (or a structured
// parse error with span) out. The parser never panics; internal failures
// are returned as errors so a caller embedding this parser (the driver, or
// a future tool) can decide how to recover.
package parser

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/source"
)

// Parser holds the token slice and current read position. It stops at the
// first error within an item and reports only that error rather than
// attempting recovery; callers wanting item-boundary recovery wrap Parse
// per file and resume after a failing item's closing brace.
type Parser struct {
	toks  []lexer.Token
	pos   int
	arena *ast.Arena
	diags *diag.List
	file  source.FileID

	// noStructLit disables struct-literal disambiguation when > 0 (we are
	// parsing an if/while/for/switch condition, where a following `{`
	// must be the body, not a struct literal — ).
	noStructLit int
}

// New creates a Parser over toks, attributing diagnostics to file via diags.
func New(toks []lexer.Token, arena *ast.Arena, diags *diag.List, file source.FileID) *Parser {
	return &Parser{toks: toks, arena: arena, diags: diags, file: file}
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[idx]
}

func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// expect consumes the current token if it matches k, else records a parse
// error and returns ok=false without advancing (so the caller can recover
// at the next item boundary).
func (p *Parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	t := p.cur()
	p.errorf(t.Span, "expected %s, found %s", k, t.Kind)
	return t, false
}

func (p *Parser) errorf(sp source.Span, format string, args ...interface{}) {
	p.diags.Errorf(diag.KindExpectedToken, sp, format, args...)
}

// failed reports whether any error has been recorded so far.
func (p *Parser) failed() bool { return p.diags.HasErrors() }

// Parse consumes the whole token stream and returns the parsed file. On a
// parse error the returned file may be partial; callers must check
// diags.HasErrors() before proceeding to type checking.
func Parse(toks []lexer.Token, arena *ast.Arena, diags *diag.List, file source.FileID) *ast.File {
	p := New(toks, arena, diags, file)
	return p.parseFile()
}

func (p *Parser) parseFile() *ast.File {
	start := p.cur().Span
	f := &ast.File{Sp: start}

	if p.at(lexer.MODULE) {
		f.ModuleDecl = p.parseModuleDecl()
	}
	for p.at(lexer.USE) {
		f.Uses = append(f.Uses, p.parseUseDecl())
		if p.failed() {
			return f
		}
	}
	for !p.at(lexer.EOF) {
		item := p.parseItem()
		if item == nil || p.failed() {
			break
		}
		f.Items = append(f.Items, item)
	}
	end := p.cur().Span
	f.Sp = source.Merge(start, end)
	return f
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	start := p.advance().Span // 'module'
	path := p.parseDottedPath()
	return &ast.ModuleDecl{Path: path, Sp: source.Merge(start, p.cur().Span)}
}

func (p *Parser) parseDottedPath() string {
	name, _ := p.expect(lexer.IDENT)
	path := name.Text
	for p.at(lexer.COLONCOLON) {
		p.advance()
		seg, _ := p.expect(lexer.IDENT)
		path += "::" + seg.Text
	}
	return path
}

func (p *Parser) parseUseDecl() *ast.UseDecl {
	start := p.advance().Span // 'use'
	path := p.parseDottedPath()
	u := &ast.UseDecl{Path: path}

	if p.at(lexer.COLONCOLON) {
		p.advance()
		switch {
		case p.at(lexer.STAR):
			p.advance()
			u.Kind = ast.UseWildcard
		case p.at(lexer.LBRACE):
			p.advance()
			u.Kind = ast.UseList
			for !p.at(lexer.RBRACE) {
				name, _ := p.expect(lexer.IDENT)
				alias := ast.UseAlias{Name: name.Text}
				if p.at(lexer.AS) {
					p.advance()
					a, _ := p.expect(lexer.IDENT)
					alias.Alias = a.Text
				}
				u.Symbols = append(u.Symbols, alias)
				if p.at(lexer.COMMA) {
					p.advance()
					continue
				}
				break
			}
			p.expect(lexer.RBRACE)
		default:
			name, _ := p.expect(lexer.IDENT)
			u.Kind = ast.UseSingle
			u.Symbols = []ast.UseAlias{{Name: name.Text}}
		}
	}
	p.skipSemi()
	u.Sp = source.Merge(start, p.cur().Span)
	return u
}

func (p *Parser) skipSemi() {
	if p.at(lexer.SEMI) {
		p.advance()
	}
}

func (p *Parser) parsePlatformAttr() *ast.PlatformAttr {
	if !p.at(lexer.ATTR) {
		return nil
	}
	p.advance() // '#['
	name, _ := p.expect(lexer.IDENT) // "platforms"
	_ = name
	p.expect(lexer.LPAREN)
	var plats []string
	for !p.at(lexer.RPAREN) {
		id, _ := p.expect(lexer.IDENT)
		plats = append(plats, id.Text)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.RBRACKET)
	return &ast.PlatformAttr{Platforms: plats}
}

func (p *Parser) parseItem() ast.Item {
	attrs := p.parsePlatformAttr()

	switch p.cur().Kind {
	case lexer.FN:
		return p.parseFuncDecl(attrs)
	case lexer.STRUCT:
		return p.parseStructDecl()
	case lexer.ENUM:
		return p.parseEnumDecl()
	case lexer.INTERFACE:
		return p.parseInterfaceDecl()
	case lexer.EXCEPTION:
		return p.parseExceptionDecl()
	case lexer.TYPE:
		return p.parseTypeAliasDecl()
	case lexer.EXTERN:
		return p.parseExternDecl()
	default:
		start := p.cur().Span
		stmt := p.parseStmt()
		return &ast.TopLevelStmt{Stmt: stmt, Sp: source.Merge(start, p.cur().Span)}
	}
}
