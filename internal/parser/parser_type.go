package parser

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/source"
)

func (p *Parser) parseType() ast.TypeExpr {
	start := p.cur().Span

	switch p.cur().Kind {
	case lexer.LBRACKET:
		p.advance()
		elem := p.parseType()
		if p.at(lexer.SEMI) {
			p.advance()
			n, _ := p.expect(lexer.INT)
			p.expect(lexer.RBRACKET)
			return &ast.FixedArrayType{Elem: elem, N: parseIntLit(n.Text), Sp: source.Merge(start, p.cur().Span)}
		}
		p.expect(lexer.RBRACKET)
		return &ast.ArrayType{Elem: elem, Sp: source.Merge(start, p.cur().Span)}

	case lexer.LPAREN:
		// Function type: (T, T) -> T [throws E, F]
		p.advance()
		var params []ast.TypeExpr
		for !p.at(lexer.RPAREN) {
			params = append(params, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RPAREN)
		p.expect(lexer.ARROW)
		ret := p.parseType()
		ft := &ast.FuncType{Params: params, Return: ret}
		if p.at(lexer.THROWS) {
			p.advance()
			ft.Throws = p.parseThrowsList()
		}
		ft.Sp = source.Merge(start, p.cur().Span)
		return ft

	case lexer.IDENT:
		name := p.advance().Text
		nt := &ast.NamedType{Name: name}
		if name == "option" && p.at(lexer.LT) {
			p.advance()
			inner := p.parseType()
			p.expect(lexer.GT)
			return &ast.OptionType{Elem: inner, Sp: source.Merge(start, p.cur().Span)}
		}
		if name == "map" && p.at(lexer.LT) {
			p.advance()
			k := p.parseType()
			p.expect(lexer.COMMA)
			v := p.parseType()
			p.expect(lexer.GT)
			return &ast.MapType{Key: k, Val: v, Sp: source.Merge(start, p.cur().Span)}
		}
		if name == "channel" && p.at(lexer.LT) {
			p.advance()
			inner := p.parseType()
			p.expect(lexer.GT)
			return &ast.ChannelType{Elem: inner, Sp: source.Merge(start, p.cur().Span)}
		}
		if p.at(lexer.LT) {
			p.advance()
			for !p.at(lexer.GT) {
				nt.Args = append(nt.Args, p.parseType())
				if p.at(lexer.COMMA) {
					p.advance()
					continue
				}
				break
			}
			p.expect(lexer.GT)
		}
		nt.Sp = source.Merge(start, p.cur().Span)
		return nt
	}

	p.errorf(start, "expected type, found %s", p.cur().Kind)
	p.advance()
	return &ast.NamedType{Name: "Error", Sp: start}
}

func (p *Parser) parseThrowsList() []string {
	var names []string
	id, _ := p.expect(lexer.IDENT)
	names = append(names, id.Text)
	for p.at(lexer.COMMA) {
		p.advance()
		id, _ := p.expect(lexer.IDENT)
		names = append(names, id.Text)
	}
	return names
}

// parseTypeParams parses `<T: Bound + Bound, U>` generic parameter lists.
func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.at(lexer.LT) {
		return nil
	}
	p.advance()
	var params []ast.TypeParam
	for !p.at(lexer.GT) {
		name, _ := p.expect(lexer.IDENT)
		tp := ast.TypeParam{Name: name.Text}
		if p.at(lexer.COLON) {
			p.advance()
			bound, _ := p.expect(lexer.IDENT)
			tp.Bounds = append(tp.Bounds, bound.Text)
			for p.at(lexer.PLUS) {
				p.advance()
				b, _ := p.expect(lexer.IDENT)
				tp.Bounds = append(tp.Bounds, b.Text)
			}
		}
		params = append(params, tp)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.GT)
	return params
}

// parseTypeArgs parses an explicit generic instantiation at a call site,
// e.g. `id<int>(7)`. Returns nil, false if no `<...>` is present — callers
// must be careful this is only attempted where `<` cannot be the
// less-than operator (namely immediately after a callee identifier with no
// intervening whitespace-sensitive ambiguity; naml disambiguates via the
// parser knowing it is in callee-type-arg position).
func (p *Parser) tryParseTypeArgs() ([]ast.TypeExpr, bool) {
	if !p.at(lexer.LT) {
		return nil, false
	}
	save := p.pos
	p.advance()
	var args []ast.TypeExpr
	for !p.at(lexer.GT) {
		if !p.at(lexer.IDENT) && !p.at(lexer.LBRACKET) {
			p.pos = save
			return nil, false
		}
		args = append(args, p.parseType())
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(lexer.GT) {
		p.pos = save
		return nil, false
	}
	p.advance()
	return args, true
}

func parseIntLit(s string) int64 {
	var n int64
	for _, c := range s {
		n = n*10 + int64(c-'0')
	}
	return n
}
