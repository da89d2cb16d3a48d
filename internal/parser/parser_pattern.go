package parser

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/source"
)

func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur().Span

	if p.at(lexer.IDENT) && p.cur().Text == "_" {
		p.advance()
		return &ast.WildcardPattern{Sp: start}
	}

	switch p.cur().Kind {
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.TRUE, lexer.FALSE:
		lit := p.parsePrimary()
		return &ast.LiteralPattern{Value: lit, Sp: source.Merge(start, p.cur().Span)}
	case lexer.IDENT:
		name := p.advance().Text
		if p.at(lexer.COLONCOLON) {
			p.advance()
			variant, _ := p.expect(lexer.IDENT)
			vp := &ast.VariantPattern{Enum: name, Variant: variant.Text}
			if p.at(lexer.LPAREN) {
				p.advance()
				for !p.at(lexer.RPAREN) {
					b, _ := p.expect(lexer.IDENT)
					vp.Bindings = append(vp.Bindings, b.Text)
					if p.at(lexer.COMMA) {
						p.advance()
						continue
					}
					break
				}
				p.expect(lexer.RPAREN)
			}
			vp.Sp = source.Merge(start, p.cur().Span)
			return vp
		}
		return &ast.IdentPattern{Name: name, Sp: source.Merge(start, p.cur().Span)}
	}

	p.errorf(start, "expected pattern, found %s", p.cur().Kind)
	p.advance()
	return &ast.WildcardPattern{Sp: start}
}
