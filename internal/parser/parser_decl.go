package parser

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/source"
)

func (p *Parser) parseFuncDecl(attrs *ast.PlatformAttr) *ast.FuncDecl {
	start := p.advance().Span // 'fn'
	name, _ := p.expect(lexer.IDENT)

	d := &ast.FuncDecl{Name: name.Text, Attrs: attrs}
	d.TypeParams = p.parseTypeParams()

	p.expect(lexer.LPAREN)
	// A receiver is written as the first parameter, `self: T`; receivers
	// are implicitly mutable, so an explicit 'mut' here is a parse error
	//.
	for !p.at(lexer.RPAREN) {
		if p.at(lexer.MUT) {
			p.errorf(p.cur().Span, "receivers and parameters are implicitly mutable; remove 'mut'")
			p.advance()
		}
		pname, _ := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		ptype := p.parseType()
		if pname.Text == "self" && d.Receiver == nil && len(d.Params) == 0 {
			if nt, ok := ptype.(*ast.NamedType); ok {
				d.Receiver = &ast.Receiver{Type: nt.Name, Sp: pname.Span}
			}
		} else {
			d.Params = append(d.Params, &ast.Param{Name: pname.Text, Type: ptype, Sp: pname.Span})
		}
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)

	if p.at(lexer.ARROW) {
		p.advance()
		d.Return = p.parseType()
	}
	if p.at(lexer.THROWS) {
		p.advance()
		d.Throws = p.parseThrowsList()
	}

	d.Body = p.parseBlockExpr()
	d.Sp = source.Merge(start, p.cur().Span)
	return d
}

func (p *Parser) parseFieldList(closeTok lexer.Kind) []*ast.Field {
	var fields []*ast.Field
	for !p.at(closeTok) {
		name, _ := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		ty := p.parseType()
		fields = append(fields, &ast.Field{Name: name.Text, Type: ty, Sp: name.Span})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return fields
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	start := p.advance().Span // 'struct'
	name, _ := p.expect(lexer.IDENT)
	d := &ast.StructDecl{Name: name.Text}
	d.TypeParams = p.parseTypeParams()
	p.expect(lexer.LBRACE)
	d.Fields = p.parseFieldList(lexer.RBRACE)
	p.expect(lexer.RBRACE)
	d.Sp = source.Merge(start, p.cur().Span)
	return d
}

func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	start := p.advance().Span // 'enum'
	name, _ := p.expect(lexer.IDENT)
	d := &ast.EnumDecl{Name: name.Text}
	d.TypeParams = p.parseTypeParams()
	p.expect(lexer.LBRACE)
	for !p.at(lexer.RBRACE) {
		vname, _ := p.expect(lexer.IDENT)
		v := ast.EnumVariant{Name: vname.Text}
		if p.at(lexer.LPAREN) {
			p.advance()
			v.Fields = p.parseFieldList(lexer.RPAREN)
			p.expect(lexer.RPAREN)
		}
		d.Variants = append(d.Variants, v)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE)
	d.Sp = source.Merge(start, p.cur().Span)
	return d
}

func (p *Parser) parseInterfaceDecl() *ast.InterfaceDecl {
	start := p.advance().Span // 'interface'
	name, _ := p.expect(lexer.IDENT)
	d := &ast.InterfaceDecl{Name: name.Text}
	p.expect(lexer.LBRACE)
	for !p.at(lexer.RBRACE) {
		p.expect(lexer.FN)
		mname, _ := p.expect(lexer.IDENT)
		m := ast.InterfaceMethod{Name: mname.Text}
		p.expect(lexer.LPAREN)
		for !p.at(lexer.RPAREN) {
			m.Params = append(m.Params, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RPAREN)
		if p.at(lexer.ARROW) {
			p.advance()
			m.Return = p.parseType()
		}
		if p.at(lexer.THROWS) {
			p.advance()
			m.Throws = p.parseThrowsList()
		}
		p.skipSemi()
		d.Methods = append(d.Methods, m)
	}
	p.expect(lexer.RBRACE)
	d.Sp = source.Merge(start, p.cur().Span)
	return d
}

func (p *Parser) parseExceptionDecl() *ast.ExceptionDecl {
	start := p.advance().Span // 'exception'
	name, _ := p.expect(lexer.IDENT)
	d := &ast.ExceptionDecl{Name: name.Text}
	if p.at(lexer.LBRACE) {
		p.advance()
		d.Fields = p.parseFieldList(lexer.RBRACE)
		p.expect(lexer.RBRACE)
	}
	d.Sp = source.Merge(start, p.cur().Span)
	return d
}

func (p *Parser) parseTypeAliasDecl() *ast.TypeAliasDecl {
	start := p.advance().Span // 'type'
	name, _ := p.expect(lexer.IDENT)
	d := &ast.TypeAliasDecl{Name: name.Text}
	d.TypeParams = p.parseTypeParams()
	p.expect(lexer.ASSIGN)
	d.Target = p.parseType()
	p.skipSemi()
	d.Sp = source.Merge(start, p.cur().Span)
	return d
}

func (p *Parser) parseExternDecl() *ast.ExternDecl {
	start := p.advance().Span // 'extern'
	p.expect(lexer.FN)
	name, _ := p.expect(lexer.IDENT)
	d := &ast.ExternDecl{Name: name.Text}
	p.expect(lexer.LPAREN)
	for !p.at(lexer.RPAREN) {
		d.Params = append(d.Params, p.parseType())
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	if p.at(lexer.ARROW) {
		p.advance()
		d.Return = p.parseType()
	}
	p.skipSemi()
	d.Sp = source.Merge(start, p.cur().Span)
	return d
}
