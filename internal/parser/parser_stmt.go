package parser

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/source"
)

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case lexer.VAR:
		return p.parseVarStmt()
	case lexer.CONST:
		return p.parseConstStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.THROW:
		return p.parseThrowStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.LOOP:
		return p.parseLoopStmt()
	case lexer.SWITCH:
		return p.parseSwitchStmt()
	case lexer.BREAK:
		sp := p.advance().Span
		p.skipSemi()
		return &ast.BreakStmt{Sp: sp}
	case lexer.CONTINUE:
		sp := p.advance().Span
		p.skipSemi()
		return &ast.ContinueStmt{Sp: sp}
	case lexer.LBRACE:
		blk := p.parseBlockExpr()
		return &ast.BlockStmt{Block: blk, Sp: blk.Sp}
	case lexer.LOCKED:
		return p.parseLockedStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseVarStmt() ast.Stmt {
	start := p.advance().Span // 'var'
	name, _ := p.expect(lexer.IDENT)
	s := &ast.VarStmt{Name: name.Text}
	if p.at(lexer.COLON) {
		p.advance()
		s.Type = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	s.Value = p.parseExpr(precLowest)
	if p.at(lexer.ELSE) {
		p.advance()
		s.ElseBlk = p.parseBlockExpr()
	}
	p.skipSemi()
	s.Sp = source.Merge(start, p.cur().Span)
	return s
}

func (p *Parser) parseConstStmt() ast.Stmt {
	start := p.advance().Span // 'const'
	name, _ := p.expect(lexer.IDENT)
	s := &ast.ConstStmt{Name: name.Text}
	if p.at(lexer.COLON) {
		p.advance()
		s.Type = p.parseType()
	}
	p.expect(lexer.ASSIGN)
	s.Value = p.parseExpr(precLowest)
	p.skipSemi()
	s.Sp = source.Merge(start, p.cur().Span)
	return s
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance().Span // 'return'
	s := &ast.ReturnStmt{}
	if !p.at(lexer.SEMI) && !p.at(lexer.RBRACE) {
		s.Value = p.parseExpr(precLowest)
	}
	p.skipSemi()
	s.Sp = source.Merge(start, p.cur().Span)
	return s
}

func (p *Parser) parseThrowStmt() ast.Stmt {
	start := p.advance().Span // 'throw'
	s := &ast.ThrowStmt{Value: p.parseExpr(precLowest)}
	p.skipSemi()
	s.Sp = source.Merge(start, p.cur().Span)
	return s
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance().Span // 'if'
	cond := p.parseExprNoStructLit(precLowest)
	then := p.parseBlockExpr()
	s := &ast.IfStmt{Cond: cond, Then: then}
	if p.at(lexer.ELSE) {
		p.advance()
		if p.at(lexer.IF) {
			s.Else = p.parseIfStmt()
		} else {
			blk := p.parseBlockExpr()
			s.Else = &ast.BlockStmt{Block: blk, Sp: blk.Sp}
		}
	}
	s.Sp = source.Merge(start, p.cur().Span)
	return s
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance().Span // 'while'
	cond := p.parseExprNoStructLit(precLowest)
	body := p.parseBlockExpr()
	return &ast.WhileStmt{Cond: cond, Body: body, Sp: source.Merge(start, p.cur().Span)}
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance().Span // 'for'
	name, _ := p.expect(lexer.IDENT)
	p.expect(lexer.IN)
	iter := p.parseExprNoStructLit(precLowest)
	body := p.parseBlockExpr()
	return &ast.ForStmt{VarName: name.Text, Iterable: iter, Body: body, Sp: source.Merge(start, p.cur().Span)}
}

func (p *Parser) parseLoopStmt() ast.Stmt {
	start := p.advance().Span // 'loop'
	body := p.parseBlockExpr()
	return &ast.LoopStmt{Body: body, Sp: source.Merge(start, p.cur().Span)}
}

func (p *Parser) parseSwitchStmt() ast.Stmt {
	start := p.advance().Span // 'switch'
	scrutinee := p.parseExprNoStructLit(precLowest)
	p.expect(lexer.LBRACE)
	s := &ast.SwitchStmt{Scrutinee: scrutinee}
	for !p.at(lexer.RBRACE) {
		p.expect(lexer.CASE)
		pat := p.parsePattern()
		c := ast.SwitchCase{Pattern: pat}
		if p.at(lexer.IF) {
			p.advance()
			c.Guard = p.parseExprNoStructLit(precLowest)
		}
		p.expect(lexer.FARROW)
		c.Body = p.parseCaseBody()
		s.Cases = append(s.Cases, c)
	}
	p.expect(lexer.RBRACE)
	s.Sp = source.Merge(start, p.cur().Span)
	return s
}

// parseCaseBody accepts either a `{ ... }` block or a bare expression
// followed by a comma/RBRACE, wrapping the latter as a single-expression
// block for uniform downstream handling.
func (p *Parser) parseCaseBody() *ast.BlockExpr {
	if p.at(lexer.LBRACE) {
		return p.parseBlockExpr()
	}
	start := p.cur().Span
	e := p.parseExpr(precLowest)
	if p.at(lexer.COMMA) {
		p.advance()
	}
	return &ast.BlockExpr{Tail: e, Sp: source.Merge(start, p.cur().Span)}
}

func (p *Parser) parseLockedStmt() ast.Stmt {
	start := p.advance().Span // 'locked'
	p.expect(lexer.LPAREN)
	// The target is a name or a field chain; a full expression parse would
	// read the following `as` as a cast.
	target := p.parsePrimary()
	for p.at(lexer.DOT) {
		p.advance()
		name, _ := p.expect(lexer.IDENT)
		target = &ast.FieldExpr{Recv: target, Field: name.Text, Sp: source.Merge(target.Span(), name.Span)}
	}
	forWrite := true
	var binding string
	p.expect(lexer.AS)
	if p.at(lexer.IDENT) && p.cur().Text == "read" {
		p.advance()
		forWrite = false
	} else if p.at(lexer.IDENT) && p.cur().Text == "write" {
		p.advance()
	}
	b, _ := p.expect(lexer.IDENT)
	binding = b.Text
	p.expect(lexer.RPAREN)
	body := p.parseBlockExpr()
	return &ast.LockedStmt{
		Target: target, Binding: binding, ForWrite: forWrite, Body: body,
		Sp: source.Merge(start, p.cur().Span),
	}
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.cur().Span
	e := p.parseExpr(precLowest)

	op, isAssign := p.assignOpAt()
	if isAssign {
		p.advance()
		val := p.parseExpr(precLowest)
		p.skipSemi()
		return &ast.AssignStmt{Target: e, Op: op, Value: val, Sp: source.Merge(start, p.cur().Span)}
	}

	p.skipSemi()
	return &ast.ExprStmt{X: e, Sp: source.Merge(start, p.cur().Span)}
}

func (p *Parser) assignOpAt() (ast.AssignOp, bool) {
	switch p.cur().Kind {
	case lexer.ASSIGN:
		return ast.AssignPlain, true
	}
	return 0, false
}

func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start, _ := p.expect(lexer.LBRACE)
	b := &ast.BlockExpr{}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.failed() {
			break
		}
		// A trailing bare expression (no following statement terminator
		// and immediately followed by '}') becomes the block's tail value.
		save := p.pos
		if isExprStart(p.cur().Kind) {
			e := p.parseExpr(precLowest)
			if p.at(lexer.RBRACE) {
				b.Tail = e
				break
			}
			if p.at(lexer.SEMI) {
				p.advance()
				b.Stmts = append(b.Stmts, &ast.ExprStmt{X: e, Sp: e.Span()})
				continue
			}
			if op, isAssign := p.assignOpAt(); isAssign {
				p.advance()
				val := p.parseExpr(precLowest)
				p.skipSemi()
				b.Stmts = append(b.Stmts, &ast.AssignStmt{Target: e, Op: op, Value: val, Sp: e.Span()})
				continue
			}
			b.Stmts = append(b.Stmts, &ast.ExprStmt{X: e, Sp: e.Span()})
			continue
		}
		p.pos = save
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	end, _ := p.expect(lexer.RBRACE)
	b.Sp = source.Merge(start.Span, end.Span)
	return b
}

func isExprStart(k lexer.Kind) bool {
	switch k {
	case lexer.VAR, lexer.CONST, lexer.RETURN, lexer.THROW, lexer.IF, lexer.WHILE,
		lexer.FOR, lexer.LOOP, lexer.SWITCH, lexer.BREAK, lexer.CONTINUE, lexer.LOCKED:
		return false
	}
	return true
}
