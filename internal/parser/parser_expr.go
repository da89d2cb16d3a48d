package parser

import (
	"strconv"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/source"
)

// Precedence levels, low to high, Unary binds tighter
// than every binary level; postfix binds tightest of all and is handled
// directly inside parsePostfix rather than through this table.
const (
	precLowest = iota
	precOr
	precAnd
	precEq
	precRel
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precRange
)

type binInfo struct {
	prec int
	op   ast.BinOp
}

var binTable = map[lexer.Kind]binInfo{
	lexer.OR:      {precOr, ast.OpOr},
	lexer.AND:     {precAnd, ast.OpAnd},
	lexer.EQ:      {precEq, ast.OpEq},
	lexer.NEQ:     {precEq, ast.OpNeq},
	lexer.LT:      {precRel, ast.OpLt},
	lexer.GT:      {precRel, ast.OpGt},
	lexer.LTE:     {precRel, ast.OpLte},
	lexer.GTE:     {precRel, ast.OpGte},
	lexer.IS:      {precRel, ast.OpIs},
	lexer.BITOR:   {precBitOr, ast.OpBitOr},
	lexer.BITXOR:  {precBitXor, ast.OpBitXor},
	lexer.BITAND:  {precBitAnd, ast.OpBitAnd},
	lexer.SHL:     {precShift, ast.OpShl},
	lexer.SHR:     {precShift, ast.OpShr},
	lexer.PLUS:    {precAdd, ast.OpAdd},
	lexer.MINUS:   {precAdd, ast.OpSub},
	lexer.STAR:    {precMul, ast.OpMul},
	lexer.SLASH:   {precMul, ast.OpDiv},
	lexer.PERCENT: {precMul, ast.OpMod},
	lexer.DOTDOT:  {precRange, ast.OpRange},
}

// parseExpr runs the Pratt loop at minPrec. At the top-level call
// (minPrec == precLowest) it also absorbs the lower-than-"or" ternary and
// elvis forms, which lists as distinct expression kinds rather
// than binary-operator precedence levels.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parseUnary()
	left = p.prattLoop(left, minPrec)
	if minPrec == precLowest {
		left = p.parseTernaryOrElvis(left)
	}
	return left
}

// parseExprNoStructLit disables struct-literal parsing for the duration of
// the call, used for the condition of if/while/for/switch so that `{`
// immediately following the condition is read as the block/case body, not
// a struct literal.
func (p *Parser) parseExprNoStructLit(minPrec int) ast.Expr {
	p.noStructLit++
	e := p.parseExpr(minPrec)
	p.noStructLit--
	return e
}

func (p *Parser) prattLoop(left ast.Expr, minPrec int) ast.Expr {
	for {
		info, ok := binTable[p.cur().Kind]
		if !ok || info.prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseUnary()
		right = p.prattLoop(right, info.prec+1)
		left = &ast.BinaryExpr{Op: info.op, Left: left, Right: right, Sp: source.Merge(left.Span(), opTok.Span)}
	}
}

func (p *Parser) parseTernaryOrElvis(left ast.Expr) ast.Expr {
	for {
		switch p.cur().Kind {
		case lexer.QUESTION:
			p.advance()
			then := p.parseExpr(precLowest)
			p.expect(lexer.COLON)
			els := p.parseExpr(precLowest)
			left = &ast.TernaryExpr{Cond: left, Then: then, Else: els, Sp: source.Merge(left.Span(), els.Span())}
		case lexer.ELVIS:
			p.advance()
			right := p.parseExpr(precOr)
			left = &ast.ElvisExpr{Left: left, Right: right, Sp: source.Merge(left.Span(), right.Span())}
		default:
			return left
		}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur().Span
	switch p.cur().Kind {
	case lexer.MINUS:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.OpNeg, Operand: operand, Sp: source.Merge(start, operand.Span())}
	case lexer.BANG:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.OpNot, Operand: operand, Sp: source.Merge(start, operand.Span())}
	case lexer.BITNOT:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.OpBitNot, Operand: operand, Sp: source.Merge(start, operand.Span())}
	}
	return p.parsePostfix()
}

// parsePostfix binds tightest: call, index, field/method, cast-as,
// try-mark, force-unwrap.
func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case lexer.LPAREN:
			start := p.advance().Span
			var args []ast.Expr
			for !p.at(lexer.RPAREN) {
				args = append(args, p.parseExpr(precLowest))
				if p.at(lexer.COMMA) {
					p.advance()
					continue
				}
				break
			}
			end, _ := p.expect(lexer.RPAREN)
			_ = start
			e = &ast.CallExpr{Callee: e, Args: args, Sp: source.Merge(e.Span(), end.Span)}
		case lexer.LBRACKET:
			p.advance()
			idx := p.parseExpr(precLowest)
			end, _ := p.expect(lexer.RBRACKET)
			e = &ast.IndexExpr{Recv: e, Index: idx, Sp: source.Merge(e.Span(), end.Span)}
		case lexer.DOT:
			p.advance()
			name, _ := p.expect(lexer.IDENT)
			if p.at(lexer.LPAREN) {
				p.advance()
				var args []ast.Expr
				for !p.at(lexer.RPAREN) {
					args = append(args, p.parseExpr(precLowest))
					if p.at(lexer.COMMA) {
						p.advance()
						continue
					}
					break
				}
				end, _ := p.expect(lexer.RPAREN)
				e = &ast.MethodCallExpr{Receiver: e, Method: name.Text, Args: args, Sp: source.Merge(e.Span(), end.Span)}
			} else {
				e = &ast.FieldExpr{Recv: e, Field: name.Text, Sp: source.Merge(e.Span(), name.Span)}
			}
		case lexer.AS:
			p.advance()
			if p.at(lexer.QUESTION) {
				p.advance()
				target := p.parseType()
				e = &ast.FallibleCastExpr{Value: e, Target: target, Sp: source.Merge(e.Span(), target.Span())}
			} else {
				target := p.parseType()
				e = &ast.CastExpr{Value: e, Target: target, Sp: source.Merge(e.Span(), target.Span())}
			}
		case lexer.QUESTION:
			// postfix `?` marks a try-expression: `f()?`
			tok := p.advance()
			e = &ast.TryExpr{Inner: e, Sp: source.Merge(e.Span(), tok.Span)}
		case lexer.BANG:
			tok := p.advance()
			e = &ast.ForceUnwrapExpr{Value: e, Sp: source.Merge(e.Span(), tok.Span)}
		case lexer.CATCH:
			p.advance()
			errName := "e"
			if p.at(lexer.IDENT) {
				errName = p.advance().Text
			}
			handler := p.parseBlockExpr()
			e = &ast.CatchExpr{Inner: e, ErrName: errName, Handler: handler, Sp: source.Merge(e.Span(), handler.Sp)}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Span
	switch p.cur().Kind {
	case lexer.INT:
		t := p.advance()
		n, _ := strconv.ParseInt(t.Text, 10, 64)
		return &ast.IntLit{Value: n, Sp: t.Span}
	case lexer.FLOAT:
		t := p.advance()
		f, _ := strconv.ParseFloat(t.Text, 64)
		return &ast.FloatLit{Value: f, Sp: t.Span}
	case lexer.TRUE:
		t := p.advance()
		return &ast.BoolLit{Value: true, Sp: t.Span}
	case lexer.FALSE:
		t := p.advance()
		return &ast.BoolLit{Value: false, Sp: t.Span}
	case lexer.STRING:
		t := p.advance()
		return &ast.StringLit{Value: t.Text, Sp: t.Span}
	case lexer.NONE:
		t := p.advance()
		return &ast.Ident{Name: "none", Sp: t.Span}
	case lexer.SOME:
		t := p.advance()
		p.expect(lexer.LPAREN)
		inner := p.parseExpr(precLowest)
		end, _ := p.expect(lexer.RPAREN)
		return &ast.SomeExpr{Inner: inner, Sp: source.Merge(t.Span, end.Span)}
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpr(precLowest)
		end, _ := p.expect(lexer.RPAREN)
		return &ast.GroupedExpr{Inner: inner, Sp: source.Merge(start, end.Span)}
	case lexer.LBRACKET:
		p.advance()
		var elems []ast.Expr
		for !p.at(lexer.RBRACKET) {
			elems = append(elems, p.parseExpr(precLowest))
			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(lexer.RBRACKET)
		return &ast.ArrayLit{Elems: elems, Sp: source.Merge(start, end.Span)}
	case lexer.LBRACE:
		return p.parseBraceExpr(start)
	case lexer.IF:
		return p.parseIfExpr()
	case lexer.SPAWN:
		p.advance()
		body := p.parseBlockExpr()
		return &ast.SpawnExpr{Body: body, Sp: source.Merge(start, body.Sp)}
	case lexer.FN:
		return p.parseLambdaExpr()
	case lexer.BITOR:
		return p.parseShortLambdaExpr()
	case lexer.IDENT:
		return p.parseIdentOrPathOrStructLit()
	}

	p.errorf(start, "unexpected token %s in expression", p.cur().Kind)
	p.advance()
	return &ast.Ident{Name: "<error>", Sp: start}
}

// parseBraceExpr disambiguates a `{` in expression position between a map
// literal and a block: peek for `stringOrIdent :`.
func (p *Parser) parseBraceExpr(start source.Span) ast.Expr {
	if p.looksLikeMapLiteral() {
		p.advance() // '{'
		var entries []ast.MapEntry
		for !p.at(lexer.RBRACE) {
			key := p.parseExpr(precRange)
			p.expect(lexer.COLON)
			val := p.parseExpr(precLowest)
			entries = append(entries, ast.MapEntry{Key: key, Value: val})
			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(lexer.RBRACE)
		return &ast.MapLit{Entries: entries, Sp: source.Merge(start, end.Span)}
	}
	return p.parseBlockExpr()
}

func (p *Parser) looksLikeMapLiteral() bool {
	next := p.peekAt(1)
	if next.Kind != lexer.IDENT && next.Kind != lexer.STRING {
		return false // includes empty `{}`, which is an empty block
	}
	return p.peekAt(2).Kind == lexer.COLON
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.advance().Span // 'if'
	cond := p.parseExprNoStructLit(precLowest)
	then := p.parseBlockExpr()
	e := &ast.IfExpr{Cond: cond, Then: then}
	if p.at(lexer.ELSE) {
		p.advance()
		if p.at(lexer.IF) {
			e.Else = p.parseIfExpr()
		} else {
			e.Else = p.parseBlockExpr()
		}
	}
	e.Sp = source.Merge(start, p.cur().Span)
	return e
}

func (p *Parser) parseLambdaExpr() ast.Expr {
	start := p.advance().Span // 'fn'
	p.expect(lexer.LPAREN)
	var params []*ast.Param
	for !p.at(lexer.RPAREN) {
		name, _ := p.expect(lexer.IDENT)
		var ty ast.TypeExpr
		if p.at(lexer.COLON) {
			p.advance()
			ty = p.parseType()
		}
		params = append(params, &ast.Param{Name: name.Text, Type: ty, Sp: name.Span})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	if p.at(lexer.ARROW) {
		p.advance()
		p.parseType() // optional declared return type, inferred if absent
	}
	body := p.parseBlockExpr()
	return &ast.LambdaExpr{Params: params, Body: body, Sp: source.Merge(start, body.Sp)}
}

// parseShortLambdaExpr parses `|x, y| expr`, a common closure-literal
// shorthand alongside the full `fn(...) { ... }` form.
func (p *Parser) parseShortLambdaExpr() ast.Expr {
	start := p.advance().Span // '|'
	var params []*ast.Param
	for !p.at(lexer.BITOR) {
		name, _ := p.expect(lexer.IDENT)
		params = append(params, &ast.Param{Name: name.Text, Sp: name.Span})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.BITOR)
	body := p.parseExpr(precLowest)
	return &ast.LambdaExpr{Params: params, Body: body, Sp: source.Merge(start, body.Span())}
}

func (p *Parser) parseIdentOrPathOrStructLit() ast.Expr {
	start := p.cur().Span
	name := p.advance().Text

	if p.at(lexer.COLONCOLON) {
		segs := []string{name}
		for p.at(lexer.COLONCOLON) {
			p.advance()
			seg, _ := p.expect(lexer.IDENT)
			segs = append(segs, seg.Text)
		}
		return &ast.PathExpr{Segments: segs, Sp: source.Merge(start, p.cur().Span)}
	}

	if typeArgs, ok := p.tryParseTypeArgs(); ok && p.at(lexer.LPAREN) {
		callStart := p.advance().Span
		var args []ast.Expr
		for !p.at(lexer.RPAREN) {
			args = append(args, p.parseExpr(precLowest))
			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		end, _ := p.expect(lexer.RPAREN)
		_ = callStart
		return &ast.CallExpr{Callee: &ast.Ident{Name: name, Sp: start}, Args: args, TypeArgs: typeArgs, Sp: source.Merge(start, end.Span)}
	}

	if p.noStructLit == 0 && p.at(lexer.LBRACE) {
		return p.parseStructLit(name, start)
	}

	return &ast.Ident{Name: name, Sp: start}
}

func (p *Parser) parseStructLit(name string, start source.Span) ast.Expr {
	p.advance() // '{'
	lit := &ast.StructLit{TypeName: name}
	for !p.at(lexer.RBRACE) {
		fname, _ := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		val := p.parseExpr(precLowest)
		lit.Fields = append(lit.Fields, ast.StructFieldInit{Name: fname.Text, Value: val})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end, _ := p.expect(lexer.RBRACE)
	lit.Sp = source.Merge(start, end.Span)
	return lit
}
