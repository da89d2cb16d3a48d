package types

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
)

// checkExpr infers e's type under scope, recording the resolved type for
// later Substitute()-ion, and returns it.
func (c *Checker) checkExpr(e ast.Expr, scope *Scope) Type {
	t := c.inferExpr(e, scope)
	c.types[e] = t
	return t
}

func (c *Checker) inferExpr(e ast.Expr, scope *Scope) Type {
	switch e := e.(type) {
	case *ast.IntLit:
		return TInt
	case *ast.FloatLit:
		return TFloat
	case *ast.BoolLit:
		return TBool
	case *ast.StringLit:
		return TString
	case *ast.TemplateStringLit:
		for _, sub := range e.Exprs {
			c.checkExpr(sub, scope)
		}
		return TString

	case *ast.Ident:
		if e.Name == "none" {
			return &Option{Elem: c.u.Fresh()}
		}
		if t, ok := scope.Lookup(e.Name); ok {
			return t
		}
		if sig, ok := c.st.Funcs[e.Name]; ok {
			return &Func{Params: sig.Params, Return: sig.Return, Throws: sig.Throws}
		}
		if enumName, variant, ok := c.st.VariantEnum(e.Name); ok {
			if len(variant.FieldNames) == 0 {
				return &Named{Name: enumName}
			}
		}
		c.diags.Errorf(diag.KindUndefinedVariable, e.Sp, "undefined variable: %s", e.Name)
		return TError

	case *ast.PathExpr:
		return c.inferPathExpr(e)

	case *ast.BinaryExpr:
		return c.inferBinary(e, scope)

	case *ast.UnaryExpr:
		operand := c.checkExpr(e.Operand, scope)
		switch e.Op {
		case ast.OpNot:
			if err := c.u.Unify(operand, TBool); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "unary !: %s", err)
			}
			return TBool
		case ast.OpNeg:
			if !IsNumeric(c.u.Resolve(operand)) && !isErrorType(c.u.Resolve(operand)) {
				c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "unary -: operand is not numeric")
			}
			return operand
		case ast.OpBitNot:
			return operand
		}
		return TError

	case *ast.CallExpr:
		return c.inferCall(e, scope)

	case *ast.MethodCallExpr:
		return c.inferMethodCall(e, scope)

	case *ast.IndexExpr:
		return c.inferIndex(e, scope)

	case *ast.FieldExpr:
		return c.inferField(e, scope)

	case *ast.CastExpr:
		c.checkExpr(e.Value, scope)
		return c.ResolveTypeExpr(e.Target, nil)

	case *ast.FallibleCastExpr:
		c.checkExpr(e.Value, scope)
		return &Option{Elem: c.ResolveTypeExpr(e.Target, nil)}

	case *ast.ForceUnwrapExpr:
		inner := c.checkExpr(e.Value, scope)
		if opt, ok := c.u.Resolve(inner).(*Option); ok {
			return opt.Elem
		}
		if isErrorType(c.u.Resolve(inner)) {
			return TError
		}
		c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "force-unwrap (!) requires an option, found %s", c.u.Resolve(inner))
		return TError

	case *ast.ArrayLit:
		if len(e.Elems) == 0 {
			return &Array{Elem: c.u.Fresh()}
		}
		first := c.checkExpr(e.Elems[0], scope)
		for _, el := range e.Elems[1:] {
			t := c.checkExpr(el, scope)
			if err := c.u.Unify(first, t); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, el.Span(), "array literal: %s", err)
			}
		}
		return &Array{Elem: first}

	case *ast.MapLit:
		if len(e.Entries) == 0 {
			return &Map{Key: c.u.Fresh(), Val: c.u.Fresh()}
		}
		kt := c.checkExpr(e.Entries[0].Key, scope)
		vt := c.checkExpr(e.Entries[0].Value, scope)
		for _, entry := range e.Entries[1:] {
			k := c.checkExpr(entry.Key, scope)
			v := c.checkExpr(entry.Value, scope)
			if err := c.u.Unify(kt, k); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, entry.Key.Span(), "map literal key: %s", err)
			}
			if err := c.u.Unify(vt, v); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, entry.Value.Span(), "map literal value: %s", err)
			}
		}
		return &Map{Key: kt, Val: vt}

	case *ast.StructLit:
		return c.inferStructLit(e, scope)

	case *ast.IfExpr:
		cond := c.checkExpr(e.Cond, scope)
		if err := c.u.Unify(cond, TBool); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Cond.Span(), "if condition: %s", err)
		}
		thenT := c.checkBlock(e.Then, scope)
		if e.Else == nil {
			return TUnit
		}
		elseT := c.checkExpr(e.Else, scope)
		if err := c.u.Unify(thenT, elseT); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "if/else branches: %s", err)
		}
		return thenT

	case *ast.BlockExpr:
		return c.checkBlock(e, scope)

	case *ast.LambdaExpr:
		return c.inferLambda(e, scope)

	case *ast.SpawnExpr:
		c.checkBlock(e.Body, scope)
		return TUnit

	case *ast.TryExpr:
		return c.checkExpr(e.Inner, scope)

	case *ast.CatchExpr:
		innerT := c.checkExpr(e.Inner, scope)
		handlerScope := scope.Child()
		handlerScope.Bind(e.ErrName, &Named{Name: "Error"})
		handlerT := c.checkBlock(e.Handler, handlerScope)
		if err := c.u.Unify(innerT, handlerT); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "catch: %s", err)
		}
		return innerT

	case *ast.RangeExpr:
		start := c.checkExpr(e.Start, scope)
		end := c.checkExpr(e.End, scope)
		if err := c.u.Unify(start, TInt); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Start.Span(), "range start: %s", err)
		}
		if err := c.u.Unify(end, TInt); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.End.Span(), "range end: %s", err)
		}
		return TInt

	case *ast.GroupedExpr:
		return c.checkExpr(e.Inner, scope)

	case *ast.SomeExpr:
		return &Option{Elem: c.checkExpr(e.Inner, scope)}

	case *ast.TernaryExpr:
		cond := c.checkExpr(e.Cond, scope)
		if err := c.u.Unify(cond, TBool); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Cond.Span(), "ternary condition: %s", err)
		}
		thenT := c.checkExpr(e.Then, scope)
		elseT := c.checkExpr(e.Else, scope)
		if err := c.u.Unify(thenT, elseT); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "ternary branches: %s", err)
		}
		return thenT

	case *ast.ElvisExpr:
		left := c.checkExpr(e.Left, scope)
		right := c.checkExpr(e.Right, scope)
		opt, ok := c.u.Resolve(left).(*Option)
		if !ok {
			if isErrorType(c.u.Resolve(left)) {
				return right
			}
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "?? requires an option on the left, found %s", c.u.Resolve(left))
			return right
		}
		if err := c.u.Unify(opt.Elem, right); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "??: %s", err)
		}
		return right
	}
	return TError
}

func (c *Checker) inferPathExpr(e *ast.PathExpr) Type {
	if len(e.Segments) != 2 {
		c.diags.Errorf(diag.KindInvalidBinaryOp, e.Sp, "unsupported path expression %v", e.Segments)
		return TError
	}
	enumName, variantName := e.Segments[0], e.Segments[1]
	info, ok := c.st.Enums[enumName]
	if !ok {
		c.diags.Errorf(diag.KindUndefinedType, e.Sp, "undefined enum: %s", enumName)
		return TError
	}
	variant, ok := info.Variants[variantName]
	if !ok {
		c.diags.Errorf(diag.KindUndefinedField, e.Sp, "%s has no variant %s", enumName, variantName)
		return TError
	}
	if len(variant.FieldNames) == 0 {
		return &Named{Name: enumName}
	}
	params := make([]Type, len(variant.FieldNames))
	for i, fn := range variant.FieldNames {
		params[i] = variant.FieldTypes[fn]
	}
	return &Func{Params: params, Return: &Named{Name: enumName}}
}

// inferBinary implements per-operator binary rules,
// including the one coercion naml allows: an Int-literal operand paired
// with a Uint context adopts Uint.
func (c *Checker) inferBinary(e *ast.BinaryExpr, scope *Scope) Type {
	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		l := c.checkExpr(e.Left, scope)
		r := c.checkExpr(e.Right, scope)
		if err := c.u.Unify(l, TBool); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Left.Span(), "%s", err)
		}
		if err := c.u.Unify(r, TBool); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Right.Span(), "%s", err)
		}
		return TBool

	case ast.OpEq, ast.OpNeq:
		l := c.checkExpr(e.Left, scope)
		r := c.checkExpr(e.Right, scope)
		if err := c.u.Unify(l, r); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "comparison: %s", err)
		}
		return TBool

	case ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		l := c.checkExpr(e.Left, scope)
		r := c.checkExpr(e.Right, scope)
		if err := c.u.Unify(l, r); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "comparison: %s", err)
		}
		return TBool

	case ast.OpIs:
		c.checkExpr(e.Left, scope)
		if ident, ok := e.Right.(*ast.Ident); ok {
			c.types[e.Right] = &Named{Name: ident.Name}
		} else {
			c.diags.Errorf(diag.KindInvalidBinaryOp, e.Right.Span(), "right side of 'is' must be a type name")
		}
		return TBool

	case ast.OpAdd:
		l := c.checkExpr(e.Left, scope)
		r := c.checkExpr(e.Right, scope)
		if isStringType(c.u.Resolve(l)) || isStringType(c.u.Resolve(r)) {
			return TString
		}
		return c.unifyArithmetic(e, l, r)

	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		l := c.checkExpr(e.Left, scope)
		r := c.checkExpr(e.Right, scope)
		return c.unifyArithmetic(e, l, r)

	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		l := c.checkExpr(e.Left, scope)
		r := c.checkExpr(e.Right, scope)
		return c.unifyArithmetic(e, l, r)

	case ast.OpRange:
		l := c.checkExpr(e.Left, scope)
		r := c.checkExpr(e.Right, scope)
		if err := c.u.Unify(l, TInt); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Left.Span(), "range: %s", err)
		}
		if err := c.u.Unify(r, TInt); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Right.Span(), "range: %s", err)
		}
		return TInt
	}
	return TError
}

func isStringType(t Type) bool {
	p, ok := t.(*Prim)
	return ok && p.Kind == String
}

// unifyArithmetic unifies l and r for an arithmetic/bitwise binary op,
// applying the sole implicit coercion allows: an Int-literal
// operand adopts Uint when paired against a Uint.
func (c *Checker) unifyArithmetic(e *ast.BinaryExpr, l, r Type) Type {
	rl, rr := c.u.Resolve(l), c.u.Resolve(r)
	if isUintType(rl) && isIntLiteral(e.Right) {
		r = TUint
	} else if isUintType(rr) && isIntLiteral(e.Left) {
		l = TUint
	}
	if err := c.u.Unify(l, r); err != nil {
		c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "arithmetic: %s", err)
		return TError
	}
	return l
}

func isUintType(t Type) bool {
	p, ok := t.(*Prim)
	return ok && p.Kind == Uint
}

func isIntLiteral(e ast.Expr) bool {
	_, ok := e.(*ast.IntLit)
	return ok
}
