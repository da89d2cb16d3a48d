package types

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
	"github.com/naml-lang/namlc/internal/source"
)

// inferCall implements "Call": resolve the callee, and if it
// names a generic function with no explicit type arguments, instantiate it
// with fresh type variables, unify arguments through that substitution,
// and record the concrete result as a monomorphization.
func (c *Checker) inferCall(e *ast.CallExpr, scope *Scope) Type {
	if id, ok := e.Callee.(*ast.Ident); ok {
		if sig, ok := c.st.Funcs[id.Name]; ok {
			return c.inferCallToSig(e, id.Name, sig, scope)
		}
	}

	calleeType := c.checkExpr(e.Callee, scope)
	fn, ok := c.u.Resolve(calleeType).(*Func)
	if !ok {
		for _, a := range e.Args {
			c.checkExpr(a, scope)
		}
		if isErrorType(c.u.Resolve(calleeType)) {
			return TError
		}
		c.diags.Errorf(diag.KindNonCallable, e.Sp, "cannot call non-function type %s", c.u.Resolve(calleeType))
		return TError
	}
	c.checkArgsAgainst(e.Sp, e.Args, fn.Params, scope, "")
	return fn.Return
}

// inferCallToSig instantiates a registered function signature at a call
// site, monomorphizing when it has type parameters.
func (c *Checker) inferCallToSig(e *ast.CallExpr, name string, sig *FuncSig, scope *Scope) Type {
	if len(sig.TypeParams) == 0 {
		c.checkArgsAgainst(e.Sp, e.Args, sig.Params, scope, name)
		return sig.Return
	}

	tparams := make(map[string]Type, len(sig.TypeParams))
	if len(e.TypeArgs) > 0 {
		if len(e.TypeArgs) != len(sig.TypeParams) {
			c.diags.Errorf(diag.KindTypeArgMismatch, e.Sp, "%s: expected %d type argument(s), got %d", name, len(sig.TypeParams), len(e.TypeArgs))
		}
		for i, tp := range sig.TypeParams {
			if i < len(e.TypeArgs) {
				tparams[tp] = c.ResolveTypeExpr(e.TypeArgs[i], nil)
			} else {
				tparams[tp] = c.u.Fresh()
			}
		}
	} else {
		for _, tp := range sig.TypeParams {
			tparams[tp] = c.u.Fresh()
		}
	}

	instParams := make([]Type, len(sig.Params))
	for i, p := range sig.Params {
		instParams[i] = substituteTypeParams(p, tparams)
	}
	instReturn := substituteTypeParams(sig.Return, tparams)

	c.checkArgsAgainst(e.Sp, e.Args, instParams, scope, name)

	concreteArgs := make([]Type, len(sig.TypeParams))
	for i, tp := range sig.TypeParams {
		concreteArgs[i] = Substitute(c.u, tparams[tp])
	}
	c.mono.Add(name, concreteArgs)

	return instReturn
}

// checkArgsAgainst checks a call's argument expressions, reporting an
// arity mismatch if the counts differ and unifying each argument against
// its positional parameter type otherwise.
func (c *Checker) checkArgsAgainst(callSpan source.Span, args []ast.Expr, params []Type, scope *Scope, name string) {
	if len(args) != len(params) {
		if name != "" {
			c.diags.Errorf(diag.KindArityMismatch, callSpan, "%s: expected %d argument(s), got %d", name, len(params), len(args))
		} else {
			c.diags.Errorf(diag.KindArityMismatch, callSpan, "expected %d argument(s), got %d", len(params), len(args))
		}
	}
	for i, a := range args {
		at := c.checkExpr(a, scope)
		if i >= len(params) {
			continue
		}
		if err := c.u.Unify(params[i], at); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, a.Span(), "argument %d: %s", i+1, err)
		}
	}
}

// inferMethodCall implements "Method call": built-in methods
// on primitives/containers first, then the symbol table's (receiver,
// method) map, then — when the receiver is itself a bare generic
// parameter — dispatch through its declared interface bounds.
func (c *Checker) inferMethodCall(e *ast.MethodCallExpr, scope *Scope) Type {
	recvType := c.checkExpr(e.Receiver, scope)
	resolved := c.u.Resolve(recvType)

	if params, ret, ok := c.builtinMethod(resolved, e.Method); ok {
		c.checkArgsAgainst(e.Sp, e.Args, params, scope, "."+e.Method)
		return ret
	}

	named, ok := resolved.(*Named)
	if !ok {
		for _, a := range e.Args {
			c.checkExpr(a, scope)
		}
		if isErrorType(resolved) {
			return TError
		}
		c.diags.Errorf(diag.KindUndefinedMethod, e.Sp, "no method %s on %s", e.Method, resolved)
		return TError
	}

	if len(named.Args) == 0 {
		if bounds, isTypeParam := c.curTypeParamBounds[named.Name]; isTypeParam {
			return c.inferBoundMethodCall(e, named.Name, bounds, scope)
		}
	}

	sig, ok := c.st.Methods[MethodKey{Receiver: named.Name, Method: e.Method}]
	if !ok {
		for _, a := range e.Args {
			c.checkExpr(a, scope)
		}
		c.diags.Errorf(diag.KindUndefinedMethod, e.Sp, "%s has no method %s", named.Name, e.Method)
		return TError
	}

	tparams := make(map[string]Type)
	if info, ok := c.st.Structs[named.Name]; ok {
		for i, tp := range info.TypeParams {
			if i < len(named.Args) {
				tparams[tp] = named.Args[i]
			}
		}
	} else if info, ok := c.st.Enums[named.Name]; ok {
		for i, tp := range info.TypeParams {
			if i < len(named.Args) {
				tparams[tp] = named.Args[i]
			}
		}
	}

	instParams := make([]Type, len(sig.Params))
	for i, p := range sig.Params {
		instParams[i] = substituteTypeParams(p, tparams)
	}
	instReturn := substituteTypeParams(sig.Return, tparams)

	c.checkArgsAgainst(e.Sp, e.Args, instParams, scope, named.Name+"."+e.Method)
	return instReturn
}

// inferBoundMethodCall resolves a method called on a bare type-parameter
// receiver by searching its declared interface bounds. More than one bound
// declaring the method is rejected as a type-check error rather than left
// ambiguous.
func (c *Checker) inferBoundMethodCall(e *ast.MethodCallExpr, tparamName string, bounds []string, scope *Scope) Type {
	var found *FuncSig
	var foundIn string
	for _, boundName := range bounds {
		iface, ok := c.st.Interfaces[boundName]
		if !ok {
			continue
		}
		if m, ok := iface.Methods[e.Method]; ok {
			if found != nil {
				c.diags.Errorf(diag.KindAmbiguousMethod, e.Sp,
					"method %s is declared by both %s and %s on type parameter %s", e.Method, foundIn, boundName, tparamName)
				for _, a := range e.Args {
					c.checkExpr(a, scope)
				}
				return TError
			}
			found, foundIn = m, boundName
		}
	}
	if found == nil {
		for _, a := range e.Args {
			c.checkExpr(a, scope)
		}
		c.diags.Errorf(diag.KindUndefinedMethod, e.Sp, "no bound of %s declares method %s", tparamName, e.Method)
		return TError
	}
	c.checkArgsAgainst(e.Sp, e.Args, found.Params, scope, tparamName+"."+e.Method)
	return found.Return
}

// inferIndex implements "Index".
func (c *Checker) inferIndex(e *ast.IndexExpr, scope *Scope) Type {
	recv := c.checkExpr(e.Recv, scope)
	idx := c.checkExpr(e.Index, scope)
	switch t := c.u.Resolve(recv).(type) {
	case *Array:
		if err := c.u.Unify(idx, TInt); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Index.Span(), "array index: %s", err)
		}
		return t.Elem
	case *FixedArray:
		if err := c.u.Unify(idx, TInt); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Index.Span(), "array index: %s", err)
		}
		return t.Elem
	case *Map:
		if err := c.u.Unify(idx, t.Key); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Index.Span(), "map index: %s", err)
		}
		return &Option{Elem: t.Val}
	case *Prim:
		if t.Kind == String {
			if err := c.u.Unify(idx, TInt); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, e.Index.Span(), "string index: %s", err)
			}
			return TString
		}
	}
	if isErrorType(c.u.Resolve(recv)) {
		return TError
	}
	c.diags.Errorf(diag.KindNonIndexable, e.Sp, "cannot index %s", c.u.Resolve(recv))
	return TError
}

// inferField implements "Field": "dispatch on resolved
// receiver type (array/string \".length\" -> Int; struct/exception field
// lookup)".
func (c *Checker) inferField(e *ast.FieldExpr, scope *Scope) Type {
	recv := c.checkExpr(e.Recv, scope)
	resolved := c.u.Resolve(recv)

	if e.Field == "length" {
		switch resolved.(type) {
		case *Array, *FixedArray:
			return TInt
		}
		if p, ok := resolved.(*Prim); ok && p.Kind == String {
			return TInt
		}
	}

	named, ok := resolved.(*Named)
	if !ok {
		if isErrorType(resolved) {
			return TError
		}
		c.diags.Errorf(diag.KindUndefinedField, e.Sp, "%s has no field %s", resolved, e.Field)
		return TError
	}

	tparams := make(map[string]Type)
	var fieldType Type
	var fieldFound bool
	if info, ok := c.st.Structs[named.Name]; ok {
		for i, tp := range info.TypeParams {
			if i < len(named.Args) {
				tparams[tp] = named.Args[i]
			}
		}
		fieldType, fieldFound = info.FieldTypes[e.Field]
	} else if info, ok := c.st.Exceptions[named.Name]; ok {
		fieldType, fieldFound = info.FieldTypes[e.Field]
	}
	if !fieldFound {
		c.diags.Errorf(diag.KindUndefinedField, e.Sp, "%s has no field %s", named.Name, e.Field)
		return TError
	}
	return substituteTypeParams(fieldType, tparams)
}

// inferStructLit implements "Struct literal": unify each
// provided field against the declared field type under fresh type-variable
// substitutions for the struct's type parameters.
func (c *Checker) inferStructLit(e *ast.StructLit, scope *Scope) Type {
	info, ok := c.st.Structs[e.TypeName]
	if !ok {
		c.diags.Errorf(diag.KindUndefinedType, e.Sp, "undefined struct: %s", e.TypeName)
		for _, f := range e.Fields {
			c.checkExpr(f.Value, scope)
		}
		return TError
	}

	tparams := make(map[string]Type, len(info.TypeParams))
	if len(e.TypeArgs) > 0 {
		for i, tp := range info.TypeParams {
			if i < len(e.TypeArgs) {
				tparams[tp] = c.ResolveTypeExpr(e.TypeArgs[i], nil)
			}
		}
	} else {
		for _, tp := range info.TypeParams {
			tparams[tp] = c.u.Fresh()
		}
	}

	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		vt := c.checkExpr(f.Value, scope)
		seen[f.Name] = true
		declared, ok := info.FieldTypes[f.Name]
		if !ok {
			c.diags.Errorf(diag.KindUndefinedField, e.Sp, "%s has no field %s", e.TypeName, f.Name)
			continue
		}
		if err := c.u.Unify(substituteTypeParams(declared, tparams), vt); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, e.Sp, "field %s: %s", f.Name, err)
		}
	}
	for _, fn := range info.FieldNames {
		if !seen[fn] {
			c.diags.Errorf(diag.KindArityMismatch, e.Sp, "%s: missing field %s", e.TypeName, fn)
		}
	}

	args := make([]Type, len(info.TypeParams))
	for i, tp := range info.TypeParams {
		args[i] = tparams[tp]
	}
	return &Named{Name: e.TypeName, Args: args}
}

// inferLambda implements "Lambda": introduce parameter types
// (fresh vars if unannotated), infer the body under a function context,
// and produce a Func type.
func (c *Checker) inferLambda(e *ast.LambdaExpr, scope *Scope) Type {
	inner := scope.Child()
	params := make([]Type, len(e.Params))
	for i, p := range e.Params {
		var pt Type
		if p.Type != nil {
			pt = c.ResolveTypeExpr(p.Type, nil)
		} else {
			pt = c.u.Fresh()
		}
		params[i] = pt
		inner.Bind(p.Name, pt)
	}

	var ret Type
	switch body := e.Body.(type) {
	case *ast.BlockExpr:
		ret = c.checkBlock(body, inner)
	default:
		ret = c.checkExpr(body, inner)
	}
	return &Func{Params: params, Return: ret}
}

