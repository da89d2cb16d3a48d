package types

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
	"github.com/naml-lang/namlc/internal/source"
)

// Result is everything the checker produces for one compilation
//: a fully populated symbol table, the
// unifier holding every variable binding discovered, and the set of
// monomorphizations the backend must compile.
type Result struct {
	Symbols *SymbolTable
	Unifier *Unifier
	Mono    *MonoSet
	Types   map[ast.Expr]Type // resolved type per expression node, post-Substitute
}

// Checker walks a parsed file and produces type annotations plus
// diagnostics. It never mutates the AST.
type Checker struct {
	st    *SymbolTable
	u     *Unifier
	diags *diag.List
	mono  *MonoSet
	types map[ast.Expr]Type

	// funcReturn/funcThrows describe the function currently being checked,
	// for `return`/`throw` statement checking.
	funcReturn Type
	funcThrows []string

	loopDepth int

	// switchScrutinee is set while checking a switch statement's cases, so
	// a bare IdentPattern can be resolved against the scrutinee's enum
	//.
	switchScrutinee Type

	// curTypeParamBounds maps the currently-checked function's own
	// generic-parameter names to their declared interface bounds, used to
	// dispatch a method call on a bare type parameter.
	curTypeParamBounds map[string][]string
}

// NewChecker creates a checker that reports into diags.
func NewChecker(diags *diag.List) *Checker {
	return &Checker{
		st:    NewSymbolTable(),
		u:     NewUnifier(),
		diags: diags,
		mono:  NewMonoSet(),
		types: make(map[ast.Expr]Type),
	}
}

// Check runs the pre-pass and then checks every function body in f,
// returning the accumulated Result. Errors are reported to the Checker's
// diag.List rather than returned; callers check diags.HasErrors().
func (c *Checker) Check(f *ast.File) *Result {
	c.prePass(f)
	for _, item := range f.Items {
		if fd, ok := item.(*ast.FuncDecl); ok {
			c.checkFuncDecl(fd)
		}
	}
	resolved := make(map[ast.Expr]Type, len(c.types))
	for e, t := range c.types {
		resolved[e] = Substitute(c.u, t)
	}
	return &Result{Symbols: c.st, Unifier: c.u, Mono: c.mono, Types: resolved}
}

// prePass registers every top-level declaration by name before any
// expression is checked, so forward references and mutual recursion
// between functions/structs/enums resolve uniformly.
func (c *Checker) prePass(f *ast.File) {
	for _, item := range f.Items {
		switch d := item.(type) {
		case *ast.StructDecl:
			info := &StructInfo{FieldTypes: make(map[string]Type)}
			for _, tp := range d.TypeParams {
				info.TypeParams = append(info.TypeParams, tp.Name)
			}
			c.st.Structs[d.Name] = info
		case *ast.EnumDecl:
			info := &EnumInfo{Variants: make(map[string]*EnumVariantInfo)}
			for _, tp := range d.TypeParams {
				info.TypeParams = append(info.TypeParams, tp.Name)
			}
			for _, v := range d.Variants {
				info.Variants[v.Name] = &EnumVariantInfo{Name: v.Name, FieldTypes: make(map[string]Type)}
				info.Order = append(info.Order, v.Name)
			}
			c.st.Enums[d.Name] = info
		case *ast.InterfaceDecl:
			c.st.Interfaces[d.Name] = &InterfaceInfo{Methods: make(map[string]*FuncSig)}
		case *ast.ExceptionDecl:
			c.st.Exceptions[d.Name] = &ExceptionInfo{FieldTypes: make(map[string]Type)}
		}
	}

	// Second sub-pass: field/signature types can reference any named type
	// registered above, regardless of declaration order.
	for _, item := range f.Items {
		switch d := item.(type) {
		case *ast.StructDecl:
			info := c.st.Structs[d.Name]
			tparams := identityTypeParams(info.TypeParams)
			for _, field := range d.Fields {
				info.FieldNames = append(info.FieldNames, field.Name)
				info.FieldTypes[field.Name] = c.ResolveTypeExpr(field.Type, tparams)
			}
		case *ast.EnumDecl:
			info := c.st.Enums[d.Name]
			tparams := identityTypeParams(info.TypeParams)
			for _, v := range d.Variants {
				vi := info.Variants[v.Name]
				for _, field := range v.Fields {
					vi.FieldNames = append(vi.FieldNames, field.Name)
					vi.FieldTypes[field.Name] = c.ResolveTypeExpr(field.Type, tparams)
				}
			}
		case *ast.ExceptionDecl:
			info := c.st.Exceptions[d.Name]
			for _, field := range d.Fields {
				info.FieldNames = append(info.FieldNames, field.Name)
				info.FieldTypes[field.Name] = c.ResolveTypeExpr(field.Type, nil)
			}
		case *ast.InterfaceDecl:
			info := c.st.Interfaces[d.Name]
			for _, m := range d.Methods {
				info.Methods[m.Name] = c.funcTypeToSig(m.Params, m.Return, m.Throws, nil)
			}
		case *ast.TypeAliasDecl:
			tparams := identityTypeParams(namesOf(d.TypeParams))
			c.st.Aliases[d.Name] = c.ResolveTypeExpr(d.Target, tparams)
		}
	}

	// Third sub-pass: functions, methods and externs — their bodies are
	// not checked yet, only their signatures registered.
	for _, item := range f.Items {
		switch d := item.(type) {
		case *ast.FuncDecl:
			tparamNames := namesOf(d.TypeParams)
			tparams := identityTypeParams(tparamNames)
			sig := c.funcTypeToSigFromParams(d.Params, d.Return, d.Throws, tparams)
			sig.TypeParams = tparamNames
			if d.Receiver != nil {
				c.st.Methods[MethodKey{Receiver: d.Receiver.Type, Method: d.Name}] = sig
			} else {
				c.st.Funcs[d.Name] = sig
			}
		case *ast.ExternDecl:
			sig := c.funcTypeToSig(d.Params, d.Return, nil, nil)
			c.st.Funcs[d.Name] = sig
		}
	}
}

func namesOf(tps []ast.TypeParam) []string {
	names := make([]string, len(tps))
	for i, tp := range tps {
		names[i] = tp.Name
	}
	return names
}

// identityTypeParams maps each name to itself as a Named placeholder type,
// used while registering a generic declaration's own signature (its
// parameters are resolved "as written", to be substituted later at
// monomorphization time).
func identityTypeParams(names []string) map[string]Type {
	m := make(map[string]Type, len(names))
	for _, n := range names {
		m[n] = &Named{Name: n}
	}
	return m
}

func (c *Checker) funcTypeToSig(params []ast.TypeExpr, ret ast.TypeExpr, throws []string, tparams map[string]Type) *FuncSig {
	ptypes := make([]Type, len(params))
	for i, p := range params {
		ptypes[i] = c.ResolveTypeExpr(p, tparams)
	}
	rt := Type(TUnit)
	if ret != nil {
		rt = c.ResolveTypeExpr(ret, tparams)
	}
	return &FuncSig{Params: ptypes, Return: rt, Throws: throws}
}

func (c *Checker) funcTypeToSigFromParams(params []*ast.Param, ret ast.TypeExpr, throws []string, tparams map[string]Type) *FuncSig {
	ptypes := make([]Type, len(params))
	for i, p := range params {
		ptypes[i] = c.ResolveTypeExpr(p.Type, tparams)
	}
	rt := Type(TUnit)
	if ret != nil {
		rt = c.ResolveTypeExpr(ret, tparams)
	}
	return &FuncSig{Params: ptypes, Return: rt, Throws: throws}
}

// checkFuncDecl checks one function or method body against its already
// pre-passed signature.
func (c *Checker) checkFuncDecl(d *ast.FuncDecl) {
	tparamNames := namesOf(d.TypeParams)
	tparams := identityTypeParams(tparamNames)

	scope := NewScope()
	if d.Receiver != nil {
		scope.Bind("self", c.ResolveTypeExpr(&ast.NamedType{Name: d.Receiver.Type, Sp: d.Receiver.Sp}, tparams))
	}
	for _, p := range d.Params {
		scope.Bind(p.Name, c.ResolveTypeExpr(p.Type, tparams))
	}

	prevReturn, prevThrows := c.funcReturn, c.funcThrows
	prevBounds := c.curTypeParamBounds
	c.funcReturn = TUnit
	if d.Return != nil {
		c.funcReturn = c.ResolveTypeExpr(d.Return, tparams)
	}
	c.funcThrows = d.Throws
	bounds := make(map[string][]string, len(d.TypeParams))
	for _, tp := range d.TypeParams {
		bounds[tp.Name] = tp.Bounds
	}
	c.curTypeParamBounds = bounds

	bodyType := c.checkBlock(d.Body, scope)
	if err := c.u.Unify(c.funcReturn, bodyType); err != nil {
		c.diags.Errorf(diag.KindTypeMismatch, d.Body.Span(), "function %s: %s", d.Name, err)
	}

	c.funcReturn, c.funcThrows = prevReturn, prevThrows
	c.curTypeParamBounds = prevBounds
}

// checkBlock checks a block's statements in a child scope and returns the
// type of its tail expression, or Unit if there is none.
func (c *Checker) checkBlock(b *ast.BlockExpr, parent *Scope) Type {
	scope := parent.Child()
	for _, s := range b.Stmts {
		c.checkStmt(s, scope)
	}
	if b.Tail != nil {
		return c.checkExpr(b.Tail, scope)
	}
	return TUnit
}

func (c *Checker) checkStmt(s ast.Stmt, scope *Scope) {
	switch s := s.(type) {
	case *ast.VarStmt:
		valType := c.checkExpr(s.Value, scope)
		if s.Type != nil {
			declared := c.ResolveTypeExpr(s.Type, nil)
			if err := c.u.Unify(declared, valType); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, s.Sp, "%s", err)
			}
			valType = declared
		}
		if s.ElseBlk != nil {
			// A fallible binding (`var x = a[i] else { ... }`) unwraps an
			// Option; the else block must diverge (return/throw/break) or
			// produce the same inner type, but naml treats its value as
			// discarded either way, so only the unwrap target matters.
			if opt, ok := c.u.Resolve(valType).(*Option); ok {
				valType = opt.Elem
			}
			c.checkBlock(s.ElseBlk, scope)
		}
		scope.Bind(s.Name, valType)
	case *ast.ConstStmt:
		valType := c.checkExpr(s.Value, scope)
		if s.Type != nil {
			declared := c.ResolveTypeExpr(s.Type, nil)
			if err := c.u.Unify(declared, valType); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, s.Sp, "%s", err)
			}
			valType = declared
		}
		scope.Bind(s.Name, valType)
	case *ast.AssignStmt:
		targetType := c.checkExpr(s.Target, scope)
		valType := c.checkExpr(s.Value, scope)
		if err := c.u.Unify(targetType, valType); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, s.Sp, "%s", err)
		}
	case *ast.ExprStmt:
		c.checkExpr(s.X, scope)
	case *ast.ReturnStmt:
		var t Type = TUnit
		if s.Value != nil {
			t = c.checkExpr(s.Value, scope)
		}
		if err := c.u.Unify(c.funcReturn, t); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, s.Sp, "return: %s", err)
		}
	case *ast.ThrowStmt:
		excType := c.checkExpr(s.Value, scope)
		c.checkThrowsAllowed(excType, s.Sp)
	case *ast.IfStmt:
		cond := c.checkExpr(s.Cond, scope)
		if err := c.u.Unify(cond, TBool); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, s.Cond.Span(), "if condition: %s", err)
		}
		c.checkBlock(s.Then, scope)
		if s.Else != nil {
			c.checkStmt(s.Else, scope)
		}
	case *ast.BlockStmt:
		c.checkBlock(s.Block, scope)
	case *ast.WhileStmt:
		cond := c.checkExpr(s.Cond, scope)
		if err := c.u.Unify(cond, TBool); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, s.Cond.Span(), "while condition: %s", err)
		}
		c.loopDepth++
		c.checkBlock(s.Body, scope)
		c.loopDepth--
	case *ast.ForStmt:
		iterType := c.checkExpr(s.Iterable, scope)
		elemType := c.elementTypeOf(iterType, s.Iterable.Span())
		inner := scope.Child()
		inner.Bind(s.VarName, elemType)
		c.loopDepth++
		c.checkBlock(s.Body, inner)
		c.loopDepth--
	case *ast.LoopStmt:
		c.loopDepth++
		c.checkBlock(s.Body, scope)
		c.loopDepth--
	case *ast.SwitchStmt:
		c.checkSwitch(s, scope)
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			c.diags.Errorf(diag.KindBreakOutsideLoop, s.Sp, "break outside of a loop")
		}
	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			c.diags.Errorf(diag.KindBreakOutsideLoop, s.Sp, "continue outside of a loop")
		}
	case *ast.LockedStmt:
		targetType := c.checkExpr(s.Target, scope)
		bindType := targetType
		if sy, ok := c.u.Resolve(targetType).(*Sync); ok && sy.Elem != nil {
			bindType = sy.Elem
		}
		inner := scope.Child()
		inner.Bind(s.Binding, bindType)
		c.checkBlock(s.Body, inner)
	}
}

// elementTypeOf resolves the per-iteration binding type for a `for`
// statement's iterable: an Array/FixedArray yields its element type; a
// RangeExpr's own checkExpr already returns Int directly, so it falls
// through to the generic case below.
func (c *Checker) elementTypeOf(iterType Type, sp source.Span) Type {
	switch t := c.u.Resolve(iterType).(type) {
	case *Array:
		return t.Elem
	case *FixedArray:
		return t.Elem
	case *Prim:
		if t.Kind == Int {
			// Ranges type as Int (treats `a..b` as producing
			// the element type directly); iterating one yields Int.
			return TInt
		}
	}
	if isErrorType(c.u.Resolve(iterType)) {
		return TError
	}
	c.diags.Errorf(diag.KindNonIterable, sp, "cannot iterate over %s", c.u.Resolve(iterType))
	return TError
}

// checkThrowsAllowed verifies excType's exception name is present in the
// currently-checked function's throws clause.
func (c *Checker) checkThrowsAllowed(excType Type, sp source.Span) {
	named, ok := c.u.Resolve(excType).(*Named)
	if !ok {
		return
	}
	for _, allowed := range c.funcThrows {
		if allowed == named.Name {
			return
		}
	}
	c.diags.Errorf(diag.KindTypeMismatch, sp, "exception %s is not declared in this function's throws clause", named.Name)
}
