package codegen

import "github.com/naml-lang/namlc/internal/ast"

// freeVars computes the captured-variable set for a spawn/lambda body:
// free identifiers minus locally-defined ones. params (the lambda's own
// parameters) seed the walker's bound set, and names the body itself
// declares are added as the walk meets them, so every remaining use is
// a captured outer variable.
func freeVars(params []string, body ast.Node) []string {
	c := &captureWalker{bound: map[string]bool{}, free: map[string]bool{}}
	for _, p := range params {
		c.bound[p] = true
	}
	c.walkNode(body)
	out := make([]string, 0, len(c.free))
	for name := range c.free {
		out = append(out, name)
	}
	return out
}

type captureWalker struct {
	bound map[string]bool
	free  map[string]bool
}

func (c *captureWalker) use(name string) {
	if !c.bound[name] {
		c.free[name] = true
	}
}

// withBound runs fn with name additionally bound, then restores the
// previous binding state — shadowing inside a nested scope must not
// leak back out.
func (c *captureWalker) withBound(name string, fn func()) {
	was, had := c.bound[name], c.bound[name]
	c.bound[name] = true
	fn()
	if had {
		c.bound[name] = was
	} else {
		delete(c.bound, name)
	}
}

func (c *captureWalker) walkNode(n ast.Node) {
	switch n := n.(type) {
	case *ast.BlockExpr:
		c.walkBlock(n)
	case ast.Expr:
		c.walkExpr(n)
	case ast.Stmt:
		c.walkStmt(n)
	}
}

func (c *captureWalker) walkBlock(b *ast.BlockExpr) {
	for _, s := range b.Stmts {
		c.walkStmt(s)
	}
	if b.Tail != nil {
		c.walkExpr(b.Tail)
	}
}

func (c *captureWalker) walkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarStmt:
		c.walkExpr(s.Value)
		c.bound[s.Name] = true
		if s.ElseBlk != nil {
			c.walkBlock(s.ElseBlk)
		}
	case *ast.ConstStmt:
		c.walkExpr(s.Value)
		c.bound[s.Name] = true
	case *ast.AssignStmt:
		c.walkExpr(s.Target)
		c.walkExpr(s.Value)
	case *ast.ExprStmt:
		c.walkExpr(s.X)
	case *ast.ReturnStmt:
		if s.Value != nil {
			c.walkExpr(s.Value)
		}
	case *ast.ThrowStmt:
		c.walkExpr(s.Value)
	case *ast.IfStmt:
		c.walkExpr(s.Cond)
		c.walkBlock(s.Then)
		if s.Else != nil {
			c.walkStmt(s.Else)
		}
	case *ast.WhileStmt:
		c.walkExpr(s.Cond)
		c.walkBlock(s.Body)
	case *ast.ForStmt:
		c.walkExpr(s.Iterable)
		c.withBound(s.VarName, func() { c.walkBlock(s.Body) })
	case *ast.LoopStmt:
		c.walkBlock(s.Body)
	case *ast.SwitchStmt:
		c.walkExpr(s.Scrutinee)
		for _, cs := range s.Cases {
			bound := patternBindings(cs.Pattern)
			for _, b := range bound {
				c.bound[b] = true
			}
			if cs.Guard != nil {
				c.walkExpr(cs.Guard)
			}
			c.walkBlock(cs.Body)
		}
	case *ast.BlockStmt:
		c.walkBlock(s.Block)
	case *ast.LockedStmt:
		c.walkExpr(s.Target)
		c.withBound(s.Binding, func() { c.walkBlock(s.Body) })
	}
}

func (c *captureWalker) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *ast.Ident:
		c.use(e.Name)
	case *ast.BinaryExpr:
		c.walkExpr(e.Left)
		c.walkExpr(e.Right)
	case *ast.UnaryExpr:
		c.walkExpr(e.Operand)
	case *ast.CallExpr:
		c.walkExpr(e.Callee)
		for _, a := range e.Args {
			c.walkExpr(a)
		}
	case *ast.MethodCallExpr:
		c.walkExpr(e.Receiver)
		for _, a := range e.Args {
			c.walkExpr(a)
		}
	case *ast.IndexExpr:
		c.walkExpr(e.Recv)
		c.walkExpr(e.Index)
	case *ast.FieldExpr:
		c.walkExpr(e.Recv)
	case *ast.CastExpr:
		c.walkExpr(e.Value)
	case *ast.FallibleCastExpr:
		c.walkExpr(e.Value)
	case *ast.ForceUnwrapExpr:
		c.walkExpr(e.Value)
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			c.walkExpr(el)
		}
	case *ast.MapLit:
		for _, en := range e.Entries {
			c.walkExpr(en.Key)
			c.walkExpr(en.Value)
		}
	case *ast.StructLit:
		for _, fi := range e.Fields {
			c.walkExpr(fi.Value)
		}
	case *ast.IfExpr:
		c.walkExpr(e.Cond)
		c.walkBlock(e.Then)
		if e.Else != nil {
			c.walkExpr(e.Else)
		}
	case *ast.BlockExpr:
		c.walkBlock(e)
	case *ast.LambdaExpr:
		inner := &captureWalker{bound: copyBoundSet(c.bound), free: c.free}
		for _, p := range e.Params {
			inner.bound[p.Name] = true
		}
		inner.walkNode(e.Body)
	case *ast.SpawnExpr:
		inner := &captureWalker{bound: copyBoundSet(c.bound), free: c.free}
		inner.walkBlock(e.Body)
	case *ast.TryExpr:
		c.walkExpr(e.Inner)
	case *ast.CatchExpr:
		c.walkExpr(e.Inner)
		c.withBound(e.ErrName, func() { c.walkBlock(e.Handler) })
	case *ast.RangeExpr:
		c.walkExpr(e.Start)
		c.walkExpr(e.End)
	case *ast.GroupedExpr:
		c.walkExpr(e.Inner)
	case *ast.SomeExpr:
		c.walkExpr(e.Inner)
	case *ast.TernaryExpr:
		c.walkExpr(e.Cond)
		c.walkExpr(e.Then)
		c.walkExpr(e.Else)
	case *ast.ElvisExpr:
		c.walkExpr(e.Left)
		c.walkExpr(e.Right)
	}
}

func copyBoundSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// patternBindings returns the names a switch-case pattern binds, so a
// nested spawn/lambda inside the case body treats them as already bound
// rather than free.
func patternBindings(p ast.Pattern) []string {
	switch p := p.(type) {
	case *ast.IdentPattern:
		return []string{p.Name}
	case *ast.VariantPattern:
		return append([]string(nil), p.Bindings...)
	}
	return nil
}
