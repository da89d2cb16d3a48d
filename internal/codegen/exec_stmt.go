package codegen

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/heap"
)

// execBlock runs b's statements directly against fr (the caller decides
// whether fr is a fresh child scope or the same frame the block's
// statements should share, e.g. a function body's own frame). On every
// exit path it releases fr's own locals — scope exit decrements refs
// held by locals — excluding whichever value is escaping the scope.
func (e *Exec) execBlock(b *ast.BlockExpr, fr *Frame) signal {
	sig := noSignal
	for _, s := range b.Stmts {
		sig = e.execStmt(s, fr)
		if sig.kind != sigNone {
			break
		}
	}
	if sig.kind == sigNone && b.Tail != nil {
		v := e.eval(b.Tail, fr)
		if fr.Exception().Check() {
			sig = signal{kind: sigThrow}
		} else {
			sig = signal{kind: sigNone, value: v}
		}
	}
	e.releaseFrameLocals(fr, sig.value)
	return sig
}

func (e *Exec) execStmt(s ast.Stmt, fr *Frame) signal {
	switch s := s.(type) {
	case *ast.VarStmt:
		return e.execVarStmt(s, fr)
	case *ast.ConstStmt:
		v := e.eval(s.Value, fr)
		if fr.Exception().Check() {
			return signal{kind: sigThrow}
		}
		fr.Bind(s.Name, v)
		return noSignal
	case *ast.AssignStmt:
		return e.execAssignStmt(s, fr)
	case *ast.ExprStmt:
		e.eval(s.X, fr)
		if fr.Exception().Check() {
			return signal{kind: sigThrow}
		}
		return noSignal
	case *ast.ReturnStmt:
		var v interface{}
		if s.Value != nil {
			v = e.eval(s.Value, fr)
			if fr.Exception().Check() {
				return signal{kind: sigThrow}
			}
		}
		return signal{kind: sigReturn, value: v}
	case *ast.ThrowStmt:
		v := e.eval(s.Value, fr)
		if fr.Exception().Check() {
			return signal{kind: sigThrow}
		}
		e.throwValue(v, fr)
		return signal{kind: sigThrow}
	case *ast.IfStmt:
		return e.execIfStmt(s, fr)
	case *ast.WhileStmt:
		return e.execWhileStmt(s, fr)
	case *ast.ForStmt:
		return e.execForStmt(s, fr)
	case *ast.LoopStmt:
		return e.execLoopStmt(s, fr)
	case *ast.SwitchStmt:
		return e.execSwitchStmt(s, fr)
	case *ast.BreakStmt:
		return signal{kind: sigBreak}
	case *ast.ContinueStmt:
		return signal{kind: sigContinue}
	case *ast.BlockStmt:
		return e.execBlock(s.Block, fr.Child())
	case *ast.LockedStmt:
		return e.execLockedStmt(s, fr)
	}
	return noSignal
}

func (e *Exec) execVarStmt(s *ast.VarStmt, fr *Frame) signal {
	if s.ElseBlk != nil {
		if idx, ok := s.Value.(*ast.IndexExpr); ok {
			v, some := e.tryIndex(idx, fr)
			if fr.Exception().Check() {
				return signal{kind: sigThrow}
			}
			if !some {
				return e.execBlock(s.ElseBlk, fr.Child())
			}
			fr.Bind(s.Name, v)
			return noSignal
		}
		v := e.eval(s.Value, fr)
		if fr.Exception().Check() {
			return signal{kind: sigThrow}
		}
		if opt, ok := asOption(v); ok {
			if !opt.Some {
				return e.execBlock(s.ElseBlk, fr.Child())
			}
			v = opt.Value
		}
		fr.Bind(s.Name, v)
		return noSignal
	}
	v := e.eval(s.Value, fr)
	if fr.Exception().Check() {
		return signal{kind: sigThrow}
	}
	fr.Bind(s.Name, v)
	return noSignal
}

func (e *Exec) execAssignStmt(s *ast.AssignStmt, fr *Frame) signal {
	val := e.eval(s.Value, fr)
	if fr.Exception().Check() {
		return signal{kind: sigThrow}
	}
	if s.Op != ast.AssignPlain {
		cur := e.eval(s.Target, fr)
		if fr.Exception().Check() {
			return signal{kind: sigThrow}
		}
		val = applyCompoundAssign(s.Op, cur, val)
	}
	e.assignTo(s.Target, val, fr)
	if fr.Exception().Check() {
		return signal{kind: sigThrow}
	}
	return noSignal
}

func (e *Exec) execIfStmt(s *ast.IfStmt, fr *Frame) signal {
	cond := e.eval(s.Cond, fr)
	if fr.Exception().Check() {
		return signal{kind: sigThrow}
	}
	if asBool(cond) {
		return e.execBlock(s.Then, fr.Child())
	}
	if s.Else != nil {
		return e.execStmt(s.Else, fr)
	}
	return noSignal
}

func (e *Exec) execWhileStmt(s *ast.WhileStmt, fr *Frame) signal {
	for {
		cond := e.eval(s.Cond, fr)
		if fr.Exception().Check() {
			return signal{kind: sigThrow}
		}
		if !asBool(cond) {
			return noSignal
		}
		sig := e.execBlock(s.Body, fr.Child())
		switch sig.kind {
		case sigBreak:
			return noSignal
		case sigReturn, sigThrow:
			return sig
		}
	}
}

func (e *Exec) execLoopStmt(s *ast.LoopStmt, fr *Frame) signal {
	for {
		sig := e.execBlock(s.Body, fr.Child())
		switch sig.kind {
		case sigBreak:
			return noSignal
		case sigReturn, sigThrow:
			return sig
		}
	}
}

func (e *Exec) execForStmt(s *ast.ForStmt, fr *Frame) signal {
	iterable := e.eval(s.Iterable, fr)
	if fr.Exception().Check() {
		return signal{kind: sigThrow}
	}
	for _, item := range iterate(iterable) {
		child := fr.Child()
		child.Bind(s.VarName, item)
		sig := e.execBlock(s.Body, child)
		switch sig.kind {
		case sigBreak:
			return noSignal
		case sigReturn, sigThrow:
			return sig
		}
	}
	return noSignal
}

func (e *Exec) execSwitchStmt(s *ast.SwitchStmt, fr *Frame) signal {
	scrutinee := e.eval(s.Scrutinee, fr)
	if fr.Exception().Check() {
		return signal{kind: sigThrow}
	}
	for _, c := range s.Cases {
		child := fr.Child()
		if !e.matchPattern(c.Pattern, scrutinee, child) {
			continue
		}
		if c.Guard != nil {
			g := e.eval(c.Guard, child)
			if fr.Exception().Check() {
				return signal{kind: sigThrow}
			}
			if !asBool(g) {
				continue
			}
		}
		return e.execBlock(c.Body, child)
	}
	return noSignal
}

func (e *Exec) execLockedStmt(s *ast.LockedStmt, fr *Frame) signal {
	target := e.eval(s.Target, fr)
	if fr.Exception().Check() {
		return signal{kind: sigThrow}
	}
	child := fr.Child()
	switch lk := target.(type) {
	case *heap.MutexObj:
		lk.Lock()
		child.Bind(s.Binding, fromField(lk.Value))
		sig := e.execBlock(s.Body, child)
		if v, ok := child.Get(s.Binding); ok {
			lk.Value = toRef(v)
		}
		lk.Unlock()
		return sig
	case *heap.RwLockObj:
		if s.ForWrite {
			lk.Lock()
			child.Bind(s.Binding, fromField(lk.Value))
			sig := e.execBlock(s.Body, child)
			if v, ok := child.Get(s.Binding); ok {
				lk.Value = toRef(v)
			}
			lk.Unlock()
			return sig
		}
		lk.RLock()
		child.Bind(s.Binding, fromField(lk.Value))
		sig := e.execBlock(s.Body, child)
		lk.RUnlock()
		return sig
	}
	return noSignal
}
