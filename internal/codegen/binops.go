package codegen

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/heap"
)

// evalBinary evaluates a binary expression. OpAnd/OpOr short-circuit
// (the right operand is never evaluated once the result is already
// decided), matching ordinary boolean-operator semantics; every other
// operator evaluates both sides first.
func (e *Exec) evalBinary(n *ast.BinaryExpr, fr *Frame) interface{} {
	if n.Op == ast.OpAnd {
		l := e.eval(n.Left, fr)
		if fr.Exception().Check() || !asBool(l) {
			return false
		}
		return asBool(e.eval(n.Right, fr))
	}
	if n.Op == ast.OpOr {
		l := e.eval(n.Left, fr)
		if fr.Exception().Check() {
			return nil
		}
		if asBool(l) {
			return true
		}
		return asBool(e.eval(n.Right, fr))
	}

	l := e.eval(n.Left, fr)
	if fr.Exception().Check() {
		return nil
	}
	r := e.eval(n.Right, fr)
	if fr.Exception().Check() {
		return nil
	}

	switch n.Op {
	case ast.OpEq:
		return valuesEqual(l, r)
	case ast.OpNeq:
		return !valuesEqual(l, r)
	case ast.OpIs:
		return e.isTypeTest(l, n.Right)
	}

	if ls, ok := l.(*heap.StringObj); ok {
		if n.Op == ast.OpAdd {
			rs, _ := r.(*heap.StringObj)
			rv := ""
			if rs != nil {
				rv = rs.Bytes
			}
			return heap.NewString(ls.Bytes + rv)
		}
		rs, _ := r.(*heap.StringObj)
		if rs == nil {
			return false
		}
		switch n.Op {
		case ast.OpLt:
			return ls.Bytes < rs.Bytes
		case ast.OpGt:
			return ls.Bytes > rs.Bytes
		case ast.OpLte:
			return ls.Bytes <= rs.Bytes
		case ast.OpGte:
			return ls.Bytes >= rs.Bytes
		}
		return nil
	}

	if isFloat(l) || isFloat(r) {
		lf, rf := toScalarFloat(l), toScalarFloat(r)
		switch n.Op {
		case ast.OpAdd:
			return lf + rf
		case ast.OpSub:
			return lf - rf
		case ast.OpMul:
			return lf * rf
		case ast.OpDiv:
			return lf / rf
		case ast.OpLt:
			return lf < rf
		case ast.OpGt:
			return lf > rf
		case ast.OpLte:
			return lf <= rf
		case ast.OpGte:
			return lf >= rf
		}
		return nil
	}

	li, ri := toScalarInt(l), toScalarInt(r)
	switch n.Op {
	case ast.OpAdd:
		return li + ri
	case ast.OpSub:
		return li - ri
	case ast.OpMul:
		return li * ri
	case ast.OpDiv:
		if ri == 0 {
			e.throwValue(heap.NewString("division by zero"), fr)
			return nil
		}
		return li / ri
	case ast.OpMod:
		if ri == 0 {
			e.throwValue(heap.NewString("division by zero"), fr)
			return nil
		}
		return li % ri
	case ast.OpLt:
		return li < ri
	case ast.OpGt:
		return li > ri
	case ast.OpLte:
		return li <= ri
	case ast.OpGte:
		return li >= ri
	case ast.OpBitAnd:
		return li & ri
	case ast.OpBitOr:
		return li | ri
	case ast.OpBitXor:
		return li ^ ri
	case ast.OpShl:
		return li << uint(ri)
	case ast.OpShr:
		return li >> uint(ri)
	}
	return nil
}

func (e *Exec) evalUnary(n *ast.UnaryExpr, fr *Frame) interface{} {
	v := e.eval(n.Operand, fr)
	if fr.Exception().Check() {
		return nil
	}
	switch n.Op {
	case ast.OpNeg:
		if f, ok := v.(float64); ok {
			return -f
		}
		return -toScalarInt(v)
	case ast.OpNot:
		return !asBool(v)
	case ast.OpBitNot:
		return ^toScalarInt(v)
	}
	return nil
}

func isFloat(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

// valuesEqual implements structural equality for naml's `==`: scalars
// compare by value, strings by content, and heap containers/structs by
// identity (doesn't define deep equality for arrays/maps/structs,
// matching own checker which treats `==` as a primitive
// operator rather than a derivable trait).
func valuesEqual(a, b interface{}) bool {
	if as, ok := a.(*heap.StringObj); ok {
		bs, ok := b.(*heap.StringObj)
		return ok && as.Bytes == bs.Bytes
	}
	if ao, ok := a.(heap.Option); ok {
		bo, ok := b.(heap.Option)
		if !ok || ao.Some != bo.Some {
			return false
		}
		if !ao.Some {
			return true
		}
		return valuesEqual(ao.Value, bo.Value)
	}
	if isFloat(a) || isFloat(b) {
		return toScalarFloat(a) == toScalarFloat(b)
	}
	if _, ok := a.(bool); ok {
		return a == b
	}
	if _, okA := a.(int64); okA {
		if _, okB := b.(int64); okB {
			return a == b
		}
	}
	return a == b
}

// isTypeTest implements `x is Type`: compares the runtime value's
// declared struct/exception name (resolved back from its TypeID via the
// module's layout table) against the name the parser attached to the
// right-hand operand.
func (e *Exec) isTypeTest(v interface{}, rhs ast.Expr) bool {
	name := typeNameOf(rhs)
	so, ok := v.(*heap.StructObj)
	if !ok || name == "" {
		return false
	}
	if n, ok := e.Mod.structNameByID(so.TypeID); ok {
		return n == name
	}
	for excName, id := range e.Mod.ExceptionIDs {
		if id == so.TypeID && excName == name {
			return true
		}
	}
	return false
}

func typeNameOf(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.PathExpr:
		if len(n.Segments) > 0 {
			return n.Segments[len(n.Segments)-1]
		}
	}
	return ""
}

func (e *Exec) evalIndex(n *ast.IndexExpr, fr *Frame) interface{} {
	recv := e.eval(n.Recv, fr)
	if fr.Exception().Check() {
		return nil
	}
	idx := e.eval(n.Index, fr)
	if fr.Exception().Check() {
		return nil
	}
	switch r := recv.(type) {
	case *heap.ArrayObj:
		i := int(toScalarInt(idx))
		if i < 0 || i >= r.Len() {
			e.throwValue(heap.NewString("array index out of bounds"), fr)
			return nil
		}
		if r.ElemIsRef {
			return fromField(r.Refs[i])
		}
		return r.Scalars[i]
	case *heap.MapObj:
		// Map indexing never throws: index-typing rule
		// makes `map -> Option(value)` the result type, so a missing key
		// is an ordinary none rather than a runtime error.
		v, ok := r.Get(mapKey(idx))
		if !ok {
			return heap.Option{}
		}
		return heap.Option{Some: true, Value: fromField(v)}
	case *heap.StringObj:
		i := int(toScalarInt(idx))
		if i < 0 || i >= len(r.Bytes) {
			e.throwValue(heap.NewString("string index out of bounds"), fr)
			return nil
		}
		return heap.NewString(string(r.Bytes[i]))
	}
	return nil
}

// tryIndex evaluates an index expression without raising a runtime
// exception on a missing slot, returning ok=false instead. This backs a
// fallible `var x = a[i] else { ... }` binding:
// the checker accepts that form without requiring array/string
// indexing to already be Option-typed, so the leniency lives here at
// the one statement form that asks for it rather than in ordinary
// indexing.
func (e *Exec) tryIndex(n *ast.IndexExpr, fr *Frame) (interface{}, bool) {
	recv := e.eval(n.Recv, fr)
	if fr.Exception().Check() {
		return nil, false
	}
	idx := e.eval(n.Index, fr)
	if fr.Exception().Check() {
		return nil, false
	}
	switch r := recv.(type) {
	case *heap.ArrayObj:
		i := int(toScalarInt(idx))
		if i < 0 || i >= r.Len() {
			return nil, false
		}
		if r.ElemIsRef {
			return fromField(r.Refs[i]), true
		}
		return r.Scalars[i], true
	case *heap.MapObj:
		v, ok := r.Get(mapKey(idx))
		if !ok {
			return nil, false
		}
		return fromField(v), true
	case *heap.StringObj:
		i := int(toScalarInt(idx))
		if i < 0 || i >= len(r.Bytes) {
			return nil, false
		}
		return heap.NewString(string(r.Bytes[i])), true
	}
	return nil, false
}

func (e *Exec) evalField(n *ast.FieldExpr, fr *Frame) interface{} {
	recv := e.eval(n.Recv, fr)
	if fr.Exception().Check() {
		return nil
	}
	so, ok := recv.(*heap.StructObj)
	if !ok {
		return nil
	}
	i := so.FieldIndex(n.Field)
	if i < 0 {
		return nil
	}
	return fromField(so.Fields[i])
}
