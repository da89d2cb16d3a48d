package codegen

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/heap"
)

// assignTo stores val at target, which must be an lvalue expression
//: a bare name, an index
// expression, or a field expression.
func (e *Exec) assignTo(target ast.Expr, val interface{}, fr *Frame) {
	switch t := target.(type) {
	case *ast.Ident:
		fr.Set(t.Name, val)
	case *ast.IndexExpr:
		recv := e.eval(t.Recv, fr)
		if fr.Exception().Check() {
			return
		}
		idx := e.eval(t.Index, fr)
		if fr.Exception().Check() {
			return
		}
		switch r := recv.(type) {
		case *heap.ArrayObj:
			i := int(toScalarInt(idx))
			if i < 0 || i >= r.Len() {
				e.throwValue(heap.NewString("array index out of bounds"), fr)
				return
			}
			if r.ElemIsRef {
				r.Refs[i].Decref()
				r.Refs[i] = toRef(val)
			} else {
				r.Scalars[i] = toScalarInt(val)
			}
		case *heap.MapObj:
			r.Set(mapKey(idx), wrapForField(val, r.ValueIsRef))
		}
	case *ast.FieldExpr:
		recv := e.eval(t.Recv, fr)
		if fr.Exception().Check() {
			return
		}
		so, ok := recv.(*heap.StructObj)
		if !ok {
			return
		}
		i := so.FieldIndex(t.Field)
		if i < 0 {
			return
		}
		so.SetField(i, wrapForField(val, so.FieldIsRef[i]))
	}
}

// applyCompoundAssign computes `cur op= val`'s new value for `+=`/`-=`/
// `*=`/`/=` (desugars these to "target = target op val"
// with target evaluated once).
func applyCompoundAssign(op ast.AssignOp, cur, val interface{}) interface{} {
	if cs, ok := cur.(*heap.StringObj); ok && op == ast.AssignAdd {
		vs, _ := val.(*heap.StringObj)
		rv := ""
		if vs != nil {
			rv = vs.Bytes
		}
		return heap.NewString(cs.Bytes + rv)
	}
	if isFloat(cur) || isFloat(val) {
		cf, vf := toScalarFloat(cur), toScalarFloat(val)
		switch op {
		case ast.AssignAdd:
			return cf + vf
		case ast.AssignSub:
			return cf - vf
		case ast.AssignMul:
			return cf * vf
		case ast.AssignDiv:
			return cf / vf
		}
		return cur
	}
	ci, vi := toScalarInt(cur), toScalarInt(val)
	switch op {
	case ast.AssignAdd:
		return ci + vi
	case ast.AssignSub:
		return ci - vi
	case ast.AssignMul:
		return ci * vi
	case ast.AssignDiv:
		return ci / vi
	}
	return cur
}

// iterate flattens a for-loop's iterable into the sequence of values its
// loop variable binds to, across the three iterable shapes // names: a range, an array, or a map (iterating its keys).
func iterate(iterable interface{}) []interface{} {
	switch it := iterable.(type) {
	case rangeValue:
		var out []interface{}
		if it.inclusive {
			for i := it.start; i <= it.end; i++ {
				out = append(out, i)
			}
		} else {
			for i := it.start; i < it.end; i++ {
				out = append(out, i)
			}
		}
		return out
	case *heap.ArrayObj:
		out := make([]interface{}, it.Len())
		if it.ElemIsRef {
			for i, r := range it.Refs {
				out[i] = fromField(r)
			}
		} else {
			for i, s := range it.Scalars {
				out[i] = s
			}
		}
		return out
	case *heap.MapObj:
		var out []interface{}
		for _, k := range it.Keys() {
			out = append(out, k)
		}
		return out
	}
	return nil
}

// matchPattern tests scrutinee against p, binding any names p introduces
// directly into fr on a match.
func (e *Exec) matchPattern(p ast.Pattern, scrutinee interface{}, fr *Frame) bool {
	switch p := p.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.LiteralPattern:
		lit := e.eval(p.Value, fr)
		return valuesEqual(lit, scrutinee)
	case *ast.IdentPattern:
		if enumName, vi, ok := e.Mod.Checked.Symbols.VariantEnum(p.Name); ok {
			if so, ok := scrutinee.(*heap.StructObj); ok && len(so.Fields) > 0 {
				if tag, ok := fromField(so.Fields[0]).(int64); ok && tag == int64(tagHash(vi.Name)) {
					return true
				}
			}
			_ = enumName
			return false
		}
		fr.Bind(p.Name, scrutinee)
		return true
	case *ast.VariantPattern:
		so, ok := scrutinee.(*heap.StructObj)
		if !ok || len(so.Fields) == 0 {
			return false
		}
		tag, ok := fromField(so.Fields[0]).(int64)
		if !ok || tag != int64(tagHash(p.Variant)) {
			return false
		}
		for i, name := range p.Bindings {
			if i+1 < len(so.Fields) {
				fr.Bind(name, fromField(so.Fields[i+1]))
			}
		}
		return true
	}
	return false
}
