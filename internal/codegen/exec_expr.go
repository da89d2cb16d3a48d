package codegen

import (
	"strconv"
	"strings"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/heap"
	"github.com/naml-lang/namlc/internal/types"
)

// rangeValue is the runtime form of a RangeExpr (grammar has
// no dedicated Range heap type; a..b is only ever consumed by a for-loop
// or passed to an array-slicing builtin, so it is represented as a
// plain Go value rather than a heap object).
type rangeValue struct {
	start, end int64
	inclusive  bool
}

// eval computes expr's value against fr. Every recursive call checks the
// task's exception slot first — the caller checks it after the call,
// applied at expression granularity: once an exception is set, every
// further sub-expression evaluation is a no-op that returns nil, so a
// thrown value propagates up to the nearest execStmt/execBlock check
// without evaluating anything after the throw site.
func (e *Exec) eval(expr ast.Expr, fr *Frame) interface{} {
	if expr == nil || fr.Exception().Check() {
		return nil
	}
	switch n := expr.(type) {
	case *ast.IntLit:
		return n.Value
	case *ast.FloatLit:
		return n.Value
	case *ast.BoolLit:
		return n.Value
	case *ast.StringLit:
		return heap.NewString(n.Value)
	case *ast.TemplateStringLit:
		return e.evalTemplateString(n, fr)
	case *ast.Ident:
		return e.evalIdent(n, fr)
	case *ast.PathExpr:
		return e.evalPath(n, fr)
	case *ast.BinaryExpr:
		return e.evalBinary(n, fr)
	case *ast.UnaryExpr:
		return e.evalUnary(n, fr)
	case *ast.CallExpr:
		return e.evalCall(n, fr)
	case *ast.MethodCallExpr:
		return e.evalMethodCall(n, fr)
	case *ast.IndexExpr:
		return e.evalIndex(n, fr)
	case *ast.FieldExpr:
		return e.evalField(n, fr)
	case *ast.CastExpr:
		return e.evalCast(n.Value, n.Target, fr)
	case *ast.FallibleCastExpr:
		return e.evalFallibleCast(n, fr)
	case *ast.ForceUnwrapExpr:
		return e.evalForceUnwrap(n, fr)
	case *ast.ArrayLit:
		return e.evalArrayLit(n, fr)
	case *ast.MapLit:
		return e.evalMapLit(n, fr)
	case *ast.StructLit:
		return e.evalStructLit(n, fr)
	case *ast.IfExpr:
		return e.evalIfExpr(n, fr)
	case *ast.BlockExpr:
		sig := e.execBlock(n, fr.Child())
		return sig.value
	case *ast.LambdaExpr:
		return e.EvalLambda(n, fr)
	case *ast.SpawnExpr:
		return e.evalSpawn(n, fr)
	case *ast.TryExpr:
		return e.evalTry(n, fr)
	case *ast.CatchExpr:
		return e.evalCatch(n, fr)
	case *ast.RangeExpr:
		return e.evalRange(n, fr)
	case *ast.GroupedExpr:
		return e.eval(n.Inner, fr)
	case *ast.SomeExpr:
		v := e.eval(n.Inner, fr)
		return heap.Some(v)
	case *ast.TernaryExpr:
		if asBool(e.eval(n.Cond, fr)) {
			return e.eval(n.Then, fr)
		}
		return e.eval(n.Else, fr)
	case *ast.ElvisExpr:
		left := e.eval(n.Left, fr)
		if fr.Exception().Check() {
			return nil
		}
		if opt, ok := asOption(left); ok {
			if opt.Some {
				return opt.Value
			}
			return e.eval(n.Right, fr)
		}
		return left
	}
	return nil
}

func (e *Exec) evalIdent(n *ast.Ident, fr *Frame) interface{} {
	v, ok := fr.Get(n.Name)
	if !ok {
		return nil
	}
	needsClone := false
	if a, ok := e.Mod.Annot.Get(n); ok {
		needsClone = a.NeedsClone
	}
	return e.increfIfNeeded(v, needsClone)
}

// evalPath resolves `Enum::Variant`: a nullary variant evaluates
// directly to the tagged struct value; a data-carrying variant used
// without a call (bare reference) also evaluates to a tagged value, with
// its data fields left unset; it does not produce a constructor function.
func (e *Exec) evalPath(n *ast.PathExpr, fr *Frame) interface{} {
	if len(n.Segments) != 2 {
		return nil
	}
	enumName, variant := n.Segments[0], n.Segments[1]
	info, ok := e.Mod.Checked.Symbols.Enums[enumName]
	if !ok {
		return nil
	}
	vi, ok := info.Variants[variant]
	if !ok {
		return nil
	}
	return e.newVariant(enumName, vi, nil)
}

// newVariant builds the heap-struct representation of an enum value:
// field 0 holds tagHash of the variant's name, remaining fields are the variant's
// own data fields (data model names Enum as a sum of variants
// but doesn't prescribe a runtime layout beyond "tag + payload", which
// this mirrors directly). Enum values carry their own tag rather than a
// layout-table type id, so the struct-literal machinery's TypeID (used
// only for the self-referential decref lookup) is left at zero; naml
// enums have no self-referential-field concept to track.
func (e *Exec) newVariant(enumName string, vi *types.EnumVariantInfo, args []interface{}) *heap.StructObj {
	fieldNames := append([]string{"$tag"}, vi.FieldNames...)
	fieldIsRef := make([]bool, len(fieldNames))
	fieldIsRef[0] = false
	for i, fn := range vi.FieldNames {
		fieldIsRef[i+1] = isRefType(vi.FieldTypes[fn])
	}
	so := heap.NewStruct(0, fieldNames, fieldIsRef, nil)
	so.SetField(0, int64(tagHash(vi.Name)))
	for i, v := range args {
		if i+1 < len(fieldIsRef) {
			so.SetField(i+1, wrapForField(v, fieldIsRef[i+1]))
		}
	}
	return so
}

func tagHash(name string) int {
	h := 0
	for _, c := range name {
		h = h*131 + int(c)
	}
	return h
}

func (e *Exec) evalTemplateString(n *ast.TemplateStringLit, fr *Frame) interface{} {
	var b strings.Builder
	for i, chunk := range n.Chunks {
		b.WriteString(chunk)
		if i < len(n.Exprs) {
			v := e.eval(n.Exprs[i], fr)
			if fr.Exception().Check() {
				return nil
			}
			b.WriteString(stringify(v))
		}
	}
	return heap.NewString(b.String())
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case *heap.StringObj:
		return x.Bytes
	case heap.Ref:
		return stringify(x.Obj)
	case heap.Option:
		if !x.Some {
			return "none"
		}
		return "some(" + stringify(x.Value) + ")"
	case nil:
		return "unit"
	}
	return "?"
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asOption(v interface{}) (heap.Option, bool) {
	o, ok := v.(heap.Option)
	return o, ok
}

// toRef wraps a concrete heap pointer as a heap.Ref for storage in a
// struct field/array slot/map entry, which the heap package's
// containers expect.
// An already-wrapped Ref passes through unchanged; a non-Object value
// (a scalar passed to a ref-typed slot by caller mistake) wraps to a nil
// Ref rather than panicking, since callers gate on isRefType first.
func toRef(v interface{}) heap.Ref {
	if r, ok := v.(heap.Ref); ok {
		return r
	}
	if obj, ok := v.(heap.Object); ok {
		return heap.Ref{Obj: obj}
	}
	return heap.Ref{}
}

// wrapForField is toRef gated by whether the declared field type is
// itself a heap reference, leaving scalar slots storing raw ints/floats/
// bools untouched.
func wrapForField(v interface{}, isRef bool) interface{} {
	if !isRef {
		return v
	}
	return toRef(v)
}

// fromField is the inverse of wrapForField: unwraps a heap.Ref back to
// its concrete pointer for use as an evaluator value.
func fromField(v interface{}) interface{} {
	if r, ok := v.(heap.Ref); ok {
		return r.Obj
	}
	return v
}

func (e *Exec) evalArrayLit(n *ast.ArrayLit, fr *Frame) interface{} {
	a, ok := e.Mod.Annot.Get(n)
	elemIsRef := ok && isRefType(elemTypeOf(a.Type))
	arr := heap.NewArray(elemIsRef)
	for _, el := range n.Elems {
		v := e.eval(el, fr)
		if fr.Exception().Check() {
			return nil
		}
		if elemIsRef {
			arr.PushRef(toRef(v))
		} else {
			arr.Push(toScalarInt(v))
		}
	}
	return arr
}

func (e *Exec) evalMapLit(n *ast.MapLit, fr *Frame) interface{} {
	a, ok := e.Mod.Annot.Get(n)
	valIsRef := ok && isRefType(valTypeOf(a.Type))
	m := heap.NewMap(valIsRef)
	for _, en := range n.Entries {
		k := e.eval(en.Key, fr)
		if fr.Exception().Check() {
			return nil
		}
		v := e.eval(en.Value, fr)
		if fr.Exception().Check() {
			return nil
		}
		m.Set(mapKey(k), wrapForField(v, valIsRef))
	}
	return m
}

func (e *Exec) evalStructLit(n *ast.StructLit, fr *Frame) interface{} {
	layout, ok := e.Mod.Structs[n.TypeName]
	if !ok {
		return nil
	}
	so := heap.NewStruct(layout.TypeID, layout.FieldNames, layout.FieldIsRef, layout.SelfField)
	for _, fi := range n.Fields {
		idx := so.FieldIndex(fi.Name)
		if idx < 0 {
			continue
		}
		v := e.eval(fi.Value, fr)
		if fr.Exception().Check() {
			return nil
		}
		so.SetField(idx, wrapForField(v, layout.FieldIsRef[idx]))
	}
	return so
}

func (e *Exec) evalIfExpr(n *ast.IfExpr, fr *Frame) interface{} {
	cond := e.eval(n.Cond, fr)
	if fr.Exception().Check() {
		return nil
	}
	if asBool(cond) {
		sig := e.execBlock(n.Then, fr.Child())
		return sig.value
	}
	if n.Else != nil {
		return e.eval(n.Else, fr)
	}
	return nil
}

func (e *Exec) evalRange(n *ast.RangeExpr, fr *Frame) interface{} {
	start := e.eval(n.Start, fr)
	if fr.Exception().Check() {
		return nil
	}
	end := e.eval(n.End, fr)
	if fr.Exception().Check() {
		return nil
	}
	return rangeValue{start: toScalarInt(start), end: toScalarInt(end), inclusive: n.Inclusive}
}

func (e *Exec) evalSpawn(n *ast.SpawnExpr, fr *Frame) interface{} {
	data, run := e.SpawnTask(n, fr)
	e.Mod.Pool.SpawnClosure(run, data)
	return nil
}

// evalTry implements "Try: evaluate the inner; if the
// exception slot is set, clear it and return Option-none; otherwise
// return Option-some(value)".
func (e *Exec) evalTry(n *ast.TryExpr, fr *Frame) interface{} {
	v := e.eval(n.Inner, fr)
	if fr.Exception().Check() {
		fr.Exception().Clear()
		return heap.None()
	}
	return heap.Some(v)
}

// evalCatch implements "Catch": on a set exception, bind
// it to the handler's name and clear the slot before running the
// handler; otherwise pass the inner value through.
func (e *Exec) evalCatch(n *ast.CatchExpr, fr *Frame) interface{} {
	v := e.eval(n.Inner, fr)
	if !fr.Exception().Check() {
		return v
	}
	excRef := fr.Exception().Get()
	fr.Exception().Clear()
	child := fr.Child()
	child.Bind(n.ErrName, excRef.Obj)
	sig := e.execBlock(n.Handler, child)
	return sig.value
}

// throwValue implements "Throw": set the per-task
// exception slot to v's heap object (wrapping non-exception values in a
// plain "Error" exception so `throw "boom"`-style literals still flow
// through the same slot). The shadow stack available via
// fr.Exception().Capture() at this exact point is still fully populated
// — every enclosing CallFunction's frame is still pushed — so a handler
// further up (describeUncaught, or a user catch) that wants the trace
// must read it before unwinding continues; this backend does not
// separately freeze it onto the exception object.
func (e *Exec) throwValue(v interface{}, fr *Frame) {
	obj, ok := v.(*heap.StructObj)
	if !ok {
		obj = e.Mod.NewException("Error")
		if i := obj.FieldIndex("message"); i >= 0 {
			obj.SetField(i, toRef(heap.NewString(stringify(v))))
		}
	}
	fr.Exception().Set(heap.Ref{Obj: obj}, obj.TypeID)
}

func (e *Exec) evalCast(val ast.Expr, target ast.TypeExpr, fr *Frame) interface{} {
	v := e.eval(val, fr)
	if fr.Exception().Check() {
		return nil
	}
	nt, ok := target.(*ast.NamedType)
	if !ok {
		return v
	}
	switch nt.Name {
	case "int", "uint":
		return toScalarInt(v)
	case "float":
		return toScalarFloat(v)
	case "string":
		return heap.NewString(stringify(v))
	case "bool":
		return asBool(v)
	}
	return v
}

func (e *Exec) evalFallibleCast(n *ast.FallibleCastExpr, fr *Frame) interface{} {
	v := e.evalCast(n.Value, n.Target, fr)
	if fr.Exception().Check() {
		return heap.None()
	}
	return heap.Some(v)
}

// evalForceUnwrap implements "Force-unwrap on none: panic
// with a fixed message", realized as a thrown exception so the
// uncaught-exception path reports it uniformly.
func (e *Exec) evalForceUnwrap(n *ast.ForceUnwrapExpr, fr *Frame) interface{} {
	v := e.eval(n.Value, fr)
	if fr.Exception().Check() {
		return nil
	}
	opt, ok := asOption(v)
	if !ok {
		return v
	}
	if !opt.Some {
		e.throwValue(heap.NewString("force-unwrap of none"), fr)
		return nil
	}
	return opt.Value
}

func toScalarInt(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	}
	return 0
}

func toScalarFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	}
	return 0
}

func mapKey(v interface{}) interface{} {
	if s, ok := v.(*heap.StringObj); ok {
		return s.Bytes
	}
	return v
}

// elemTypeOf/valTypeOf pick apart the checker's Array/Map types to
// decide whether an array/map literal's slots hold heap references,
// mirroring module.go's isRefType decision for struct fields.
func elemTypeOf(t types.Type) types.Type {
	if a, ok := t.(*types.Array); ok {
		return a.Elem
	}
	return types.TUnit
}

func valTypeOf(t types.Type) types.Type {
	if m, ok := t.(*types.Map); ok {
		return m.Val
	}
	return types.TUnit
}
