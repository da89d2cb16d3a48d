package codegen

import (
	"strings"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/heap"
	"github.com/naml-lang/namlc/internal/scheduler"
	"github.com/naml-lang/namlc/internal/types"
)

func asStringArg(v interface{}) string {
	if s, ok := v.(*heap.StringObj); ok {
		return s.Bytes
	}
	return stringify(v)
}

// evalCall dispatches a call expression: a bare function name, a
// module-qualified path (`foo::bar(...)`), or a first-class value
// (a FuncValue bound to a local, closed over by a lambda/spawn param).
func (e *Exec) evalCall(n *ast.CallExpr, fr *Frame) interface{} {
	args := e.evalArgs(n.Args, fr)
	if fr.Exception().Check() {
		return nil
	}
	switch callee := n.Callee.(type) {
	case *ast.Ident:
		if fd, ok := e.lookupCallable(callee.Name); ok {
			return e.CallFunction(fd, args, nil, fr.Exception())
		}
		if v, ok := fr.Get(callee.Name); ok {
			if fv, ok := v.(*FuncValue); ok {
				res, _ := e.CallClosure(fv, args, fr.Exception())
				return res
			}
		}
		if (callee.Name == "print" || callee.Name == "println") && len(args) > 0 {
			e.Mod.Println(stringify(args[0]))
			return nil
		}
		if v, handled := e.evalGlobalBuiltin(callee.Name, args); handled {
			return v
		}
		return nil
	case *ast.PathExpr:
		if len(callee.Segments) == 2 {
			enumName, variant := callee.Segments[0], callee.Segments[1]
			if info, ok := e.Mod.Checked.Symbols.Enums[enumName]; ok {
				if vi, ok := info.Variants[variant]; ok {
					return e.newVariant(enumName, vi, args)
				}
			}
			// module::function form, e.g. `math::sqrt(x)`.
			if fd, ok := e.lookupCallable(callee.Segments[len(callee.Segments)-1]); ok {
				return e.CallFunction(fd, args, nil, fr.Exception())
			}
		}
		return nil
	default:
		v := e.eval(n.Callee, fr)
		if fr.Exception().Check() {
			return nil
		}
		if fv, ok := v.(*FuncValue); ok {
			res, _ := e.CallClosure(fv, args, fr.Exception())
			return res
		}
	}
	return nil
}

// evalGlobalBuiltin dispatches the free-standing synchronization
// constructors and scheduler controls env.go's NewSymbolTable seeds
// (mutex/rwlock/atomic_int/atomic_uint/atomic_bool/wait_all/sleep) —
// there is no declaration site for these in a naml program, so codegen
// special-cases them here the same way print/println are special-cased
// above.
func (e *Exec) evalGlobalBuiltin(name string, args []interface{}) (interface{}, bool) {
	switch name {
	case "mutex":
		m := heap.NewMutex()
		if len(args) > 0 {
			m.Value = toRef(args[0])
		}
		return m, true
	case "rwlock":
		l := heap.NewRwLock()
		if len(args) > 0 {
			l.Value = toRef(args[0])
		}
		return l, true
	case "atomic_int":
		return heap.NewAtomicCell(heap.TagAtomicInt, argOr0(args)), true
	case "atomic_uint":
		return heap.NewAtomicCell(heap.TagAtomicUint, argOr0(args)), true
	case "atomic_bool":
		return heap.NewAtomicCell(heap.TagAtomicBool, argOr0(args)), true
	case "wait_all":
		e.Mod.Pool.WaitAll()
		return nil, true
	case "sleep":
		scheduler.Sleep(argOr0(args))
		return nil, true
	}
	return nil, false
}

func argOr0(args []interface{}) int64 {
	if len(args) == 0 {
		return 0
	}
	return toScalarInt(args[0])
}

func (e *Exec) evalArgs(exprs []ast.Expr, fr *Frame) []interface{} {
	args := make([]interface{}, 0, len(exprs))
	for _, a := range exprs {
		v := e.eval(a, fr)
		if fr.Exception().Check() {
			return args
		}
		args = append(args, v)
	}
	return args
}

// evalMethodCall resolves `.method(...)` on either a user-declared
// struct (via Module.Methods) or one of the built-in container/string/
// option/channel/sync types (via the builtins registry), mirroring
// "Method resolution: concrete receiver type first, then
// its declared interfaces" — built-in types have no interface layer, so
// the registry lookup is the whole of their resolution.
func (e *Exec) evalMethodCall(n *ast.MethodCallExpr, fr *Frame) interface{} {
	recv := e.eval(n.Receiver, fr)
	if fr.Exception().Check() {
		return nil
	}
	args := e.evalArgs(n.Args, fr)
	if fr.Exception().Check() {
		return nil
	}

	if so, ok := recv.(*heap.StructObj); ok {
		if name, ok := e.Mod.structNameByID(so.TypeID); ok {
			if fd, ok := e.Mod.Methods[types.MethodKey{Receiver: name, Method: n.Method}]; ok {
				return e.CallFunction(fd, args, so, fr.Exception())
			}
		}
	}

	return e.callBuiltinMethod(recv, n.Method, args, fr)
}

func (e *Exec) callBuiltinMethod(recv interface{}, method string, args []interface{}, fr *Frame) interface{} {
	exc := fr.Exception()
	switch r := recv.(type) {
	case *heap.ArrayObj:
		switch method {
		case "push":
			e.callRegistry("naml_array_push", exc, append([]interface{}{r}, wrapArrayArg(r, args)...))
			return nil
		case "pop":
			return e.callRegistry("naml_array_pop", exc, []interface{}{r})
		case "len":
			return e.callRegistry("naml_array_len", exc, []interface{}{r})
		case "get":
			return e.callRegistry("naml_array_get", exc, []interface{}{r, args[0]})
		case "contains":
			target := args[0]
			if r.ElemIsRef {
				for _, ref := range r.Refs {
					if valuesEqual(fromField(ref), target) {
						return true
					}
				}
				return false
			}
			needle := toScalarInt(target)
			for _, v := range r.Scalars {
				if v == needle {
					return true
				}
			}
			return false
		case "slice":
			start, end := int(toScalarInt(args[0])), int(toScalarInt(args[1]))
			out := heap.NewArray(r.ElemIsRef)
			if start < 0 {
				start = 0
			}
			if r.ElemIsRef {
				if end > len(r.Refs) {
					end = len(r.Refs)
				}
				for i := start; i < end; i++ {
					ref := r.Refs[i]
					ref.Incref()
					out.PushRef(ref)
				}
			} else {
				if end > len(r.Scalars) {
					end = len(r.Scalars)
				}
				for i := start; i < end; i++ {
					out.Push(r.Scalars[i])
				}
			}
			return out
		}
	case *heap.MapObj:
		switch method {
		case "get":
			return e.callRegistry("naml_map_get", exc, []interface{}{r, mapKey(args[0])})
		case "set":
			e.callRegistry("naml_map_set", exc, []interface{}{r, mapKey(args[0]), wrapForField(args[1], r.ValueIsRef)})
			return nil
		case "remove":
			return e.callRegistry("naml_map_remove", exc, []interface{}{r, mapKey(args[0])})
		case "contains_key":
			return e.callRegistry("naml_map_contains_key", exc, []interface{}{r, mapKey(args[0])})
		case "len":
			return e.callRegistry("naml_map_len", exc, []interface{}{r})
		case "keys":
			return e.callRegistry("naml_map_keys", exc, []interface{}{r})
		case "clear":
			e.callRegistry("naml_map_clear", exc, []interface{}{r})
			return nil
		case "values":
			arr := heap.NewArray(r.ValueIsRef)
			for _, k := range r.Keys() {
				v, _ := r.Get(k)
				if r.ValueIsRef {
					ref := v.(heap.Ref)
					ref.Incref()
					arr.PushRef(ref)
				} else {
					arr.Push(v.(int64))
				}
			}
			return arr
		}
	case *heap.StringObj:
		switch method {
		case "len":
			return e.callRegistry("naml_string_len", exc, []interface{}{r})
		case "upper":
			return e.callRegistry("naml_string_upper", exc, []interface{}{r})
		case "lower":
			return e.callRegistry("naml_string_lower", exc, []interface{}{r})
		case "concat":
			return e.callRegistry("naml_string_concat", exc, []interface{}{r, args[0]})
		case "trim":
			return heap.NewString(strings.TrimSpace(r.Bytes))
		case "contains":
			return strings.Contains(r.Bytes, asStringArg(args[0]))
		case "starts_with":
			return strings.HasPrefix(r.Bytes, asStringArg(args[0]))
		case "ends_with":
			return strings.HasSuffix(r.Bytes, asStringArg(args[0]))
		case "split":
			parts := strings.Split(r.Bytes, asStringArg(args[0]))
			arr := heap.NewArray(true)
			for _, p := range parts {
				arr.PushRef(heap.Ref{Obj: heap.NewString(p)})
			}
			return arr
		case "char_at":
			i := int(toScalarInt(args[0]))
			if i < 0 || i >= len(r.Bytes) {
				e.throwValue(heap.NewString("string index out of bounds"), fr)
				return nil
			}
			return heap.NewString(string(r.Bytes[i]))
		}
	case heap.Option:
		switch method {
		case "unwrap":
			return e.callRegistry("naml_option_unwrap", exc, []interface{}{r})
		case "unwrap_or":
			if r.Some {
				return r.Value
			}
			return args[0]
		case "is_some":
			return r.Some
		case "is_none":
			return !r.Some
		}
	case *heap.ChannelObj:
		switch method {
		case "send":
			return e.callRegistry("naml_channel_send", exc, []interface{}{r, args[0]})
		case "recv":
			return e.callRegistry("naml_channel_recv", exc, []interface{}{r})
		case "close":
			e.callRegistry("naml_channel_close", exc, []interface{}{r})
			return nil
		}
	case *heap.AtomicCell:
		isBool := r.Hdr().Tag == heap.TagAtomicBool
		switch method {
		case "load":
			return atomicResult(r.Load(), isBool)
		case "store":
			r.Store(toScalarInt(args[0]))
			return nil
		case "add":
			return atomicResult(r.Add(toScalarInt(args[0])), isBool)
		case "sub":
			return atomicResult(r.Sub(toScalarInt(args[0])), isBool)
		case "swap":
			return atomicResult(r.Swap(toScalarInt(args[0])), isBool)
		case "cas":
			return r.CAS(toScalarInt(args[0]), toScalarInt(args[1]))
		}
	}
	return nil
}

// atomicResult converts an AtomicCell's raw int64 storage back to a Go
// bool for AtomicBool cells, mirroring how every other scalar is stored
// as int64 internally (exec_expr.go's toScalarInt/BoolLit handling).
func atomicResult(v int64, isBool bool) interface{} {
	if isBool {
		return v != 0
	}
	return v
}

func wrapArrayArg(arr *heap.ArrayObj, args []interface{}) []interface{} {
	if len(args) == 0 {
		return args
	}
	if arr.ElemIsRef {
		return []interface{}{toRef(args[0])}
	}
	return []interface{}{toScalarInt(args[0])}
}

func (e *Exec) callRegistry(name string, exc *ExceptionState, args []interface{}) interface{} {
	fn, ok := e.Mod.Registry.Get(name)
	if !ok {
		return nil
	}
	return fn(exc, args)
}
