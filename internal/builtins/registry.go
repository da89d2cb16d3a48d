// Package builtins bridges the runtime primitives internal/heap and
// internal/scheduler implement to the `naml_*` symbol names codegen
// looks up by name each time it calls one: the symbol registry binds
// every naml_* runtime function by name to its Go implementation. A
// name-keyed map built once at startup, read-only thereafter, safe for
// concurrent use by every compiled function.
package builtins

import (
	"github.com/naml-lang/namlc/internal/exception"
	"github.com/naml-lang/namlc/internal/heap"
)

// Fn is one runtime builtin: it receives its task's exception state (so
// it can set an exception instead of returning a Go error, matching
// "propagate via the thread-local exception slot" contract)
// plus its positional arguments, and returns a result value.
type Fn func(exc *exception.State, args []interface{}) interface{}

// Registry holds every `naml_*` symbol codegen's builtin calls resolve
// against.
type Registry struct {
	fns map[string]Fn
}

// NewRegistry builds a registry with the array (push/pop/len/get), map
// (get/set/remove/contains_key/len/keys/clear), string
// (len/upper/lower/concat), option (unwrap) and channel
// (send/recv/close) builtins registered; no other collection or string
// methods are registered here.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]Fn)}
	r.registerArray()
	r.registerMap()
	r.registerString()
	r.registerOption()
	r.registerChannel()
	return r
}

// Get looks up a builtin by its `naml_*` symbol name.
func (r *Registry) Get(name string) (Fn, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// Register adds or overrides a builtin under name.
func (r *Registry) Register(name string, fn Fn) { r.fns[name] = fn }

func (r *Registry) registerArray() {
	r.fns["naml_array_push"] = func(exc *exception.State, args []interface{}) interface{} {
		arr := args[0].(*heap.ArrayObj)
		if arr.ElemIsRef {
			ref := args[1].(heap.Ref)
			ref.Incref()
			arr.PushRef(ref)
		} else {
			arr.Push(args[1].(int64))
		}
		return nil
	}
	r.fns["naml_array_pop"] = func(exc *exception.State, args []interface{}) interface{} {
		arr := args[0].(*heap.ArrayObj)
		if arr.ElemIsRef {
			n := len(arr.Refs)
			if n == 0 {
				return heap.None()
			}
			v := arr.Refs[n-1]
			arr.Refs = arr.Refs[:n-1]
			return heap.Some(v)
		}
		n := len(arr.Scalars)
		if n == 0 {
			return heap.None()
		}
		v := arr.Scalars[n-1]
		arr.Scalars = arr.Scalars[:n-1]
		return heap.Some(v)
	}
	r.fns["naml_array_len"] = func(exc *exception.State, args []interface{}) interface{} {
		return int64(args[0].(*heap.ArrayObj).Len())
	}
	r.fns["naml_array_get"] = func(exc *exception.State, args []interface{}) interface{} {
		arr := args[0].(*heap.ArrayObj)
		i := args[1].(int64)
		if i < 0 || int(i) >= arr.Len() {
			return heap.None()
		}
		if arr.ElemIsRef {
			return heap.Some(arr.Refs[i])
		}
		return heap.Some(arr.Scalars[i])
	}
}

func (r *Registry) registerMap() {
	r.fns["naml_map_get"] = func(exc *exception.State, args []interface{}) interface{} {
		m := args[0].(*heap.MapObj)
		v, ok := m.Get(args[1])
		if !ok {
			return heap.None()
		}
		return heap.Some(v)
	}
	r.fns["naml_map_set"] = func(exc *exception.State, args []interface{}) interface{} {
		m := args[0].(*heap.MapObj)
		m.Set(args[1], args[2])
		return nil
	}
	r.fns["naml_map_remove"] = func(exc *exception.State, args []interface{}) interface{} {
		m := args[0].(*heap.MapObj)
		return m.Delete(args[1])
	}
	r.fns["naml_map_contains_key"] = func(exc *exception.State, args []interface{}) interface{} {
		_, ok := args[0].(*heap.MapObj).Get(args[1])
		return ok
	}
	r.fns["naml_map_len"] = func(exc *exception.State, args []interface{}) interface{} {
		return int64(args[0].(*heap.MapObj).Len())
	}
	r.fns["naml_map_keys"] = func(exc *exception.State, args []interface{}) interface{} {
		m := args[0].(*heap.MapObj)
		arr := heap.NewArray(false)
		for _, k := range m.Keys() {
			if i, ok := k.(int64); ok {
				arr.Push(i)
			}
		}
		return arr
	}
	r.fns["naml_map_clear"] = func(exc *exception.State, args []interface{}) interface{} {
		m := args[0].(*heap.MapObj)
		for _, k := range m.Keys() {
			m.Delete(k)
		}
		return nil
	}
}

func (r *Registry) registerString() {
	r.fns["naml_string_len"] = func(exc *exception.State, args []interface{}) interface{} {
		return int64(len(args[0].(*heap.StringObj).Bytes))
	}
	r.fns["naml_string_upper"] = func(exc *exception.State, args []interface{}) interface{} {
		return heap.NewString(toUpper(args[0].(*heap.StringObj).Bytes))
	}
	r.fns["naml_string_lower"] = func(exc *exception.State, args []interface{}) interface{} {
		return heap.NewString(toLower(args[0].(*heap.StringObj).Bytes))
	}
	r.fns["naml_string_concat"] = func(exc *exception.State, args []interface{}) interface{} {
		a := args[0].(*heap.StringObj).Bytes
		b := args[1].(*heap.StringObj).Bytes
		return heap.NewString(a + b)
	}
}

func (r *Registry) registerOption() {
	r.fns["naml_option_unwrap"] = func(exc *exception.State, args []interface{}) interface{} {
		opt := args[0].(heap.Option)
		if !opt.Some {
			msg := heap.NewString("force-unwrap of none")
			exc.Set(heap.Ref{Obj: msg}, 0)
			return nil
		}
		return opt.Value
	}
}

func (r *Registry) registerChannel() {
	r.fns["naml_channel_send"] = func(exc *exception.State, args []interface{}) interface{} {
		ch := args[0].(*heap.ChannelObj)
		return ch.Send(args[1])
	}
	r.fns["naml_channel_recv"] = func(exc *exception.State, args []interface{}) interface{} {
		ch := args[0].(*heap.ChannelObj)
		v, ok := ch.Recv()
		if !ok {
			return heap.None()
		}
		return heap.Some(v)
	}
	r.fns["naml_channel_close"] = func(exc *exception.State, args []interface{}) interface{} {
		args[0].(*heap.ChannelObj).Close()
		return nil
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
