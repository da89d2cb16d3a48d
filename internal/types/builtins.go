package types

// builtinMethod resolves a built-in method on a primitive/container type,
// "Method call: ... check built-in methods for primitives
// (array.push, option.is_some, channel.send, etc.)". It returns the
// method's parameter and return types with the receiver's own element/key/
// value types already substituted in, and ok=false if recv has no such
// built-in.
func (c *Checker) builtinMethod(recv Type, method string) (params []Type, ret Type, ok bool) {
	switch t := c.u.Resolve(recv).(type) {
	case *Array:
		switch method {
		case "push":
			return []Type{t.Elem}, TUnit, true
		case "pop":
			return nil, &Option{Elem: t.Elem}, true
		case "len", "length":
			return nil, TInt, true
		case "get":
			return []Type{TInt}, &Option{Elem: t.Elem}, true
		case "contains":
			return []Type{t.Elem}, TBool, true
		case "slice":
			return []Type{TInt, TInt}, &Array{Elem: t.Elem}, true
		}
	case *FixedArray:
		switch method {
		case "len", "length":
			return nil, TInt, true
		case "get":
			return []Type{TInt}, &Option{Elem: t.Elem}, true
		}
	case *Map:
		switch method {
		case "get":
			return []Type{t.Key}, &Option{Elem: t.Val}, true
		case "set", "insert":
			return []Type{t.Key, t.Val}, TUnit, true
		case "remove", "delete":
			return []Type{t.Key}, TBool, true
		case "contains_key":
			return []Type{t.Key}, TBool, true
		case "len", "length":
			return nil, TInt, true
		case "keys":
			return nil, &Array{Elem: t.Key}, true
		case "values":
			return nil, &Array{Elem: t.Val}, true
		}
	case *Option:
		switch method {
		case "is_some":
			return nil, TBool, true
		case "is_none":
			return nil, TBool, true
		case "unwrap":
			return nil, t.Elem, true
		case "unwrap_or":
			return []Type{t.Elem}, t.Elem, true
		}
	case *Channel:
		switch method {
		case "send":
			return []Type{t.Elem}, TUnit, true
		case "recv":
			return nil, &Option{Elem: t.Elem}, true
		case "close":
			return nil, TUnit, true
		}
	case *Sync:
		switch t.Kind {
		case SyncAtomicInt, SyncAtomicUint, SyncAtomicBool:
			scalar := t.AtomicScalar()
			switch method {
			case "load":
				return nil, scalar, true
			case "store":
				return []Type{scalar}, TUnit, true
			case "add", "sub", "swap":
				return []Type{scalar}, scalar, true
			case "cas":
				return []Type{scalar, scalar}, TBool, true
			}
		}
	case *Prim:
		if t.Kind == String {
			switch method {
			case "len", "length":
				return nil, TInt, true
			case "upper", "lower", "trim":
				return nil, TString, true
			case "split":
				return []Type{TString}, &Array{Elem: TString}, true
			case "contains", "starts_with", "ends_with":
				return []Type{TString}, TBool, true
			case "char_at":
				return []Type{TInt}, &Option{Elem: TString}, true
			}
		}
	}
	return nil, nil, false
}
