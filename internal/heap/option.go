package heap

// Option is the runtime realization of "16-byte
// stack-allocated pair {tag: u32 at offset 0, value: i64 at offset 8}":
// Go's interface{} already carries a type tag, so the pair collapses to
// a bool discriminant plus a boxed value instead of a manual two-word
// struct. Struct fields of option type hold an Option value like this
// one as well; no nil-Ref encoding of none is used for them.
type Option struct {
	Some  bool
	Value interface{}
}

// Some wraps v as a present option value.
func Some(v interface{}) Option { return Option{Some: true, Value: v} }

// None is the absent option value.
func None() Option { return Option{} }
