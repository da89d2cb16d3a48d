package heap

// DecrefIterative is the runtime-side half of the self-referential-struct
// decref technique: rather than recursing into a
// linked-list-shaped struct's self-referential field (which would blow
// the Go stack on a long chain, same as it would a native call stack),
// walk the chain iteratively, decrementing each node and only recursing
// into its *other*, non-self-referential fields via fieldDecref.
//
// selfFieldIndices names which of each node's fields point at another
// node of the same type (`generate_struct_decref_loop`'s single-field
// case, and the general "field-index array" fallback when more than one
// field is self-referential, are the same loop here — selfFieldIndices
// simply has length 1 or more).
func DecrefIterative(start Ref, selfFieldIndices []int, fieldDecref func(o *StructObj, skip map[int]bool)) {
	skip := make(map[int]bool, len(selfFieldIndices))
	for _, i := range selfFieldIndices {
		skip[i] = true
	}

	pending := []Ref{start}
	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if cur.IsNil() {
			continue
		}
		node, ok := cur.Obj.(*StructObj)
		if !ok {
			cur.Decref()
			continue
		}
		if node.Hdr().decref() {
			// Gather every self-referential child before tearing this
			// node down, so children outlive their parent's Destroy.
			for _, i := range selfFieldIndices {
				if r, ok := node.Fields[i].(Ref); ok && !r.IsNil() {
					pending = append(pending, r)
				}
			}
			if fieldDecref != nil {
				fieldDecref(node, skip)
			}
		}
		// refcount didn't drop to zero: someone else still holds this
		// node (and transitively its self-referential children), so they
		// are left alone.
	}
}
