package codegen

import "github.com/naml-lang/namlc/internal/heap"

// releaseValue decrefs v if it is a heap-allocated reference, a no-op for
// scalars and nil. It is the scope-exit half of the ownership rule that
// scope exit decrements refs held by locals.
func (e *Exec) releaseValue(v interface{}) {
	obj, ok := v.(heap.Object)
	if !ok || obj == nil {
		return
	}
	e.releaseRef(heap.Ref{Obj: obj})
}

// releaseRef decrefs r, routing through the iterative self-referential
// walk when r holds a struct type whose layout has a self-referential
// field: freeing a long linked list must not recurse once per node.
func (e *Exec) releaseRef(r heap.Ref) {
	if r.IsNil() {
		return
	}
	so, ok := r.Obj.(*heap.StructObj)
	if !ok {
		r.Decref()
		return
	}
	layout, ok := e.Mod.LayoutByID(so.TypeID)
	if !ok || !layout.hasSelf {
		r.Decref()
		return
	}
	var selfIdx []int
	for i, self := range layout.SelfField {
		if self {
			selfIdx = append(selfIdx, i)
		}
	}
	heap.DecrefIterative(r, selfIdx, func(node *heap.StructObj, skip map[int]bool) {
		for j, isRef := range node.FieldIsRef {
			if isRef && !skip[j] {
				if fr, ok := node.Fields[j].(heap.Ref); ok {
					fr.Decref()
				}
			}
		}
	})
}

// releaseFrameLocals decrefs every ref-typed local bound directly in fr
// (not its parent chain) except keep, which is escaping the scope as a
// return/tail/throw value and so must keep its owning reference. This
// runs once per block exit; see execBlock.
func (e *Exec) releaseFrameLocals(fr *Frame, keep interface{}) {
	for _, v := range fr.locals {
		if v == keep {
			continue
		}
		e.releaseValue(v)
	}
}

// increfIfNeeded implements the "needs-clone" read discipline
// internal/typedast computes: a read
// that is not the binding's last use increfs the value so the binding
// itself keeps a live reference for its remaining reads, rather than
// letting this read's (eventual) release drop the count the last read
// still depends on.
func (e *Exec) increfIfNeeded(v interface{}, needsClone bool) interface{} {
	if !needsClone {
		return v
	}
	if obj, ok := v.(heap.Object); ok && obj != nil {
		obj.Hdr().Incref()
	}
	return v
}
