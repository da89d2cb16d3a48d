package types

import "fmt"

// Unifier holds the union-find substitution map for one checker run
//. A TypeVar's binding, once set, is never
// retracted — backtracking is not part of naml's inference (no let-
// generalization requires it; function signatures are always annotated).
type Unifier struct {
	bindings map[int]Type
	next     int
}

// NewUnifier creates an empty union-find map.
func NewUnifier() *Unifier {
	return &Unifier{bindings: make(map[int]Type)}
}

// Fresh allocates a new, unbound type variable.
func (u *Unifier) Fresh() *TypeVar {
	u.next++
	return &TypeVar{ID: u.next}
}

// Resolve walks t to its most concrete known form: a chain of bound type
// variables collapses to whatever they were ultimately bound to, or to the
// last unbound variable in the chain.
func (u *Unifier) Resolve(t Type) Type {
	for {
		tv, ok := t.(*TypeVar)
		if !ok {
			return t
		}
		bound, ok := u.bindings[tv.ID]
		if !ok {
			return tv
		}
		t = bound
	}
}

// occurs reports whether the variable id appears free in t, guarding
// against infinite types.
func (u *Unifier) occurs(id int, t Type) bool {
	switch t := u.Resolve(t).(type) {
	case *TypeVar:
		return t.ID == id
	case *Array:
		return u.occurs(id, t.Elem)
	case *FixedArray:
		return u.occurs(id, t.Elem)
	case *Option:
		return u.occurs(id, t.Elem)
	case *Map:
		return u.occurs(id, t.Key) || u.occurs(id, t.Val)
	case *Channel:
		return u.occurs(id, t.Elem)
	case *Sync:
		if t.Elem == nil {
			return false
		}
		return u.occurs(id, t.Elem)
	case *Func:
		for _, p := range t.Params {
			if u.occurs(id, p) {
				return true
			}
		}
		return u.occurs(id, t.Return)
	case *Named:
		for _, a := range t.Args {
			if u.occurs(id, a) {
				return true
			}
		}
	}
	return false
}

// Unify makes a and b structurally equal, side-effecting the union-find map
// on success. On failure it returns a *MismatchError describing the two
// resolved types; the caller attaches a span and converts it to a
// type-mismatch diagnostic carrying the operand spans.
func (u *Unifier) Unify(a, b Type) error {
	a, b = u.Resolve(a), u.Resolve(b)

	// The sentinel Error type unifies with anything and never reports a
	// mismatch, so one bad subexpression doesn't cascade into unrelated
	// diagnostics.
	if isErrorType(a) || isErrorType(b) {
		return nil
	}

	if av, ok := a.(*TypeVar); ok {
		if bv, ok := b.(*TypeVar); ok && av.ID == bv.ID {
			return nil
		}
		if u.occurs(av.ID, b) {
			return &OccursError{Var: av, In: b}
		}
		u.bindings[av.ID] = b
		return nil
	}
	if bv, ok := b.(*TypeVar); ok {
		if u.occurs(bv.ID, a) {
			return &OccursError{Var: bv, In: a}
		}
		u.bindings[bv.ID] = a
		return nil
	}

	switch a := a.(type) {
	case *Prim:
		bp, ok := b.(*Prim)
		if ok && a.Kind == bp.Kind {
			return nil
		}
	case *Array:
		if bp, ok := b.(*Array); ok {
			return u.Unify(a.Elem, bp.Elem)
		}
	case *FixedArray:
		if bp, ok := b.(*FixedArray); ok && a.N == bp.N {
			return u.Unify(a.Elem, bp.Elem)
		}
	case *Option:
		if bp, ok := b.(*Option); ok {
			return u.Unify(a.Elem, bp.Elem)
		}
	case *Map:
		if bp, ok := b.(*Map); ok {
			if err := u.Unify(a.Key, bp.Key); err != nil {
				return err
			}
			return u.Unify(a.Val, bp.Val)
		}
	case *Channel:
		if bp, ok := b.(*Channel); ok {
			return u.Unify(a.Elem, bp.Elem)
		}
	case *Sync:
		if bp, ok := b.(*Sync); ok && a.Kind == bp.Kind {
			if a.Elem == nil {
				return nil
			}
			return u.Unify(a.Elem, bp.Elem)
		}
	case *Func:
		if bp, ok := b.(*Func); ok && len(a.Params) == len(bp.Params) {
			for i := range a.Params {
				if err := u.Unify(a.Params[i], bp.Params[i]); err != nil {
					return err
				}
			}
			return u.Unify(a.Return, bp.Return)
		}
	case *Named:
		if bp, ok := b.(*Named); ok && a.Name == bp.Name && len(a.Args) == len(bp.Args) {
			for i := range a.Args {
				if err := u.Unify(a.Args[i], bp.Args[i]); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return &MismatchError{Expected: a, Actual: b}
}

func isErrorType(t Type) bool {
	p, ok := t.(*Prim)
	return ok && p.Kind == ErrorPrim
}

// MismatchError reports two types that could not be unified.
type MismatchError struct {
	Expected, Actual Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Actual)
}

// OccursError reports an infinite type.
type OccursError struct {
	Var *TypeVar
	In  Type
}

func (e *OccursError) Error() string {
	return fmt.Sprintf("infinite type: %s occurs in %s", e.Var, e.In)
}

// Substitute deep-resolves every type variable reachable from t, producing
// a concrete type suitable for monomorphization name-mangling or codegen.
// Unresolved variables that remain (never unified with anything concrete)
// default to Unit, mirroring how an unused generic parameter would.
func Substitute(u *Unifier, t Type) Type {
	switch t := u.Resolve(t).(type) {
	case *TypeVar:
		return TUnit
	case *Array:
		return &Array{Elem: Substitute(u, t.Elem)}
	case *FixedArray:
		return &FixedArray{Elem: Substitute(u, t.Elem), N: t.N}
	case *Option:
		return &Option{Elem: Substitute(u, t.Elem)}
	case *Map:
		return &Map{Key: Substitute(u, t.Key), Val: Substitute(u, t.Val)}
	case *Channel:
		return &Channel{Elem: Substitute(u, t.Elem)}
	case *Sync:
		if t.Elem == nil {
			return t
		}
		return &Sync{Kind: t.Kind, Elem: Substitute(u, t.Elem)}
	case *Func:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Substitute(u, p)
		}
		return &Func{Params: params, Return: Substitute(u, t.Return), Throws: t.Throws}
	case *Named:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(u, a)
		}
		return &Named{Name: t.Name, Args: args}
	default:
		return t
	}
}
