package types

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
)

// ResolveTypeExpr converts parsed type syntax into a checker Type. tparams
// maps a generic function/struct/enum's own type-parameter names to the
// Type standing in for them in the current context; every caller passes
// either nil or identityTypeParams (a Named placeholder per name), and
// call sites substitute concrete arguments afterwards with
// substituteTypeParams.
func (c *Checker) ResolveTypeExpr(te ast.TypeExpr, tparams map[string]Type) Type {
	switch te := te.(type) {
	case *ast.NamedType:
		if t, ok := tparams[te.Name]; ok {
			return t
		}
		switch te.Name {
		case "int":
			return TInt
		case "uint":
			return TUint
		case "float":
			return TFloat
		case "bool":
			return TBool
		case "string":
			return TString
		case "unit":
			return TUnit
		case "Mutex":
			return &Sync{Kind: SyncMutex, Elem: c.resolveSyncElem(te, tparams)}
		case "RwLock":
			return &Sync{Kind: SyncRwLock, Elem: c.resolveSyncElem(te, tparams)}
		case "AtomicInt":
			return &Sync{Kind: SyncAtomicInt}
		case "AtomicUint":
			return &Sync{Kind: SyncAtomicUint}
		case "AtomicBool":
			return &Sync{Kind: SyncAtomicBool}
		}
		args := make([]Type, len(te.Args))
		for i, a := range te.Args {
			args[i] = c.ResolveTypeExpr(a, tparams)
		}
		if _, ok := c.st.Structs[te.Name]; ok {
			return &Named{Name: te.Name, Args: args}
		}
		if _, ok := c.st.Enums[te.Name]; ok {
			return &Named{Name: te.Name, Args: args}
		}
		if _, ok := c.st.Exceptions[te.Name]; ok {
			return &Named{Name: te.Name, Args: args}
		}
		if _, ok := c.st.Interfaces[te.Name]; ok {
			return &Named{Name: te.Name, Args: args}
		}
		if alias, ok := c.st.Aliases[te.Name]; ok {
			return alias
		}
		c.diags.Errorf(diag.KindUndefinedType, te.Sp, "undefined type: %s", te.Name)
		return TError
	case *ast.ArrayType:
		return &Array{Elem: c.ResolveTypeExpr(te.Elem, tparams)}
	case *ast.FixedArrayType:
		return &FixedArray{Elem: c.ResolveTypeExpr(te.Elem, tparams), N: te.N}
	case *ast.OptionType:
		return &Option{Elem: c.ResolveTypeExpr(te.Elem, tparams)}
	case *ast.MapType:
		return &Map{Key: c.ResolveTypeExpr(te.Key, tparams), Val: c.ResolveTypeExpr(te.Val, tparams)}
	case *ast.ChannelType:
		return &Channel{Elem: c.ResolveTypeExpr(te.Elem, tparams)}
	case *ast.FuncType:
		params := make([]Type, len(te.Params))
		for i, p := range te.Params {
			params[i] = c.ResolveTypeExpr(p, tparams)
		}
		ret := Type(TUnit)
		if te.Return != nil {
			ret = c.ResolveTypeExpr(te.Return, tparams)
		}
		return &Func{Params: params, Return: ret, Throws: te.Throws}
	}
	return TError
}

// resolveSyncElem resolves a Mutex<T>/RwLock<T> type reference's single
// type argument, defaulting to a fresh type variable when the program
// writes the bare name with no argument (so inference can still pin it
// down from the value passed to the constructor call).
func (c *Checker) resolveSyncElem(te *ast.NamedType, tparams map[string]Type) Type {
	if len(te.Args) == 0 {
		return c.u.Fresh()
	}
	return c.ResolveTypeExpr(te.Args[0], tparams)
}
