package types

import (
	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/diag"
)

// checkSwitch type-checks a switch statement's scrutinee and every case,
// "Pattern typing".
func (c *Checker) checkSwitch(s *ast.SwitchStmt, scope *Scope) {
	scrutType := c.checkExpr(s.Scrutinee, scope)

	prevScrutinee := c.switchScrutinee
	c.switchScrutinee = scrutType
	defer func() { c.switchScrutinee = prevScrutinee }()

	for _, cs := range s.Cases {
		inner := scope.Child()
		c.checkPattern(cs.Pattern, scrutType, inner)
		if cs.Guard != nil {
			g := c.checkExpr(cs.Guard, inner)
			if err := c.u.Unify(g, TBool); err != nil {
				c.diags.Errorf(diag.KindTypeMismatch, cs.Guard.Span(), "switch guard: %s", err)
			}
		}
		c.checkBlock(cs.Body, inner)
	}
}

// checkPattern binds names introduced by pat into scope and validates it
// against scrutType.
func (c *Checker) checkPattern(pat ast.Pattern, scrutType Type, scope *Scope) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		// matches anything, binds nothing

	case *ast.LiteralPattern:
		lt := c.checkExpr(p.Value, scope)
		if err := c.u.Unify(lt, scrutType); err != nil {
			c.diags.Errorf(diag.KindTypeMismatch, p.Sp, "pattern: %s", err)
		}

	case *ast.IdentPattern:
		// A bare identifier that names a nullary variant of the scrutinee's
		// enum matches that variant instead of binding.
		if named, ok := c.u.Resolve(scrutType).(*Named); ok {
			if enumInfo, ok := c.st.Enums[named.Name]; ok {
				if variant, ok := enumInfo.Variants[p.Name]; ok && len(variant.FieldNames) == 0 {
					return
				}
			}
		}
		scope.Bind(p.Name, scrutType)

	case *ast.VariantPattern:
		named, ok := c.u.Resolve(scrutType).(*Named)
		if !ok {
			if !isErrorType(c.u.Resolve(scrutType)) {
				c.diags.Errorf(diag.KindTypeMismatch, p.Sp, "variant pattern on non-enum type %s", c.u.Resolve(scrutType))
			}
			return
		}
		enumInfo, ok := c.st.Enums[p.Enum]
		if !ok {
			c.diags.Errorf(diag.KindUndefinedType, p.Sp, "undefined enum: %s", p.Enum)
			return
		}
		if named.Name != p.Enum && !isErrorType(scrutType) {
			c.diags.Errorf(diag.KindTypeMismatch, p.Sp, "pattern enum %s does not match scrutinee type %s", p.Enum, named.Name)
		}
		variant, ok := enumInfo.Variants[p.Variant]
		if !ok {
			c.diags.Errorf(diag.KindUndefinedField, p.Sp, "%s has no variant %s", p.Enum, p.Variant)
			return
		}
		tparams := substMapFor(enumInfo.TypeParams, named.Args)
		for i, bindName := range p.Bindings {
			if i >= len(variant.FieldNames) {
				break
			}
			fieldName := variant.FieldNames[i]
			ft := variant.FieldTypes[fieldName]
			scope.Bind(bindName, substituteTypeParams(ft, tparams))
		}
	}
}

// substMapFor pairs a generic declaration's type-parameter names with the
// concrete arguments at one instantiation site.
func substMapFor(names []string, args []Type) map[string]Type {
	m := make(map[string]Type, len(names))
	for i, n := range names {
		if i < len(args) {
			m[n] = args[i]
		}
	}
	return m
}

// substituteTypeParams replaces bare Named{Args:nil} placeholders standing
// for a generic parameter with its concrete instantiation.
func substituteTypeParams(t Type, m map[string]Type) Type {
	switch t := t.(type) {
	case *Named:
		if len(t.Args) == 0 {
			if rep, ok := m[t.Name]; ok {
				return rep
			}
			return t
		}
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substituteTypeParams(a, m)
		}
		return &Named{Name: t.Name, Args: args}
	case *Array:
		return &Array{Elem: substituteTypeParams(t.Elem, m)}
	case *FixedArray:
		return &FixedArray{Elem: substituteTypeParams(t.Elem, m), N: t.N}
	case *Option:
		return &Option{Elem: substituteTypeParams(t.Elem, m)}
	case *Map:
		return &Map{Key: substituteTypeParams(t.Key, m), Val: substituteTypeParams(t.Val, m)}
	case *Channel:
		return &Channel{Elem: substituteTypeParams(t.Elem, m)}
	case *Sync:
		if t.Elem == nil {
			return t
		}
		return &Sync{Kind: t.Kind, Elem: substituteTypeParams(t.Elem, m)}
	case *Func:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = substituteTypeParams(p, m)
		}
		return &Func{Params: params, Return: substituteTypeParams(t.Return, m), Throws: t.Throws}
	default:
		return t
	}
}
