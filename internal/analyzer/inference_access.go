package analyzer

import (
	"math/big"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
)

// fieldsOf returns the fields of a struct or tuple type.
func (c *checker) fieldsOf(typ *ast.Expr) ([]ast.FuncArg, bool) {
	if typ == nil {
		return nil, false
	}
	switch t := c.normalize(typ).Value.(type) {
	case ast.Global:
		sym, ok := c.s.Env.Find(t)
		if ok && sym.Kind == symbols.StructSymbol {
			return sym.Fields, true
		}
	case ast.Sigma:
		return t.Args, true
	}
	return nil, false
}

func (c *checker) inferMember(st state, e *ast.Expr, x ast.Member) (*ast.Expr, *diagnostics.Error) {
	obj, err := c.infer(st, x.Object)
	if err != nil {
		return nil, err
	}
	fields, ok := c.fieldsOf(obj.Type())
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"%s has no fields, it has sort %s", describe(obj), describeSort(obj))
	}
	i := fieldIndex(fields, x.Field)
	if i < 0 {
		return nil, diagnostics.Errorf(diagnostics.ErrT001, e.Pos(),
			"%s has no field `%s`", describe(obj.Type()), x.Field)
	}
	typ := dependentType(fields, i, func(j int, ft *ast.Expr) *ast.Expr {
		return ast.TypedAt(e.Pos(), ast.Member{Object: obj, Field: fields[j].Name()}, ft)
	})
	return ast.TypedAt(e.Pos(), ast.Member{Object: obj, Field: x.Field}, typ), nil
}

// inferSubscript checks array subscripts, which need a proof that the index
// is in bounds, and tuple subscripts, which need a constant index.
func (c *checker) inferSubscript(st state, e *ast.Expr, x ast.Subscript) (*ast.Expr, *diagnostics.Error) {
	obj, err := c.infer(st, x.Object)
	if err != nil {
		return nil, err
	}
	if obj.Type() == nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(), "%s cannot be subscripted", describe(obj))
	}
	typ := c.normalize(obj.Type())
	if elem, size, ok := ast.AsArrayT(typ); ok {
		idx, err := c.check(st, x.Index, u64T())
		if err != nil {
			return nil, err
		}
		inBounds := ast.TypedAt(idx.Pos(), ast.Relation{Op: ast.OpLt, Left: idx, Right: size}, boolT())
		if err := c.prove(st, inBounds, "array subscript %s", describe(idx)); err != nil {
			return nil, err
		}
		return ast.TypedAt(e.Pos(), ast.Subscript{Object: obj, Index: idx}, elem), nil
	}
	if sigma, ok := typ.Value.(ast.Sigma); ok {
		lit, isLit := x.Index.Value.(ast.NumLit)
		if !isLit || lit.Value.Sign() < 0 || !lit.Value.IsInt64() || lit.Value.Int64() >= int64(len(sigma.Args)) {
			return nil, diagnostics.Errorf(diagnostics.ErrT002, x.Index.Pos(),
				"index into %s must be a literal between 0 and %d", describe(typ), len(sigma.Args)-1)
		}
		at := func(j int) *ast.Expr {
			return ast.TypedAt(x.Index.Pos(), ast.NumLit{Value: big.NewInt(int64(j))}, u64T())
		}
		i := int(lit.Value.Int64())
		elemType := dependentType(sigma.Args, i, func(j int, ft *ast.Expr) *ast.Expr {
			return ast.TypedAt(e.Pos(), ast.Subscript{Object: obj, Index: at(j)}, ft)
		})
		return ast.TypedAt(e.Pos(), ast.Subscript{Object: obj, Index: at(i)}, elemType), nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
		"%s cannot be subscripted, it has type %s", describe(obj), describe(typ))
}

// checkBecause checks the erased reason first and then the value, with the
// type of the reason added to the context as an assumption.
func (c *checker) checkBecause(st state, e *ast.Expr, x ast.Because, expected *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	reason, err := c.infer(st.erased(), x.Reason)
	if err != nil {
		return nil, err
	}
	prop := reason.Type()
	if prop == nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, x.Reason.Pos(),
			"reason %s must be a value, not a type", describe(reason))
	}
	inner := c.assume(st, prop)
	var value *ast.Expr
	if expected == nil {
		value, err = c.infer(inner, x.Value)
	} else {
		value, err = c.check(inner, x.Value, expected)
	}
	if err != nil {
		return nil, err
	}
	sort := value.Props.Sort
	if expected != nil {
		sort = expected
	}
	return ast.TypedAt(e.Pos(), ast.Because{Value: value, Reason: reason}, sort), nil
}

// addressable returns the context entry of the variable whose address or
// scope an expression takes.
func addressable(st state, e *ast.Expr, what string) (symbols.Local, *diagnostics.Error) {
	v, ok := e.Value.(ast.Var)
	if !ok {
		return symbols.Local{}, diagnostics.Errorf(diagnostics.ErrT008, e.Pos(),
			"can only take the %s of a variable, got %s", what, describe(e))
	}
	local, ok := st.ctx.Find(v)
	if !ok {
		return symbols.Local{}, diagnostics.Errorf(diagnostics.ErrT001, e.Pos(),
			"unknown variable %s", describe(e))
	}
	return local, nil
}

// inferAddressOf gives `&x` the type `ref_t(T, scopeof(x))`. Taking an
// address does not use x.
func (c *checker) inferAddressOf(st state, e *ast.Expr, x ast.AddressOf) (*ast.Expr, *diagnostics.Error) {
	local, err := addressable(st, x.Expr, "address")
	if err != nil {
		return nil, err
	}
	if local.Qty == ast.QtyZero && st.mult != ast.QtyZero {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, e.Pos(),
			"cannot take the address of zero-quantity variable %s at runtime", describe(x.Expr))
	}
	target := x.Expr.WithSort(local.Type)
	scope := ast.TypedAt(e.Pos(), ast.ScopeOf{Expr: target}, scopeT())
	return ast.TypedAt(e.Pos(), ast.AddressOf{Expr: target}, applyBuiltin(ast.RefT{}, local.Type, scope)), nil
}

func (c *checker) inferDeref(st state, e *ast.Expr, x ast.Deref) (*ast.Expr, *diagnostics.Error) {
	ref, err := c.infer(st, x.Expr)
	if err != nil {
		return nil, err
	}
	if t := ref.Type(); t != nil {
		if elem, _, ok := ast.AsRefT(c.normalize(t)); ok {
			return ast.TypedAt(e.Pos(), ast.Deref{Expr: ref}, elem), nil
		}
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
		"cannot dereference %s of sort %s", describe(ref), describeSort(ref))
}

func (c *checker) inferScopeOf(st state, e *ast.Expr, x ast.ScopeOf) (*ast.Expr, *diagnostics.Error) {
	local, err := addressable(st, x.Expr, "scope")
	if err != nil {
		return nil, err
	}
	return ast.TypedAt(e.Pos(), ast.ScopeOf{Expr: x.Expr.WithSort(local.Type)}, scopeT()), nil
}
