package analyzer

import (
	"fmt"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
)

func (c *checker) checkNumLit(e *ast.Expr, x ast.NumLit, expected *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	t, ok := c.normalize(expected).Value.(ast.IntType)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"numeric literal `%s` cannot have type %s", x.Value, describe(expected))
	}
	if !t.InRange(x.Value) {
		return nil, diagnostics.Errorf(diagnostics.ErrT010, e.Pos(),
			"literal `%s` is out of range for `%s`", x.Value, t)
	}
	return e.WithSort(expected), nil
}

func (c *checker) checkInitList(st state, e *ast.Expr, x ast.InitList, expected *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	target := c.normalize(expected)
	if _, ok := ast.AsTrueT(target); ok {
		if len(x.Values) != 0 {
			return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
				"a proof of %s is written `{}`", describe(expected))
		}
		if _, err := c.searcher().Search(st.ctx, st.usage, target, ast.QtyZero); err != nil {
			return nil, diagnostics.AsError(err, diagnostics.ErrT007, e.Pos())
		}
		return e.WithSort(expected), nil
	}
	if elem, size, ok := ast.AsArrayT(target); ok {
		return c.checkArrayInit(st, e, x, expected, elem, size)
	}
	switch t := target.Value.(type) {
	case ast.Unit:
		if len(x.Values) != 0 {
			return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(), "the only value of `unit_t` is `{}`")
		}
		return e.WithSort(expected), nil
	case ast.Global:
		if sym, ok := c.s.Env.Find(t); ok && sym.Kind == symbols.StructSymbol {
			return c.checkFields(st, e, x, expected, sym.Fields)
		}
	case ast.Sigma:
		return c.checkFields(st, e, x, expected, t.Args)
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
		"initializer list cannot have type %s", describe(expected))
}

// checkFields checks the values of a struct or tuple in order; the type of
// each field may depend on the values given to the previous ones.
func (c *checker) checkFields(st state, e *ast.Expr, x ast.InitList, expected *ast.Expr, fields []ast.FuncArg) (*ast.Expr, *diagnostics.Error) {
	if len(x.Values) != len(fields) {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"initializer list for %s needs %d values, got %d", describe(expected), len(fields), len(x.Values))
	}
	subst := typesystem.Subst{}
	values := make([]*ast.Expr, len(fields))
	for i, f := range fields {
		v, err := c.check(st.scaled(f.Qty), x.Values[i], subst.Apply(f.Type))
		if err != nil {
			what := fmt.Sprintf("value %d", i+1)
			if f.Var != nil {
				what = fmt.Sprintf("field `%s`", f.Name())
			}
			return nil, diagnostics.Wrap(err.Code, x.Values[i].Pos(),
				fmt.Sprintf("invalid %s of %s", what, describe(expected)), err)
		}
		values[i] = v
		if f.Var != nil {
			subst[*f.Var] = v
		}
	}
	return ast.TypedAt(e.Pos(), ast.InitList{Values: values}, expected), nil
}

func (c *checker) checkArrayInit(st state, e *ast.Expr, x ast.InitList, expected, elem, size *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	n, ok := c.normalize(size).Value.(ast.NumLit)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"cannot initialize %s: its size is not a constant", describe(expected))
	}
	if !n.Value.IsInt64() || n.Value.Int64() != int64(len(x.Values)) {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"initializer list for %s needs %s values, got %d", describe(expected), n.Value, len(x.Values))
	}
	values := make([]*ast.Expr, len(x.Values))
	for i, v := range x.Values {
		checked, err := c.check(st, v, elem)
		if err != nil {
			return nil, diagnostics.Wrap(err.Code, v.Pos(),
				fmt.Sprintf("invalid element %d of %s", i, describe(expected)), err)
		}
		values[i] = checked
	}
	return ast.TypedAt(e.Pos(), ast.InitList{Values: values}, expected), nil
}

// checkAuto replaces `auto` with the value proof search finds.
func (c *checker) checkAuto(st state, e, expected *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	found, err := c.searcher().Search(st.ctx, st.usage, expected, st.mult)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrT007, e.Pos(),
			fmt.Sprintf("cannot find a value for `auto` of type %s", describe(expected)),
			diagnostics.AsError(err, diagnostics.ErrT007, e.Pos()))
	}
	out := *found
	out.Props.Pos = e.Pos()
	return &out, nil
}
