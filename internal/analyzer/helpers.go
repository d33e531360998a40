package analyzer

import (
	"fmt"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
)

func (c *checker) normalize(e *ast.Expr) *ast.Expr {
	out, _ := typesystem.BetaDeltaNormalize(e, c.s.Env)
	return out
}

// isType reports whether a checked expression denotes a type: its sort is
// either Kind or typename.
func isType(e *ast.Expr) bool {
	if e.IsKindSorted() {
		return true
	}
	sort := e.Type()
	if sort == nil {
		return false
	}
	_, ok := sort.Value.(ast.TypeName)
	return ok
}

// piSort is the sort of a Pi-type returning ret.
func piSort(ret *ast.Expr) ast.Sort {
	if ret.IsKindSorted() {
		return ast.Kind{}
	}
	return typenameT()
}

// expectType checks that the sort of got is equivalent to expected.
func (c *checker) expectType(got, expected *ast.Expr) *diagnostics.Error {
	actual := got.Type()
	if actual == nil {
		return diagnostics.Errorf(diagnostics.ErrT002, got.Pos(),
			"type mismatch: expected %s, got %s of sort Kind", describe(expected), describe(got))
	}
	if err := typesystem.IsBetaDeltaEquivalent(actual, expected, c.s.Env); err != nil {
		return diagnostics.Errorf(diagnostics.ErrT002, got.Pos(),
			"type mismatch: expected %s, got %s", describe(expected), describe(actual),
		).WithReason(diagnostics.AsError(err, diagnostics.ErrE001, got.Pos()))
	}
	return nil
}

// checkType checks that e denotes a type. Types are never evaluated, so
// variables used in e are not charged.
func (c *checker) checkType(st state, e *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	t, err := c.infer(st.erased(), e)
	if err != nil {
		return nil, err
	}
	if !isType(t) {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"%s is not a type, it has type %s", describe(t), describeSort(t))
	}
	return t, nil
}

// assume adds cond to a new child of st.ctx as an anonymous proposition.
func (c *checker) assume(st state, prop *ast.Expr) state {
	ctx := st.ctx.Extend()
	ctx.TryAdd(c.s.fresh(""), symbols.Local{Origin: symbols.AssumptionOrigin, Qty: ast.QtyZero, Type: prop})
	st.ctx = ctx
	return st
}

// prove searches, in an erased position, a proof of cond.
func (c *checker) prove(st state, cond *ast.Expr, format string, args ...any) *diagnostics.Error {
	if _, err := c.searcher().Search(st.ctx, st.usage, trueT(cond), ast.QtyZero); err != nil {
		what := fmt.Sprintf(format, args...)
		return diagnostics.Errorf(diagnostics.ErrT007, cond.Pos(),
			"%s requires a proof of %s", what, describe(cond),
		).WithReason(diagnostics.AsError(err, diagnostics.ErrT007, cond.Pos()))
	}
	return nil
}

func noUniqueType(e *ast.Expr, what string) *diagnostics.Error {
	return diagnostics.Errorf(diagnostics.ErrT003, e.Pos(),
		"cannot infer a unique type for %s %s; it can only be checked against a known type", what, describe(e))
}

// fieldIndex returns the position of the field called name.
func fieldIndex(fields []ast.FuncArg, name string) int {
	for i, f := range fields {
		if f.Name() == name {
			return i
		}
	}
	return -1
}

// dependentType returns the type of element i of a telescope of fields,
// with every earlier field replaced by the expression that accesses it.
func dependentType(fields []ast.FuncArg, i int, access func(j int, typ *ast.Expr) *ast.Expr) *ast.Expr {
	subst := typesystem.Subst{}
	for j := 0; j < i; j++ {
		if fields[j].Var == nil {
			continue
		}
		subst[*fields[j].Var] = access(j, subst.Apply(fields[j].Type))
	}
	return subst.Apply(fields[i].Type)
}
