package typesystem

import (
	"fmt"
	"reflect"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
)

func errUnify(pattern, target *ast.Expr, reason string) error {
	msg := fmt.Sprintf("cannot unify `%s` with `%s`", prettyprinter.Expr(pattern), prettyprinter.Expr(target))
	if reason != "" {
		msg += ": " + reason
	}
	return diagnostics.NewError(diagnostics.ErrE002, target.Pos(), msg)
}

// Unify matches pattern against target, binding the variables listed in
// vars. Every other variable must match itself. The same variable must be
// bound to alpha-equivalent values at each occurrence, and once the whole
// structure matches, the type of each bound value must be beta-delta
// equivalent to the type expected at the pattern occurrence.
//
// Abstractions, Pi-types and Sigma-types never unify.
func Unify(pattern, target *ast.Expr, vars []ast.Var, resolver Resolver) (Subst, error) {
	u := &unifier{vars: make(map[ast.Var]bool, len(vars)), subst: Subst{}}
	for _, v := range vars {
		u.vars[v] = true
	}
	if err := u.unify(pattern, target); err != nil {
		return nil, err
	}
	for _, occ := range u.occurrences {
		expected := occ.pattern.Type()
		actual := u.subst[occ.v].Type()
		if expected == nil || actual == nil {
			continue
		}
		expected = u.subst.Apply(expected)
		if err := IsBetaDeltaEquivalent(expected, actual, resolver); err != nil {
			return nil, diagnostics.NewError(diagnostics.ErrE002, occ.pattern.Pos(),
				fmt.Sprintf("`%s` has type `%s` but `%s` was expected",
					prettyprinter.Expr(u.subst[occ.v]), prettyprinter.Expr(actual), prettyprinter.Expr(expected)),
			).WithReason(diagnostics.AsError(err, diagnostics.ErrE001, occ.pattern.Pos()))
		}
	}
	return u.subst, nil
}

type occurrence struct {
	v       ast.Var
	pattern *ast.Expr
}

type unifier struct {
	vars        map[ast.Var]bool
	subst       Subst
	occurrences []occurrence
}

func (u *unifier) unify(pattern, target *ast.Expr) error {
	if pattern == nil || target == nil {
		if pattern == target {
			return nil
		}
		return diagnostics.NewError(diagnostics.ErrE002, target.Pos(), "cannot unify a missing expression")
	}
	if v, ok := pattern.Value.(ast.Var); ok && u.vars[v] {
		if prev, bound := u.subst[v]; bound {
			if err := IsAlphaEquivalent(prev, target); err != nil {
				return diagnostics.NewError(diagnostics.ErrE002, target.Pos(),
					fmt.Sprintf("`%s` is already bound to `%s`", prettyprinter.Var(v), prettyprinter.Expr(prev)),
				).WithReason(diagnostics.AsError(err, diagnostics.ErrE001, target.Pos()))
			}
		} else {
			u.subst[v] = target
		}
		u.occurrences = append(u.occurrences, occurrence{v: v, pattern: pattern})
		return nil
	}

	switch x := pattern.Value.(type) {
	case ast.Abs, ast.Pi, ast.Sigma:
		return errUnify(pattern, target, "binders are not supported by unification")
	case ast.NumLit:
		if y, ok := target.Value.(ast.NumLit); ok && x.Value.Cmp(y.Value) == 0 {
			return nil
		}
		return errUnify(pattern, target, "")
	case ast.Because:
		y, ok := target.Value.(ast.Because)
		if !ok {
			return errUnify(pattern, target, "")
		}
		return u.unify(x.Value, y.Value)
	case ast.BoolBinary:
		if y, ok := target.Value.(ast.BoolBinary); !ok || x.Op != y.Op {
			return errUnify(pattern, target, "")
		}
	case ast.Relation:
		if y, ok := target.Value.(ast.Relation); !ok || x.Op != y.Op {
			return errUnify(pattern, target, "")
		}
	case ast.Arith:
		if y, ok := target.Value.(ast.Arith); !ok || x.Op != y.Op {
			return errUnify(pattern, target, "")
		}
	case ast.Member:
		if y, ok := target.Value.(ast.Member); !ok || x.Field != y.Field {
			return errUnify(pattern, target, "")
		}
	case ast.App:
		y, ok := target.Value.(ast.App)
		if !ok {
			return errUnify(pattern, target, "")
		}
		if len(x.Args) != len(y.Args) {
			return errUnify(pattern, target, fmt.Sprintf("%d arguments against %d", len(x.Args), len(y.Args)))
		}
	case ast.InitList:
		y, ok := target.Value.(ast.InitList)
		if !ok {
			return errUnify(pattern, target, "")
		}
		if len(x.Values) != len(y.Values) {
			return errUnify(pattern, target, fmt.Sprintf("%d values against %d", len(x.Values), len(y.Values)))
		}
	case ast.Subscript, ast.BoolNot, ast.AddressOf, ast.Deref, ast.ScopeOf:
		if reflect.TypeOf(pattern.Value) != reflect.TypeOf(target.Value) {
			return errUnify(pattern, target, "")
		}
	default:
		if pattern.Value != target.Value {
			return errUnify(pattern, target, "")
		}
		return nil
	}

	pc, tc := children(pattern.Value), children(target.Value)
	for i := range pc {
		if err := u.unify(pc[i], tc[i]); err != nil {
			return err
		}
	}
	return nil
}
