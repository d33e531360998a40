package typesystem

import (
	"fmt"
	"reflect"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
)

// mismatch records where two terms stopped being alpha-equivalent. It is
// turned into a diagnostic only when reported, so failed comparisons made
// during proof search stay cheap.
type mismatch struct {
	a, b   *ast.Expr
	reason string
	cause  *mismatch
}

func (m *mismatch) toError() *diagnostics.Error {
	var msg string
	if m.a != nil && m.b != nil {
		msg = fmt.Sprintf("`%s` is not alpha-equivalent to `%s`", prettyprinter.Expr(m.a), prettyprinter.Expr(m.b))
		if m.reason != "" {
			msg += ": " + m.reason
		}
	} else {
		msg = m.reason
	}
	pos := m.b.Pos()
	if m.a != nil && m.a.Pos().IsValid() {
		pos = m.a.Pos()
	}
	err := diagnostics.NewError(diagnostics.ErrE001, pos, msg)
	if m.cause != nil {
		err.WithReason(m.cause.toError())
	}
	return err
}

// IsAlphaEquivalent returns nil if a and b are equal up to renaming of bound
// variables, or an error describing the first difference found.
func IsAlphaEquivalent(a, b *ast.Expr) error {
	if m := alpha(a, b); m != nil {
		return m.toError()
	}
	return nil
}

// AlphaEquivalent is the boolean form of IsAlphaEquivalent.
func AlphaEquivalent(a, b *ast.Expr) bool {
	return alpha(a, b) == nil
}

// IsAlphaEquivalentTelescope compares two binder lists together with their scopes.
func IsAlphaEquivalentTelescope(a, b Telescope) error {
	if m := alphaTelescope(a, b); m != nil {
		return m.toError()
	}
	return nil
}

func alpha(a, b *ast.Expr) *mismatch {
	if a == nil || b == nil {
		if a == b {
			return nil
		}
		return &mismatch{a: a, b: b, reason: "one side is missing"}
	}
	switch x := a.Value.(type) {
	case ast.NumLit:
		if y, ok := b.Value.(ast.NumLit); ok && x.Value.Cmp(y.Value) == 0 {
			return nil
		}
		return &mismatch{a: a, b: b}
	case ast.Because:
		y, ok := b.Value.(ast.Because)
		if !ok {
			return &mismatch{a: a, b: b}
		}
		return wrap(a, b, alpha(x.Value, y.Value))
	case ast.Abs:
		y, ok := b.Value.(ast.Abs)
		if !ok {
			return &mismatch{a: a, b: b}
		}
		if x.Mutable != y.Mutable {
			return &mismatch{a: a, b: b, reason: "mutability differs"}
		}
		return wrap(a, b, alphaTelescope(Telescope{x.Args, x.Ret, x.Body}, Telescope{y.Args, y.Ret, y.Body}))
	case ast.Pi:
		y, ok := b.Value.(ast.Pi)
		if !ok {
			return &mismatch{a: a, b: b}
		}
		if x.Mutable != y.Mutable {
			return &mismatch{a: a, b: b, reason: "mutability differs"}
		}
		return wrap(a, b, alphaTelescope(Telescope{Args: x.Args, Ret: x.Ret}, Telescope{Args: y.Args, Ret: y.Ret}))
	case ast.Sigma:
		y, ok := b.Value.(ast.Sigma)
		if !ok {
			return &mismatch{a: a, b: b}
		}
		return wrap(a, b, alphaTelescope(Telescope{Args: x.Args}, Telescope{Args: y.Args}))
	case ast.BoolBinary:
		if y, ok := b.Value.(ast.BoolBinary); !ok || x.Op != y.Op {
			return &mismatch{a: a, b: b}
		}
	case ast.Relation:
		if y, ok := b.Value.(ast.Relation); !ok || x.Op != y.Op {
			return &mismatch{a: a, b: b}
		}
	case ast.Arith:
		if y, ok := b.Value.(ast.Arith); !ok || x.Op != y.Op {
			return &mismatch{a: a, b: b}
		}
	case ast.Member:
		if y, ok := b.Value.(ast.Member); !ok || x.Field != y.Field {
			return &mismatch{a: a, b: b}
		}
	case ast.App, ast.InitList, ast.Subscript, ast.BoolNot, ast.AddressOf, ast.Deref, ast.ScopeOf:
		if reflect.TypeOf(a.Value) != reflect.TypeOf(b.Value) {
			return &mismatch{a: a, b: b}
		}
	default:
		// Constants, literals and names are plain comparable values.
		if a.Value != b.Value {
			return &mismatch{a: a, b: b}
		}
		return nil
	}

	ca, cb := children(a.Value), children(b.Value)
	if len(ca) != len(cb) {
		return &mismatch{a: a, b: b, reason: fmt.Sprintf("%d sub-expressions against %d", len(ca), len(cb))}
	}
	for i := range ca {
		if m := alpha(ca[i], cb[i]); m != nil {
			return wrap(a, b, m)
		}
	}
	return nil
}

func wrap(a, b *ast.Expr, cause *mismatch) *mismatch {
	if cause == nil {
		return nil
	}
	return &mismatch{a: a, b: b, cause: cause}
}

func alphaTelescope(ta, tb Telescope) *mismatch {
	if len(ta.Args) != len(tb.Args) {
		return &mismatch{reason: fmt.Sprintf("%d arguments against %d", len(ta.Args), len(tb.Args))}
	}
	for i := range ta.Args {
		x, y := ta.Args[i], tb.Args[i]
		if x.Qty != y.Qty {
			return &mismatch{reason: fmt.Sprintf("argument %d has quantity %s against %s", i+1, x.Qty, y.Qty)}
		}
		if m := alpha(x.Type, y.Type); m != nil {
			return &mismatch{reason: fmt.Sprintf("argument %d differs", i+1), cause: m}
		}
		switch {
		case x.Var == nil && y.Var == nil:
		case x.Var == nil:
			if OccursInTelescope(*y.Var, tb.Rest(i), Free) {
				return &mismatch{reason: fmt.Sprintf("argument %d is anonymous on one side but `%s` is used on the other", i+1, prettyprinter.Var(*y.Var))}
			}
		case y.Var == nil:
			if OccursInTelescope(*x.Var, ta.Rest(i), Free) {
				return &mismatch{reason: fmt.Sprintf("argument %d is anonymous on one side but `%s` is used on the other", i+1, prettyprinter.Var(*x.Var))}
			}
		case *x.Var != *y.Var:
			restA, restB := ta.Rest(i), tb.Rest(i)
			name := x.Var.Name
			idx := maxIndexTelescope(name, restA)
			if m := maxIndexTelescope(name, restB); m > idx {
				idx = m
			}
			if x.Var.Idx > idx {
				idx = x.Var.Idx
			}
			if y.Var.Name == name && y.Var.Idx > idx {
				idx = y.Var.Idx
			}
			fresh := ast.Var{Name: name, Idx: idx + 1}
			restA = RenameTelescope(*x.Var, fresh, restA)
			restB = RenameTelescope(*y.Var, fresh, restB)
			ta = Telescope{Args: append(append([]ast.FuncArg(nil), ta.Args[:i+1]...), restA.Args...), Ret: restA.Ret, Body: restA.Body}
			tb = Telescope{Args: append(append([]ast.FuncArg(nil), tb.Args[:i+1]...), restB.Args...), Ret: restB.Ret, Body: restB.Body}
		}
	}
	if m := alpha(ta.Ret, tb.Ret); m != nil {
		return &mismatch{reason: "return types differ", cause: m}
	}
	return alphaBody(ta.Body, tb.Body)
}

func alphaBody(a, b *ast.Body) *mismatch {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return nil
		}
		return &mismatch{reason: "one branch is missing"}
	}
	if len(a.Stmts) != len(b.Stmts) {
		return &mismatch{reason: fmt.Sprintf("%d statements against %d", len(a.Stmts), len(b.Stmts))}
	}
	for i := range a.Stmts {
		if m := alphaStmt(a.Stmts[i], b.Stmts[i]); m != nil {
			return &mismatch{reason: fmt.Sprintf("statement %d differs", i+1), cause: m}
		}
	}
	return nil
}

func alphaStmt(a, b ast.Stmt) *mismatch {
	switch x := a.(type) {
	case ast.Return:
		if y, ok := b.(ast.Return); ok {
			return alpha(x.Expr, y.Expr)
		}
	case ast.IfElse:
		if y, ok := b.(ast.IfElse); ok {
			if m := alpha(x.Cond, y.Cond); m != nil {
				return m
			}
			if m := alphaBody(x.Then, y.Then); m != nil {
				return m
			}
			return alphaBody(x.Else, y.Else)
		}
	case ast.Impossible:
		if _, ok := b.(ast.Impossible); ok {
			return nil
		}
	case ast.ExprStmt:
		if y, ok := b.(ast.ExprStmt); ok {
			return alpha(x.Expr, y.Expr)
		}
	}
	return &mismatch{reason: "statements of different kinds"}
}
