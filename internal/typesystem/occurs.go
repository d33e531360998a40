package typesystem

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/raffopazzo/depc-sub002/internal/ast"
)

type OccursStyle int

const (
	// Free stops at binders that shadow the variable.
	Free OccursStyle = iota
	// Anywhere also counts binders and looks through shadowing.
	Anywhere
)

// OccursIn reports whether v occurs in e. Sorts are not inspected.
func OccursIn(v ast.Var, e *ast.Expr, style OccursStyle) bool {
	if e == nil {
		return false
	}
	switch x := e.Value.(type) {
	case ast.Var:
		return x == v
	case ast.Abs, ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		return OccursInTelescope(v, t, style)
	}
	for _, c := range children(e.Value) {
		if OccursIn(v, c, style) {
			return true
		}
	}
	return false
}

// OccursInTelescope reports whether v occurs in any argument type, the
// return type or the body of t.
func OccursInTelescope(v ast.Var, t Telescope, style OccursStyle) bool {
	for _, arg := range t.Args {
		if OccursIn(v, arg.Type, style) {
			return true
		}
		if arg.Var != nil && *arg.Var == v {
			if style == Anywhere {
				return true
			}
			return false
		}
	}
	if OccursIn(v, t.Ret, style) {
		return true
	}
	return bodyExprs(t.Body, func(e *ast.Expr) bool { return OccursIn(v, e, style) })
}

// FreeVars collects the variables occurring free in e.
func FreeVars(e *ast.Expr) *set.Set[ast.Var] {
	vars := set.New[ast.Var](8)
	collectFree(e, nil, vars)
	return vars
}

func collectFree(e *ast.Expr, bound []ast.Var, out *set.Set[ast.Var]) {
	if e == nil {
		return
	}
	switch x := e.Value.(type) {
	case ast.Var:
		for _, b := range bound {
			if b == x {
				return
			}
		}
		out.Insert(x)
		return
	case ast.Abs, ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		inner := append([]ast.Var(nil), bound...)
		for _, arg := range t.Args {
			collectFree(arg.Type, inner, out)
			if arg.Var != nil {
				inner = append(inner, *arg.Var)
			}
		}
		collectFree(t.Ret, inner, out)
		bodyExprs(t.Body, func(b *ast.Expr) bool {
			collectFree(b, inner, out)
			return false
		})
		return
	}
	for _, c := range children(e.Value) {
		collectFree(c, bound, out)
	}
}

// maxIndex returns the largest index used by a variable called name anywhere
// in es, binders and sorts included, or -1 if there is none.
func maxIndex(name string, es ...*ast.Expr) int {
	best := -1
	for _, e := range es {
		if m := maxIndexExpr(name, e); m > best {
			best = m
		}
	}
	return best
}

func maxIndexExpr(name string, e *ast.Expr) int {
	if e == nil {
		return -1
	}
	best := -1
	if sort := e.Type(); sort != nil {
		best = maxIndexExpr(name, sort)
	}
	switch x := e.Value.(type) {
	case ast.Var:
		if x.Name == name && x.Idx > best {
			best = x.Idx
		}
	case ast.Abs, ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		if m := maxIndexTelescope(name, t); m > best {
			best = m
		}
	default:
		for _, c := range children(e.Value) {
			if m := maxIndexExpr(name, c); m > best {
				best = m
			}
		}
	}
	return best
}

func maxIndexTelescope(name string, t Telescope) int {
	best := -1
	for _, arg := range t.Args {
		if m := maxIndexExpr(name, arg.Type); m > best {
			best = m
		}
		if arg.Var != nil && arg.Var.Name == name && arg.Var.Idx > best {
			best = arg.Var.Idx
		}
	}
	if m := maxIndexExpr(name, t.Ret); m > best {
		best = m
	}
	bodyExprs(t.Body, func(e *ast.Expr) bool {
		if m := maxIndexExpr(name, e); m > best {
			best = m
		}
		return false
	})
	return best
}

// RuntimeUses counts how many times each free variable of e is used at
// runtime when e itself is used mult times. Erased positions such as
// proofs and types are skipped. Arguments of an application are
// scaled by the quantity of the matching parameter when the type of the
// function is known; variables captured by an abstraction count as many.
func RuntimeUses(e *ast.Expr, mult ast.Qty) map[ast.Var]ast.Qty {
	out := make(map[ast.Var]ast.Qty)
	countUses(e, mult, out)
	return out
}

func countUses(e *ast.Expr, mult ast.Qty, out map[ast.Var]ast.Qty) {
	if e == nil || mult == ast.QtyZero {
		return
	}
	switch x := e.Value.(type) {
	case ast.Var:
		out[x] = out[x].Add(mult)
	case ast.Because:
		countUses(x.Value, mult, out)
	case ast.AddressOf, ast.ScopeOf, ast.Pi, ast.Sigma:
	case ast.Abs:
		for _, v := range FreeVars(e).Slice() {
			out[v] = out[v].Add(ast.QtyMany.Mul(mult))
		}
	case ast.App:
		countUses(x.Func, mult, out)
		var pi ast.Pi
		ok := false
		if t := x.Func.Type(); t != nil {
			pi, ok = t.Value.(ast.Pi)
		}
		for i, arg := range x.Args {
			q := mult
			if ok && i < len(pi.Args) {
				q = mult.Mul(pi.Args[i].Qty)
			}
			countUses(arg, q, out)
		}
	default:
		for _, c := range children(e.Value) {
			countUses(c, mult, out)
		}
	}
}
