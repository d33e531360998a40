package typesystem

import (
	"math/big"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/config"
)

// Resolver gives reduction access to global definitions.
type Resolver interface {
	// FuncDefinition returns the abstraction a global function is defined as.
	FuncDefinition(g ast.Global) (*ast.Expr, bool)
}

// BetaNormalize reduces applications of abstractions until no redex is left
// or the step limit is reached. It reports whether anything changed.
func BetaNormalize(e *ast.Expr) (*ast.Expr, bool) {
	changed := false
	for i := 0; i < config.MaxBetaSteps; i++ {
		next, c := beta(e)
		if !c {
			return e, changed
		}
		e, changed = next, true
	}
	return e, changed
}

// beta performs one bottom-up pass reducing every redex it finds.
func beta(e *ast.Expr) (*ast.Expr, bool) {
	if e == nil {
		return nil, false
	}
	changed := false
	step := func(c *ast.Expr) *ast.Expr {
		out, ch := beta(c)
		changed = changed || ch
		return out
	}

	var v ast.Value
	switch x := e.Value.(type) {
	case ast.Abs, ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		args := make([]ast.FuncArg, len(t.Args))
		for i, arg := range t.Args {
			arg.Type = step(arg.Type)
			args[i] = arg
		}
		var body *ast.Body
		if t.Body != nil {
			var ch bool
			body, ch = simplifyBody(mapBody(t.Body, step))
			changed = changed || ch
		}
		v = withTelescope(x, Telescope{Args: args, Ret: step(t.Ret), Body: body})
	default:
		v = mapValue(e.Value, step)
	}

	if app, ok := v.(ast.App); ok {
		if reduced, ok := betaApp(e, app); ok {
			return reduced, true
		}
	}
	if !changed {
		return e, false
	}
	return e.WithValue(v), true
}

// betaApp reduces an application whose head is an abstraction.
func betaApp(e *ast.Expr, app ast.App) (*ast.Expr, bool) {
	abs, ok := app.Func.Value.(ast.Abs)
	if !ok || len(abs.Args) != len(app.Args) || abs.Body == nil {
		return nil, false
	}
	if len(abs.Args) == 0 {
		// A stuck closure: it reduces once its body starts with a return.
		if ret, ok := leadingReturn(abs.Body); ok {
			return ret, true
		}
		return nil, false
	}
	t := Telescope{Args: abs.Args, Ret: abs.Ret, Body: abs.Body}
	for _, arg := range app.Args {
		rest := t.Rest(0)
		if param := t.Args[0]; param.Var != nil {
			rest = SubstituteTelescope(*param.Var, arg, rest)
		}
		t = rest
	}
	body, _ := simplifyBody(t.Body)
	if ret, ok := leadingReturn(body); ok {
		return ret, true
	}
	closure := app.Func.WithValue(ast.Abs{Mutable: abs.Mutable, Ret: t.Ret, Body: body})
	return e.WithValue(ast.App{Func: closure}), true
}

func leadingReturn(b *ast.Body) (*ast.Expr, bool) {
	if b == nil || len(b.Stmts) == 0 {
		return nil, false
	}
	if r, ok := b.Stmts[0].(ast.Return); ok && r.Expr != nil {
		return r.Expr, true
	}
	return nil, false
}

// simplifyBody replaces leading if-statements whose condition is a boolean
// literal with the statements of the branch taken.
func simplifyBody(b *ast.Body) (*ast.Body, bool) {
	if b == nil {
		return nil, false
	}
	stmts := b.Stmts
	changed := false
	for len(stmts) > 0 {
		ifElse, ok := stmts[0].(ast.IfElse)
		if !ok {
			break
		}
		var taken *ast.Body
		switch {
		case ast.IsLiteralTrue(ifElse.Cond):
			taken = ifElse.Then
		case ast.IsLiteralFalse(ifElse.Cond):
			taken = ifElse.Else
		default:
			return &ast.Body{Stmts: stmts}, changed
		}
		next := make([]ast.Stmt, 0, len(stmts))
		if taken != nil {
			next = append(next, taken.Stmts...)
		}
		stmts = append(next, stmts[1:]...)
		changed = true
	}
	if !changed {
		return b, false
	}
	return &ast.Body{Stmts: stmts}, true
}

// DeltaUnfold performs one delta step, leftmost-outermost: either folding a
// builtin operator applied to literals or unfolding one application whose
// head is a global function definition. A function referenced without
// being applied is never unfolded, and abstraction bodies are not entered
// except for the condition of the leading if-statement of a closure that
// is already applied.
func DeltaUnfold(e *ast.Expr, r Resolver) (*ast.Expr, bool) {
	if e == nil {
		return nil, false
	}
	if folded, ok := fold(e); ok {
		return folded, true
	}
	switch x := e.Value.(type) {
	case ast.App:
		if g, ok := x.Func.Value.(ast.Global); ok && r != nil {
			if def, ok := r.FuncDefinition(g); ok {
				return e.WithValue(ast.App{Func: def, Args: x.Args}), true
			}
		}
		if abs, ok := x.Func.Value.(ast.Abs); ok && len(abs.Args) == 0 && len(x.Args) == 0 {
			if body, ok := deltaLeadingCondition(abs.Body, r); ok {
				closure := x.Func.WithValue(ast.Abs{Mutable: abs.Mutable, Ret: abs.Ret, Body: body})
				return e.WithValue(ast.App{Func: closure}), true
			}
			return e, false
		}
	case ast.Abs:
		return e, false
	case ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		for i, arg := range t.Args {
			if next, ok := DeltaUnfold(arg.Type, r); ok {
				args := append([]ast.FuncArg(nil), t.Args...)
				args[i].Type = next
				return e.WithValue(withTelescope(x, Telescope{Args: args, Ret: t.Ret})), true
			}
		}
		if next, ok := DeltaUnfold(t.Ret, r); ok {
			return e.WithValue(withTelescope(x, Telescope{Args: t.Args, Ret: next})), true
		}
		return e, false
	case ast.Because:
		if next, ok := DeltaUnfold(x.Value, r); ok {
			return e.WithValue(ast.Because{Value: next, Reason: x.Reason}), true
		}
		return e, false
	}

	done := false
	v := mapValue(e.Value, func(c *ast.Expr) *ast.Expr {
		if done {
			return c
		}
		next, ok := DeltaUnfold(c, r)
		done = ok
		return next
	})
	if !done {
		return e, false
	}
	return e.WithValue(v), true
}

func deltaLeadingCondition(b *ast.Body, r Resolver) (*ast.Body, bool) {
	if b == nil || len(b.Stmts) == 0 {
		return nil, false
	}
	ifElse, ok := b.Stmts[0].(ast.IfElse)
	if !ok {
		return nil, false
	}
	cond, ok := DeltaUnfold(ifElse.Cond, r)
	if !ok {
		return nil, false
	}
	ifElse.Cond = cond
	stmts := append([]ast.Stmt{ifElse}, b.Stmts[1:]...)
	return &ast.Body{Stmts: stmts}, true
}

// fold evaluates a builtin operator whose operands are literals.
func fold(e *ast.Expr) (*ast.Expr, bool) {
	switch x := e.Value.(type) {
	case ast.BoolNot:
		if b, ok := x.Expr.Value.(ast.BoolLit); ok {
			return e.WithValue(ast.BoolLit{Value: !b.Value}), true
		}
	case ast.BoolBinary:
		return foldBoolBinary(e, x)
	case ast.Relation:
		return foldRelation(e, x)
	case ast.Arith:
		return foldArith(e, x)
	}
	return nil, false
}

func foldBoolBinary(e *ast.Expr, x ast.BoolBinary) (*ast.Expr, bool) {
	l, lok := x.Left.Value.(ast.BoolLit)
	r, rok := x.Right.Value.(ast.BoolLit)
	if lok && rok {
		var v bool
		switch x.Op {
		case ast.OpAnd:
			v = l.Value && r.Value
		case ast.OpOr:
			v = l.Value || r.Value
		case ast.OpXor:
			v = l.Value != r.Value
		}
		return e.WithValue(ast.BoolLit{Value: v}), true
	}
	// One literal operand is enough to decide and/or.
	switch {
	case x.Op == ast.OpAnd && lok:
		if l.Value {
			return x.Right, true
		}
		return e.WithValue(ast.BoolLit{Value: false}), true
	case x.Op == ast.OpAnd && rok:
		if r.Value {
			return x.Left, true
		}
		return e.WithValue(ast.BoolLit{Value: false}), true
	case x.Op == ast.OpOr && lok:
		if !l.Value {
			return x.Right, true
		}
		return e.WithValue(ast.BoolLit{Value: true}), true
	case x.Op == ast.OpOr && rok:
		if !r.Value {
			return x.Left, true
		}
		return e.WithValue(ast.BoolLit{Value: true}), true
	}
	return nil, false
}

func foldRelation(e *ast.Expr, x ast.Relation) (*ast.Expr, bool) {
	if l, ok := x.Left.Value.(ast.BoolLit); ok {
		r, ok := x.Right.Value.(ast.BoolLit)
		if !ok {
			return nil, false
		}
		switch x.Op {
		case ast.OpEq:
			return e.WithValue(ast.BoolLit{Value: l.Value == r.Value}), true
		case ast.OpNeq:
			return e.WithValue(ast.BoolLit{Value: l.Value != r.Value}), true
		}
		return nil, false
	}
	l, lok := x.Left.Value.(ast.NumLit)
	r, rok := x.Right.Value.(ast.NumLit)
	if !lok || !rok {
		return nil, false
	}
	c := l.Value.Cmp(r.Value)
	var v bool
	switch x.Op {
	case ast.OpEq:
		v = c == 0
	case ast.OpNeq:
		v = c != 0
	case ast.OpLt:
		v = c < 0
	case ast.OpLte:
		v = c <= 0
	case ast.OpGt:
		v = c > 0
	case ast.OpGte:
		v = c >= 0
	}
	return e.WithValue(ast.BoolLit{Value: v}), true
}

func foldArith(e *ast.Expr, x ast.Arith) (*ast.Expr, bool) {
	l, lok := x.Left.Value.(ast.NumLit)
	r, rok := x.Right.Value.(ast.NumLit)
	if !lok || !rok {
		return nil, false
	}
	v := new(big.Int)
	switch x.Op {
	case ast.OpPlus:
		v.Add(l.Value, r.Value)
	case ast.OpMinus:
		v.Sub(l.Value, r.Value)
	case ast.OpMult:
		v.Mul(l.Value, r.Value)
	case ast.OpDiv:
		if r.Value.Sign() == 0 {
			return nil, false
		}
		v.Quo(l.Value, r.Value)
	case ast.OpMod:
		if r.Value.Sign() == 0 {
			return nil, false
		}
		v.Rem(l.Value, r.Value)
	}
	if sort := e.Type(); sort != nil {
		if t, ok := sort.Value.(ast.IntType); ok {
			v = t.Wrap(v)
		}
	}
	return e.WithValue(ast.NumLit{Value: v}), true
}

// BetaDeltaNormalize alternates beta normalization and single delta steps
// until neither makes progress. It reports whether anything changed.
func BetaDeltaNormalize(e *ast.Expr, r Resolver) (*ast.Expr, bool) {
	changed := false
	for i := 0; i < config.MaxNormalizeSteps; i++ {
		var c bool
		e, c = BetaNormalize(e)
		changed = changed || c
		e, c = DeltaUnfold(e, r)
		if !c {
			return e, changed
		}
		changed = true
	}
	return e, changed
}

// IsBetaDeltaEquivalent compares the beta-delta normal forms of a and b.
func IsBetaDeltaEquivalent(a, b *ast.Expr, r Resolver) error {
	if AlphaEquivalent(a, b) {
		return nil
	}
	na, _ := BetaDeltaNormalize(a, r)
	nb, _ := BetaDeltaNormalize(b, r)
	return IsAlphaEquivalent(na, nb)
}

// BetaDeltaEquivalent is the boolean form of IsBetaDeltaEquivalent.
func BetaDeltaEquivalent(a, b *ast.Expr, r Resolver) bool {
	return IsBetaDeltaEquivalent(a, b, r) == nil
}
