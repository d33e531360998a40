package search

import (
	"slices"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
)

// maxTrivialDepth bounds the nesting of structs and tuples built by searchTrivialValue.
const maxTrivialDepth = 8

// searchVar looks for a variable or a global of the goal type.
func searchVar(e *engine, id taskID) {
	g := e.tasks[id].goal
	for v, l := range g.ctx.Entries() {
		if v.Anonymous() || !typesystem.BetaDeltaEquivalent(l.Type, g.typ, e.s.Env) {
			continue
		}
		if err := g.usage.TryAdd(g.ctx, v, g.mult, g.typ.Pos()); err != nil {
			continue
		}
		e.setResult(id, ast.Typed(v, l.Type))
		return
	}
	for name, sym := range e.s.Env.Entries() {
		if !e.usable(name, sym, g.mult) {
			continue
		}
		if typesystem.BetaDeltaEquivalent(sym.Type, g.typ, e.s.Env) {
			e.setResult(id, ast.Typed(name, sym.Type))
			return
		}
	}
}

// searchTrueT proves true_t(cond) when cond reduces to true or is already
// known to hold. Proofs are irrelevant, so the result is always `{}`.
func searchTrueT(e *engine, id taskID) {
	g := e.tasks[id].goal
	cond, ok := ast.AsTrueT(g.typ)
	if !ok {
		return
	}
	proof := ast.Typed(ast.InitList{}, g.typ)
	if ast.IsLiteralTrue(cond) {
		e.setResult(id, proof)
		return
	}
	if norm, _ := typesystem.BetaDeltaNormalize(cond, e.s.Env); ast.IsLiteralTrue(norm) {
		e.setResult(id, proof)
		return
	}
	for _, known := range g.ctx.Propositions() {
		if typesystem.BetaDeltaEquivalent(known, cond, e.s.Env) {
			e.setResult(id, proof)
			return
		}
	}
}

// searchTrivialValue builds the only value of a singleton type.
func searchTrivialValue(e *engine, id taskID) {
	g := e.tasks[id].goal
	if v, ok := e.trivialValue(g.typ, 0); ok {
		e.setResult(id, v)
	}
}

func (e *engine) trivialValue(typ *ast.Expr, depth int) (*ast.Expr, bool) {
	if depth > maxTrivialDepth {
		return nil, false
	}
	norm, _ := typesystem.BetaDeltaNormalize(typ, e.s.Env)
	empty := ast.Typed(ast.InitList{}, typ)
	switch x := norm.Value.(type) {
	case ast.Unit:
		return empty, true
	case ast.Global:
		sym, ok := e.s.Env.Find(x)
		if !ok || sym.Kind != symbols.StructSymbol {
			return nil, false
		}
		return e.trivialFields(typ, sym.Fields, depth)
	case ast.Sigma:
		return e.trivialFields(typ, x.Args, depth)
	}
	if cond, ok := ast.AsTrueT(norm); ok && ast.IsLiteralTrue(cond) {
		return empty, true
	}
	if _, size, ok := ast.AsArrayT(norm); ok {
		if n, isNum := size.Value.(ast.NumLit); isNum && n.Value.Sign() == 0 {
			return empty, true
		}
	}
	return nil, false
}

// trivialFields builds an initializer list whose every field is trivial,
// substituting each value into the types of the fields after it.
func (e *engine) trivialFields(typ *ast.Expr, fields []ast.FuncArg, depth int) (*ast.Expr, bool) {
	values := make([]*ast.Expr, 0, len(fields))
	rest := fields
	for len(rest) > 0 {
		f := rest[0]
		v, ok := e.trivialValue(f.Type, depth+1)
		if !ok {
			return nil, false
		}
		values = append(values, v)
		rest = rest[1:]
		if f.Var != nil {
			rest = typesystem.SubstituteTelescope(*f.Var, v, typesystem.Telescope{Args: rest}).Args
		}
	}
	return ast.Typed(ast.InitList{Values: values}, typ), true
}

// usable reports whether a global may appear in a found value.
func (e *engine) usable(name ast.Global, sym symbols.Symbol, mult ast.Qty) bool {
	if !sym.IsCallable() || sym.Type == nil {
		return false
	}
	if e.s.Exclude != nil && *e.s.Exclude == name {
		return false
	}
	if pi, ok := sym.Pi(); ok && pi.Mutable && !e.s.Mutable {
		return false
	}
	return sym.Kind != symbols.AxiomSymbol || mult == ast.QtyZero
}

// absurd reports whether pi has the shape (typename t, ...) -> t. Such a
// signature claims to inhabit every type and is never used by search.
func absurd(pi ast.Pi) bool {
	v, ok := pi.Ret.Value.(ast.Var)
	if !ok {
		return false
	}
	for _, arg := range pi.Args {
		if arg.Var != nil && *arg.Var == v {
			_, isTypename := arg.Type.Value.(ast.TypeName)
			return isTypename
		}
	}
	return false
}

// searchApp tries every global whose return type unifies with the goal.
// Arguments bound by unification are taken as they are; the others must be
// irrelevant to the rest of the signature and are searched for.
func searchApp(e *engine, id taskID) {
	g := e.tasks[id].goal
	var alts []taskID
	for name, sym := range e.s.Env.Entries() {
		if !e.usable(name, sym, g.mult) {
			continue
		}
		pi, ok := sym.Pi()
		if !ok || absurd(pi) {
			continue
		}
		subst, err := typesystem.Unify(pi.Ret, g.typ, binders(pi.Args), e.s.Env)
		if err != nil {
			continue
		}
		if alt, ok := e.application(name, sym, pi, subst, g); ok {
			alts = append(alts, alt)
		}
	}
	if len(alts) > 0 {
		e.becomeAny(id, alts)
	}
}

func binders(args []ast.FuncArg) []ast.Var {
	var vars []ast.Var
	for _, arg := range args {
		if arg.Var != nil {
			vars = append(vars, *arg.Var)
		}
	}
	return vars
}

// application spawns the task completing one candidate of searchApp.
func (e *engine) application(name ast.Global, sym symbols.Symbol, pi ast.Pi, subst typesystem.Subst, g goal) (taskID, bool) {
	args := make([]*ast.Expr, len(pi.Args))
	var holes []int
	for i, arg := range pi.Args {
		if arg.Var != nil {
			if val, bound := subst[*arg.Var]; bound {
				args[i] = val
				continue
			}
			rest := typesystem.Telescope{Args: pi.Args[i+1:], Ret: pi.Ret}
			if typesystem.OccursInTelescope(*arg.Var, rest, typesystem.Free) {
				return 0, false
			}
		}
		holes = append(holes, i)
	}
	depth := g.depth + 1
	if len(holes) > 0 && depth > e.s.MaxDepth {
		return 0, false
	}

	g.usage = g.usage.Extend()
	for i, arg := range pi.Args {
		if args[i] == nil {
			continue
		}
		for v, q := range typesystem.RuntimeUses(args[i], g.mult.Mul(arg.Qty)) {
			if err := g.usage.TryAdd(g.ctx, v, q, g.typ.Pos()); err != nil {
				return 0, false
			}
		}
	}

	fn := ast.Typed(name, sym.Type)
	build := func(found []*ast.Expr) *ast.Expr {
		full := slices.Clone(args)
		for k, i := range holes {
			full[i] = found[k]
		}
		return ast.Typed(ast.App{Func: fn, Args: full}, g.typ)
	}
	label := "searchApp:" + name.Name
	if len(holes) == 0 {
		return e.spawn(label, g, func(e *engine, id taskID) {
			e.setResult(id, build(nil))
		}), true
	}
	return e.spawn(label, g, func(e *engine, id taskID) {
		temp := g.usage.Extend()
		next := fullSearch
		if depth == e.s.MaxDepth {
			next = quickSearch
		}
		subgoals := make([]taskID, len(holes))
		for k, i := range holes {
			arg := pi.Args[i]
			sub := goal{
				ctx:   g.ctx,
				usage: temp,
				typ:   subst.Apply(arg.Type),
				mult:  g.mult.Mul(arg.Qty),
				depth: depth,
			}
			subgoals[k] = e.spawn("search", sub, next)
		}
		e.becomeAll(id, subgoals, temp, build)
	}), true
}
