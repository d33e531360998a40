package typesystem

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
)

// Replace returns target with every sub-expression alpha-equivalent to from
// replaced by to. Binders that capture a free variable of from are not
// entered, since below them from means something else.
func Replace(from, to, target *ast.Expr) (*ast.Expr, bool) {
	r := &replacer{from: from, to: to, fromVars: FreeVars(from).Slice()}
	out := r.expr(target)
	return out, r.changed
}

type replacer struct {
	from, to *ast.Expr
	fromVars []ast.Var
	changed  bool
}

func (r *replacer) expr(e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	if AlphaEquivalent(e, r.from) {
		r.changed = true
		return r.to
	}
	switch x := e.Value.(type) {
	case ast.Abs, ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		args := make([]ast.FuncArg, len(t.Args))
		copy(args, t.Args)
		for i := range args {
			args[i].Type = r.expr(args[i].Type)
			if args[i].Var != nil && r.binds(*args[i].Var) {
				return e.WithValue(withTelescope(x, Telescope{Args: args, Ret: t.Ret, Body: t.Body}))
			}
		}
		return e.WithValue(withTelescope(x, Telescope{Args: args, Ret: r.expr(t.Ret), Body: mapBody(t.Body, r.expr)}))
	}
	return e.WithValue(mapValue(e.Value, r.expr))
}

func (r *replacer) binds(v ast.Var) bool {
	for _, f := range r.fromVars {
		if f == v {
			return true
		}
	}
	return false
}

// QualifyGlobals marks every global of the current module found in e as
// imported under module.
func QualifyGlobals(e *ast.Expr, module string) *ast.Expr {
	if e == nil {
		return nil
	}
	var out *ast.Expr
	switch x := e.Value.(type) {
	case ast.Global:
		if !x.Imported {
			x = ast.Global{Module: module, Imported: true, Name: x.Name}
		}
		out = e.WithValue(x)
	case ast.Abs, ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		out = e.WithValue(withTelescope(x, QualifyTelescope(t, module)))
	default:
		out = e.WithValue(mapValue(e.Value, func(c *ast.Expr) *ast.Expr { return QualifyGlobals(c, module) }))
	}
	if sort := e.Type(); sort != nil {
		out.Props.Sort = QualifyGlobals(sort, module)
	}
	return out
}

// QualifyTelescope is QualifyGlobals over a telescope.
func QualifyTelescope(t Telescope, module string) Telescope {
	q := func(c *ast.Expr) *ast.Expr { return QualifyGlobals(c, module) }
	args := make([]ast.FuncArg, len(t.Args))
	for i, arg := range t.Args {
		arg.Type = q(arg.Type)
		args[i] = arg
	}
	return Telescope{Args: args, Ret: q(t.Ret), Body: mapBody(t.Body, q)}
}
