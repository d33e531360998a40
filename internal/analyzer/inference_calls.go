package analyzer

import (
	"fmt"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/token"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
)

func (c *checker) inferApp(st state, e *ast.Expr, app ast.App) (*ast.Expr, *diagnostics.Error) {
	fn, err := c.infer(st, app.Func)
	if err != nil {
		return nil, err
	}
	var pi ast.Pi
	ok := false
	if t := fn.Type(); t != nil {
		pi, ok = c.normalize(t).Value.(ast.Pi)
	}
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, app.Func.Pos(),
			"%s is not a function, it has sort %s", describe(fn), describeSort(fn))
	}
	if len(app.Args) != len(pi.Args) {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"wrong number of arguments in call to %s: expected %d, got %d", describe(fn), len(pi.Args), len(app.Args))
	}
	if pi.Mutable && !c.mutable {
		return nil, diagnostics.Errorf(diagnostics.ErrT009, e.Pos(),
			"cannot invoke mutable function %s from an immutable context", describe(fn))
	}

	tele := typesystem.Telescope{Args: pi.Args, Ret: pi.Ret}
	args := make([]*ast.Expr, len(app.Args))
	for i, a := range app.Args {
		param := tele.Args[0]
		arg, err := c.check(st.scaled(param.Qty), a, param.Type)
		if err != nil {
			return nil, diagnostics.Wrap(err.Code, a.Pos(),
				fmt.Sprintf("invalid argument %d in call to %s", i+1, describe(fn)), err)
		}
		args[i] = arg
		rest := tele.Rest(0)
		if param.Var != nil {
			rest = typesystem.SubstituteTelescope(*param.Var, arg, rest)
		}
		tele = rest
	}
	return ast.TypedAt(e.Pos(), ast.App{Func: fn, Args: args}, tele.Ret), nil
}

// inferAbs checks a function literal. Its body runs once per call, so the
// variables it captures are charged as many times the enclosing mult.
func (c *checker) inferAbs(st state, e *ast.Expr, abs ast.Abs) (*ast.Expr, *diagnostics.Error) {
	inner := state{ctx: st.ctx, usage: symbols.NewUsage(), mult: ast.QtyOne}
	inner, args, ret, body, err := c.bindTelescope(inner, abs.Args, abs.Ret, abs.Body)
	if err != nil {
		return nil, err
	}
	lambda := &checker{s: c.s, mutable: abs.Mutable, self: c.self}
	body, err = lambda.checkFunctionBody(inner, ret, body, e.Pos())
	if err != nil {
		return nil, err
	}
	sort := ast.Typed(ast.Pi{Mutable: abs.Mutable, Args: args, Ret: ret}, piSort(ret))
	out := ast.TypedAt(e.Pos(), ast.Abs{Mutable: abs.Mutable, Args: args, Ret: ret, Body: body}, sort)
	for _, v := range typesystem.FreeVars(out).Slice() {
		if inner.usage.Direct(v) == ast.QtyZero {
			continue
		}
		if err := st.usage.TryAdd(st.ctx, v, st.mult.Mul(ast.QtyMany), e.Pos()); err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrT004, e.Pos(),
				"function literal captures a variable it may use more than allowed",
				diagnostics.AsError(err, diagnostics.ErrT004, e.Pos()))
		}
	}
	return out, nil
}

func (c *checker) inferPi(st state, e *ast.Expr, pi ast.Pi) (*ast.Expr, *diagnostics.Error) {
	_, args, ret, _, err := c.bindTelescope(st.erased(), pi.Args, pi.Ret, nil)
	if err != nil {
		return nil, err
	}
	return ast.TypedAt(e.Pos(), ast.Pi{Mutable: pi.Mutable, Args: args, Ret: ret}, piSort(ret)), nil
}

func (c *checker) inferSigma(st state, e *ast.Expr, sigma ast.Sigma) (*ast.Expr, *diagnostics.Error) {
	_, args, _, _, err := c.bindTelescope(st.erased(), sigma.Args, nil, nil)
	if err != nil {
		return nil, err
	}
	return ast.TypedAt(e.Pos(), ast.Sigma{Args: args}, typenameT()), nil
}

// bindTelescope checks the argument types of a binder in order, adding each
// argument to a new child of st.ctx before checking the next one. Anonymous
// arguments get a fresh variable so that the propositions they carry are
// visible to proof search. An argument that shadows a variable already in
// scope is renamed, together with everything that refers to it.
func (c *checker) bindTelescope(st state, args []ast.FuncArg, ret *ast.Expr, body *ast.Body) (state, []ast.FuncArg, *ast.Expr, *ast.Body, *diagnostics.Error) {
	st.ctx = st.ctx.Extend()
	tele := typesystem.Telescope{Args: args, Ret: ret, Body: body}
	out := make([]ast.FuncArg, 0, len(args))
	seen := make(map[string]token.Pos)
	for len(tele.Args) > 0 {
		arg := tele.Args[0]
		rest := tele.Rest(0)
		typ, err := c.checkType(st, arg.Type)
		if err != nil {
			return st, nil, nil, nil, err
		}
		var v ast.Var
		if arg.Var == nil {
			v = c.s.fresh("")
		} else {
			v = *arg.Var
			if prev, dup := seen[v.Name]; dup {
				return st, nil, nil, nil, diagnostics.Errorf(diagnostics.ErrT005, arg.Pos,
					"duplicate argument `%s`, first declared at %s", v.Name, prev)
			}
			seen[v.Name] = arg.Pos
			if _, shadows := st.ctx.Find(v); shadows {
				renamed := c.s.fresh(v.Name)
				rest = typesystem.RenameTelescope(v, renamed, rest)
				v = renamed
			}
		}
		st.ctx.TryAdd(v, symbols.Local{Origin: symbols.ArgOrigin, Qty: arg.Qty, Type: typ})
		checked := ast.FuncArg{Pos: arg.Pos, Qty: arg.Qty, Type: typ}
		if arg.Var != nil {
			checked.Var = &v
		}
		out = append(out, checked)
		tele = rest
	}
	var checkedRet *ast.Expr
	if tele.Ret != nil {
		var err *diagnostics.Error
		checkedRet, err = c.checkType(st, tele.Ret)
		if err != nil {
			return st, nil, nil, nil, err
		}
	}
	return st, out, checkedRet, tele.Body, nil
}
