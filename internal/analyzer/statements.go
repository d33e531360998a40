package analyzer

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/token"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
)

func isUnit(t *ast.Expr) bool {
	_, ok := t.Value.(ast.Unit)
	return ok
}

// checkFunctionBody checks the body of a function returning ret. Every path
// must end in a return or in a proven impossible, unless ret is unit_t.
func (c *checker) checkFunctionBody(st state, ret *ast.Expr, body *ast.Body, pos token.Pos) (*ast.Body, *diagnostics.Error) {
	if body == nil {
		body = &ast.Body{}
	}
	stmts, returns, err := c.checkStmts(st, ret, body.Stmts)
	if err != nil {
		return nil, err
	}
	if !returns && !isUnit(c.normalize(ret)) {
		return nil, diagnostics.Errorf(diagnostics.ErrT006, pos,
			"missing return statement in function returning %s", describe(ret))
	}
	return &ast.Body{Stmts: stmts}, nil
}

// checkStmts checks a statement list and reports whether every path
// through it returns.
func (c *checker) checkStmts(st state, ret *ast.Expr, stmts []ast.Stmt) ([]ast.Stmt, bool, *diagnostics.Error) {
	var out []ast.Stmt
	for i, s := range stmts {
		switch x := s.(type) {
		case ast.Return:
			checked, err := c.checkReturn(st, ret, x)
			if err != nil {
				return nil, false, err
			}
			if err := unreachable(stmts[i+1:]); err != nil {
				return nil, false, err
			}
			return append(out, checked), true, nil
		case ast.Impossible:
			checked, err := c.checkImpossible(st, x)
			if err != nil {
				return nil, false, err
			}
			if err := unreachable(stmts[i+1:]); err != nil {
				return nil, false, err
			}
			return append(out, checked), true, nil
		case ast.IfElse:
			checked, rest, returns, err := c.checkIf(st, ret, x, stmts[i+1:])
			if err != nil {
				return nil, false, err
			}
			out = append(out, checked)
			return append(out, rest...), returns, nil
		case ast.ExprStmt:
			checked, err := c.checkExprStmt(st, x)
			if err != nil {
				return nil, false, err
			}
			out = append(out, checked)
		default:
			return nil, false, diagnostics.Errorf(diagnostics.ErrT008, s.StmtPos(), "unsupported statement")
		}
	}
	return out, false, nil
}

func unreachable(rest []ast.Stmt) *diagnostics.Error {
	if len(rest) == 0 {
		return nil
	}
	return diagnostics.NewError(diagnostics.ErrT008, rest[0].StmtPos(), "unreachable statement")
}

func (c *checker) checkReturn(st state, ret *ast.Expr, x ast.Return) (ast.Stmt, *diagnostics.Error) {
	if x.Expr == nil {
		if !isUnit(c.normalize(ret)) {
			return nil, diagnostics.Errorf(diagnostics.ErrT002, x.Pos,
				"missing return value in function returning %s", describe(ret))
		}
		return x, nil
	}
	value, err := c.check(st, x.Expr, ret)
	if err != nil {
		return nil, err
	}
	return ast.Return{Pos: x.Pos, Expr: value}, nil
}

func (c *checker) checkExprStmt(st state, x ast.ExprStmt) (ast.Stmt, *diagnostics.Error) {
	if _, ok := x.Expr.Value.(ast.App); !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT008, x.Pos,
			"only function calls can be used as statements, got %s", describe(x.Expr))
	}
	call, err := c.infer(st, x.Expr)
	if err != nil {
		return nil, err
	}
	return ast.ExprStmt{Pos: x.Pos, Expr: call}, nil
}

// checkImpossible requires a proof of false, possibly helped by the type of
// an erased reason.
func (c *checker) checkImpossible(st state, x ast.Impossible) (ast.Stmt, *diagnostics.Error) {
	out := ast.Impossible{Pos: x.Pos}
	if x.Reason != nil {
		reason, err := c.infer(st.erased(), x.Reason)
		if err != nil {
			return nil, err
		}
		if prop := reason.Type(); prop != nil {
			st = c.assume(st, prop)
		}
		out.Reason = reason
	}
	if _, err := c.searcher().Search(st.ctx, st.usage, trueT(boolLit(false)), ast.QtyZero); err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrT007, x.Pos, "cannot prove that this statement is unreachable",
			diagnostics.AsError(err, diagnostics.ErrT007, x.Pos))
	}
	return out, nil
}

// branch returns the state of one side of an if-statement: cond is
// rewritten to its known value in every binding and added as a proposition.
func (c *checker) branch(st state, cond *ast.Expr, value bool) state {
	ctx := st.ctx.Rewrite(cond, boolLit(value))
	prop := cond
	if !value {
		prop = ast.TypedAt(cond.Pos(), ast.BoolNot{Expr: cond}, boolT())
	}
	ctx.TryAdd(c.s.fresh(""), symbols.Local{Origin: symbols.AssumptionOrigin, Qty: ast.QtyZero, Type: trueT(prop)})
	return state{ctx: ctx, usage: st.usage.Extend(), mult: st.mult}
}

// narrow rewrites the expected return type of a branch where cond is known.
func narrow(cond *ast.Expr, value bool, ret *ast.Expr) *ast.Expr {
	out, _ := typesystem.Replace(cond, boolLit(value), ret)
	return out
}

// checkIf checks an if-statement together with the statements following it.
// When exactly one branch returns, the rest of the block can only run after
// the other one, so it is checked in that branch's state. The usage of the
// two sides is merged taking the larger count of each variable.
func (c *checker) checkIf(st state, ret *ast.Expr, x ast.IfElse, rest []ast.Stmt) (ast.Stmt, []ast.Stmt, bool, *diagnostics.Error) {
	cond, err := c.check(st, x.Cond, boolT())
	if err != nil {
		return nil, nil, false, err
	}
	thenSt, thenRet := c.branch(st, cond, true), narrow(cond, true, ret)
	elseSt, elseRet := c.branch(st, cond, false), narrow(cond, false, ret)

	thenStmts, thenReturns, err := c.checkStmts(thenSt, thenRet, x.Then.Stmts)
	if err != nil {
		return nil, nil, false, err
	}
	out := ast.IfElse{Pos: x.Pos, Cond: cond, Then: &ast.Body{Stmts: thenStmts}}
	elseReturns := false
	if x.Else != nil {
		var elseStmts []ast.Stmt
		elseStmts, elseReturns, err = c.checkStmts(elseSt, elseRet, x.Else.Stmts)
		if err != nil {
			return nil, nil, false, err
		}
		out.Else = &ast.Body{Stmts: elseStmts}
	}

	var restOut []ast.Stmt
	returns := false
	switch {
	case thenReturns && elseReturns:
		if err := unreachable(rest); err != nil {
			return nil, nil, false, err
		}
		returns = true
	case thenReturns:
		restOut, returns, err = c.checkStmts(elseSt, elseRet, rest)
	case elseReturns:
		restOut, returns, err = c.checkStmts(thenSt, thenRet, rest)
	}
	if err != nil {
		return nil, nil, false, err
	}
	st.usage.Add(symbols.Merge(thenSt.usage, elseSt.usage, ast.Qty.Max))
	if !thenReturns && !elseReturns {
		restOut, returns, err = c.checkStmts(st, ret, rest)
		if err != nil {
			return nil, nil, false, err
		}
	}
	return out, restOut, returns, nil
}
