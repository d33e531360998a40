package analyzer

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// infer assigns a sort to e without any expectation.
func (c *checker) infer(st state, e *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	if e == nil {
		return nil, diagnostics.NewError(diagnostics.ErrT008, token.Pos{}, "missing expression")
	}
	switch x := e.Value.(type) {
	case ast.TypeName:
		return e.WithSort(ast.Kind{}), nil
	case ast.Bool, ast.Unit, ast.Cstr, ast.IntType, ast.ScopeT:
		return e.WithSort(typenameT()), nil
	case ast.TrueT, ast.ArrayT, ast.RefT:
		return e.WithSort(builtinSignature(x)), nil
	case ast.Auto:
		return nil, noUniqueType(e, "placeholder")
	case ast.NumLit:
		return nil, noUniqueType(e, "numeric literal")
	case ast.InitList:
		return nil, noUniqueType(e, "initializer list")
	case ast.BoolLit:
		return e.WithSort(boolT()), nil
	case ast.StrLit:
		return e.WithSort(builtinType(ast.Cstr{})), nil
	case ast.BoolNot:
		return c.inferBoolNot(st, e, x)
	case ast.BoolBinary:
		return c.inferBoolBinary(st, e, x)
	case ast.Relation:
		return c.inferRelation(st, e, x)
	case ast.Arith:
		return c.inferArith(st, e, x, nil)
	case ast.Var:
		return c.inferVar(st, e, x)
	case ast.Global:
		sym, ok := c.s.Env.Find(x)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrT001, e.Pos(), "unknown name `%s`", x.Name)
		}
		return c.inferGlobal(st, e, x, sym)
	case ast.App:
		return c.inferApp(st, e, x)
	case ast.Abs:
		return c.inferAbs(st, e, x)
	case ast.Pi:
		return c.inferPi(st, e, x)
	case ast.Sigma:
		return c.inferSigma(st, e, x)
	case ast.Member:
		return c.inferMember(st, e, x)
	case ast.Subscript:
		return c.inferSubscript(st, e, x)
	case ast.Because:
		return c.checkBecause(st, e, x, nil)
	case ast.AddressOf:
		return c.inferAddressOf(st, e, x)
	case ast.Deref:
		return c.inferDeref(st, e, x)
	case ast.ScopeOf:
		return c.inferScopeOf(st, e, x)
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT008, e.Pos(), "unsupported expression %s", describe(e))
}

// check checks e against expected, which must already be checked itself.
func (c *checker) check(st state, e, expected *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	if e == nil {
		return nil, diagnostics.NewError(diagnostics.ErrT008, token.Pos{}, "missing expression")
	}
	switch x := e.Value.(type) {
	case ast.NumLit:
		return c.checkNumLit(e, x, expected)
	case ast.InitList:
		return c.checkInitList(st, e, x, expected)
	case ast.Auto:
		return c.checkAuto(st, e, expected)
	case ast.Because:
		return c.checkBecause(st, e, x, expected)
	case ast.Arith:
		if _, ok := c.normalize(expected).Value.(ast.IntType); ok {
			return c.inferArith(st, e, x, expected)
		}
	}
	out, err := c.infer(st, e)
	if err != nil {
		return nil, err
	}
	if err := c.expectType(out, expected); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *checker) inferVar(st state, e *ast.Expr, v ast.Var) (*ast.Expr, *diagnostics.Error) {
	if local, ok := st.ctx.Find(v); ok {
		if err := st.usage.TryAdd(st.ctx, v, st.mult, e.Pos()); err != nil {
			return nil, diagnostics.AsError(err, diagnostics.ErrT004, e.Pos())
		}
		return e.WithSort(local.Type), nil
	}
	if v.Idx == 0 {
		if g, sym, ok := c.s.Env.Lookup(v.Name); ok {
			return c.inferGlobal(st, e.WithValue(g), g, sym)
		}
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT001, e.Pos(), "unknown name `%s`", prettyprinter.Var(v))
}

func (c *checker) inferGlobal(st state, e *ast.Expr, g ast.Global, sym symbols.Symbol) (*ast.Expr, *diagnostics.Error) {
	if sym.IsType() {
		return e.WithSort(typenameT()), nil
	}
	if sym.Kind == symbols.AxiomSymbol && st.mult != ast.QtyZero {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, e.Pos(),
			"axiom `%s` can only be used in erased positions", g.Name)
	}
	return e.WithSort(sym.Type), nil
}
