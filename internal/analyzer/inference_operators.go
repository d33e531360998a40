package analyzer

import (
	"math/big"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
)

func (c *checker) inferBoolNot(st state, e *ast.Expr, x ast.BoolNot) (*ast.Expr, *diagnostics.Error) {
	operand, err := c.check(st, x.Expr, boolT())
	if err != nil {
		return nil, err
	}
	return ast.TypedAt(e.Pos(), ast.BoolNot{Expr: operand}, boolT()), nil
}

func (c *checker) inferBoolBinary(st state, e *ast.Expr, x ast.BoolBinary) (*ast.Expr, *diagnostics.Error) {
	left, err := c.check(st, x.Left, boolT())
	if err != nil {
		return nil, err
	}
	right, err := c.check(st, x.Right, boolT())
	if err != nil {
		return nil, err
	}
	return ast.TypedAt(e.Pos(), ast.BoolBinary{Op: x.Op, Left: left, Right: right}, boolT()), nil
}

// needsExpectedType reports whether v can only be checked, never inferred.
func needsExpectedType(v ast.Value) bool {
	switch v.(type) {
	case ast.NumLit, ast.InitList, ast.Auto:
		return true
	}
	return false
}

// inferOperands infers one operand and checks the other against its type.
// The right operand drives when the left one is a bare literal.
func (c *checker) inferOperands(st state, l, r *ast.Expr) (*ast.Expr, *ast.Expr, *diagnostics.Error) {
	if needsExpectedType(l.Value) && !needsExpectedType(r.Value) {
		right, err := c.infer(st, r)
		if err != nil {
			return nil, nil, err
		}
		left, err := c.check(st, l, right.Type())
		if err != nil {
			return nil, nil, err
		}
		return left, right, nil
	}
	left, err := c.infer(st, l)
	if err != nil {
		return nil, nil, err
	}
	right, err := c.check(st, r, left.Type())
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (c *checker) inferRelation(st state, e *ast.Expr, x ast.Relation) (*ast.Expr, *diagnostics.Error) {
	left, right, err := c.inferOperands(st, x.Left, x.Right)
	if err != nil {
		return nil, err
	}
	operandType := left.Type()
	switch c.normalize(operandType).Value.(type) {
	case ast.IntType:
	case ast.Bool:
		if x.Op != ast.OpEq && x.Op != ast.OpNeq {
			return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
				"operator `%s` is not defined for %s", x.Op, describe(operandType))
		}
	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"operator `%s` is not defined for %s", x.Op, describe(operandType))
	}
	return ast.TypedAt(e.Pos(), ast.Relation{Op: x.Op, Left: left, Right: right}, boolT()), nil
}

// inferArith checks an arithmetic expression. With a non-nil expected
// integer type both operands are checked against it; otherwise the type of
// one operand is inferred. Division and remainder need a proof that the
// result is defined.
func (c *checker) inferArith(st state, e *ast.Expr, x ast.Arith, expected *ast.Expr) (*ast.Expr, *diagnostics.Error) {
	var left, right *ast.Expr
	var err *diagnostics.Error
	if expected != nil {
		if left, err = c.check(st, x.Left, expected); err != nil {
			return nil, err
		}
		if right, err = c.check(st, x.Right, expected); err != nil {
			return nil, err
		}
	} else if left, right, err = c.inferOperands(st, x.Left, x.Right); err != nil {
		return nil, err
	}
	typ := left.Type()
	intType, ok := c.normalize(typ).Value.(ast.IntType)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, e.Pos(),
			"arithmetic operator `%s` is not defined for %s", x.Op, describe(typ))
	}
	if x.Op == ast.OpDiv || x.Op == ast.OpMod {
		if err := c.proveDivision(st, x.Op, left, right, typ, intType); err != nil {
			return nil, err
		}
	}
	return ast.TypedAt(e.Pos(), ast.Arith{Op: x.Op, Left: left, Right: right}, typ), nil
}

// proveDivision requires `b != 0` and, for signed types, that the only
// overflowing division `MIN / -1` cannot happen.
func (c *checker) proveDivision(st state, op ast.ArithOp, a, b, typ *ast.Expr, t ast.IntType) *diagnostics.Error {
	lit := func(v *big.Int) *ast.Expr {
		return ast.TypedAt(b.Pos(), ast.NumLit{Value: v}, typ)
	}
	rel := func(op ast.RelOp, l, r *ast.Expr) *ast.Expr {
		return ast.TypedAt(b.Pos(), ast.Relation{Op: op, Left: l, Right: r}, boolT())
	}
	nonZero := rel(ast.OpNeq, b, lit(big.NewInt(0)))
	if err := c.prove(st, nonZero, "operator `%s` with divisor %s", op, describe(b)); err != nil {
		return err
	}
	if !t.Signed {
		return nil
	}
	overflow := ast.TypedAt(b.Pos(), ast.BoolBinary{
		Op:    ast.OpAnd,
		Left:  rel(ast.OpEq, a, lit(t.Min())),
		Right: rel(ast.OpEq, b, lit(big.NewInt(-1))),
	}, boolT())
	noOverflow := ast.TypedAt(b.Pos(), ast.BoolNot{Expr: overflow}, boolT())
	return c.prove(st, noOverflow, "operator `%s` on signed %s", op, describe(typ))
}
