package parser

import (
	"math/big"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

func (p *Parser) parseExpression(precedence int) *ast.Expr {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.errorf(diagnostics.ErrP002, "expression too complex: recursion depth limit exceeded")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(diagnostics.ErrP002, "unexpected %s, expected an expression", describe(p.curToken))
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) parseNumber() *ast.Expr {
	val, ok := p.curToken.Literal.(*big.Int)
	if !ok {
		p.errorf(diagnostics.ErrP002, "invalid numeric literal %s", p.curToken.Lexeme)
		return nil
	}
	return ast.NewAt(p.curPos(), ast.NumLit{Value: new(big.Int).Set(val)})
}

// parseNegativeNumber handles `-` in prefix position, which is only valid
// directly in front of a numeric literal.
func (p *Parser) parseNegativeNumber() *ast.Expr {
	pos := p.curPos()
	if !p.peekTokenIs(token.NUMBER) {
		p.errorf(diagnostics.ErrP002, "unary minus is only allowed in front of a number")
		return nil
	}
	p.nextToken()
	val, ok := p.curToken.Literal.(*big.Int)
	if !ok {
		p.errorf(diagnostics.ErrP002, "invalid numeric literal %s", p.curToken.Lexeme)
		return nil
	}
	return ast.NewAt(pos, ast.NumLit{Value: new(big.Int).Neg(val)})
}

func (p *Parser) parseString() *ast.Expr {
	s, _ := p.curToken.Literal.(string)
	return ast.NewAt(p.curPos(), ast.StrLit{Value: s})
}

func (p *Parser) parseBoolean() *ast.Expr {
	return ast.NewAt(p.curPos(), ast.BoolLit{Value: p.curTokenIs(token.TRUE)})
}

func (p *Parser) parseIdentifier() *ast.Expr {
	return ast.NewAt(p.curPos(), ast.Var{Name: p.curToken.Lexeme})
}

func (p *Parser) parseBuiltinType() *ast.Expr {
	pos := p.curPos()
	switch p.curToken.Type {
	case token.TYPENAME:
		return ast.NewAt(pos, ast.TypeName{})
	case token.BOOL_T:
		return ast.NewAt(pos, ast.Bool{})
	case token.UNIT_T:
		return ast.NewAt(pos, ast.Unit{})
	case token.CSTR_T:
		return ast.NewAt(pos, ast.Cstr{})
	case token.TRUE_T:
		return ast.NewAt(pos, ast.TrueT{})
	case token.ARRAY_T:
		return ast.NewAt(pos, ast.ArrayT{})
	case token.REF_T:
		return ast.NewAt(pos, ast.RefT{})
	case token.SCOPE_T:
		return ast.NewAt(pos, ast.ScopeT{})
	case token.INT_T:
		if t, ok := ast.IntTypeByName(p.curToken.Lexeme); ok {
			return ast.NewAt(pos, t)
		}
	}
	p.errorf(diagnostics.ErrP002, "unknown builtin type %s", p.curToken.Lexeme)
	return nil
}

// parseAuto parses either the placeholder `auto` or a lambda `auto (args) -> ret { ... }`.
func (p *Parser) parseAuto() *ast.Expr {
	if !p.peekTokenIs(token.LPAREN) {
		return ast.NewAt(p.curPos(), ast.Auto{})
	}
	return p.parseLambda(p.curPos(), false)
}

func (p *Parser) parseLambda(pos token.Pos, mutable bool) *ast.Expr {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args, ok := p.parseFuncArgs()
	if !ok {
		return nil
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	ret := p.parseExpression(LOWEST)
	if ret == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return ast.NewAt(pos, ast.Abs{Mutable: mutable, Args: args, Ret: ret, Body: body})
}

// parseMutable parses `mutable auto (...)` lambdas and `mutable (...) -> t` function types.
func (p *Parser) parseMutable() *ast.Expr {
	pos := p.curPos()
	switch {
	case p.peekTokenIs(token.AUTO):
		p.nextToken()
		return p.parseLambda(pos, true)
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		e := p.parseParenOrBinders()
		if e == nil {
			return nil
		}
		pi, ok := e.Value.(ast.Pi)
		if !ok {
			p.errorf(diagnostics.ErrP002, "mutable must be followed by a function type")
			return nil
		}
		pi.Mutable = true
		return ast.NewAt(pos, pi)
	}
	p.peekError(token.AUTO)
	return nil
}

func (p *Parser) parseNot() *ast.Expr {
	pos := p.curPos()
	p.nextToken()
	operand := p.parseExpression(NOT)
	if operand == nil {
		return nil
	}
	return ast.NewAt(pos, ast.BoolNot{Expr: operand})
}

func (p *Parser) parseAddressOf() *ast.Expr {
	pos := p.curPos()
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return ast.NewAt(pos, ast.AddressOf{Expr: operand})
}

func (p *Parser) parseDeref() *ast.Expr {
	pos := p.curPos()
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return ast.NewAt(pos, ast.Deref{Expr: operand})
}

func (p *Parser) parseScopeOf() *ast.Expr {
	pos := p.curPos()
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	operand := p.parseExpression(LOWEST)
	if operand == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return ast.NewAt(pos, ast.ScopeOf{Expr: operand})
}

func (p *Parser) parseInitList() *ast.Expr {
	pos := p.curPos()
	values, ok := p.parseExpressionList(token.RBRACE)
	if !ok {
		return nil
	}
	return ast.NewAt(pos, ast.InitList{Values: values})
}

// parseExpressionList parses comma-separated expressions up to end.
// The current token is the opening delimiter.
func (p *Parser) parseExpressionList(end token.TokenType) ([]*ast.Expr, bool) {
	var list []*ast.Expr
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	p.nextToken()
	for {
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil, false
		}
		list = append(list, e)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

// parseParenOrBinders parses everything that starts with `(`: a function
// type when `->` follows the closing parenthesis, a parenthesized expression
// when there is a single argument with neither quantity nor name, and a
// Sigma type otherwise.
func (p *Parser) parseParenOrBinders() *ast.Expr {
	pos := p.curPos()
	args, explicit, ok := p.parseFuncArgsDetailed()
	if !ok {
		return nil
	}
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		ret := p.parseExpression(LOWEST)
		if ret == nil {
			return nil
		}
		return ast.NewAt(pos, ast.Pi{Args: args, Ret: ret})
	}
	if len(args) == 1 && args[0].Var == nil && !explicit[0] {
		return args[0].Type
	}
	return ast.NewAt(pos, ast.Sigma{Args: args})
}

// parseFuncArgs parses `(arg, ...)` with the current token on `(`.
func (p *Parser) parseFuncArgs() ([]ast.FuncArg, bool) {
	args, _, ok := p.parseFuncArgsDetailed()
	return args, ok
}

func (p *Parser) parseFuncArgsDetailed() ([]ast.FuncArg, []bool, bool) {
	var (
		args     []ast.FuncArg
		explicit []bool
	)
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args, explicit, true
	}
	p.nextToken()
	for {
		arg, hasQty, ok := p.parseFuncArg()
		if !ok {
			return nil, nil, false
		}
		args = append(args, arg)
		explicit = append(explicit, hasQty)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, nil, false
	}
	return args, explicit, true
}

// parseFuncArg parses `[0|1] type [name]`. The quantity defaults to many.
func (p *Parser) parseFuncArg() (ast.FuncArg, bool, bool) {
	arg := ast.FuncArg{Pos: p.curPos(), Qty: ast.QtyMany}
	hasQty := false
	if q, ok := p.quantity(); ok && canStartExpression(p.peekToken.Type) {
		arg.Qty = q
		hasQty = true
		p.nextToken()
	}
	arg.Type = p.parseExpression(LOWEST)
	if arg.Type == nil {
		return arg, hasQty, false
	}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		arg.Var = &ast.Var{Name: p.curToken.Lexeme}
	}
	return arg, hasQty, true
}

func (p *Parser) quantity() (ast.Qty, bool) {
	if !p.curTokenIs(token.NUMBER) {
		return 0, false
	}
	val, ok := p.curToken.Literal.(*big.Int)
	if !ok || !val.IsInt64() {
		return 0, false
	}
	switch val.Int64() {
	case 0:
		return ast.QtyZero, true
	case 1:
		return ast.QtyOne, true
	}
	return 0, false
}

func (p *Parser) parseBecause(left *ast.Expr) *ast.Expr {
	pos := p.curPos()
	p.nextToken()
	reason := p.parseExpression(BECAUSE)
	if reason == nil {
		return nil
	}
	return ast.NewAt(pos, ast.Because{Value: left, Reason: reason})
}

func (p *Parser) parseBoolBinary(left *ast.Expr) *ast.Expr {
	pos := p.curPos()
	op := ast.BoolOp(p.curToken.Type)
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return ast.NewAt(pos, ast.BoolBinary{Op: op, Left: left, Right: right})
}

func (p *Parser) parseRelation(left *ast.Expr) *ast.Expr {
	pos := p.curPos()
	op := ast.RelOp(p.curToken.Type)
	p.nextToken()
	right := p.parseExpression(RELATION)
	if right == nil {
		return nil
	}
	return ast.NewAt(pos, ast.Relation{Op: op, Left: left, Right: right})
}

func (p *Parser) parseArith(left *ast.Expr) *ast.Expr {
	pos := p.curPos()
	op := ast.ArithOp(p.curToken.Type)
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return ast.NewAt(pos, ast.Arith{Op: op, Left: left, Right: right})
}

func (p *Parser) parseCall(fn *ast.Expr) *ast.Expr {
	pos := fn.Pos()
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	return ast.NewAt(pos, ast.App{Func: fn, Args: args})
}

func (p *Parser) parseSubscript(object *ast.Expr) *ast.Expr {
	pos := p.curPos()
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil || !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return ast.NewAt(pos, ast.Subscript{Object: object, Index: index})
}

func (p *Parser) parseMember(object *ast.Expr) *ast.Expr {
	pos := p.curPos()
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return ast.NewAt(pos, ast.Member{Object: object, Field: p.curToken.Lexeme})
}
