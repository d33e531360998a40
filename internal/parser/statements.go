package parser

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// parseBlock parses `{ stmt* }` with the current token on `{`.
// On success the current token is the closing `}`.
func (p *Parser) parseBlock() *ast.Body {
	body := &ast.Body{}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP002, "unterminated block, expected }")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		body.Stmts = append(body.Stmts, stmt)
		p.nextToken()
	}
	return body
}

// parseBranch parses the body of an if or else: either a block or a single statement.
func (p *Parser) parseBranch() *ast.Body {
	if p.curTokenIs(token.LBRACE) {
		return p.parseBlock()
	}
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	return &ast.Body{Stmts: []ast.Stmt{stmt}}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIfElse()
	case token.IMPOSSIBLE:
		return p.parseImpossible()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseReturn() ast.Stmt {
	stmt := ast.Return{Pos: p.curPos()}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Expr = p.parseExpression(LOWEST)
	if stmt.Expr == nil || !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfElse() ast.Stmt {
	stmt := ast.IfElse{Pos: p.curPos()}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Then = p.parseBranch()
	if stmt.Then == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Else = p.parseBranch()
		if stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseImpossible() ast.Stmt {
	stmt := ast.Impossible{Pos: p.curPos()}
	if p.peekTokenIs(token.BECAUSE) {
		p.nextToken()
		p.nextToken()
		stmt.Reason = p.parseExpression(LOWEST)
		if stmt.Reason == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	stmt := ast.ExprStmt{Pos: p.curPos()}
	stmt.Expr = p.parseExpression(LOWEST)
	if stmt.Expr == nil || !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}
