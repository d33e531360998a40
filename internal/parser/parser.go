package parser

import (
	"fmt"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// MaxRecursionDepth bounds expression nesting so hostile input cannot blow the stack.
const MaxRecursionDepth = 500

const (
	_ int = iota
	LOWEST
	BECAUSE  // because
	OR       // or, xor
	AND      // and
	NOT      // not
	RELATION // == != < <= > >=
	SUM      // + -
	PRODUCT  // * / %
	PREFIX   // &x *x
	POSTFIX  // f(x) a[i] s.f
)

var precedences = map[token.TokenType]int{
	token.BECAUSE:  BECAUSE,
	token.OR:       OR,
	token.XOR:      OR,
	token.AND:      AND,
	token.EQ:       RELATION,
	token.NOT_EQ:   RELATION,
	token.LT:       RELATION,
	token.LTE:      RELATION,
	token.GT:       RELATION,
	token.GTE:      RELATION,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   POSTFIX,
	token.LBRACKET: POSTFIX,
	token.DOT:      POSTFIX,
}

type (
	prefixParseFn func() *ast.Expr
	infixParseFn  func(*ast.Expr) *ast.Expr
)

type Parser struct {
	tokens []token.Token
	pos    int
	file   string

	curToken  token.Token
	peekToken token.Token

	depth  int
	errors []*diagnostics.Error

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// New creates a parser over a token stream terminated by EOF.
func New(tokens []token.Token, file string) *Parser {
	p := &Parser{tokens: tokens, file: file}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.NUMBER:   p.parseNumber,
		token.MINUS:    p.parseNegativeNumber,
		token.STRING:   p.parseString,
		token.TRUE:     p.parseBoolean,
		token.FALSE:    p.parseBoolean,
		token.IDENT:    p.parseIdentifier,
		token.TYPENAME: p.parseBuiltinType,
		token.BOOL_T:   p.parseBuiltinType,
		token.UNIT_T:   p.parseBuiltinType,
		token.CSTR_T:   p.parseBuiltinType,
		token.INT_T:    p.parseBuiltinType,
		token.TRUE_T:   p.parseBuiltinType,
		token.ARRAY_T:  p.parseBuiltinType,
		token.REF_T:    p.parseBuiltinType,
		token.SCOPE_T:  p.parseBuiltinType,
		token.AUTO:     p.parseAuto,
		token.MUTABLE:  p.parseMutable,
		token.NOT:      p.parseNot,
		token.AMP:      p.parseAddressOf,
		token.ASTERISK: p.parseDeref,
		token.SCOPEOF:  p.parseScopeOf,
		token.LBRACE:   p.parseInitList,
		token.LPAREN:   p.parseParenOrBinders,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.BECAUSE:  p.parseBecause,
		token.OR:       p.parseBoolBinary,
		token.XOR:      p.parseBoolBinary,
		token.AND:      p.parseBoolBinary,
		token.EQ:       p.parseRelation,
		token.NOT_EQ:   p.parseRelation,
		token.LT:       p.parseRelation,
		token.LTE:      p.parseRelation,
		token.GT:       p.parseRelation,
		token.GTE:      p.parseRelation,
		token.PLUS:     p.parseArith,
		token.MINUS:    p.parseArith,
		token.ASTERISK: p.parseArith,
		token.SLASH:    p.parseArith,
		token.PERCENT:  p.parseArith,
		token.LPAREN:   p.parseCall,
		token.LBRACKET: p.parseSubscript,
		token.DOT:      p.parseMember,
	}

	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Type != token.EOF {
		p.tokens = append(p.tokens, token.Token{Type: token.EOF})
	}
	p.curToken = p.tokens[0]
	p.peekToken = p.at(1)
	return p
}

func (p *Parser) Errors() []*diagnostics.Error {
	return p.errors
}

func (p *Parser) at(i int) token.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	p.peekToken = p.at(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) curPos() token.Pos {
	pos := p.curToken.Pos()
	pos.File = p.file
	return pos
}

// expectPeek advances if the next token has type t, and records an error otherwise.
func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	pos := p.peekToken.Pos()
	pos.File = p.file
	p.errors = append(p.errors, diagnostics.Errorf(
		diagnostics.ErrP002, pos,
		"expected next token to be %s, got %s instead", t, describe(p.peekToken),
	))
}

func (p *Parser) errorf(code diagnostics.ErrorCode, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.Errorf(code, p.curPos(), format, args...))
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseModule parses a whole source file. Declarations that fail to parse
// are skipped so that later ones still get reported.
func (p *Parser) ParseModule() *ast.Module {
	module := &ast.Module{File: p.file}
	for !p.curTokenIs(token.EOF) {
		errCount := len(p.errors)
		decl := p.parseDecl()
		if decl != nil && len(p.errors) == errCount {
			module.Decls = append(module.Decls, decl)
			p.nextToken()
			continue
		}
		p.skipToDeclBoundary()
	}
	return module
}

// ParseExpression parses a standalone expression, as typed at the repl.
func (p *Parser) ParseExpression() *ast.Expr {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	if !p.peekTokenIs(token.EOF) {
		p.peekError(token.EOF)
		return nil
	}
	return expr
}

// skipToDeclBoundary advances to the next token that can start a declaration
// at brace depth zero.
func (p *Parser) skipToDeclBoundary() {
	depth := 0
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		p.nextToken()
		if depth == 0 && isDeclStart(p.curToken.Type) {
			return
		}
	}
}

func isDeclStart(t token.TokenType) bool {
	switch t {
	case token.STRUCT, token.AXIOM, token.EXTERN, token.AUTO, token.MUTABLE:
		return true
	}
	return false
}

// canStartExpression reports whether a token may begin an expression; used to
// tell a quantity annotation `0 t` apart from the literal `0`.
func canStartExpression(t token.TokenType) bool {
	switch t {
	case token.COMMA, token.SEMICOLON, token.RPAREN, token.RBRACE, token.RBRACKET, token.EOF,
		token.PLUS, token.SLASH, token.PERCENT, token.EQ, token.NOT_EQ, token.LT, token.LTE,
		token.GT, token.GTE, token.ARROW, token.DOT, token.ASSIGN, token.AND, token.OR,
		token.XOR, token.BECAUSE, token.ILLEGAL, token.ELSE, token.LBRACKET:
		return false
	case token.ASTERISK, token.MINUS:
		// `0 *p` and `0 -1` read as arithmetic.
		return false
	}
	return true
}
