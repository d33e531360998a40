package parser

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// parseDecl parses one top-level declaration. On success the current token
// is the last token of the declaration.
func (p *Parser) parseDecl() ast.Decl {
	pos := p.curPos()
	mutable := false
	if p.curTokenIs(token.MUTABLE) {
		mutable = true
		p.nextToken()
	}
	switch p.curToken.Type {
	case token.STRUCT:
		if mutable {
			p.errorf(diagnostics.ErrP003, "struct definitions cannot be mutable")
			return nil
		}
		return p.parseStructDef(pos)
	case token.AXIOM:
		if mutable {
			p.errorf(diagnostics.ErrP003, "axioms cannot be mutable")
			return nil
		}
		name, sig := p.parseNamedSignature(false)
		if sig == nil || !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return ast.Axiom{Pos: pos, Name: name, Sig: sig}
	case token.EXTERN:
		name, sig := p.parseNamedSignature(mutable)
		if sig == nil || !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return ast.Extern{Pos: pos, Name: name, Sig: sig}
	case token.AUTO:
		return p.parseFunction(pos, mutable)
	}
	p.errorf(diagnostics.ErrP003, "expected a declaration, got %s", describe(p.curToken))
	return nil
}

// parseNamedSignature parses `name (args) -> ret` after a declaration keyword.
func (p *Parser) parseNamedSignature(mutable bool) (string, *ast.Expr) {
	if !p.expectPeek(token.IDENT) {
		return "", nil
	}
	name := p.curToken.Lexeme
	if !p.expectPeek(token.LPAREN) {
		return name, nil
	}
	sigPos := p.curPos()
	args, ok := p.parseFuncArgs()
	if !ok || !p.expectPeek(token.ARROW) {
		return name, nil
	}
	p.nextToken()
	ret := p.parseExpression(LOWEST)
	if ret == nil {
		return name, nil
	}
	return name, ast.NewAt(sigPos, ast.Pi{Mutable: mutable, Args: args, Ret: ret})
}

// parseFunction parses a function declaration or definition.
func (p *Parser) parseFunction(pos token.Pos, mutable bool) ast.Decl {
	name, sig := p.parseNamedSignature(mutable)
	if sig == nil {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return ast.FuncDecl{Pos: pos, Name: name, Sig: sig}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	pi := sig.Value.(ast.Pi)
	abs := ast.Abs{Mutable: pi.Mutable, Args: pi.Args, Ret: pi.Ret, Body: body}
	return ast.FuncDef{Pos: pos, Name: name, Value: ast.NewAt(sig.Pos(), abs)}
}

// parseStructDef parses `struct Name { type field; ... };`.
func (p *Parser) parseStructDef(pos token.Pos) ast.Decl {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	def := ast.StructDef{Pos: pos, Name: p.curToken.Lexeme}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP003, "unterminated struct %s", def.Name)
			return nil
		}
		field, _, ok := p.parseFuncArg()
		if !ok {
			return nil
		}
		if field.Var == nil {
			p.errorf(diagnostics.ErrP003, "struct field must have a name")
			return nil
		}
		def.Fields = append(def.Fields, field)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		p.nextToken()
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return def
}
