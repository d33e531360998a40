package analyzer

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

func topLevel(mult ast.Qty) state {
	return state{ctx: symbols.NewContext(), usage: symbols.NewUsage(), mult: mult}
}

func (c *checker) checkDecl(d ast.Decl) (ast.Decl, *diagnostics.Error) {
	switch x := d.(type) {
	case ast.StructDef:
		return c.checkStruct(x)
	case ast.Axiom:
		sig, err := c.declare(x.Name, x.Pos, x.Sig, symbols.AxiomSymbol)
		if err != nil {
			return nil, err
		}
		return ast.Axiom{Pos: x.Pos, Name: x.Name, Sig: sig}, nil
	case ast.Extern:
		sig, err := c.declare(x.Name, x.Pos, x.Sig, symbols.ExternSymbol)
		if err != nil {
			return nil, err
		}
		return ast.Extern{Pos: x.Pos, Name: x.Name, Sig: sig}, nil
	case ast.FuncDecl:
		sig, err := c.declare(x.Name, x.Pos, x.Sig, symbols.FuncDeclSymbol)
		if err != nil {
			return nil, err
		}
		return ast.FuncDecl{Pos: x.Pos, Name: x.Name, Sig: sig}, nil
	case ast.FuncDef:
		return c.checkFuncDef(x)
	}
	return nil, diagnostics.NewError(diagnostics.ErrT008, d.DeclPos(), "unsupported declaration")
}

// declare checks the signature of a declaration without a body and adds it
// to the environment.
func (c *checker) declare(name string, pos token.Pos, sig *ast.Expr, kind symbols.SymbolKind) (*ast.Expr, *diagnostics.Error) {
	if _, ok := sig.Value.(ast.Pi); !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT008, pos, "signature of `%s` must be a function type", name)
	}
	checked, err := c.infer(topLevel(ast.QtyZero), sig)
	if err != nil {
		return nil, err
	}
	sym := symbols.Symbol{Kind: kind, Pos: pos, Type: checked}
	if err := c.s.Env.TryAdd(ast.Global{Name: name}, sym); err != nil {
		return nil, diagnostics.AsError(err, diagnostics.ErrT005, pos)
	}
	return checked, nil
}

// checkStruct registers the struct as an incomplete type first, so that
// its fields may mention it, and completes it once the fields are checked.
func (c *checker) checkStruct(x ast.StructDef) (ast.Decl, *diagnostics.Error) {
	g := ast.Global{Name: x.Name}
	incomplete := symbols.Symbol{Kind: symbols.IncompleteTypeSymbol, Pos: x.Pos, Type: typenameT()}
	if err := c.s.Env.TryAdd(g, incomplete); err != nil {
		return nil, diagnostics.AsError(err, diagnostics.ErrT005, x.Pos)
	}
	_, fields, _, _, err := c.bindTelescope(topLevel(ast.QtyZero), x.Fields, nil, nil)
	if err != nil {
		return nil, diagnostics.Wrap(err.Code, x.Pos, "invalid definition of struct `"+x.Name+"`", err)
	}
	sym := symbols.Symbol{Kind: symbols.StructSymbol, Pos: x.Pos, Type: typenameT(), Fields: fields}
	if err := c.s.Env.TryAdd(g, sym); err != nil {
		return nil, diagnostics.AsError(err, diagnostics.ErrT005, x.Pos)
	}
	return ast.StructDef{Pos: x.Pos, Name: x.Name, Fields: fields}, nil
}

// checkFuncDef adds the signature to the environment before checking the
// body, so that the function can call itself.
func (c *checker) checkFuncDef(x ast.FuncDef) (ast.Decl, *diagnostics.Error) {
	abs, ok := x.Value.Value.(ast.Abs)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT008, x.Pos, "definition of `%s` must be a function", x.Name)
	}
	g := ast.Global{Name: x.Name}
	c.mutable = abs.Mutable
	c.self = &g

	st, args, ret, body, err := c.bindTelescope(topLevel(ast.QtyOne), abs.Args, abs.Ret, abs.Body)
	if err != nil {
		return nil, err
	}
	sig := ast.TypedAt(x.Value.Pos(), ast.Pi{Mutable: abs.Mutable, Args: args, Ret: ret}, piSort(ret))
	if err := c.s.Env.TryAdd(g, symbols.Symbol{Kind: symbols.FuncDeclSymbol, Pos: x.Pos, Type: sig}); err != nil {
		return nil, diagnostics.AsError(err, diagnostics.ErrT005, x.Pos)
	}
	body, err = c.checkFunctionBody(st, ret, body, x.Pos)
	if err != nil {
		return nil, err
	}
	def := ast.TypedAt(x.Value.Pos(), ast.Abs{Mutable: abs.Mutable, Args: args, Ret: ret, Body: body}, sig)
	sym := symbols.Symbol{Kind: symbols.FuncDefSymbol, Pos: x.Pos, Type: sig, Def: def}
	if err := c.s.Env.TryAdd(g, sym); err != nil {
		return nil, diagnostics.AsError(err, diagnostics.ErrT005, x.Pos)
	}
	return ast.FuncDef{Pos: x.Pos, Name: x.Name, Value: def}, nil
}
