package analyzer

import (
	"fmt"
	"sync"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/prelude"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
)

var (
	preludeOnce sync.Once
	preludeEnv  *symbols.Environment
	preludeErr  error
)

// Prelude returns the checked prelude. It is built once per process and
// must not be modified; sessions import it into their own environment.
func Prelude() (*symbols.Environment, error) {
	preludeOnce.Do(func() {
		preludeEnv, preludeErr = loadPrelude()
	})
	return preludeEnv, preludeErr
}

func loadPrelude() (*symbols.Environment, error) {
	p := parser.New(lexer.New(prelude.Source).Tokenize(), prelude.FileName)
	m := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parsing prelude: %w", errs[0])
	}
	s := newSession(symbols.NewEnvironment(), config.DefaultSettings(), nil)
	if _, errs := s.CheckModule(m); len(errs) > 0 {
		return nil, fmt.Errorf("checking prelude: %w", errs[0])
	}
	return s.Env, nil
}

func typenameT() *ast.Expr {
	return ast.Typed(ast.TypeName{}, ast.Kind{})
}

// builtinType returns a sorted type constant such as bool or u64_t.
func builtinType(v ast.Value) *ast.Expr {
	return ast.Typed(v, typenameT())
}

func boolT() *ast.Expr  { return builtinType(ast.Bool{}) }
func unitT() *ast.Expr  { return builtinType(ast.Unit{}) }
func u64T() *ast.Expr   { return builtinType(ast.IntType{Width: 64}) }
func scopeT() *ast.Expr { return builtinType(ast.ScopeT{}) }

// builtinSignature returns the type of the type constructors true_t,
// array_t and ref_t.
func builtinSignature(v ast.Value) *ast.Expr {
	arg := func(t *ast.Expr) ast.FuncArg {
		return ast.FuncArg{Qty: ast.QtyMany, Type: t}
	}
	var args []ast.FuncArg
	switch v.(type) {
	case ast.TrueT:
		args = []ast.FuncArg{arg(boolT())}
	case ast.ArrayT:
		args = []ast.FuncArg{arg(typenameT()), arg(u64T())}
	case ast.RefT:
		args = []ast.FuncArg{arg(typenameT()), arg(scopeT())}
	}
	return ast.Typed(ast.Pi{Args: args, Ret: typenameT()}, ast.Kind{})
}

func applyBuiltin(v ast.Value, args ...*ast.Expr) *ast.Expr {
	fn := ast.Typed(v, builtinSignature(v))
	return ast.Typed(ast.App{Func: fn, Args: args}, typenameT())
}

// trueT returns the sorted proposition true_t(cond).
func trueT(cond *ast.Expr) *ast.Expr {
	return applyBuiltin(ast.TrueT{}, cond)
}

func boolLit(v bool) *ast.Expr {
	return ast.Typed(ast.BoolLit{Value: v}, boolT())
}
