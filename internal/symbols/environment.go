package symbols

import (
	"fmt"
	"iter"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/scope"
	"github.com/raffopazzo/depc-sub002/internal/token"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
)

type SymbolKind int

const (
	IncompleteTypeSymbol SymbolKind = iota // struct whose fields are still being checked
	StructSymbol
	AxiomSymbol
	ExternSymbol
	FuncDeclSymbol
	FuncDefSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case IncompleteTypeSymbol:
		return "incomplete type"
	case StructSymbol:
		return "struct"
	case AxiomSymbol:
		return "axiom"
	case ExternSymbol:
		return "extern function"
	case FuncDeclSymbol:
		return "function declaration"
	case FuncDefSymbol:
		return "function definition"
	}
	return "symbol"
}

type Symbol struct {
	Kind SymbolKind
	Pos  token.Pos
	// Type is the checked Pi-type of axioms and functions, and `typename` for structs.
	Type *ast.Expr
	// Fields are the checked fields of a struct.
	Fields []ast.FuncArg
	// Def is the checked abstraction of a function definition.
	Def *ast.Expr
}

// IsType reports whether the symbol names a type.
func (s Symbol) IsType() bool {
	return s.Kind == IncompleteTypeSymbol || s.Kind == StructSymbol
}

// IsCallable reports whether the symbol can be applied to arguments.
func (s Symbol) IsCallable() bool {
	switch s.Kind {
	case AxiomSymbol, ExternSymbol, FuncDeclSymbol, FuncDefSymbol:
		return true
	}
	return false
}

// Pi returns the signature of a callable symbol.
func (s Symbol) Pi() (ast.Pi, bool) {
	if s.Type == nil {
		return ast.Pi{}, false
	}
	pi, ok := s.Type.Value.(ast.Pi)
	return pi, ok
}

// Environment maps globals to their definitions. It implements
// typesystem.Resolver so that reduction can unfold function definitions.
type Environment struct {
	scope *scope.Map[ast.Global, Symbol]
}

func NewEnvironment() *Environment {
	return &Environment{scope: scope.New[ast.Global, Symbol]()}
}

// Extend returns a child environment; additions to it are not visible to the receiver.
func (e *Environment) Extend() *Environment {
	return &Environment{scope: e.scope.Extend()}
}

func (e *Environment) Find(g ast.Global) (Symbol, bool) {
	return e.scope.Find(g)
}

// Lookup resolves an unqualified name: symbols of the current module take
// precedence over those imported from the prelude.
func (e *Environment) Lookup(name string) (ast.Global, Symbol, bool) {
	local := ast.Global{Name: name}
	if sym, ok := e.scope.Find(local); ok {
		return local, sym, true
	}
	prelude := ast.Global{Imported: true, Name: name}
	if sym, ok := e.scope.Find(prelude); ok {
		return prelude, sym, true
	}
	return ast.Global{}, Symbol{}, false
}

// Entries yields the visible symbols in declaration order.
func (e *Environment) Entries() iter.Seq2[ast.Global, Symbol] {
	return e.scope.Ordered()
}

// FuncDefinition implements typesystem.Resolver.
func (e *Environment) FuncDefinition(g ast.Global) (*ast.Expr, bool) {
	sym, ok := e.scope.Find(g)
	if !ok || sym.Kind != FuncDefSymbol || sym.Def == nil {
		return nil, false
	}
	return sym.Def, true
}

// TryAdd adds sym under g at the current level. A struct may complete an
// incomplete type of the same name, and a function definition may complete
// a declaration with an alpha-equivalent signature; any other collision is
// a redefinition.
func (e *Environment) TryAdd(g ast.Global, sym Symbol) error {
	prev, exists := e.scope.FindLocal(g)
	if !exists {
		e.scope.TryEmplace(g, sym)
		return nil
	}
	switch {
	case prev.Kind == IncompleteTypeSymbol && sym.Kind == StructSymbol:
		e.scope.Replace(g, sym)
		return nil
	case prev.Kind == FuncDeclSymbol && (sym.Kind == FuncDefSymbol || sym.Kind == FuncDeclSymbol):
		if err := typesystem.IsAlphaEquivalent(prev.Type, sym.Type); err != nil {
			return diagnostics.Errorf(diagnostics.ErrT005, sym.Pos,
				"`%s` does not match its declaration at %s", g.Name, prev.Pos,
			).WithReason(diagnostics.AsError(err, diagnostics.ErrE001, sym.Pos))
		}
		if sym.Kind == FuncDefSymbol {
			e.scope.Replace(g, sym)
		}
		return nil
	}
	return diagnostics.Errorf(diagnostics.ErrT005, sym.Pos,
		"redefinition of `%s`, previously defined as %s at %s", g.Name, prev.Kind, prev.Pos)
}

// Import adds every symbol defined by other's own module under module. The
// import is atomic: if any qualified name is already taken nothing is added.
func (e *Environment) Import(module string, other *Environment) error {
	type entry struct {
		g   ast.Global
		sym Symbol
	}
	var entries []entry
	for g, sym := range other.Entries() {
		if g.Imported {
			continue
		}
		q := ast.Global{Module: module, Imported: true, Name: g.Name}
		if _, taken := e.scope.FindLocal(q); taken {
			return diagnostics.NewError(diagnostics.ErrT005, sym.Pos,
				fmt.Sprintf("cannot import `%s` from module `%s`: name already taken", g.Name, module))
		}
		entries = append(entries, entry{g: q, sym: qualifySymbol(sym, module)})
	}
	for _, en := range entries {
		e.scope.TryEmplace(en.g, en.sym)
	}
	return nil
}

func qualifySymbol(sym Symbol, module string) Symbol {
	sym.Type = typesystem.QualifyGlobals(sym.Type, module)
	sym.Def = typesystem.QualifyGlobals(sym.Def, module)
	if sym.Fields != nil {
		sym.Fields = typesystem.QualifyTelescope(typesystem.Telescope{Args: sym.Fields}, module).Args
	}
	return sym
}
