package search

import (
	"strings"
	"testing"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
)

func parse(t *testing.T, src string) *ast.Expr {
	t.Helper()
	p := parser.New(lexer.New(src).Tokenize(), "")
	e := p.ParseExpression()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse %q: %v", src, p.Errors())
	}
	return e
}

type fixture struct {
	t     *testing.T
	env   *symbols.Environment
	ctx   *symbols.Context
	usage *symbols.Usage
	anon  int
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, env: symbols.NewEnvironment(), ctx: symbols.NewContext(), usage: symbols.NewUsage()}
}

func (f *fixture) bind(name string, qty ast.Qty, typ string) {
	v := ast.Var{Name: name}
	if name == "" {
		f.anon++
		v.Idx = f.anon
	}
	if !f.ctx.TryAdd(v, symbols.Local{Qty: qty, Type: parse(f.t, typ)}) {
		f.t.Fatalf("cannot bind %s", name)
	}
}

func (f *fixture) axiom(name, sig string) {
	if err := f.env.TryAdd(ast.Global{Name: name}, symbols.Symbol{Kind: symbols.AxiomSymbol, Type: parse(f.t, sig)}); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) extern(name, sig string) {
	if err := f.env.TryAdd(ast.Global{Name: name}, symbols.Symbol{Kind: symbols.ExternSymbol, Type: parse(f.t, sig)}); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) search(s *Searcher, goal string, mult ast.Qty) (string, error) {
	found, err := s.Search(f.ctx, f.usage, parse(f.t, goal), mult)
	if err != nil {
		return "", err
	}
	return prettyprinter.Expr(found), nil
}

func TestSearchVar(t *testing.T) {
	f := newFixture(t)
	f.bind("b", ast.QtyMany, "bool")
	f.bind("x", ast.QtyOne, "i32_t")
	s := New(f.env)

	got, err := f.search(s, "i32_t", ast.QtyOne)
	if err != nil || got != "x" {
		t.Fatalf("expected x, got %q (%v)", got, err)
	}
	if f.usage.Count(ast.Var{Name: "x"}) != ast.QtyOne {
		t.Errorf("the found variable must be charged")
	}
	if _, err := f.search(s, "i32_t", ast.QtyOne); err == nil {
		t.Errorf("x has quantity 1 and was already used")
	}
	if got, err := f.search(s, "i32_t", ast.QtyZero); err != nil || got != "x" {
		t.Errorf("erased searches may still use x, got %q (%v)", got, err)
	}
}

func TestSearchTrueT(t *testing.T) {
	f := newFixture(t)
	f.bind("a", ast.QtyMany, "i32_t")
	f.bind("b", ast.QtyMany, "i32_t")
	f.bind("", ast.QtyZero, "true_t(a < b)")
	s := New(f.env)

	for _, goal := range []string{"true_t(true)", "true_t(1 < 2)", "true_t(a < b)", "true_t(not false)"} {
		if got, err := f.search(s, goal, ast.QtyZero); err != nil || got != "{}" {
			t.Errorf("%s: expected {}, got %q (%v)", goal, got, err)
		}
	}
	_, err := f.search(s, "true_t(b < a)", ast.QtyZero)
	if err == nil || !strings.Contains(err.Error(), "cannot prove `b < a`") {
		t.Errorf("expected a failure naming the proposition, got %v", err)
	}
}

func TestSearchTrivialValue(t *testing.T) {
	f := newFixture(t)
	s := New(f.env)
	tests := []struct{ goal, want string }{
		{"unit_t", "{}"},
		{"array_t(i32_t, 0)", "{}"},
		{"(unit_t, true_t(true))", "{{}, {}}"},
		{"(unit_t u, true_t(1 == 1))", "{{}, {}}"},
	}
	for _, tt := range tests {
		goal, want := tt.goal, tt.want
		if got, err := f.search(s, goal, ast.QtyOne); err != nil || got != want {
			t.Errorf("%s: expected %s, got %q (%v)", goal, want, got, err)
		}
	}
	if _, err := f.search(s, "array_t(i32_t, 1)", ast.QtyOne); err == nil {
		t.Errorf("a non-empty array has no trivial value")
	}
}

func TestSearchAppUsesLemmas(t *testing.T) {
	f := newFixture(t)
	f.axiom("not_to_false", "(bool a, 0 true_t(not a)) -> true_t(a == false)")
	f.bind("c", ast.QtyMany, "bool")
	f.bind("", ast.QtyZero, "true_t(not c)")
	s := New(f.env)

	got, err := f.search(s, "true_t(c == false)", ast.QtyZero)
	if err != nil {
		t.Fatal(err)
	}
	if got != "not_to_false(c, {})" {
		t.Errorf("unexpected proof %q", got)
	}
	if _, err := f.search(s, "true_t(c == false)", ast.QtyOne); err == nil {
		t.Errorf("axioms must not be used at runtime")
	}
}

func TestSearchAppSkipsMutableFunctions(t *testing.T) {
	f := newFixture(t)
	f.extern("make", "mutable () -> i32_t")
	s := New(f.env)
	if _, err := f.search(s, "i32_t", ast.QtyOne); err == nil {
		t.Errorf("mutable functions are not allowed here")
	}
	s.Mutable = true
	if got, err := f.search(s, "i32_t", ast.QtyOne); err != nil || got != "make()" {
		t.Errorf("expected make(), got %q (%v)", got, err)
	}
}

func TestAbsurdAxiomIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.axiom("anything", "(typename t) -> t")
	s := New(f.env)
	if _, err := f.search(s, "true_t(false)", ast.QtyZero); err == nil {
		t.Errorf("search must not use an axiom of the shape (typename t) -> t")
	}
}

func TestSearchIsBreadthFirst(t *testing.T) {
	f := newFixture(t)
	// Declared first, and applicable to every goal forever.
	f.axiom("dn", "(bool a, 0 true_t(not not a)) -> true_t(a)")
	f.axiom("imp", "(0 true_t(c)) -> true_t(d)")
	f.bind("c", ast.QtyMany, "bool")
	f.bind("d", ast.QtyMany, "bool")
	f.bind("", ast.QtyZero, "true_t(c)")
	s := New(f.env)
	s.MaxDepth = 1000
	s.MaxSteps = 500

	got, err := f.search(s, "true_t(d)", ast.QtyZero)
	if err != nil {
		t.Fatal(err)
	}
	if got != "imp({})" {
		t.Errorf("expected the shallow proof, got %q", got)
	}
}

func TestDivergentSearchFails(t *testing.T) {
	f := newFixture(t)
	f.axiom("dn", "(bool a, 0 true_t(not not a)) -> true_t(a)")
	f.bind("d", ast.QtyMany, "bool")
	for _, limits := range []struct{ depth, steps int }{{4, 100000}, {1000, 300}} {
		s := New(f.env)
		s.MaxDepth, s.MaxSteps = limits.depth, limits.steps
		if _, err := f.search(s, "true_t(d)", ast.QtyZero); err == nil {
			t.Errorf("depth %d, steps %d: nothing proves d", limits.depth, limits.steps)
		}
	}
}

func TestAllSharesUsage(t *testing.T) {
	f := newFixture(t)
	f.extern("pair", "(1 i32_t, 1 i32_t) -> bool")
	f.bind("x", ast.QtyOne, "i32_t")
	s := New(f.env)
	if _, err := f.search(s, "bool", ast.QtyOne); err == nil {
		t.Errorf("x cannot fill both arguments")
	}
	if f.usage.Count(ast.Var{Name: "x"}) != ast.QtyZero {
		t.Errorf("a failed search must not charge usage")
	}

	g := newFixture(t)
	g.extern("pair", "(1 i32_t, 1 i32_t) -> bool")
	g.bind("x", ast.QtyMany, "i32_t")
	if got, err := g.search(New(g.env), "bool", ast.QtyOne); err != nil || got != "pair(x, x)" {
		t.Errorf("expected pair(x, x), got %q (%v)", got, err)
	}
}

func TestNestedApplicationsShareUsage(t *testing.T) {
	f := newFixture(t)
	f.extern("mk", "(1 i32_t v) -> tag(v)")
	f.extern("pair", "(1 tag(x), 1 tag(x)) -> bool")
	f.bind("x", ast.QtyOne, "i32_t")
	if got, err := f.search(New(f.env), "bool", ast.QtyOne); err == nil {
		t.Errorf("x cannot be passed to mk twice, got %s", got)
	}
	if f.usage.Count(ast.Var{Name: "x"}) != ast.QtyZero {
		t.Errorf("a failed search must not charge usage")
	}

	g := newFixture(t)
	g.extern("mk", "(1 i32_t v) -> tag(v)")
	g.extern("pair", "(1 tag(x), 1 tag(x)) -> bool")
	g.bind("x", ast.QtyMany, "i32_t")
	if got, err := g.search(New(g.env), "bool", ast.QtyOne); err != nil || got != "pair(mk(x), mk(x))" {
		t.Errorf("expected pair(mk(x), mk(x)), got %q (%v)", got, err)
	}
}

func TestUnifiedArgumentsCountEveryOccurrence(t *testing.T) {
	f := newFixture(t)
	f.extern("mk", "(1 i32_t v) -> tag(v)")
	f.bind("x", ast.QtyOne, "i32_t")
	if got, err := f.search(New(f.env), "tag(x + x)", ast.QtyOne); err == nil {
		t.Errorf("x + x uses x twice, got %s", got)
	}
	if f.usage.Count(ast.Var{Name: "x"}) != ast.QtyZero {
		t.Errorf("a failed search must not charge usage")
	}
	if got, err := f.search(New(f.env), "tag(x)", ast.QtyOne); err != nil || got != "mk(x)" {
		t.Errorf("expected mk(x), got %q (%v)", got, err)
	}
	if f.usage.Count(ast.Var{Name: "x"}) != ast.QtyOne {
		t.Errorf("mk(x) must charge x once")
	}

	g := newFixture(t)
	g.extern("mk", "(1 i32_t v) -> tag(v)")
	g.bind("x", ast.QtyMany, "i32_t")
	if got, err := g.search(New(g.env), "tag(x + x)", ast.QtyOne); err != nil || got != "mk(x + x)" {
		t.Errorf("expected mk(x + x), got %q (%v)", got, err)
	}
}
