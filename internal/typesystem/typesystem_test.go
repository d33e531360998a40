package typesystem_test

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
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

// globals turns the named variables of e into globals of the current module.
func globals(e *ast.Expr, names ...string) *ast.Expr {
	s := typesystem.Subst{}
	for _, n := range names {
		s[ast.Var{Name: n}] = ast.New(ast.Global{Name: n})
	}
	return s.Apply(e)
}

type fakeResolver map[string]*ast.Expr

func (r fakeResolver) FuncDefinition(g ast.Global) (*ast.Expr, bool) {
	def, ok := r[g.Name]
	return def, ok
}

func TestAlphaEquivalentPiTypes(t *testing.T) {
	a := parse(t, "(typename t, t x) -> t")
	b := parse(t, "(typename u, u y) -> u")
	if err := typesystem.IsAlphaEquivalent(a, b); err != nil {
		t.Errorf("expected alpha-equivalence, got:\n%s", err)
	}
	c := parse(t, "(typename u, u y) -> t")
	if err := typesystem.IsAlphaEquivalent(a, c); err == nil {
		t.Errorf("a free t in the return type must not match the bound one")
	}
}

func TestAlphaEquivalenceIsAnEquivalence(t *testing.T) {
	terms := []string{
		"(typename t, t x) -> t",
		"(typename u, u y) -> u",
		"(typename a, a a2) -> a",
		"(typename t, t x) -> bool",
		"(i32_t x, true_t(x > 0)) -> i32_t",
		"(i32_t y, true_t(y > 0)) -> i32_t",
		"auto (i32_t x) -> i32_t { return x + 1; }",
		"auto (i32_t z) -> i32_t { return z + 1; }",
		"f(a, b) + 1",
	}
	exprs := make([]*ast.Expr, len(terms))
	for i, s := range terms {
		exprs[i] = parse(t, s)
	}
	for i := range exprs {
		if !typesystem.AlphaEquivalent(exprs[i], exprs[i]) {
			t.Errorf("not reflexive: %s", terms[i])
		}
		for j := range exprs {
			if typesystem.AlphaEquivalent(exprs[i], exprs[j]) != typesystem.AlphaEquivalent(exprs[j], exprs[i]) {
				t.Errorf("not symmetric: %s / %s", terms[i], terms[j])
			}
			for k := range exprs {
				if typesystem.AlphaEquivalent(exprs[i], exprs[j]) && typesystem.AlphaEquivalent(exprs[j], exprs[k]) && !typesystem.AlphaEquivalent(exprs[i], exprs[k]) {
					t.Errorf("not transitive: %s / %s / %s", terms[i], terms[j], terms[k])
				}
			}
		}
	}
	if !typesystem.AlphaEquivalent(exprs[4], exprs[5]) || !typesystem.AlphaEquivalent(exprs[6], exprs[7]) {
		t.Errorf("renamed binders must stay equivalent")
	}
	if typesystem.AlphaEquivalent(exprs[0], exprs[3]) {
		t.Errorf("different return types must not be equivalent")
	}
}

func TestAlphaAnonymousArguments(t *testing.T) {
	if err := typesystem.IsAlphaEquivalent(parse(t, "(bool) -> bool"), parse(t, "(bool a) -> bool")); err != nil {
		t.Errorf("an unused name must match an anonymous argument: %s", err)
	}
	if typesystem.AlphaEquivalent(parse(t, "(typename) -> t"), parse(t, "(typename t) -> t")) {
		t.Errorf("a used name must not match an anonymous argument")
	}
}

func TestAlphaBecauseIgnoresReason(t *testing.T) {
	if err := typesystem.IsAlphaEquivalent(parse(t, "x because p"), parse(t, "x because q")); err != nil {
		t.Errorf("reasons must be irrelevant: %s", err)
	}
	if typesystem.AlphaEquivalent(parse(t, "x because p"), parse(t, "y because p")) {
		t.Errorf("values must still be compared")
	}
}

func TestAlphaErrorIsNested(t *testing.T) {
	err := typesystem.IsAlphaEquivalent(parse(t, "(i32_t x) -> true_t(x < 1)"), parse(t, "(i32_t x) -> true_t(x < 2)"))
	if err == nil {
		t.Fatal("expected an error")
	}
	d := err.(interface{ Contains(string) bool })
	if !d.Contains("return types differ") || !d.Contains("`1` is not alpha-equivalent to `2`") {
		t.Errorf("unexpected error tree:\n%s", err)
	}
}

func TestSubstituteAvoidsCapture(t *testing.T) {
	target := parse(t, "(i32_t y) -> true_t(x < y)")
	got := typesystem.Substitute(ast.Var{Name: "x"}, parse(t, "y"), target)
	if s := prettyprinter.Expr(got); s != "(i32_t y:1) -> true_t(y < y:1)" {
		t.Errorf("unexpected result %q", s)
	}
}

func TestSubstituteStopsAtShadowingBinder(t *testing.T) {
	target := parse(t, "(i32_t x) -> true_t(x > 0)")
	got := typesystem.Substitute(ast.Var{Name: "x"}, parse(t, "1"), target)
	if s := prettyprinter.Expr(got); s != "(i32_t x) -> true_t(x > 0)" {
		t.Errorf("bound occurrences must not be replaced, got %q", s)
	}
	got = typesystem.Substitute(ast.Var{Name: "n"}, parse(t, "3"), parse(t, "(array_t(i32_t, n) a) -> true_t(n > 0)"))
	if s := prettyprinter.Expr(got); s != "(array_t(i32_t, 3) a) -> true_t(3 > 0)" {
		t.Errorf("free occurrences must be replaced, got %q", s)
	}
}

func TestSubstituteIsSimultaneous(t *testing.T) {
	s := typesystem.Subst{
		{Name: "a"}: parse(t, "b"),
		{Name: "b"}: parse(t, "a"),
	}
	if got := prettyprinter.Expr(s.Apply(parse(t, "a < b"))); got != "b < a" {
		t.Errorf("expected a simultaneous swap, got %q", got)
	}
}

func TestSubstitutionCommutesWithAlpha(t *testing.T) {
	a := parse(t, "(i32_t x) -> true_t(x < z)")
	b := parse(t, "(i32_t y) -> true_t(y < z)")
	for _, value := range []string{"x", "y", "x + y", "1"} {
		v := parse(t, value)
		sa := typesystem.Substitute(ast.Var{Name: "z"}, v, a)
		sb := typesystem.Substitute(ast.Var{Name: "z"}, v, b)
		if err := typesystem.IsAlphaEquivalent(sa, sb); err != nil {
			t.Errorf("z := %s: %s", value, err)
		}
	}
}

func TestOccursIn(t *testing.T) {
	e := parse(t, "(i32_t x) -> true_t(x > y)")
	x, y := ast.Var{Name: "x"}, ast.Var{Name: "y"}
	if typesystem.OccursIn(x, e, typesystem.Free) {
		t.Errorf("x is bound")
	}
	if !typesystem.OccursIn(x, e, typesystem.Anywhere) {
		t.Errorf("x occurs as a binder")
	}
	if !typesystem.OccursIn(y, e, typesystem.Free) {
		t.Errorf("y is free")
	}
}

func TestFreeVars(t *testing.T) {
	vars := typesystem.FreeVars(parse(t, "f(x, (i32_t y) -> true_t(y < z))"))
	if vars.Size() != 3 {
		t.Errorf("expected 3 free variables, got %v", vars.Slice())
	}
	for _, n := range []string{"f", "x", "z"} {
		if !vars.Contains(ast.Var{Name: n}) {
			t.Errorf("missing %s", n)
		}
	}
	if vars.Contains(ast.Var{Name: "y"}) {
		t.Errorf("y is bound")
	}
}

func TestRuntimeUsesCountsOccurrences(t *testing.T) {
	x, y, f := ast.Var{Name: "x"}, ast.Var{Name: "y"}, ast.Var{Name: "f"}
	e := parse(t, "f(x + x, y, (i32_t z) -> true_t(z < y))")
	want := map[ast.Var]ast.Qty{f: ast.QtyOne, x: ast.QtyMany, y: ast.QtyOne}
	if diff := cmp.Diff(want, typesystem.RuntimeUses(e, ast.QtyOne)); diff != "" {
		t.Errorf("uses mismatch (-want +got):\n%s", diff)
	}
	if got := typesystem.RuntimeUses(e, ast.QtyZero); len(got) != 0 {
		t.Errorf("erased expressions use nothing, got %v", got)
	}

	g := ast.Typed(ast.Var{Name: "g"}, parse(t, "(0 i32_t, 1 i32_t) -> bool"))
	app := ast.New(ast.App{Func: g, Args: []*ast.Expr{parse(t, "x"), parse(t, "x + y")}})
	want = map[ast.Var]ast.Qty{{Name: "g"}: ast.QtyOne, x: ast.QtyOne, y: ast.QtyOne}
	if diff := cmp.Diff(want, typesystem.RuntimeUses(app, ast.QtyOne)); diff != "" {
		t.Errorf("erased parameters must not count (-want +got):\n%s", diff)
	}
}

func TestBetaNormalize(t *testing.T) {
	e := parse(t, "auto (i32_t x) -> i32_t { return x + 1; }(5)")
	got, changed := typesystem.BetaNormalize(e)
	if !changed || prettyprinter.Expr(got) != "5 + 1" {
		t.Errorf("unexpected beta normal form %q", prettyprinter.Expr(got))
	}
	got, _ = typesystem.BetaDeltaNormalize(e, nil)
	if prettyprinter.Expr(got) != "6" {
		t.Errorf("unexpected beta-delta normal form %q", prettyprinter.Expr(got))
	}
}

func TestBetaLiteralConditions(t *testing.T) {
	e := parse(t, "auto (bool c) -> i32_t { if (c) return 1; return 2; }(false)")
	got, _ := typesystem.BetaNormalize(e)
	if prettyprinter.Expr(got) != "2" {
		t.Errorf("expected the else path, got %q", prettyprinter.Expr(got))
	}
}

func TestDeltaUnfoldsRecursiveDefinitions(t *testing.T) {
	fact := globals(parse(t, "auto (u32_t n) -> u32_t { if (n == 0) return 1; return n * fact(n - 1); }"), "fact")
	r := fakeResolver{"fact": fact}
	call := globals(parse(t, "fact(3)"), "fact")
	got, changed := typesystem.BetaDeltaNormalize(call, r)
	if !changed || prettyprinter.Expr(got) != "6" {
		t.Errorf("expected 6, got %q", prettyprinter.Expr(got))
	}
	bare := globals(parse(t, "fact"), "fact")
	if _, changed := typesystem.DeltaUnfold(bare, r); changed {
		t.Errorf("a bare reference must not be unfolded")
	}
}

func TestDeltaFoldsWithWidth(t *testing.T) {
	u8 := ast.New(ast.IntType{Width: 8})
	sum := ast.Typed(ast.Arith{
		Op:    ast.OpPlus,
		Left:  ast.Typed(ast.NumLit{Value: big.NewInt(255)}, u8),
		Right: ast.Typed(ast.NumLit{Value: big.NewInt(1)}, u8),
	}, u8)
	got, _ := typesystem.DeltaUnfold(sum, nil)
	if n, ok := got.Value.(ast.NumLit); !ok || n.Value.Sign() != 0 {
		t.Errorf("expected wrap-around to 0, got %s", prettyprinter.Expr(got))
	}
	if _, changed := typesystem.DeltaUnfold(parse(t, "1 / 0"), nil); changed {
		t.Errorf("division by zero must not fold")
	}
}

func TestBetaDeltaEquivalenceIsOrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"1 + 2", "3"},
		{"not true", "false"},
		{"true_t(2 < 3)", "true_t(true)"},
		{"x and true", "x"},
		{"auto (bool b) -> bool { return not b; }(false)", "true"},
	}
	for _, p := range pairs {
		x, y := parse(t, p[0]), parse(t, p[1])
		xy := typesystem.BetaDeltaEquivalent(x, y, nil)
		nx, _ := typesystem.BetaDeltaNormalize(x, nil)
		ny, _ := typesystem.BetaDeltaNormalize(y, nil)
		if !xy || typesystem.BetaDeltaEquivalent(nx, y, nil) != xy || typesystem.BetaDeltaEquivalent(x, ny, nil) != xy {
			t.Errorf("%s ~ %s: equivalence depends on normalization order", p[0], p[1])
		}
	}
}

func TestUnify(t *testing.T) {
	a := ast.Var{Name: "a"}
	pattern := parse(t, "true_t(a == false)")
	target := parse(t, "true_t((c and d) == false)")
	subst, err := typesystem.Unify(pattern, target, []ast.Var{a}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := prettyprinter.Expr(subst[a]); got != "c and d" {
		t.Errorf("a bound to %q", got)
	}
	if err := typesystem.IsAlphaEquivalent(subst.Apply(pattern), target); err != nil {
		t.Errorf("round trip failed: %s", err)
	}
}

func TestUnifyFailures(t *testing.T) {
	vars := []ast.Var{{Name: "a"}, {Name: "b"}}
	tests := []struct {
		pattern, target string
	}{
		{"a == a", "x == y"},
		{"f(a)", "f(x, y)"},
		{"a < b", "x > y"},
		{"(bool a) -> bool", "(bool x) -> bool"},
		{"c", "d"},
	}
	for _, tt := range tests {
		if _, err := typesystem.Unify(parse(t, tt.pattern), parse(t, tt.target), vars, nil); err == nil {
			t.Errorf("%s against %s: expected failure", tt.pattern, tt.target)
		}
	}
	if _, err := typesystem.Unify(parse(t, "a == a"), parse(t, "x == x"), vars, nil); err != nil {
		t.Errorf("consistent rebinding must succeed: %s", err)
	}
}

func TestUnifyChecksBindingTypes(t *testing.T) {
	a := ast.Var{Name: "a"}
	boolT := ast.New(ast.Bool{})
	i32 := ast.New(ast.IntType{Signed: true, Width: 32})
	pattern := ast.Typed(a, boolT)
	if _, err := typesystem.Unify(pattern, ast.Typed(ast.Var{Name: "x"}, boolT), []ast.Var{a}, nil); err != nil {
		t.Errorf("matching types must unify: %s", err)
	}
	if _, err := typesystem.Unify(pattern, ast.Typed(ast.Var{Name: "x"}, i32), []ast.Var{a}, nil); err == nil {
		t.Errorf("mismatching types must not unify")
	}
}
