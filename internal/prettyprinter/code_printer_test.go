package prettyprinter_test

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/prelude"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	p := parser.New(lexer.New(src).Tokenize(), "test.depc")
	m := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %v\nsource:\n%s", errs[0], src)
	}
	return m
}

func TestModuleRoundTrip(t *testing.T) {
	sources := []string{
		prelude.Source,
		`struct vec { u64_t size; array_t(i32_t, size) data; };
auto get(vec v, u64_t i, 0 true_t(i < v.size) p) -> i32_t {
    return v.data[i] because p;
}
mutable extern tick() -> unit_t;
mutable auto run(1 i32_t x) -> unit_t {
    if (x > 0) {
        tick();
    } else {
        impossible;
    }
}
auto f(i32_t a, i32_t b) -> i32_t {
    return (a - (b - 1)) * -2 / (auto (i32_t y) -> i32_t { return y; })(a);
}
auto r(i32_t x) -> ref_t(i32_t, scopeof(x)) { return &x; }
`,
	}
	for _, src := range sources {
		first := prettyprinter.Module(parse(t, src))
		second := prettyprinter.Module(parse(t, first))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("printing is not stable (-first +second):\n%s", diff)
		}
	}
}

func TestExprParentheses(t *testing.T) {
	lit := func(n int64) *ast.Expr { return ast.New(ast.NumLit{Value: big.NewInt(n)}) }
	v := func(name string) *ast.Expr { return ast.New(ast.Var{Name: name}) }
	arith := func(op ast.ArithOp, l, r *ast.Expr) *ast.Expr { return ast.New(ast.Arith{Op: op, Left: l, Right: r}) }

	tests := []struct {
		expr *ast.Expr
		want string
	}{
		{arith(ast.OpMinus, arith(ast.OpMinus, v("a"), v("b")), v("c")), "a - b - c"},
		{arith(ast.OpMinus, v("a"), arith(ast.OpMinus, v("b"), v("c"))), "a - (b - c)"},
		{arith(ast.OpMult, arith(ast.OpPlus, v("a"), lit(1)), v("b")), "(a + 1) * b"},
		{ast.New(ast.BoolNot{Expr: ast.New(ast.BoolBinary{Op: ast.OpAnd, Left: v("p"), Right: v("q")})}), "not (p and q)"},
		{ast.New(ast.Var{Name: "x", Idx: 3}), "x:3"},
		{ast.New(ast.Var{}), "_"},
		{ast.New(ast.Global{Module: "m", Imported: true, Name: "f"}), "m::f"},
		{ast.New(ast.IntType{Signed: false, Width: 64}), "u64_t"},
	}
	for _, tt := range tests {
		if got := prettyprinter.Expr(tt.expr); got != tt.want {
			t.Errorf("Expr() = %q, want %q", got, tt.want)
		}
	}
}

func TestSort(t *testing.T) {
	if got := prettyprinter.Sort(ast.Kind{}); got != "Kind" {
		t.Errorf("Sort(Kind) = %q", got)
	}
	if got := prettyprinter.Sort(ast.New(ast.Bool{})); got != "bool" {
		t.Errorf("Sort(bool) = %q", got)
	}
}
