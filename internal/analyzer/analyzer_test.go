package analyzer

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
)

// TestFixtures checks every archive under testdata. An archive holds:
//
//	module.depc  the module to check
//	errors       optional, one expected error code per line
//	infer        optional, lines of the form `expr => sort`, inferred after the module
func TestFixtures(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no fixtures found")
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			sections := map[string]string{}
			for _, f := range ar.Files {
				sections[f.Name] = string(f.Data)
			}
			src, ok := sections["module.depc"]
			if !ok {
				t.Fatalf("%s has no module.depc", file)
			}

			s := newTestSession(t)
			_, errs := s.CheckModule(parseModule(t, src))

			var gotCodes, wantCodes []string
			for _, e := range errs {
				gotCodes = append(gotCodes, string(e.Code))
			}
			for _, line := range nonEmptyLines(sections["errors"]) {
				wantCodes = append(wantCodes, line)
			}
			if diff := cmp.Diff(wantCodes, gotCodes); diff != "" {
				for _, e := range errs {
					t.Log(e.Error())
				}
				t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
			}

			for _, line := range nonEmptyLines(sections["infer"]) {
				expr, want, ok := strings.Cut(line, "=>")
				if !ok {
					t.Fatalf("malformed infer line %q", line)
				}
				e := parseExpr(t, strings.TrimSpace(expr))
				got, err := s.Infer(symbols.NewContext(), symbols.NewUsage(), e, ast.QtyOne)
				if err != nil {
					t.Errorf("infer %s: %v", expr, err)
					continue
				}
				if diff := cmp.Diff(strings.TrimSpace(want), prettyprinter.Sort(got.Props.Sort)); diff != "" {
					t.Errorf("sort of %s mismatch (-want +got):\n%s", expr, diff)
				}
			}
		})
	}
}

func TestCheckedTreeCarriesSorts(t *testing.T) {
	s := newTestSession(t)
	m, errs := s.CheckModule(parseModule(t, `
auto add(i32_t a, i32_t b) -> i32_t { return a + b; }
`))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(m.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(m.Decls))
	}
	def, ok := m.Decls[0].(ast.FuncDef)
	if !ok {
		t.Fatalf("expected FuncDef, got %T", m.Decls[0])
	}
	if got := prettyprinter.Sort(def.Value.Props.Sort); got != "(i32_t a, i32_t b) -> i32_t" {
		t.Errorf("unexpected signature %q", got)
	}
	abs := def.Value.Value.(ast.Abs)
	ret, ok := abs.Body.Stmts[0].(ast.Return)
	if !ok {
		t.Fatalf("expected return statement, got %T", abs.Body.Stmts[0])
	}
	if got := prettyprinter.Sort(ret.Expr.Props.Sort); got != "i32_t" {
		t.Errorf("expected `a + b` to have sort i32_t, got %q", got)
	}
	sym, ok := s.Env.Find(ast.Global{Name: "add"})
	if !ok || sym.Kind != symbols.FuncDefSymbol || sym.Def == nil {
		t.Errorf("expected `add` to be defined in the environment, got %+v", sym)
	}
}

// A function whose body fails keeps its declaration, so its callers still check.
func TestCheckModuleKeepsGoingAfterError(t *testing.T) {
	s := newTestSession(t)
	m, errs := s.CheckModule(parseModule(t, `
auto bad() -> i32_t { return true; }
auto good() -> i32_t { return 1; }
auto uses_bad() -> i32_t { return bad(); }
auto unknown() -> i32_t { return nope(); }
`))
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Code != diagnostics.ErrT002 {
		t.Errorf("expected first error T002, got %s", errs[0].Code)
	}
	if errs[1].Code != diagnostics.ErrT001 {
		t.Errorf("expected second error T001, got %s", errs[1].Code)
	}
	var names []string
	for _, d := range m.Decls {
		names = append(names, d.DeclName())
	}
	if diff := cmp.Diff([]string{"good", "uses_bad"}, names); diff != "" {
		t.Errorf("checked declarations mismatch (-want +got):\n%s", diff)
	}
	sym, ok := s.Env.Find(ast.Global{Name: "bad"})
	if !ok || sym.Kind != symbols.FuncDeclSymbol {
		t.Errorf("expected `bad` to remain declared, got %+v", sym)
	}
}

func TestErrorsCarryFile(t *testing.T) {
	s := newTestSession(t)
	_, errs := s.CheckModule(parseModule(t, "auto f() -> i32_t { return g; }"))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].File != "test.depc" {
		t.Errorf("expected file test.depc, got %q", errs[0].File)
	}
	if errs[0].Pos.Line != 1 {
		t.Errorf("expected error on line 1, got %d", errs[0].Pos.Line)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	src := `
struct point { i32_t x; i32_t y; };
auto origin() -> point { return {0, 0}; }
`
	var wg sync.WaitGroup
	results := make([][]*diagnostics.Error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := NewSession(config.DefaultSettings(), nil)
			if err != nil {
				t.Error(err)
				return
			}
			m := parser.New(lexer.New(src).Tokenize(), "test.depc").ParseModule()
			_, results[i] = s.CheckModule(m)
		}()
	}
	wg.Wait()
	for i, errs := range results {
		if len(errs) > 0 {
			t.Errorf("session %d: unexpected errors: %v", i, errs)
		}
	}

	a, b := newTestSession(t), newTestSession(t)
	if a.ID == b.ID {
		t.Error("expected distinct session IDs")
	}
	a.CheckModule(parseModule(t, src))
	if _, ok := b.Env.Find(ast.Global{Name: "point"}); ok {
		t.Error("a declaration checked in one session leaked into another")
	}
}

func TestInferRespectsMultiplicity(t *testing.T) {
	s := newTestSession(t)
	ctx := symbols.NewContext()
	x := ast.Var{Name: "x"}
	ctx.TryAdd(x, symbols.Local{Origin: symbols.ArgOrigin, Qty: ast.QtyOne, Type: builtinType(ast.IntType{Width: 32, Signed: true})})
	usage := symbols.NewUsage()

	e := parseExpr(t, "x + 1")
	if _, err := s.Infer(ctx, usage, e, ast.QtyOne); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if _, err := s.Infer(ctx, usage, e, ast.QtyZero); err != nil {
		t.Errorf("erased use should be free: %v", err)
	}
	_, err := s.Infer(ctx, usage, e, ast.QtyOne)
	if err == nil {
		t.Fatal("expected second runtime use of a linear variable to fail")
	}
	if !strings.Contains(err.Error(), "more than once") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckAgainstExpectedType(t *testing.T) {
	s := newTestSession(t)
	u8 := builtinType(ast.IntType{Width: 8})
	if _, err := s.Check(symbols.NewContext(), symbols.NewUsage(), parseExpr(t, "200 + 55"), u8, ast.QtyOne); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := s.Check(symbols.NewContext(), symbols.NewUsage(), parseExpr(t, "256"), u8, ast.QtyOne); err == nil {
		t.Error("expected 256 to be out of range for u8_t")
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(config.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	p := parser.New(lexer.New(src).Tokenize(), "test.depc")
	m := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse error: %v", errs[0])
	}
	return m
}

func parseExpr(t *testing.T, src string) *ast.Expr {
	t.Helper()
	p := parser.New(lexer.New(src).Tokenize(), "test.depc")
	e := p.ParseExpression()
	if errs := p.Errors(); len(errs) > 0 || e == nil {
		t.Fatalf("cannot parse %q: %v", src, errs)
	}
	return e
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
