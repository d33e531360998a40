package analyzer

import (
	"strings"
	"testing"

	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
)

// checkSource parses input and checks it in a fresh session, returning all
// typechecking errors. Parse errors fail the test.
func checkSource(t *testing.T, input string) []*diagnostics.Error {
	t.Helper()
	p := parser.New(lexer.New(input).Tokenize(), "test.depc")
	m := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse error: %v\ninput: %s", errs[0], input)
	}
	s, err := NewSession(config.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	_, errs := s.CheckModule(m)
	return errs
}

// expectAnalyzerError asserts that at least one error with the given code is produced.
func expectAnalyzerError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.Error {
	t.Helper()
	errs := checkSource(t, input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

// expectAnalyzerErrorContains asserts an error with the given code whose reason tree contains substr.
func expectAnalyzerErrorContains(t *testing.T, input string, code diagnostics.ErrorCode, substr string) {
	t.Helper()
	e := expectAnalyzerError(t, input, code)
	if !e.Contains(substr) {
		t.Errorf("expected error message to contain %q, got: %s", substr, e.Error())
	}
}

// expectNoAnalyzerErrors asserts that checking produces no errors.
func expectNoAnalyzerErrors(t *testing.T, input string) {
	t.Helper()
	errs := checkSource(t, input)
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
}

// ---------------------------------------------------------------------------
// T001: Unknown name
// ---------------------------------------------------------------------------

func TestT001_UnknownFunction(t *testing.T) {
	input := `
auto f() -> i32_t { return g(); }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT001, "unknown name `g`")
}

func TestT001_UnknownField(t *testing.T) {
	input := `
struct point { i32_t x; i32_t y; };
auto f(point p) -> i32_t { return p.z; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT001, "has no field `z`")
}

// ---------------------------------------------------------------------------
// T002: Type mismatch
// ---------------------------------------------------------------------------

func TestT002_ReturnTypeMismatch(t *testing.T) {
	input := `
auto f(bool b) -> i32_t { return b; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT002, "type mismatch: expected `i32_t`, got `bool`")
}

func TestT002_WrongArgumentCount(t *testing.T) {
	input := `
auto g(i32_t x) -> i32_t { return x; }
auto f() -> i32_t { return g(1, 2); }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT002, "expected 1, got 2")
}

func TestT002_OrderingOnBool(t *testing.T) {
	input := `
auto f(bool a, bool b) -> bool { return a < b; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT002, "operator `<` is not defined for `bool`")
}

// ---------------------------------------------------------------------------
// T003: No unique type
// ---------------------------------------------------------------------------

func TestT003_LiteralsOnBothSides(t *testing.T) {
	input := `
auto f() -> bool { return 1 == 2; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT003, "cannot infer a unique type")
}

// ---------------------------------------------------------------------------
// T004: Quantity violation
// ---------------------------------------------------------------------------

func TestT004_ZeroQuantityUsedAtRuntime(t *testing.T) {
	input := `
auto f(i32_t a, i32_t b, 0 true_t(a < b) p) -> i32_t { return a + p; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT004, "cannot use a zero-quantity variable `p`")
}

func TestT004_LinearUsedTwice(t *testing.T) {
	input := `
auto f(1 i32_t x) -> i32_t { return x + x; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT004, "cannot be used more than once")
}

func TestT004_LinearOncePerBranch(t *testing.T) {
	input := `
auto f(bool c, 1 i32_t x) -> i32_t {
    if (c) return x;
    else return x;
}
`
	expectNoAnalyzerErrors(t, input)
}

func TestT004_LinearAfterReturningBranch(t *testing.T) {
	input := `
auto f(bool c, 1 i32_t x) -> i32_t {
    if (c) return x;
    return x + 1;
}
`
	expectNoAnalyzerErrors(t, input)
}

func TestT004_LambdaCapturesLinear(t *testing.T) {
	input := `
auto f(1 i32_t x) -> i32_t {
    return (auto (i32_t y) -> i32_t { return x; })(1);
}
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT004, "captures")
}

func TestT004_AxiomAtRuntime(t *testing.T) {
	input := `
auto f(bool a, 0 true_t(not a)) -> true_t(a == false) { return not_to_false(a, {}); }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT004, "erased positions")
}

// ---------------------------------------------------------------------------
// T005: Redefinition
// ---------------------------------------------------------------------------

func TestT005_FunctionRedefinition(t *testing.T) {
	input := `
auto f() -> i32_t { return 0; }
auto f() -> i32_t { return 1; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT005, "redefinition of `f`")
}

func TestT005_DefinitionDoesNotMatchDeclaration(t *testing.T) {
	input := `
auto f(i32_t x) -> i32_t;
auto f(i64_t x) -> i64_t { return x; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT005, "does not match its declaration")
}

func TestT005_DuplicateArgument(t *testing.T) {
	input := `
auto f(i32_t x, i32_t x) -> i32_t { return x; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT005, "duplicate argument `x`")
}

func TestT005_DeclarationThenDefinition(t *testing.T) {
	input := `
auto even(u32_t n) -> bool;
auto odd(u32_t n) -> bool { return not even(n); }
auto even(u32_t m) -> bool { return m == 0; }
`
	expectNoAnalyzerErrors(t, input)
}

// ---------------------------------------------------------------------------
// T006: Missing return
// ---------------------------------------------------------------------------

func TestT006_MissingReturnOnOnePath(t *testing.T) {
	input := `
auto f(bool c) -> i32_t {
    if (c) return 1;
}
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT006, "missing return statement in function returning `i32_t`")
}

func TestT006_UnitNeedsNoReturn(t *testing.T) {
	input := `
auto f() -> unit_t { }
`
	expectNoAnalyzerErrors(t, input)
}

// ---------------------------------------------------------------------------
// T007: Proof search failed
// ---------------------------------------------------------------------------

func TestT007_DivisionWithoutProof(t *testing.T) {
	input := `
auto f(i32_t a, i32_t b) -> i32_t { return a / b; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT007, "requires a proof of `b != 0`")
}

func TestT007_DivisionWithProof(t *testing.T) {
	input := `
auto f(i32_t a, i32_t b, 0 true_t(b > 0)) -> i32_t { return a / b; }
auto g(u32_t a, u32_t b, 0 true_t(b > 0)) -> u32_t { return a % b; }
auto h(i32_t a) -> i32_t { return a / 2; }
`
	expectNoAnalyzerErrors(t, input)
}

func TestT007_SubscriptOutOfBounds(t *testing.T) {
	input := `
auto f(array_t(i32_t, 3) xs, u64_t i) -> i32_t { return xs[i]; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT007, "requires a proof of `i < 3`")
}

func TestT007_ImpossibleWithoutProof(t *testing.T) {
	input := `
auto f(i32_t x) -> i32_t {
    if (x > 0) return x;
    impossible;
}
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT007, "unreachable")
}

func TestT007_ImpossibleAfterNarrowing(t *testing.T) {
	input := `
auto f(i32_t x, 0 true_t(x > 0)) -> i32_t {
    if (x > 0) return x;
    impossible;
}
`
	expectNoAnalyzerErrors(t, input)
}

// ---------------------------------------------------------------------------
// T008: Invalid expression or statement
// ---------------------------------------------------------------------------

func TestT008_UnreachableStatement(t *testing.T) {
	input := `
auto f() -> i32_t { return 1; return 2; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT008, "unreachable statement")
}

func TestT008_ExpressionStatementMustBeCall(t *testing.T) {
	input := `
auto f(i32_t x) -> unit_t { x; }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT008, "only function calls")
}

// ---------------------------------------------------------------------------
// T009: Mutability
// ---------------------------------------------------------------------------

func TestT009_MutableCallFromImmutable(t *testing.T) {
	input := `
mutable extern tick() -> unit_t;
auto f() -> unit_t { tick(); }
`
	expectAnalyzerErrorContains(t, input, diagnostics.ErrT009, "cannot invoke mutable function `tick`")
}

func TestT009_MutableCallFromMutable(t *testing.T) {
	input := `
mutable extern tick() -> unit_t;
mutable auto f() -> unit_t { tick(); }
`
	expectNoAnalyzerErrors(t, input)
}

// ---------------------------------------------------------------------------
// T010: Literal out of range
// ---------------------------------------------------------------------------

func TestT010_LiteralOutOfRange(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"auto f() -> u8_t { return 300; }", "literal `300` is out of range for `u8_t`"},
		{"auto f() -> u32_t { return -1; }", "literal `-1` is out of range for `u32_t`"},
		{"auto f() -> i8_t { return -129; }", "literal `-129` is out of range for `i8_t`"},
	}
	for _, tt := range tests {
		expectAnalyzerErrorContains(t, tt.input, diagnostics.ErrT010, tt.want)
	}
}

func TestT010_LiteralAtBounds(t *testing.T) {
	input := `
auto a() -> u8_t { return 255; }
auto b() -> i8_t { return -128; }
auto c() -> u64_t { return 18446744073709551615; }
`
	expectNoAnalyzerErrors(t, input)
}
