package lexer

import (
	"math/big"
	"testing"

	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `auto f(0 true_t(x <= 10) p) -> u8_t { return x / 2 because p; }
// comment
mutable extern g() -> unit_t;
a != b and c >= d; &r; "s\n"`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.AUTO, "auto"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.NUMBER, "0"},
		{token.TRUE_T, "true_t"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.LTE, "<="},
		{token.NUMBER, "10"},
		{token.RPAREN, ")"},
		{token.IDENT, "p"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.INT_T, "u8_t"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.SLASH, "/"},
		{token.NUMBER, "2"},
		{token.BECAUSE, "because"},
		{token.IDENT, "p"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.MUTABLE, "mutable"},
		{token.EXTERN, "extern"},
		{token.IDENT, "g"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.UNIT_T, "unit_t"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.NOT_EQ, "!="},
		{token.IDENT, "b"},
		{token.AND, "and"},
		{token.IDENT, "c"},
		{token.GTE, ">="},
		{token.IDENT, "d"},
		{token.SEMICOLON, ";"},
		{token.AMP, "&"},
		{token.IDENT, "r"},
		{token.SEMICOLON, ";"},
		{token.STRING, `"s\n"`},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestPositions(t *testing.T) {
	toks := New("auto f()\n  -> i32_t").Tokenize()
	want := []struct{ line, col int }{{1, 1}, {1, 6}, {1, 7}, {1, 8}, {2, 3}, {2, 6}}
	for i, w := range want {
		if toks[i].Line != w.line || toks[i].Column != w.col {
			t.Errorf("token %d (%q): expected %d:%d, got %d:%d", i, toks[i].Lexeme, w.line, w.col, toks[i].Line, toks[i].Column)
		}
	}
}

func TestLiterals(t *testing.T) {
	toks := New(`18446744073709551616 "a\"b"`).Tokenize()
	n, ok := toks[0].Literal.(*big.Int)
	if !ok {
		t.Fatalf("expected a *big.Int literal, got %T", toks[0].Literal)
	}
	want, _ := new(big.Int).SetString("18446744073709551616", 10)
	if n.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, n)
	}
	if s := toks[1].Literal; s != `a"b` {
		t.Errorf("expected unescaped string, got %q", s)
	}
}

func TestIllegalTokens(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"12abc", "invalid suffix on numeric literal"},
		{`"open`, "unterminated string literal"},
		{"a ! b", "illegal character !"},
	}
	for _, tt := range tests {
		ctx := (&LexerProcessor{}).Process(pipeline.NewPipelineContext(tt.input))
		if len(ctx.Errors) == 0 {
			t.Errorf("%q: expected a lexer error", tt.input)
			continue
		}
		if ctx.Errors[0].Code != diagnostics.ErrP001 {
			t.Errorf("%q: expected P001, got %s", tt.input, ctx.Errors[0].Code)
		}
		if ctx.Errors[0].Message != tt.msg {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.msg, ctx.Errors[0].Message)
		}
	}
}
