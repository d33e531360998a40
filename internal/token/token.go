package token

import (
	"fmt"
	"maps"
	"slices"
)

type TokenType string

// Pos is a position in a source file. Lines and columns start at 1.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // *big.Int for numbers, string for strings and identifiers
	Line    int
	Column  int
}

// Pos returns the position of the token, without file information.
func (t Token) Pos() Pos {
	return Pos{Line: t.Line, Column: t.Column}
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	// Operators
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	AMP      TokenType = "&"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	LTE      TokenType = "<="
	GT       TokenType = ">"
	GTE      TokenType = ">="
	ASSIGN   TokenType = "="
	ARROW    TokenType = "->"
	DOT      TokenType = "."

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	AUTO       TokenType = "auto"
	AXIOM      TokenType = "axiom"
	EXTERN     TokenType = "extern"
	MUTABLE    TokenType = "mutable"
	STRUCT     TokenType = "struct"
	RETURN     TokenType = "return"
	IF         TokenType = "if"
	ELSE       TokenType = "else"
	IMPOSSIBLE TokenType = "impossible"
	BECAUSE    TokenType = "because"
	TRUE       TokenType = "true"
	FALSE      TokenType = "false"
	NOT        TokenType = "not"
	AND        TokenType = "and"
	OR         TokenType = "or"
	XOR        TokenType = "xor"
	SCOPEOF    TokenType = "scopeof"

	// Builtin types
	TYPENAME TokenType = "typename"
	BOOL_T   TokenType = "bool"
	UNIT_T   TokenType = "unit_t"
	CSTR_T   TokenType = "cstr_t"
	INT_T    TokenType = "INT_T" // i8_t .. u64_t, the lexeme tells which
	TRUE_T   TokenType = "true_t"
	ARRAY_T  TokenType = "array_t"
	REF_T    TokenType = "ref_t"
	SCOPE_T  TokenType = "scope_t"
)

var keywords = map[string]TokenType{
	"auto":       AUTO,
	"axiom":      AXIOM,
	"extern":     EXTERN,
	"mutable":    MUTABLE,
	"struct":     STRUCT,
	"return":     RETURN,
	"if":         IF,
	"else":       ELSE,
	"impossible": IMPOSSIBLE,
	"because":    BECAUSE,
	"true":       TRUE,
	"false":      FALSE,
	"not":        NOT,
	"and":        AND,
	"or":         OR,
	"xor":        XOR,
	"scopeof":    SCOPEOF,
	"typename":   TYPENAME,
	"bool":       BOOL_T,
	"unit_t":     UNIT_T,
	"cstr_t":     CSTR_T,
	"i8_t":       INT_T,
	"i16_t":      INT_T,
	"i32_t":      INT_T,
	"i64_t":      INT_T,
	"u8_t":       INT_T,
	"u16_t":      INT_T,
	"u32_t":      INT_T,
	"u64_t":      INT_T,
	"true_t":     TRUE_T,
	"array_t":    ARRAY_T,
	"ref_t":      REF_T,
	"scope_t":    SCOPE_T,
}

// LookupIdent returns the keyword type of ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns every reserved word, sorted.
func Keywords() []string {
	return slices.Sorted(maps.Keys(keywords))
}
