package parser

import (
	"testing"

	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/prelude"
)

// FuzzParser checks that no input makes the lexer or the parser panic.
func FuzzParser(f *testing.F) {
	f.Add(prelude.Source)
	f.Add("auto f(i32_t x) -> i32_t { return x + 1; }")
	f.Add("struct s { u64_t n; array_t(bool, n) xs; };")
	f.Add("auto g() -> bool { if (true) return false; impossible because auto; }")
	f.Add("auto h(")
	f.Add("((((((((((")

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 4096 {
			return
		}
		p := New(lexer.New(src).Tokenize(), "fuzz.depc")
		m := p.ParseModule()
		if m == nil {
			t.Fatal("ParseModule returned nil")
		}
		for _, err := range p.Errors() {
			if err == nil {
				t.Fatal("nil error reported")
			}
		}
	})
}
