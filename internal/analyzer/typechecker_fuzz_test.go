package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
)

// FuzzTypeChecker checks that the typechecker never panics on a module that
// parses, and that search limits keep it from running away.
func FuzzTypeChecker(f *testing.F) {
	files, _ := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			f.Fatal(err)
		}
		for _, af := range txtar.Parse(data).Files {
			if af.Name == "module.depc" {
				f.Add(string(af.Data))
			}
		}
	}
	f.Add("auto f(i32_t x) -> i32_t { return x / x; }")
	f.Add("auto loop(u32_t n) -> u32_t { return loop(n); }")

	settings := config.DefaultSettings()
	settings.Search.MaxSteps = 2000
	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 2048 {
			return
		}
		p := parser.New(lexer.New(src).Tokenize(), "fuzz.depc")
		m := p.ParseModule()
		if len(p.Errors()) > 0 {
			return
		}
		s, err := NewSession(settings, nil)
		if err != nil {
			t.Fatal(err)
		}
		out, errs := s.CheckModule(m)
		if len(out.Decls)+len(errs) < len(m.Decls) {
			t.Fatalf("%d declarations in, %d checked and %d errors out", len(m.Decls), len(out.Decls), len(errs))
		}
	})
}
