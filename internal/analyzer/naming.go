package analyzer

import (
	"fmt"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
)

// fresh returns a variable that no other binder of this session uses.
// User-written variables have index 0, so generated ones never collide.
func (s *Session) fresh(name string) ast.Var {
	s.next++
	return ast.Var{Name: name, Idx: s.next}
}

// describe renders an expression for use inside a diagnostic message.
func describe(e *ast.Expr) string {
	return fmt.Sprintf("`%s`", prettyprinter.Expr(e))
}

// describeSort renders the sort of an expression.
func describeSort(e *ast.Expr) string {
	return fmt.Sprintf("`%s`", prettyprinter.Sort(e.Props.Sort))
}
