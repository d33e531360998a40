package symbols

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// Usage counts how many times each variable has been used at runtime.
// A child usage sees the counts of its parents but only records its own.
type Usage struct {
	parent *Usage
	direct map[ast.Var]ast.Qty
}

func NewUsage() *Usage {
	return &Usage{direct: make(map[ast.Var]ast.Qty)}
}

// Extend returns a child usage, typically for one branch of an if-statement.
func (u *Usage) Extend() *Usage {
	return &Usage{parent: u, direct: make(map[ast.Var]ast.Qty)}
}

// Count returns the usage of v recorded here and in every parent.
func (u *Usage) Count(v ast.Var) ast.Qty {
	total := ast.QtyZero
	for s := u; s != nil; s = s.parent {
		total = total.Add(s.direct[v])
	}
	return total
}

// Direct returns the usage recorded at this level only.
func (u *Usage) Direct(v ast.Var) ast.Qty {
	return u.direct[v]
}

// TryAdd records mult more uses of v, failing if that would exceed the
// quantity v was declared with in ctx. Variables not bound in ctx are not
// tracked.
func (u *Usage) TryAdd(ctx *Context, v ast.Var, mult ast.Qty, pos token.Pos) error {
	if err := u.check(ctx, v, mult, pos); err != nil {
		return err
	}
	if mult != ast.QtyZero {
		u.direct[v] = u.direct[v].Add(mult)
	}
	return nil
}

func (u *Usage) check(ctx *Context, v ast.Var, mult ast.Qty, pos token.Pos) error {
	if mult == ast.QtyZero {
		return nil
	}
	local, ok := ctx.Find(v)
	if !ok {
		return nil
	}
	switch local.Qty {
	case ast.QtyZero:
		return diagnostics.Errorf(diagnostics.ErrT004, pos,
			"cannot use a zero-quantity variable `%s` at runtime", prettyprinter.Var(v))
	case ast.QtyOne:
		if u.Count(v).Add(mult) > ast.QtyOne {
			return diagnostics.Errorf(diagnostics.ErrT004, pos,
				"variable `%s` has quantity 1 and cannot be used more than once", prettyprinter.Var(v))
		}
	}
	return nil
}

// TryCommit charges the direct usage of other to u if every count still
// fits the quantities in ctx. Either all of other is charged or nothing is.
func (u *Usage) TryCommit(ctx *Context, other *Usage, pos token.Pos) error {
	for v, q := range other.direct {
		if err := u.check(ctx, v, q, pos); err != nil {
			return err
		}
	}
	u.Add(other)
	return nil
}

// Merge combines the direct usage of two sibling branches, v by v, with f.
// The result has no parent.
func Merge(a, b *Usage, f func(x, y ast.Qty) ast.Qty) *Usage {
	out := NewUsage()
	for v, q := range a.direct {
		out.direct[v] = f(q, b.direct[v])
	}
	for v, q := range b.direct {
		if _, done := out.direct[v]; !done {
			out.direct[v] = f(a.direct[v], q)
		}
	}
	return out
}

// Add charges the direct usage of other to u. Callers use it to commit the
// merged usage of branches that were each checked against u.
func (u *Usage) Add(other *Usage) {
	for v, q := range other.direct {
		u.direct[v] = u.direct[v].Add(q)
	}
}
