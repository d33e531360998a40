package symbols

import (
	"iter"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/scope"
	"github.com/raffopazzo/depc-sub002/internal/typesystem"
)

type Origin int

const (
	// ArgOrigin marks function arguments.
	ArgOrigin Origin = iota
	// AssumptionOrigin marks propositions added by the checker itself, such
	// as the condition of an if-branch or the reason of a because.
	AssumptionOrigin
)

// Local is a context entry: the type and quantity a variable was bound with.
type Local struct {
	Origin Origin
	Qty    ast.Qty
	Type   *ast.Expr
}

// Context maps bound variables to their types. Extend never modifies the
// receiver, so sibling branches of an if-statement each get their own view.
type Context struct {
	scope *scope.Map[ast.Var, Local]
}

func NewContext() *Context {
	return &Context{scope: scope.New[ast.Var, Local]()}
}

// Extend returns a child context.
func (c *Context) Extend() *Context {
	return &Context{scope: c.scope.Extend()}
}

// TryAdd binds v at the current level. It fails if v is already bound at
// this level; shadowing outer levels is allowed.
func (c *Context) TryAdd(v ast.Var, l Local) bool {
	return c.scope.TryEmplace(v, l)
}

func (c *Context) Find(v ast.Var) (Local, bool) {
	return c.scope.Find(v)
}

// Entries yields the visible bindings in declaration order.
func (c *Context) Entries() iter.Seq2[ast.Var, Local] {
	return c.scope.Ordered()
}

// Propositions yields the conditions of every visible true_t binding.
func (c *Context) Propositions() iter.Seq2[ast.Var, *ast.Expr] {
	return func(yield func(ast.Var, *ast.Expr) bool) {
		for v, l := range c.scope.Ordered() {
			if cond, ok := ast.AsTrueT(l.Type); ok {
				if !yield(v, cond) {
					return
				}
			}
		}
	}
}

// Rewrite returns a child context in which every binding whose type mentions
// from is rebound with from replaced by to. Bindings whose type does not
// change are shared with the receiver.
func (c *Context) Rewrite(from, to *ast.Expr) *Context {
	child := c.Extend()
	for v, l := range c.scope.All() {
		newType, changed := typesystem.Replace(from, to, l.Type)
		if !changed {
			continue
		}
		l.Type = newType
		child.scope.TryEmplace(v, l)
	}
	return child
}

// MaxIndex returns the largest index of a visible variable called name, or -1.
func (c *Context) MaxIndex(name string) int {
	best := -1
	for v := range c.scope.All() {
		if v.Name == name && v.Idx > best {
			best = v.Idx
		}
	}
	return best
}
