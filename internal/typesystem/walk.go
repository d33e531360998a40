package typesystem

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
)

// Telescope is a list of binders together with everything in their scope:
// the remaining arguments, the return type (nil for Sigma types and structs)
// and the body (nil unless the binders belong to an abstraction).
type Telescope struct {
	Args []ast.FuncArg
	Ret  *ast.Expr
	Body *ast.Body
}

// Rest returns the part of t in scope of the i-th argument.
func (t Telescope) Rest(i int) Telescope {
	return Telescope{Args: t.Args[i+1:], Ret: t.Ret, Body: t.Body}
}

func telescopeOf(v ast.Value) (Telescope, bool) {
	switch v := v.(type) {
	case ast.Abs:
		return Telescope{Args: v.Args, Ret: v.Ret, Body: v.Body}, true
	case ast.Pi:
		return Telescope{Args: v.Args, Ret: v.Ret}, true
	case ast.Sigma:
		return Telescope{Args: v.Args}, true
	}
	return Telescope{}, false
}

// withTelescope rebuilds a binder value around a transformed telescope.
func withTelescope(v ast.Value, t Telescope) ast.Value {
	switch v := v.(type) {
	case ast.Abs:
		return ast.Abs{Mutable: v.Mutable, Args: t.Args, Ret: t.Ret, Body: t.Body}
	case ast.Pi:
		return ast.Pi{Mutable: v.Mutable, Args: t.Args, Ret: t.Ret}
	case ast.Sigma:
		return ast.Sigma{Args: t.Args}
	}
	return v
}

// mapValue rebuilds a value that introduces no binders, applying f to each
// direct sub-expression.
func mapValue(v ast.Value, f func(*ast.Expr) *ast.Expr) ast.Value {
	switch v := v.(type) {
	case ast.BoolNot:
		return ast.BoolNot{Expr: f(v.Expr)}
	case ast.BoolBinary:
		return ast.BoolBinary{Op: v.Op, Left: f(v.Left), Right: f(v.Right)}
	case ast.Relation:
		return ast.Relation{Op: v.Op, Left: f(v.Left), Right: f(v.Right)}
	case ast.Arith:
		return ast.Arith{Op: v.Op, Left: f(v.Left), Right: f(v.Right)}
	case ast.App:
		return ast.App{Func: f(v.Func), Args: mapExprs(v.Args, f)}
	case ast.InitList:
		return ast.InitList{Values: mapExprs(v.Values, f)}
	case ast.Member:
		return ast.Member{Object: f(v.Object), Field: v.Field}
	case ast.Subscript:
		return ast.Subscript{Object: f(v.Object), Index: f(v.Index)}
	case ast.Because:
		return ast.Because{Value: f(v.Value), Reason: f(v.Reason)}
	case ast.AddressOf:
		return ast.AddressOf{Expr: f(v.Expr)}
	case ast.Deref:
		return ast.Deref{Expr: f(v.Expr)}
	case ast.ScopeOf:
		return ast.ScopeOf{Expr: f(v.Expr)}
	}
	return v
}

func mapExprs(es []*ast.Expr, f func(*ast.Expr) *ast.Expr) []*ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]*ast.Expr, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}

// children returns the direct sub-expressions of a value that introduces no binders.
func children(v ast.Value) []*ast.Expr {
	switch v := v.(type) {
	case ast.BoolNot:
		return []*ast.Expr{v.Expr}
	case ast.BoolBinary:
		return []*ast.Expr{v.Left, v.Right}
	case ast.Relation:
		return []*ast.Expr{v.Left, v.Right}
	case ast.Arith:
		return []*ast.Expr{v.Left, v.Right}
	case ast.App:
		return append([]*ast.Expr{v.Func}, v.Args...)
	case ast.InitList:
		return v.Values
	case ast.Member:
		return []*ast.Expr{v.Object}
	case ast.Subscript:
		return []*ast.Expr{v.Object, v.Index}
	case ast.Because:
		return []*ast.Expr{v.Value, v.Reason}
	case ast.AddressOf:
		return []*ast.Expr{v.Expr}
	case ast.Deref:
		return []*ast.Expr{v.Expr}
	case ast.ScopeOf:
		return []*ast.Expr{v.Expr}
	}
	return nil
}

// mapBody rebuilds a function body, applying f to each expression it contains.
func mapBody(b *ast.Body, f func(*ast.Expr) *ast.Expr) *ast.Body {
	if b == nil {
		return nil
	}
	out := &ast.Body{Stmts: make([]ast.Stmt, len(b.Stmts))}
	for i, s := range b.Stmts {
		out.Stmts[i] = mapStmt(s, f)
	}
	return out
}

func mapStmt(s ast.Stmt, f func(*ast.Expr) *ast.Expr) ast.Stmt {
	switch s := s.(type) {
	case ast.Return:
		if s.Expr != nil {
			s.Expr = f(s.Expr)
		}
		return s
	case ast.IfElse:
		s.Cond = f(s.Cond)
		s.Then = mapBody(s.Then, f)
		s.Else = mapBody(s.Else, f)
		return s
	case ast.Impossible:
		if s.Reason != nil {
			s.Reason = f(s.Reason)
		}
		return s
	case ast.ExprStmt:
		s.Expr = f(s.Expr)
		return s
	}
	return s
}

// bodyExprs calls f on every expression of b until f returns true.
func bodyExprs(b *ast.Body, f func(*ast.Expr) bool) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case ast.Return:
			if s.Expr != nil && f(s.Expr) {
				return true
			}
		case ast.IfElse:
			if f(s.Cond) || bodyExprs(s.Then, f) || bodyExprs(s.Else, f) {
				return true
			}
		case ast.Impossible:
			if s.Reason != nil && f(s.Reason) {
				return true
			}
		case ast.ExprStmt:
			if f(s.Expr) {
				return true
			}
		}
	}
	return false
}
