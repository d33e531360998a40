package typesystem

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
)

// Subst maps variables to the expressions replacing them.
// Applying a Subst replaces all variables simultaneously.
type Subst map[ast.Var]*ast.Expr

// Apply returns target with every free occurrence of a variable in s replaced.
func (s Subst) Apply(target *ast.Expr) *ast.Expr {
	if len(s) == 0 || target == nil {
		return target
	}
	return (&substituter{subst: s}).expr(target)
}

// ApplyTelescope is Apply over every part of a telescope.
func (s Subst) ApplyTelescope(t Telescope) Telescope {
	if len(s) == 0 {
		return t
	}
	return (&substituter{subst: s}).telescope(t)
}

// Substitute replaces the free occurrences of v in target with value,
// renaming binders of target that would capture variables of value.
func Substitute(v ast.Var, value, target *ast.Expr) *ast.Expr {
	return Subst{v: value}.Apply(target)
}

// SubstituteTelescope substitutes value for v in everything t binds over.
func SubstituteTelescope(v ast.Var, value *ast.Expr, t Telescope) Telescope {
	return Subst{v: value}.ApplyTelescope(t)
}

// Rename replaces free occurrences of from with to. The caller guarantees
// that to is not used anywhere in target.
func Rename(from, to ast.Var, target *ast.Expr) *ast.Expr {
	return Substitute(from, ast.New(to), target)
}

// RenameTelescope is Rename over a telescope.
func RenameTelescope(from, to ast.Var, t Telescope) Telescope {
	return SubstituteTelescope(from, ast.New(to), t)
}

type substituter struct {
	subst Subst
}

func (s *substituter) without(v ast.Var) *substituter {
	next := make(Subst, len(s.subst))
	for k, val := range s.subst {
		if k != v {
			next[k] = val
		}
	}
	return &substituter{subst: next}
}

// captures reports whether binding v would capture a variable of some
// replacement. Any occurrence counts, free or not, so that one display name
// is never reused for unrelated binders.
func (s *substituter) captures(v ast.Var) bool {
	for _, val := range s.subst {
		if OccursIn(v, val, Anywhere) {
			return true
		}
	}
	return false
}

func (s *substituter) values() []*ast.Expr {
	out := make([]*ast.Expr, 0, len(s.subst))
	for _, val := range s.subst {
		out = append(out, val)
	}
	return out
}

func (s *substituter) expr(e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	switch x := e.Value.(type) {
	case ast.Var:
		if val, ok := s.subst[x]; ok {
			return s.replacement(e, val)
		}
		return s.rebuild(e, x)
	case ast.Abs, ast.Pi, ast.Sigma:
		t, _ := telescopeOf(x)
		return s.rebuild(e, withTelescope(x, s.telescope(t)))
	}
	return s.rebuild(e, mapValue(e.Value, s.expr))
}

// replacement builds the node that takes the place of a substituted
// variable. Renamings and unchecked values keep the position and sort of
// the occurrence.
func (s *substituter) replacement(occurrence, val *ast.Expr) *ast.Expr {
	if _, isVar := val.Value.(ast.Var); isVar || val.Props.Sort == nil {
		return s.rebuild(occurrence, val.Value)
	}
	return val
}

func (s *substituter) rebuild(e *ast.Expr, v ast.Value) *ast.Expr {
	out := &ast.Expr{Props: e.Props, Value: v}
	if sort := e.Type(); sort != nil {
		out.Props.Sort = s.expr(sort)
	}
	return out
}

func (s *substituter) telescope(t Telescope) Telescope {
	args := make([]ast.FuncArg, len(t.Args))
	copy(args, t.Args)
	ret, body := t.Ret, t.Body
	cur := s
	for i := range args {
		args[i].Type = cur.expr(args[i].Type)
		if args[i].Var == nil {
			continue
		}
		bound := *args[i].Var
		if _, shadowed := cur.subst[bound]; shadowed {
			cur = cur.without(bound)
			if len(cur.subst) == 0 {
				return Telescope{Args: args, Ret: ret, Body: body}
			}
		}
		if !cur.captures(bound) {
			continue
		}
		rest := Telescope{Args: args[i+1:], Ret: ret, Body: body}
		idx := maxIndexTelescope(bound.Name, rest)
		for _, val := range cur.values() {
			if m := maxIndexExpr(bound.Name, val); m > idx {
				idx = m
			}
		}
		if bound.Idx > idx {
			idx = bound.Idx
		}
		fresh := ast.Var{Name: bound.Name, Idx: idx + 1}
		rest = (&substituter{subst: Subst{bound: ast.New(fresh)}}).telescope(rest)
		args = append(args[:i+1], rest.Args...)
		ret, body = rest.Ret, rest.Body
		args[i].Var = &fresh
	}
	return Telescope{Args: args, Ret: cur.expr(ret), Body: mapBody(body, cur.expr)}
}
