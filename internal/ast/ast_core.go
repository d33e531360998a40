package ast

import (
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// Sort is what the typechecker assigns to a node: either a type expression
// (*Expr) or Kind, the sort of `typename` and of type-level functions.
type Sort interface {
	sortNode()
}

// Kind is the sort of types-of-types. It has no sort of its own.
type Kind struct{}

func (Kind) sortNode()  {}
func (*Expr) sortNode() {}

// Props is the per-node properties slot. The parser only fills Pos; the
// typechecker also fills Sort. A nil Sort marks a node that was not checked.
type Props struct {
	Pos  token.Pos
	Sort Sort
}

// Expr is one node of the term algebra, shared by types and values.
type Expr struct {
	Props Props
	Value Value
}

// Value is the closed sum of expression variants.
type Value interface {
	exprValue()
}

// New wraps v in an expression without position or sort.
func New(v Value) *Expr {
	return &Expr{Value: v}
}

// NewAt wraps v in an expression located at pos.
func NewAt(pos token.Pos, v Value) *Expr {
	return &Expr{Props: Props{Pos: pos}, Value: v}
}

// Typed wraps v in an expression with the given sort.
func Typed(v Value, sort Sort) *Expr {
	return &Expr{Props: Props{Sort: sort}, Value: v}
}

// TypedAt wraps v in an expression with both a position and a sort.
func TypedAt(pos token.Pos, v Value, sort Sort) *Expr {
	return &Expr{Props: Props{Pos: pos, Sort: sort}, Value: v}
}

// Pos returns the position of e, or an invalid position for nil.
func (e *Expr) Pos() token.Pos {
	if e == nil {
		return token.Pos{}
	}
	return e.Props.Pos
}

// Type returns the sort of e when it is a type expression, or nil.
func (e *Expr) Type() *Expr {
	if e == nil {
		return nil
	}
	t, _ := e.Props.Sort.(*Expr)
	return t
}

// IsKindSorted reports whether e has sort Kind.
func (e *Expr) IsKindSorted() bool {
	if e == nil {
		return false
	}
	_, ok := e.Props.Sort.(Kind)
	return ok
}

// WithValue returns a shallow copy of e with a different value and the same props.
func (e *Expr) WithValue(v Value) *Expr {
	return &Expr{Props: e.Props, Value: v}
}

// WithSort returns a shallow copy of e with a different sort.
func (e *Expr) WithSort(s Sort) *Expr {
	c := *e
	c.Props.Sort = s
	return &c
}

// FuncArg is one argument of an abstraction, a Pi-type, a Sigma-type or a
// struct definition. Var is nil for anonymous arguments.
type FuncArg struct {
	Pos  token.Pos
	Qty  Qty
	Type *Expr
	Var  *Var
}

// Name returns the display name of the argument, or "" if anonymous.
func (a FuncArg) Name() string {
	if a.Var == nil {
		return ""
	}
	return a.Var.Name
}

// Module is the root node produced by the parser and by the typechecker.
type Module struct {
	File  string
	Decls []Decl
}

// Decl is a top-level declaration.
type Decl interface {
	declNode()
	DeclPos() token.Pos
	DeclName() string
}

// StructDef declares a (possibly dependent) struct type.
type StructDef struct {
	Pos    token.Pos
	Name   string
	Fields []FuncArg
}

// Axiom declares a proposition assumed to hold. Sig is a Pi-type.
type Axiom struct {
	Pos  token.Pos
	Name string
	Sig  *Expr
}

// Extern declares a function implemented outside of the module.
type Extern struct {
	Pos  token.Pos
	Name string
	Sig  *Expr
}

// FuncDecl is a forward declaration of a function defined later.
type FuncDecl struct {
	Pos  token.Pos
	Name string
	Sig  *Expr
}

// FuncDef defines a function. Value is an abstraction.
type FuncDef struct {
	Pos   token.Pos
	Name  string
	Value *Expr
}

func (StructDef) declNode() {}
func (Axiom) declNode()     {}
func (Extern) declNode()    {}
func (FuncDecl) declNode()  {}
func (FuncDef) declNode()   {}

func (d StructDef) DeclPos() token.Pos { return d.Pos }
func (d Axiom) DeclPos() token.Pos     { return d.Pos }
func (d Extern) DeclPos() token.Pos    { return d.Pos }
func (d FuncDecl) DeclPos() token.Pos  { return d.Pos }
func (d FuncDef) DeclPos() token.Pos   { return d.Pos }

func (d StructDef) DeclName() string { return d.Name }
func (d Axiom) DeclName() string     { return d.Name }
func (d Extern) DeclName() string    { return d.Name }
func (d FuncDecl) DeclName() string  { return d.Name }
func (d FuncDef) DeclName() string   { return d.Name }
