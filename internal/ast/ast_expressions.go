package ast

import (
	"math/big"

	"github.com/raffopazzo/depc-sub002/internal/token"
)

type BoolLit struct {
	Value bool
}

// NumLit is an integer literal. Its concrete type comes from the context it is checked in.
type NumLit struct {
	Value *big.Int
}

type StrLit struct {
	Value string
}

type BoolNot struct {
	Expr *Expr
}

type BoolOp string

const (
	OpAnd BoolOp = "and"
	OpOr  BoolOp = "or"
	OpXor BoolOp = "xor"
)

type BoolBinary struct {
	Op          BoolOp
	Left, Right *Expr
}

type RelOp string

const (
	OpEq  RelOp = "=="
	OpNeq RelOp = "!="
	OpLt  RelOp = "<"
	OpLte RelOp = "<="
	OpGt  RelOp = ">"
	OpGte RelOp = ">="
)

type Relation struct {
	Op          RelOp
	Left, Right *Expr
}

type ArithOp string

const (
	OpPlus  ArithOp = "+"
	OpMinus ArithOp = "-"
	OpMult  ArithOp = "*"
	OpDiv   ArithOp = "/"
	OpMod   ArithOp = "%"
)

type Arith struct {
	Op          ArithOp
	Left, Right *Expr
}

// Var is a bound variable. Idx disambiguates binders sharing a display name;
// user-written names always have Idx 0.
type Var struct {
	Name string
	Idx  int
}

// Anonymous reports whether v was generated for a binder the user did not name.
func (v Var) Anonymous() bool { return v.Name == "" }

// Global names a top-level symbol. Imported is false for symbols of the
// module being checked; imported symbols carry the module they were imported
// under, which may be the empty string (the prelude).
type Global struct {
	Module   string
	Imported bool
	Name     string
}

// App is an uncurried application.
type App struct {
	Func *Expr
	Args []*Expr
}

// Abs is a function literal.
type Abs struct {
	Mutable bool
	Args    []FuncArg
	Ret     *Expr
	Body    *Body
}

// Pi is a dependent function type.
type Pi struct {
	Mutable bool
	Args    []FuncArg
	Ret     *Expr
}

// Sigma is a dependent tuple type.
type Sigma struct {
	Args []FuncArg
}

type InitList struct {
	Values []*Expr
}

type Member struct {
	Object *Expr
	Field  string
}

type Subscript struct {
	Object *Expr
	Index  *Expr
}

// Because pairs a value with an erased justification. The reason is
// irrelevant for equivalence.
type Because struct {
	Value  *Expr
	Reason *Expr
}

type AddressOf struct {
	Expr *Expr
}

type Deref struct {
	Expr *Expr
}

type ScopeOf struct {
	Expr *Expr
}

func (BoolLit) exprValue()    {}
func (NumLit) exprValue()     {}
func (StrLit) exprValue()     {}
func (BoolNot) exprValue()    {}
func (BoolBinary) exprValue() {}
func (Relation) exprValue()   {}
func (Arith) exprValue()      {}
func (Var) exprValue()        {}
func (Global) exprValue()     {}
func (App) exprValue()        {}
func (Abs) exprValue()        {}
func (Pi) exprValue()         {}
func (Sigma) exprValue()      {}
func (InitList) exprValue()   {}
func (Member) exprValue()     {}
func (Subscript) exprValue()  {}
func (Because) exprValue()    {}
func (AddressOf) exprValue()  {}
func (Deref) exprValue()      {}
func (ScopeOf) exprValue()    {}

// Body is the statement list of a function.
type Body struct {
	Stmts []Stmt
}

// Stmt is a statement inside a function body.
type Stmt interface {
	stmtNode()
	StmtPos() token.Pos
}

// Return returns from the enclosing function; Expr is nil for `return;`.
type Return struct {
	Pos  token.Pos
	Expr *Expr
}

type IfElse struct {
	Pos  token.Pos
	Cond *Expr
	Then *Body
	Else *Body // nil when omitted
}

// Impossible marks an unreachable point; Reason is an optional erased proof.
type Impossible struct {
	Pos    token.Pos
	Reason *Expr
}

// ExprStmt evaluates a function call for its effects.
type ExprStmt struct {
	Pos  token.Pos
	Expr *Expr
}

func (Return) stmtNode()     {}
func (IfElse) stmtNode()     {}
func (Impossible) stmtNode() {}
func (ExprStmt) stmtNode()   {}

func (s Return) StmtPos() token.Pos     { return s.Pos }
func (s IfElse) StmtPos() token.Pos     { return s.Pos }
func (s Impossible) StmtPos() token.Pos { return s.Pos }
func (s ExprStmt) StmtPos() token.Pos   { return s.Pos }

// IsLiteralTrue reports whether e is the literal `true`.
func IsLiteralTrue(e *Expr) bool {
	b, ok := e.Value.(BoolLit)
	return ok && b.Value
}

// IsLiteralFalse reports whether e is the literal `false`.
func IsLiteralFalse(e *Expr) bool {
	b, ok := e.Value.(BoolLit)
	return ok && !b.Value
}

// AsTrueT returns the condition of a `true_t(cond)` expression.
func AsTrueT(e *Expr) (*Expr, bool) {
	app, ok := e.Value.(App)
	if !ok || len(app.Args) != 1 {
		return nil, false
	}
	if _, ok := app.Func.Value.(TrueT); !ok {
		return nil, false
	}
	return app.Args[0], true
}

// AsArrayT returns the element type and size of an `array_t(elem, size)` expression.
func AsArrayT(e *Expr) (elem, size *Expr, ok bool) {
	app, isApp := e.Value.(App)
	if !isApp || len(app.Args) != 2 {
		return nil, nil, false
	}
	if _, isArr := app.Func.Value.(ArrayT); !isArr {
		return nil, nil, false
	}
	return app.Args[0], app.Args[1], true
}

// AsRefT returns the element type and scope of a `ref_t(elem, scope)` expression.
func AsRefT(e *Expr) (elem, scope *Expr, ok bool) {
	app, isApp := e.Value.(App)
	if !isApp || len(app.Args) != 2 {
		return nil, nil, false
	}
	if _, isRef := app.Func.Value.(RefT); !isRef {
		return nil, nil, false
	}
	return app.Args[0], app.Args[1], true
}
