package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/raffopazzo/depc-sub002/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
const (
	precLowest = iota
	precBecause
	precOr
	precAnd
	precNot
	precRelation
	precSum
	precProduct
	precPrefix
	precPostfix
)

var arithPrecedence = map[ast.ArithOp]int{
	ast.OpPlus:  precSum,
	ast.OpMinus: precSum,
	ast.OpMult:  precProduct,
	ast.OpDiv:   precProduct,
	ast.OpMod:   precProduct,
}

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Expr renders a single expression on one line.
func Expr(e *ast.Expr) string {
	p := NewCodePrinter()
	p.printExpr(e, precLowest, false)
	return p.String()
}

// Sort renders a sort: either a type expression or "Kind".
func Sort(s ast.Sort) string {
	switch s := s.(type) {
	case *ast.Expr:
		return Expr(s)
	case ast.Kind:
		return "Kind"
	default:
		return "<unchecked>"
	}
}

// Var renders a bound variable, showing its index when it is not zero.
func Var(v ast.Var) string {
	name := v.Name
	if name == "" {
		name = "_"
	}
	if v.Idx != 0 {
		return fmt.Sprintf("%s:%d", name, v.Idx)
	}
	return name
}

// Module renders a whole module as source code.
func Module(m *ast.Module) string {
	p := NewCodePrinter()
	for i, d := range m.Decls {
		if i > 0 {
			p.write("\n")
		}
		p.printDecl(d)
	}
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *CodePrinter) printDecl(d ast.Decl) {
	switch d := d.(type) {
	case ast.StructDef:
		p.write("struct " + d.Name + " {\n")
		p.indent++
		for _, f := range d.Fields {
			p.writeIndent()
			p.printArg(f)
			p.write(";\n")
		}
		p.indent--
		p.write("};\n")
	case ast.Axiom:
		p.write("axiom " + d.Name)
		p.printSignature(d.Sig)
		p.write(";\n")
	case ast.Extern:
		if isMutableSig(d.Sig) {
			p.write("mutable ")
		}
		p.write("extern " + d.Name)
		p.printSignature(d.Sig)
		p.write(";\n")
	case ast.FuncDecl:
		if isMutableSig(d.Sig) {
			p.write("mutable ")
		}
		p.write("auto " + d.Name)
		p.printSignature(d.Sig)
		p.write(";\n")
	case ast.FuncDef:
		abs, ok := d.Value.Value.(ast.Abs)
		if !ok {
			p.write("<???>\n")
			return
		}
		if abs.Mutable {
			p.write("mutable ")
		}
		p.write("auto " + d.Name)
		p.printArgs(abs.Args)
		p.write(" -> ")
		p.printExpr(abs.Ret, precLowest, false)
		p.write(" ")
		p.printBody(abs.Body)
		p.write("\n")
	}
}

func isMutableSig(sig *ast.Expr) bool {
	pi, ok := sig.Value.(ast.Pi)
	return ok && pi.Mutable
}

func (p *CodePrinter) printSignature(sig *ast.Expr) {
	pi, ok := sig.Value.(ast.Pi)
	if !ok {
		p.write("<???>")
		return
	}
	p.printArgs(pi.Args)
	p.write(" -> ")
	p.printExpr(pi.Ret, precLowest, false)
}

func (p *CodePrinter) printArgs(args []ast.FuncArg) {
	p.write("(")
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		p.printArg(a)
	}
	p.write(")")
}

func (p *CodePrinter) printArg(a ast.FuncArg) {
	switch a.Qty {
	case ast.QtyZero:
		p.write("0 ")
	case ast.QtyOne:
		p.write("1 ")
	}
	p.printExpr(a.Type, precLowest, false)
	if a.Var != nil {
		p.write(" " + Var(*a.Var))
	}
}

func (p *CodePrinter) printBody(b *ast.Body) {
	p.write("{\n")
	p.indent++
	if b != nil {
		for _, s := range b.Stmts {
			p.printStmt(s)
		}
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) printStmt(s ast.Stmt) {
	p.writeIndent()
	switch s := s.(type) {
	case ast.Return:
		p.write("return")
		if s.Expr != nil {
			p.write(" ")
			p.printExpr(s.Expr, precLowest, false)
		}
		p.write(";\n")
	case ast.IfElse:
		p.write("if (")
		p.printExpr(s.Cond, precLowest, false)
		p.write(") ")
		p.printBody(s.Then)
		if s.Else != nil {
			p.write(" else ")
			p.printBody(s.Else)
		}
		p.write("\n")
	case ast.Impossible:
		p.write("impossible")
		if s.Reason != nil {
			p.write(" because ")
			p.printExpr(s.Reason, precLowest, false)
		}
		p.write(";\n")
	case ast.ExprStmt:
		p.printExpr(s.Expr, precLowest, false)
		p.write(";\n")
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr *ast.Expr, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.Value.(type) {
	case ast.TypeName:
		p.write("typename")
	case ast.Bool:
		p.write("bool")
	case ast.Unit:
		p.write("unit_t")
	case ast.Cstr:
		p.write("cstr_t")
	case ast.IntType:
		p.write(e.String())
	case ast.TrueT:
		p.write("true_t")
	case ast.ArrayT:
		p.write("array_t")
	case ast.RefT:
		p.write("ref_t")
	case ast.ScopeT:
		p.write("scope_t")
	case ast.Auto:
		p.write("auto")
	case ast.BoolLit:
		p.write(strconv.FormatBool(e.Value))
	case ast.NumLit:
		p.write(e.Value.String())
	case ast.StrLit:
		p.write(strconv.Quote(e.Value))
	case ast.BoolNot:
		p.open(precNot, parentPrec, false, isRight)
		p.write("not ")
		p.printExpr(e.Expr, precNot, true)
		p.close(precNot, parentPrec, false, isRight)
	case ast.BoolBinary:
		prec := precOr
		if e.Op == ast.OpAnd {
			prec = precAnd
		}
		p.printInfix(string(e.Op), prec, e.Left, e.Right, parentPrec, isRight)
	case ast.Relation:
		p.printInfix(string(e.Op), precRelation, e.Left, e.Right, parentPrec, isRight)
	case ast.Arith:
		p.printInfix(string(e.Op), arithPrecedence[e.Op], e.Left, e.Right, parentPrec, isRight)
	case ast.Var:
		p.write(Var(e))
	case ast.Global:
		if e.Imported && e.Module != "" {
			p.write(e.Module + "::")
		}
		p.write(e.Name)
	case ast.App:
		p.printExpr(e.Func, precPostfix, false)
		p.write("(")
		for i, a := range e.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(a, precLowest, false)
		}
		p.write(")")
	case ast.Abs:
		p.open(precLowest+1, parentPrec, false, isRight)
		if e.Mutable {
			p.write("mutable ")
		}
		p.write("auto ")
		p.printArgs(e.Args)
		p.write(" -> ")
		p.printExpr(e.Ret, precLowest, false)
		p.write(" ")
		p.printBody(e.Body)
		p.close(precLowest+1, parentPrec, false, isRight)
	case ast.Pi:
		p.open(precLowest+1, parentPrec, false, isRight)
		if e.Mutable {
			p.write("mutable ")
		}
		p.printArgs(e.Args)
		p.write(" -> ")
		p.printExpr(e.Ret, precLowest, false)
		p.close(precLowest+1, parentPrec, false, isRight)
	case ast.Sigma:
		p.printArgs(e.Args)
	case ast.InitList:
		p.write("{")
		for i, v := range e.Values {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(v, precLowest, false)
		}
		p.write("}")
	case ast.Member:
		p.printExpr(e.Object, precPostfix, false)
		p.write("." + e.Field)
	case ast.Subscript:
		p.printExpr(e.Object, precPostfix, false)
		p.write("[")
		p.printExpr(e.Index, precLowest, false)
		p.write("]")
	case ast.Because:
		p.printInfix("because", precBecause, e.Value, e.Reason, parentPrec, isRight)
	case ast.AddressOf:
		p.open(precPrefix, parentPrec, false, isRight)
		p.write("&")
		p.printExpr(e.Expr, precPrefix, true)
		p.close(precPrefix, parentPrec, false, isRight)
	case ast.Deref:
		p.open(precPrefix, parentPrec, false, isRight)
		p.write("*")
		p.printExpr(e.Expr, precPrefix, true)
		p.close(precPrefix, parentPrec, false, isRight)
	case ast.ScopeOf:
		p.write("scopeof(")
		p.printExpr(e.Expr, precLowest, false)
		p.write(")")
	default:
		p.write("<???>")
	}
}

// printInfix prints a left-associative binary operator.
func (p *CodePrinter) printInfix(op string, prec int, left, right *ast.Expr, parentPrec int, isRight bool) {
	needParens := p.open(prec, parentPrec, true, isRight)
	p.printExpr(left, prec, false)
	p.write(" " + op + " ")
	p.printExpr(right, prec, true)
	if needParens {
		p.write(")")
	}
}

func needsParens(prec, parentPrec int, leftAssoc, isRight bool) bool {
	if prec < parentPrec {
		return true
	}
	// For same precedence, only the left operand of a left-associative
	// operator can go without parentheses.
	return prec == parentPrec && leftAssoc && isRight
}

func (p *CodePrinter) open(prec, parentPrec int, leftAssoc, isRight bool) bool {
	if needsParens(prec, parentPrec, leftAssoc, isRight) {
		p.write("(")
		return true
	}
	return false
}

func (p *CodePrinter) close(prec, parentPrec int, leftAssoc, isRight bool) {
	if needsParens(prec, parentPrec, leftAssoc, isRight) {
		p.write(")")
	}
}
