package ast

import (
	"fmt"
	"math/big"
)

// TypeName is the type of types; its sort is Kind.
type TypeName struct{}

type Bool struct{}
type Unit struct{}
type Cstr struct{}

// IntType is one of the sized integer types i8_t .. u64_t.
type IntType struct {
	Signed bool
	Width  int // 8, 16, 32 or 64
}

// TrueT is the proposition constructor: true_t(cond) is inhabited iff cond holds.
type TrueT struct{}

// ArrayT is the array type constructor: array_t(elem, size).
type ArrayT struct{}

// RefT is the reference type constructor: ref_t(elem, scope).
type RefT struct{}

// ScopeT is the type of lexical scopes.
type ScopeT struct{}

// Auto asks proof search to synthesize a value of the expected type.
type Auto struct{}

func (TypeName) exprValue() {}
func (Bool) exprValue()     {}
func (Unit) exprValue()     {}
func (Cstr) exprValue()     {}
func (IntType) exprValue()  {}
func (TrueT) exprValue()    {}
func (ArrayT) exprValue()   {}
func (RefT) exprValue()     {}
func (ScopeT) exprValue()   {}
func (Auto) exprValue()     {}

func (t IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d_t", t.Width)
	}
	return fmt.Sprintf("u%d_t", t.Width)
}

// Min returns the smallest value representable by t.
func (t IntType) Min() *big.Int {
	if !t.Signed {
		return new(big.Int)
	}
	return new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(t.Width-1)))
}

// Max returns the largest value representable by t.
func (t IntType) Max() *big.Int {
	bits := t.Width
	if t.Signed {
		bits--
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return m.Sub(m, big.NewInt(1))
}

// InRange reports whether v is representable by t.
func (t IntType) InRange(v *big.Int) bool {
	return v.Cmp(t.Min()) >= 0 && v.Cmp(t.Max()) <= 0
}

// Wrap reduces v modulo 2^Width into the range of t, like machine arithmetic.
func (t IntType) Wrap(v *big.Int) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(t.Width))
	r := new(big.Int).Mod(v, mod)
	if t.Signed && r.Cmp(t.Max()) > 0 {
		r.Sub(r, mod)
	}
	return r
}

// IntTypes lists all sized integer types in declaration order.
var IntTypes = []IntType{
	{Signed: true, Width: 8},
	{Signed: true, Width: 16},
	{Signed: true, Width: 32},
	{Signed: true, Width: 64},
	{Signed: false, Width: 8},
	{Signed: false, Width: 16},
	{Signed: false, Width: 32},
	{Signed: false, Width: 64},
}

// IntTypeByName maps "i32_t" and friends to their IntType.
func IntTypeByName(name string) (IntType, bool) {
	for _, t := range IntTypes {
		if t.String() == name {
			return t, true
		}
	}
	return IntType{}, false
}

// Qty is the quantity attached to a binder: how many times it may be used at runtime.
type Qty int

const (
	QtyZero Qty = iota
	QtyOne
	QtyMany
)

func (q Qty) String() string {
	switch q {
	case QtyZero:
		return "0"
	case QtyOne:
		return "1"
	default:
		return "many"
	}
}

// Add sums two quantities, saturating at many.
func (q Qty) Add(o Qty) Qty {
	if s := q + o; s < QtyMany {
		return s
	}
	return QtyMany
}

// Mul multiplies two quantities: zero absorbs, one is neutral.
func (q Qty) Mul(o Qty) Qty {
	if q == QtyZero || o == QtyZero {
		return QtyZero
	}
	if q == QtyOne {
		return o
	}
	if o == QtyOne {
		return q
	}
	return QtyMany
}

// Max returns the larger of two quantities.
func (q Qty) Max(o Qty) Qty {
	if q > o {
		return q
	}
	return o
}
