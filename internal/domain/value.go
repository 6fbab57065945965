package domain

import (
	"math"
	"time"
)

// Value is a nullable number read from (or derived for) a spreadsheet cell.
// Arithmetic on a null operand yields null, like a blank cell in a formula chain.
type Value struct {
	Float float64
	Valid bool
}

// Null is the blank cell.
var Null = Value{}

// Num wraps a present number.
func Num(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Or returns the number or fallback when the value is null.
func (v Value) Or(fallback float64) float64 {
	if !v.Valid {
		return fallback
	}
	return v.Float
}

// OrValue returns v when present, otherwise fallback (which may itself be null).
func (v Value) OrValue(fallback Value) Value {
	if v.Valid {
		return v
	}
	return fallback
}

func (v Value) Add(o Value) Value {
	if !v.Valid || !o.Valid {
		return Null
	}
	return Num(v.Float + o.Float)
}

func (v Value) Sub(o Value) Value {
	if !v.Valid || !o.Valid {
		return Null
	}
	return Num(v.Float - o.Float)
}

func (v Value) Mul(o Value) Value {
	if !v.Valid || !o.Valid {
		return Null
	}
	return Num(v.Float * o.Float)
}

// Div returns null when either side is null or the divisor is zero.
func (v Value) Div(o Value) Value {
	if !v.Valid || !o.Valid || o.Float == 0 {
		return Null
	}
	return Num(v.Float / o.Float)
}

func (v Value) Neg() Value {
	if !v.Valid {
		return Null
	}
	return Num(-v.Float)
}

// Max returns the larger operand, null if either is null.
func Max(a, b Value) Value {
	if !a.Valid || !b.Valid {
		return Null
	}
	return Num(math.Max(a.Float, b.Float))
}

// Gt reports v > x; a null value compares false.
func (v Value) Gt(x float64) bool {
	return v.Valid && v.Float > x
}

// Finite reports whether v is present and neither NaN nor infinite.
func (v Value) Finite() bool {
	return v.Valid && !math.IsNaN(v.Float) && !math.IsInf(v.Float, 0)
}

// Cell converts the value to a table cell: float64 or nil.
func (v Value) Cell() any {
	if !v.Valid {
		return nil
	}
	return v.Float
}

// IntCell converts an integral value to int64, otherwise behaves like Cell.
func (v Value) IntCell() any {
	if !v.Valid {
		return nil
	}
	if v.Float == math.Trunc(v.Float) && math.Abs(v.Float) < 1e15 {
		return int64(v.Float)
	}
	return v.Float
}

// Date is a nullable calendar date. Text keeps the raw cell when it could not be parsed.
type Date struct {
	Time  time.Time
	Valid bool
	Text  string
}

// Cell converts the date to a table cell: time.Time, the raw text, or nil.
func (d Date) Cell() any {
	if d.Valid {
		return d.Time
	}
	if d.Text != "" {
		return d.Text
	}
	return nil
}

// StringCell maps an empty string to nil.
func StringCell(s string) any {
	if s == "" {
		return nil
	}
	return s
}
