// Package runtime implements the tree-walking interpreter and the runtime
// value system for Lox.
package runtime

import (
	"math"
	"strconv"
	"strings"
)

// Value is the interface for all runtime values.
type Value interface {
	String() string
}

// ---- Primitive values ----

// NumberVal represents a double-precision number.
type NumberVal float64

// String renders integral values without a trailing ".0". Magnitudes of
// 1e15 and above or below 1e-4 switch to exponent form, e.g. 1E+23, 1E-05.
func (v NumberVal) String() string {
	f := float64(v)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if mant, exp, ok := strings.Cut(s, "e"); ok {
		if e, _ := strconv.Atoi(exp); e >= 15 || e < -4 {
			return mant + "E" + exp
		}
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StringVal represents a string value.
type StringVal string

func (v StringVal) String() string { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) String() string { return strconv.FormatBool(bool(v)) }

// NilVal represents nil.
type NilVal struct{}

func (v NilVal) String() string { return "nil" }

// ---- Helpers ----

// IsTruthy reports whether v counts as true: nil and false are falsy,
// everything else is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilVal:
		return false
	case BoolVal:
		return bool(val)
	default:
		return true
	}
}

// valuesEqual implements ==. It never fails: values of different kinds are
// simply unequal, and reference values compare by identity. NaN equals NaN
// so that == stays reflexive.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NilVal:
		_, ok := b.(NilVal)
		return ok
	case NumberVal:
		bv, ok := b.(NumberVal)
		return ok && (av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv))))
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av == bv
	default:
		return a == b
	}
}

// Stringify renders a value the way print displays it.
func Stringify(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}
