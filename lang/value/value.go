// Package value implements the tagged value model shared by the compiler's
// constant pool and the VM's stack: nil, boolean, number, and heap object
// (string, function, native, closure). Concrete Go types implement the
// common Value interface directly, playing the role of the tagged union's
// variants.
package value

import "strconv"

// Value is implemented by every value the VM's stack and the compiler's
// constant pool may hold.
type Value interface {
	// String renders the value the way Lox's `print` statement does.
	String() string
	// IsTruthy reports whether the value is truthy: everything except nil and
	// false is truthy.
	IsTruthy() bool
	// Equals reports whether the receiver and other hold the same value.
	// Values of different concrete variants are never equal.
	Equals(other Value) bool
	// Clone returns a value holding the same data, safe to place in a
	// different constant pool than the receiver's.
	Clone() Value
}

// Nil is the singular value of NilType, Lox's absence-of-a-value.
type NilType struct{}

// Nil is the only Value of type NilType.
var Nil = NilType{}

func (NilType) String() string        { return "nil" }
func (NilType) IsTruthy() bool        { return false }
func (NilType) Clone() Value          { return Nil }
func (NilType) Equals(other Value) bool {
	_, ok := other.(NilType)
	return ok
}

// Bool is Lox's boolean type.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) IsTruthy() bool { return bool(b) }
func (b Bool) Clone() Value   { return b }
func (b Bool) Equals(other Value) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// Number is Lox's single numeric type, a 64-bit IEEE-754 double.
type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}
func (n Number) IsTruthy() bool { return true }
func (n Number) Clone() Value   { return n }
func (n Number) Equals(other Value) bool {
	o, ok := other.(Number)
	return ok && n == o
}
