package value

import (
	"bytes"
	"fmt"
	"reflect"
)

// String is Lox's text type: an immutable sequence of bytes. Equality and
// ordering are by content.
type String string

func (s String) String() string { return string(s) }
func (s String) IsTruthy() bool { return true }
func (s String) Clone() Value   { return s }
func (s String) Equals(other Value) bool {
	o, ok := other.(String)
	return ok && s == o
}

// Function is a compiler-produced, immutable-after-compilation function:
// a name, its parameter arity, and the chunk of bytecode compiled for its
// body. The compiler represents the top-level script as a Function with an
// empty name and arity 0; String renders it (or a Function named "<script>")
// as "<script>".
type Function struct {
	Name  string
	Arity int
	Chunk *Chunk
}

func (f *Function) String() string {
	if f.Name == "" || f.Name == "<script>" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
func (f *Function) IsTruthy() bool { return true }
func (f *Function) Clone() Value {
	return &Function{Name: f.Name, Arity: f.Arity, Chunk: f.Chunk.Clone()}
}

// Equals compares functions structurally: same name, arity and compiled
// code. Functions are never pointer-identical across separate compiles, so
// structural comparison is what lets two equivalent compiled functions
// compare equal.
func (f *Function) Equals(other Value) bool {
	o, ok := other.(*Function)
	if !ok || f.Name != o.Name || f.Arity != o.Arity {
		return false
	}
	return bytes.Equal(f.Chunk.Code, o.Chunk.Code)
}

// NativeFunc is the signature a host-provided native function must
// implement: given the call's arguments, produce a result value or an
// error.
type NativeFunc func(args []Value) (Value, error)

// Native wraps a host function pointer exposed as a Lox value. Equality is
// pointer identity of the wrapped function.
type Native struct {
	Name string
	Fn   NativeFunc
}

func (n *Native) String() string  { return "<native fn>" }
func (n *Native) IsTruthy() bool  { return true }
func (n *Native) Clone() Value    { return n }
func (n *Native) Equals(other Value) bool {
	o, ok := other.(*Native)
	if !ok {
		return false
	}
	return reflect.ValueOf(n.Fn).Pointer() == reflect.ValueOf(o.Fn).Pointer()
}

// Closure wraps a reference to a Function. The source language this VM
// implements declares closures as a distinct object even though upvalues are
// not implemented: captured variables from enclosing functions are not
// supported, so a Closure today behaves identically to its underlying
// Function. The wrapper is kept so that upvalue support can be added later
// without changing the bytecode contract (OP_CLOSURE already exists).
type Closure struct {
	Function *Function
}

func (c *Closure) String() string {
	name := c.Function.Name
	if name == "" {
		name = "<script>"
	}
	return fmt.Sprintf("<closure %s>", name)
}
func (c *Closure) IsTruthy() bool { return true }
func (c *Closure) Clone() Value {
	return &Closure{Function: c.Function.Clone().(*Function)}
}
func (c *Closure) Equals(other Value) bool {
	o, ok := other.(*Closure)
	return ok && c.Function.Equals(o.Function)
}
