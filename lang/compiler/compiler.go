// Package compiler implements Lox's single-pass compiler: a Pratt parser
// that emits bytecode directly as it recognizes each expression and
// statement, without ever building an intermediate syntax tree. A Compiler
// exists per function body; compiling a nested function declaration pushes a
// new Compiler that shares the outer one's scanner and token stream.
package compiler

import (
	"github.com/loxlang/loxgo/lang/bytecode"
	"github.com/loxlang/loxgo/lang/scanner"
	"github.com/loxlang/loxgo/lang/token"
	"github.com/loxlang/loxgo/lang/value"
)

// functionType distinguishes the implicit top-level script from an explicit
// function declaration: the script's implicit trailing OP_RETURN returns
// nil, and it is never callable by name.
type functionType int

const (
	typeScript functionType = iota
	typeFunction
)

// parser holds the token stream and error-recovery state shared by every
// Compiler working on one source string: the scanner, the current and
// previous tokens, and the batched diagnostics collected so far.
type parser struct {
	scanner *scanner.Scanner

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errors    ErrorList
}

// Compiler compiles one function body (or the top-level script) into a
// value.Function. Nested function declarations spawn a child Compiler that
// shares the parent's parser; locals are not shared, since Lox functions
// compiled here do not capture enclosing locals (see value.Closure).
type Compiler struct {
	p *parser

	enclosing *Compiler
	function  *value.Function
	funType   functionType

	locals     []local
	scopeDepth int
}

// Compile compiles src as a complete Lox program and returns the top-level
// script function, ready to run, or a non-nil error (an ErrorList) if any
// compile error was reported.
func Compile(src string) (*value.Function, error) {
	p := &parser{scanner: scanner.New(src)}
	c := newCompiler(p, nil, typeScript, "")

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if p.hadError {
		return nil, p.errors.Err()
	}
	return fn, nil
}

// newCompiler starts a Compiler for one function body (enclosing is nil for
// the top-level script). Slot 0 of every function's locals is reserved and
// unnamed, matching the layout CALL expects when it sets up a new frame's
// base: argument 1 lands in slot 1, not slot 0.
func newCompiler(p *parser, enclosing *Compiler, funType functionType, name string) *Compiler {
	c := &Compiler{
		p:         p,
		enclosing: enclosing,
		function:  &value.Function{Name: name, Chunk: &value.Chunk{}},
		funType:   funType,
	}
	c.locals = append(c.locals, local{name: "", depth: 0})
	return c
}

// advance moves to the next non-error token, reporting every ERROR token the
// scanner produces along the way.
func (c *Compiler) advance() {
	c.p.previous = c.p.current
	for {
		c.p.current = c.p.scanner.ScanToken()
		if c.p.current.Type != token.ERROR {
			break
		}
		c.errorAtCurrent(c.p.current.Lexeme)
	}
}

// check reports whether the current token has the given type.
func (c *Compiler) check(t token.Type) bool { return c.p.current.Type == t }

// match consumes the current token and returns true if it has type t, else
// leaves it unconsumed and returns false.
func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

// consume advances past the current token if it has type t, else reports
// msg as a compile error at the current token.
func (c *Compiler) consume(t token.Type, msg string) {
	if c.p.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.p.current, msg) }
func (c *Compiler) errorAtPrevious(msg string) { c.errorAt(c.p.previous, msg) }

// errorAt reports msg at tok. Once the parser has entered panic mode,
// further errors are suppressed until synchronize finds a recovery point, so
// that one mistake does not cascade into a flood of misleading follow-on
// errors.
func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.p.panicMode {
		return
	}
	c.p.panicMode = true
	c.p.hadError = true

	e := &CompileError{Line: tok.Line, Message: msg}
	switch tok.Type {
	case token.EOF:
		e.AtEnd = true
	case token.ERROR:
	default:
		e.Where = tok.Lexeme
	}
	c.p.errors.Add(e)
}

// line returns the source line blamed for code emitted right after
// consuming the previous token, matching the token that drove the emission.
func (c *Compiler) line() int { return c.p.previous.Line }

func (c *Compiler) emitByte(b byte)              { c.chunk().Write(b, c.line()) }
func (c *Compiler) emitOp(op bytecode.Opcode)     { c.chunk().WriteOp(op, c.line()) }
func (c *Compiler) emitOpByte(op bytecode.Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

// emitReturn emits the implicit `return;` appended to every function body:
// nil for a bare return, matching a script's lack of an explicit result.
func (c *Compiler) emitReturn() {
	c.emitOp(bytecode.NIL)
	c.emitOp(bytecode.RETURN)
}

// emitConstant emits the instructions that push v, choosing OP_CONSTANT or
// OP_CONSTANT_LONG automatically.
func (c *Compiler) emitConstant(v value.Value) {
	if err := c.chunk().WriteConstant(v, c.line()); err != nil {
		c.errorAtPrevious(err.Error())
	}
}

// emitJump emits a jump opcode with a placeholder 2-byte operand and returns
// the offset of that operand, to be back-patched once the jump target is
// known.
func (c *Compiler) emitJump(op bytecode.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump back-patches the jump operand at offset to land on the
// instruction about to be emitted next.
func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.errorAtPrevious("Too much code to jump over.")
		return
	}
	c.chunk().PatchByte(offset, byte(jump>>8))
	c.chunk().PatchByte(offset+1, byte(jump))
}

// emitLoop emits OP_LOOP with the back-offset to loopStart, the instruction
// to resume execution at.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.LOOP)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.errorAtPrevious("Loop body too large.")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) chunk() *value.Chunk { return c.function.Chunk }

// endCompiler emits the function's implicit trailing return and returns the
// completed function.
func (c *Compiler) endCompiler() *value.Function {
	c.emitReturn()
	return c.function
}

// synchronize skips tokens after a compile error until it finds a plausible
// statement boundary, so that a single mistake does not cascade into a wall
// of spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.p.panicMode = false

	for c.p.current.Type != token.EOF {
		if c.p.previous.Type == token.SEMI {
			return
		}
		switch c.p.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}
