package compiler

import (
	"github.com/loxlang/loxgo/lang/bytecode"
	"github.com/loxlang/loxgo/lang/token"
)

// maxParams bounds a function's declared parameter count: CALL's argument
// count operand is a single byte, so a function can never be declared with
// more parameters than a call could ever supply.
const maxParams = 255

// declaration parses one top-level or block-level declaration and recovers
// to the next statement boundary if it turns out to contain a compile
// error, so that one mistake does not abort the whole compile.
func (c *Compiler) declaration() {
	switch {
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.p.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) funDeclaration() {
	idx := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.compileFunction(typeFunction)
	c.defineVariable(idx)
}

// compileFunction compiles a function's parameter list and body in a fresh
// nested Compiler, then emits OP_CLOSURE in the enclosing chunk to wrap the
// compiled value.Function as a runtime value.
func (c *Compiler) compileFunction(funType functionType) {
	fc := newCompiler(c.p, c, funType, c.p.previous.Lexeme)
	fc.beginScope()

	fc.consume(token.LPAREN, "Expect '(' after function name.")
	if !fc.check(token.RPAREN) {
		for {
			fc.function.Arity++
			if fc.function.Arity > maxParams {
				fc.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramIdx := fc.parseVariable("Expect parameter name.")
			fc.defineVariable(paramIdx)
			if !fc.match(token.COMMA) {
				break
			}
		}
	}
	fc.consume(token.RPAREN, "Expect ')' after parameters.")
	fc.consume(token.LBRACE, "Expect '{' before function body.")
	fc.block()

	fn := fc.endCompiler()

	idx := c.chunk().AddConstant(fn)
	c.emitIndexed(bytecode.CLOSURE, idx)
}

func (c *Compiler) varDeclaration() {
	idx := c.parseVariable("Expect variable name.")

	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(bytecode.NIL)
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(idx)
}

// parseVariable consumes the identifier token naming a variable being
// declared, declares it as a local if inside a scope, and returns the
// constant pool index to use for a global declaration (ignored for locals).
func (c *Compiler) parseVariable(errMsg string) int {
	c.consume(token.IDENT, errMsg)
	name := c.p.previous.Lexeme
	c.declareVariable(name)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

// defineVariable makes a declared variable visible: for a local this is
// just marking it initialized (its value is already sitting in its stack
// slot); for a global it emits OP_DEFINE_GLOBAL to pop the initializer's
// value off the stack and into the globals table.
func (c *Compiler) defineVariable(idx int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitIndexed(bytecode.DEFINE_GLOBAL, idx)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

// block parses declarations until the closing '}', already past the opening
// brace; the caller manages scope begin/end since function bodies use block
// without opening a second scope on top of the parameter scope.
func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after value.")
	c.emitOp(bytecode.PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(bytecode.POP)
}

func (c *Compiler) returnStatement() {
	if c.funType == typeScript {
		c.errorAtPrevious("Can't return from top-level code.")
	}
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(token.SEMI, "Expect ';' after return value.")
	c.emitOp(bytecode.RETURN)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	c.emitOp(bytecode.POP)
	c.statement()

	elseJump := c.emitJump(bytecode.JUMP)
	c.patchJump(thenJump)
	c.emitOp(bytecode.POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	c.emitOp(bytecode.POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.POP)
}

// forStatement desugars the C-style for loop into the same while-loop
// bytecode shape, entirely at compile time: no new runtime construct is
// needed for `for`.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.JUMP_IF_FALSE)
		c.emitOp(bytecode.POP)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(bytecode.JUMP)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(bytecode.POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.POP)
	}
	c.endScope()
}
