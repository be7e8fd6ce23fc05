package compiler

import (
	"strconv"

	"github.com/loxlang/loxgo/lang/bytecode"
	"github.com/loxlang/loxgo/lang/token"
	"github.com/loxlang/loxgo/lang/value"
)

// parseFn is a single step of the Pratt parser: a prefix handler consumes
// the token that started the expression (already in c.p.previous); an infix
// handler consumes the operator that follows a parsed left operand.
// canAssign reports whether the current precedence level permits `=`, so
// that `a + b = c` is rejected but `a = c` inside a larger expression is not
// attempted in the first place.
type parseFn func(c *Compiler, canAssign bool)

// rule pairs a token type with the parse functions that apply to it in
// prefix and infix position, and the precedence of its infix use.
type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules is indexed by token.Type; a zero rule (every field nil/precNone)
// means the token never starts or continues an expression.
var rules = map[token.Type]rule{
	token.LPAREN: {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
	token.DOT:    {infix: nil, precedence: precNone},
	token.MINUS:  {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
	token.PLUS:   {infix: (*Compiler).binary, precedence: precTerm},
	token.SLASH:  {infix: (*Compiler).binary, precedence: precFactor},
	token.STAR:   {infix: (*Compiler).binary, precedence: precFactor},
	token.BANG:   {prefix: (*Compiler).unary},

	token.BANG_EQ: {infix: (*Compiler).binary, precedence: precEquality},
	token.EQ_EQ:   {infix: (*Compiler).binary, precedence: precEquality},
	token.GT:      {infix: (*Compiler).binary, precedence: precComparison},
	token.GT_EQ:   {infix: (*Compiler).binary, precedence: precComparison},
	token.LT:      {infix: (*Compiler).binary, precedence: precComparison},
	token.LT_EQ:   {infix: (*Compiler).binary, precedence: precComparison},

	token.IDENT:  {prefix: (*Compiler).variable},
	token.STRING: {prefix: (*Compiler).stringLiteral},
	token.NUMBER: {prefix: (*Compiler).number},

	token.AND:   {infix: (*Compiler).andExpr, precedence: precAnd},
	token.OR:    {infix: (*Compiler).orExpr, precedence: precOr},
	token.FALSE: {prefix: (*Compiler).literal},
	token.TRUE:  {prefix: (*Compiler).literal},
	token.NIL:   {prefix: (*Compiler).literal},
}

// getRule returns the parse rule for t, a zero rule if none applies.
func getRule(t token.Type) rule { return rules[t] }

// expression parses a full expression at the loosest precedence, leaving its
// value on top of the stack.
func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

// parsePrecedence parses a prefix expression and then repeatedly folds in
// infix operators whose precedence is at least prec, the core Pratt-parsing
// loop: each iteration consumes one more operator and its right operand,
// so binding gets tighter from left to right exactly where the rule table
// says it should.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefixRule := getRule(c.p.previous.Type).prefix
	if prefixRule == nil {
		c.errorAtPrevious("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefixRule(c, canAssign)

	for prec <= getRule(c.p.current.Type).precedence {
		c.advance()
		infixRule := getRule(c.p.previous.Type).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.errorAtPrevious("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(bool) {
	n, err := strconv.ParseFloat(c.p.previous.Lexeme, 64)
	if err != nil {
		c.errorAtPrevious("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(bool) {
	// Lexeme includes the surrounding quote characters.
	s := c.p.previous.Lexeme
	c.emitConstant(value.String(s[1 : len(s)-1]))
}

func (c *Compiler) literal(bool) {
	switch c.p.previous.Type {
	case token.FALSE:
		c.emitOp(bytecode.FALSE)
	case token.TRUE:
		c.emitOp(bytecode.TRUE)
	case token.NIL:
		c.emitOp(bytecode.NIL)
	}
}

func (c *Compiler) unary(bool) {
	opType := c.p.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case token.MINUS:
		c.emitOp(bytecode.NEGATE)
	case token.BANG:
		c.emitOp(bytecode.NOT)
	}
}

func (c *Compiler) binary(bool) {
	opType := c.p.previous.Type
	r := getRule(opType)
	c.parsePrecedence(r.precedence.next())

	switch opType {
	case token.BANG_EQ:
		c.emitOp(bytecode.NOT_EQUAL)
	case token.EQ_EQ:
		c.emitOp(bytecode.EQUAL)
	case token.GT:
		c.emitOp(bytecode.GREATER)
	case token.GT_EQ:
		c.emitOp(bytecode.GREATER_EQUAL)
	case token.LT:
		c.emitOp(bytecode.LESS)
	case token.LT_EQ:
		c.emitOp(bytecode.LESS_EQUAL)
	case token.PLUS:
		c.emitOp(bytecode.ADD)
	case token.MINUS:
		c.emitOp(bytecode.SUBTRACT)
	case token.STAR:
		c.emitOp(bytecode.MULTIPLY)
	case token.SLASH:
		c.emitOp(bytecode.DIVIDE)
	}
}

// andExpr implements short-circuit `and`: if the left operand is falsy, the
// jump skips the right operand and leaves the falsy left value as the
// result; otherwise the left value is popped and the right operand becomes
// the result.
func (c *Compiler) andExpr(bool) {
	endJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	c.emitOp(bytecode.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// orExpr implements short-circuit `or`: if the left operand is truthy, the jump
// skips the right operand and leaves the truthy left value as the result.
func (c *Compiler) orExpr(bool) {
	elseJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	endJump := c.emitJump(bytecode.JUMP)

	c.patchJump(elseJump)
	c.emitOp(bytecode.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

// maxArgs is the largest argument count a call expression may pass: CALL's
// operand is a single byte.
const maxArgs = 255

// call parses the argument list of a call expression already past its
// opening '(' and emits OP_CALL with the argument count.
func (c *Compiler) call(bool) {
	argCount := c.argumentList()
	c.emitOpByte(bytecode.CALL, byte(argCount))
}

func (c *Compiler) argumentList() int {
	argCount := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == maxArgs {
				c.errorAtPrevious("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return argCount
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.p.previous, canAssign)
}

// namedVariable resolves name as a local if one is in scope, else emits a
// global access by name. When canAssign is set and the next token is '=',
// it compiles an assignment instead of a read; either way the final
// instruction leaves the (possibly new) value on the stack, since assignment
// is itself an expression.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp bytecode.Opcode
	idx := c.resolveLocal(name.Lexeme)
	if idx != -1 {
		getOp, setOp = bytecode.GET_LOCAL, bytecode.SET_LOCAL
	} else {
		idx = c.identifierConstant(name.Lexeme)
		getOp, setOp = bytecode.GET_GLOBAL, bytecode.SET_GLOBAL
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitIndexed(setOp, idx)
		return
	}
	c.emitIndexed(getOp, idx)
}

// emitIndexed emits op with idx encoded as a 1-byte operand, or promotes op
// to its "_LONG" counterpart with a 2-byte operand once idx no longer fits.
func (c *Compiler) emitIndexed(op bytecode.Opcode, idx int) {
	if idx <= 0xff {
		c.emitOpByte(op, byte(idx))
		return
	}
	if idx > 0xffff {
		c.errorAtPrevious("Too many globals defined.")
		return
	}
	c.emitOp(bytecode.LongOpcode(op))
	c.emitByte(byte(idx >> 8))
	c.emitByte(byte(idx))
}

// identifierConstant adds name as a string constant to the current
// function's chunk (globals are identified by name at runtime) and returns
// its constant pool index.
func (c *Compiler) identifierConstant(name string) int {
	return c.chunk().AddConstant(value.String(name))
}
