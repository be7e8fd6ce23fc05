package compiler

import "github.com/loxlang/loxgo/lang/bytecode"

// maxLocals bounds how many local slots a single function body may declare:
// GET_LOCAL/SET_LOCAL address a slot with at most a 2-byte operand.
const maxLocals = 1 << 16

// local is a single resolved local variable: the token it was declared with
// (used for reporting and duplicate-declaration checks) and the scope depth
// it was declared at. depth is -1 between the point the local is declared
// and the point its initializer finishes, so that a read of it in its own
// initializer, as in `var a = a;`, is reported as a compile error.
type local struct {
	name  string
	depth int
}

const uninitialized = -1

// beginScope opens a new block scope.
func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope closes the current block scope, emitting POP for every local that
// falls out of scope so the runtime stack stays in sync with the compiler's
// view of it.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(bytecode.POP)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// addLocal declares name as a new local in the current scope, uninitialized
// until markInitialized is called.
func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= maxLocals {
		c.errorAtPrevious("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: uninitialized})
}

// declareVariable registers the variable named by the just-consumed
// identifier token as a local, if the compiler is inside a block scope; at
// the top level it is a no-op, deferring to defineVariable's global path. It
// rejects a second declaration of the same name within the same scope.
func (c *Compiler) declareVariable(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != uninitialized && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.errorAtPrevious("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

// markInitialized records that the most recently declared local's
// initializer has finished evaluating, making it visible to subsequent
// expressions in the same scope. At the script's top level (scope depth 0,
// where variables are globals) there is no pending local to mark.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal looks up name among the locals currently in scope, scanning
// from the innermost declaration outward so shadowing resolves correctly. It
// returns -1 if no local by that name is in scope, in which case the caller
// falls back to treating the reference as a global.
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == uninitialized {
				c.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}
