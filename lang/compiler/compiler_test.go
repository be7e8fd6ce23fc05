package compiler_test

import (
	"testing"

	"github.com/loxlang/loxgo/lang/bytecode"
	"github.com/loxlang/loxgo/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestCompileArithmeticExpression(t *testing.T) {
	fn, err := compiler.Compile("print 1 + 2 * 3;")
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.ADD))
	require.Contains(t, fn.Chunk.Code, byte(bytecode.MULTIPLY))
	require.Contains(t, fn.Chunk.Code, byte(bytecode.PRINT))
}

func TestCompileGlobalVariable(t *testing.T) {
	fn, err := compiler.Compile("var a = 1; print a;")
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.DEFINE_GLOBAL))
	require.Contains(t, fn.Chunk.Code, byte(bytecode.GET_GLOBAL))
}

func TestCompileLocalVariable(t *testing.T) {
	fn, err := compiler.Compile("{ var a = 1; print a; }")
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.GET_LOCAL))
	require.NotContains(t, fn.Chunk.Code, byte(bytecode.DEFINE_GLOBAL))
}

func TestCompileIfElse(t *testing.T) {
	fn, err := compiler.Compile(`if (true) { print 1; } else { print 2; }`)
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.JUMP_IF_FALSE))
	require.Contains(t, fn.Chunk.Code, byte(bytecode.JUMP))
}

func TestCompileWhileLoop(t *testing.T) {
	fn, err := compiler.Compile(`var i = 0; while (i < 3) { i = i + 1; }`)
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.LOOP))
}

func TestCompileForLoopDesugarsToLoop(t *testing.T) {
	fn, err := compiler.Compile(`for (var i = 0; i < 3; i = i + 1) print i;`)
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.LOOP))
}

func TestCompileFunctionDeclarationEmitsClosure(t *testing.T) {
	fn, err := compiler.Compile(`fun add(a, b) { return a + b; } print add(1, 2);`)
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.CLOSURE))
	require.Contains(t, fn.Chunk.Code, byte(bytecode.CALL))
}

func TestCompileReportsSyntaxError(t *testing.T) {
	_, err := compiler.Compile("var ;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "[line 1]")
}

func TestCompileBatchesMultipleErrors(t *testing.T) {
	_, err := compiler.Compile("var ; var ;")
	el, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	require.Len(t, el, 2)
}

func TestCompileReturnOutsideFunctionIsError(t *testing.T) {
	_, err := compiler.Compile("return 1;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "top-level")
}

func TestCompileAssignmentToNonTargetIsError(t *testing.T) {
	_, err := compiler.Compile("1 + 2 = 3;")
	require.Error(t, err)
}

func TestCompileAndOrShortCircuitEmitsJumps(t *testing.T) {
	fn, err := compiler.Compile("print true and false or true;")
	require.NoError(t, err)
	require.Contains(t, fn.Chunk.Code, byte(bytecode.JUMP_IF_FALSE))
}
