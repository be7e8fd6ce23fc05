package debug_test

import (
	"bytes"
	"testing"

	"github.com/loxlang/loxgo/lang/compiler"
	"github.com/loxlang/loxgo/lang/debug"
	"github.com/stretchr/testify/require"
)

func TestDisassembleFunctionIncludesHeaderAndOpcodes(t *testing.T) {
	fn, err := compiler.Compile(`print 1 + 2;`)
	require.NoError(t, err)

	var out bytes.Buffer
	debug.DisassembleFunction(&out, fn)

	s := out.String()
	require.Contains(t, s, "== script ==")
	require.Contains(t, s, "OP_CONSTANT")
	require.Contains(t, s, "OP_ADD")
	require.Contains(t, s, "OP_PRINT")
}

func TestDisassembleRecursesIntoNestedFunctions(t *testing.T) {
	fn, err := compiler.Compile(`fun f() { return 1; } f();`)
	require.NoError(t, err)

	var out bytes.Buffer
	debug.DisassembleFunction(&out, fn)

	require.Contains(t, out.String(), "== f ==")
}
