package source_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/loxlang/loxgo/internal/source"
	"github.com/loxlang/loxgo/lang/vm"
	"github.com/stretchr/testify/require"
)

func TestReadFileMissing(t *testing.T) {
	_, err := source.ReadFile("/nonexistent/path/to/script.lox")
	require.Error(t, err)
}

func TestREPLEvaluatesLinesAndSharesGlobals(t *testing.T) {
	in := strings.NewReader("var a = 1;\nprint a + 1;\n#exit\n")
	var out, errOut bytes.Buffer
	r := source.NewREPL(in, &out, &errOut, vm.New(vm.Config{}))
	r.Run(context.Background())

	require.Contains(t, out.String(), "2\n")
	require.Empty(t, errOut.String())
}

func TestREPLReportsCompileErrorAndContinues(t *testing.T) {
	in := strings.NewReader("var ;\nprint 1;\n#exit\n")
	var out, errOut bytes.Buffer
	r := source.NewREPL(in, &out, &errOut, vm.New(vm.Config{}))
	r.Run(context.Background())

	require.Contains(t, errOut.String(), "[line 1]")
	require.Contains(t, out.String(), "1\n")
}

func TestREPLHelpMetaCommand(t *testing.T) {
	in := strings.NewReader("#help\n#exit\n")
	var out, errOut bytes.Buffer
	r := source.NewREPL(in, &out, &errOut, vm.New(vm.Config{}))
	r.Run(context.Background())

	require.Contains(t, out.String(), "Meta-commands")
}
