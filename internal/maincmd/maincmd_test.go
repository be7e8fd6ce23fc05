package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxgo/internal/maincmd"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lox")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunInterpretsFileSuccessfully(t *testing.T) {
	path := writeScript(t, `print 1 + 2;`)
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lox", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})

	require.Equal(t, 0, int(code))
	require.Equal(t, "3\n", out.String())
	require.Empty(t, errOut.String())
}

func TestRunReportsCompileErrorExitCode(t *testing.T) {
	path := writeScript(t, `var ;`)
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lox", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})

	require.Equal(t, 65, int(code))
	require.Contains(t, errOut.String(), "[line 1]")
}

func TestRunReportsRuntimeErrorExitCode(t *testing.T) {
	path := writeScript(t, `print missing;`)
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lox", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})

	require.Equal(t, 70, int(code))
	require.Contains(t, errOut.String(), "Undefined variable")
}

func TestRunReportsMissingFileExitCode(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lox", "/nonexistent/path.lox"}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})

	require.Equal(t, 1, int(code))
}

func TestCompileOnlyDisassemblesWithoutRunning(t *testing.T) {
	path := writeScript(t, `print 1 + 2;`)
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lox", "-c", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})

	require.Equal(t, 0, int(code))
	require.Contains(t, out.String(), "OP_PRINT")
	require.NotContains(t, out.String(), "3\n")
}

func TestHelpFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lox", "-h"}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})

	require.Equal(t, 0, int(code))
	require.Contains(t, out.String(), "usage:")
}

func TestTooManyArgsIsUsageError(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	code := c.Main([]string{"lox", "a.lox", "b.lox"}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})

	require.Equal(t, 64, int(code))
}
