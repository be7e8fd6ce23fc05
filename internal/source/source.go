// Package source implements source acquisition for the lox command: reading
// a whole script file, and driving the REPL's line-by-line read loop with
// its `#`-prefixed meta-commands.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/loxlang/loxgo/lang/compiler"
	"github.com/loxlang/loxgo/lang/debug"
	"github.com/loxlang/loxgo/lang/vm"
)

// ReadFile reads the complete contents of path as a Lox script.
func ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(b), nil
}

// REPL drives an interactive read-compile-run loop over in, writing prompts
// and output to out and err. It owns the VM instance for the session, so
// globals declared on one line remain visible to the next.
type REPL struct {
	in  *bufio.Scanner
	out io.Writer
	err io.Writer
	m   *vm.VM

	// compileOnly mirrors #interpret: when set, a line is compiled and
	// disassembled but never run.
	compileOnly bool
}

// NewREPL returns a REPL reading lines from in and sharing m across every
// evaluated line.
func NewREPL(in io.Reader, out, err io.Writer, m *vm.VM) *REPL {
	return &REPL{in: bufio.NewScanner(in), out: out, err: err, m: m}
}

// Run executes the read-eval-print loop until the input is exhausted, a
// `#exit` meta-command is seen, or ctx is cancelled (a SIGINT aborts the
// line currently being interpreted, then ends the loop). It never returns
// an error for a line that fails to compile or run: those are reported to
// err and the loop continues, the same way a shell keeps prompting after a
// bad command.
func (r *REPL) Run(ctx context.Context) {
	fmt.Fprintln(r.out, "loxgo REPL. Type #help for meta-commands, #exit to quit.")
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return
		}
		line := r.in.Text()

		if strings.HasPrefix(line, "#") {
			if !r.meta(line) {
				return
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.eval(ctx, line)
	}
}

// meta handles a `#`-prefixed command and reports whether the REPL should
// keep running.
func (r *REPL) meta(line string) bool {
	switch strings.TrimSpace(line) {
	case "#exit":
		return false
	case "#help":
		fmt.Fprintln(r.out, helpText)
	case "#clear":
		fmt.Fprint(r.out, "\033[H\033[2J")
	case "#debug_trace":
		r.m.TraceExecution = !r.m.TraceExecution
		fmt.Fprintf(r.out, "instruction tracing: %v\n", r.m.TraceExecution)
	case "#debug_stack":
		r.m.TraceStack = !r.m.TraceStack
		fmt.Fprintf(r.out, "stack tracing: %v\n", r.m.TraceStack)
	case "#interpret":
		r.compileOnly = !r.compileOnly
		fmt.Fprintf(r.out, "compile-only mode: %v\n", r.compileOnly)
	default:
		fmt.Fprintln(r.err, "Unknown command")
	}
	return true
}

func (r *REPL) eval(ctx context.Context, line string) {
	fn, err := compiler.Compile(line)
	if err != nil {
		fmt.Fprintln(r.err, err)
		return
	}
	if r.compileOnly {
		debug.DisassembleFunction(r.out, fn)
		return
	}
	if r.m.TraceExecution {
		debug.DisassembleFunction(r.err, fn)
	}
	if err := r.m.Interpret(ctx, fn); err != nil {
		fmt.Fprintln(r.err, err)
	}
}

const helpText = `Meta-commands:
  #exit          quit the REPL
  #help          show this text
  #clear         clear the screen
  #debug_trace   toggle per-instruction execution tracing
  #debug_stack   toggle per-instruction stack tracing
  #interpret     toggle between execution and compile-only disassembly`
