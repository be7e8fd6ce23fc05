// Package maincmd implements the lox command-line tool: no file argument
// enters the REPL, one file argument interprets it, and -c <path> compiles
// and disassembles it without running it.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"

	"github.com/loxlang/loxgo/internal/source"
	"github.com/loxlang/loxgo/lang/compiler"
	"github.com/loxlang/loxgo/lang/debug"
	"github.com/loxlang/loxgo/lang/vm"
)

const binName = "lox"

const (
	exitOK           mainer.ExitCode = 0
	exitCompileError mainer.ExitCode = 65
	exitRuntimeError mainer.ExitCode = 70
	exitFileError    mainer.ExitCode = 1
	exitUsageError   mainer.ExitCode = 64
)

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the Lox programming language.

With no <path>, enter the REPL. With <path>, load and interpret that file.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -c --compile              Compile <path> and print its disassembly
                                 instead of running it.
`, binName)
)

// Cmd is the lox command, wired to the mainer.Parser flag-parsing
// convention: exported bool fields carry a `flag` struct tag naming their
// short and long spellings.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help        bool `flag:"h,help"`
	Version     bool `flag:"v,version"`
	CompileOnly bool `flag:"c,compile"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if c.CompileOnly && len(c.args) == 0 {
		return errors.New("-c requires a <path> argument")
	}
	if len(c.args) > 1 {
		return errors.New("at most one <path> argument is accepted")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: "LOX_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsageError
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return exitOK
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return exitOK
	}

	var cfg vm.Config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return exitUsageError
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if c.CompileOnly {
		return c.compile(stdio, c.args[0])
	}
	if len(c.args) == 1 {
		return c.run(ctx, stdio, cfg, c.args[0])
	}
	return c.repl(ctx, stdio, cfg)
}

func (c *Cmd) compile(stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := source.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitFileError
	}
	fn, err := compiler.Compile(src)
	if fn != nil {
		debug.DisassembleFunction(stdio.Stdout, fn)
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitCompileError
	}
	return exitOK
}

func (c *Cmd) run(ctx context.Context, stdio mainer.Stdio, cfg vm.Config, path string) mainer.ExitCode {
	src, err := source.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitFileError
	}
	fn, err := compiler.Compile(src)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitCompileError
	}

	m := vm.New(cfg)
	m.Stdout, m.Stderr, m.Stdin = stdio.Stdout, stdio.Stderr, stdio.Stdin
	if err := m.Interpret(ctx, fn); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitRuntimeError
	}
	return exitOK
}

func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio, cfg vm.Config) mainer.ExitCode {
	m := vm.New(cfg)
	m.Stdout, m.Stderr, m.Stdin = stdio.Stdout, stdio.Stderr, stdio.Stdin
	r := source.NewREPL(stdio.Stdin, stdio.Stdout, stdio.Stderr, m)
	r.Run(ctx)
	return exitOK
}
