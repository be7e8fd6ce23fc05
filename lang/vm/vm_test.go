package vm_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/loxlang/loxgo/lang/compiler"
	"github.com/loxlang/loxgo/lang/vm"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) string {
	t.Helper()
	fn, err := compiler.Compile(src)
	require.NoError(t, err)

	var out bytes.Buffer
	m := vm.New(vm.Config{})
	m.Stdout = &out
	require.NoError(t, m.Interpret(context.Background(), fn))
	return out.String()
}

func TestArithmetic(t *testing.T) {
	require.Equal(t, "7\n", run(t, "print 1 + 2 * 3;"))
	require.Equal(t, "2\n", run(t, "print (1 + 3) / 2;"))
}

func TestStringConcatenation(t *testing.T) {
	require.Equal(t, "helloworld\n", run(t, `print "hello" + "world";`))
}

func TestGlobalsAndAssignment(t *testing.T) {
	require.Equal(t, "2\n", run(t, "var a = 1; a = a + 1; print a;"))
}

func TestLocalsAndShadowing(t *testing.T) {
	src := `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`
	require.Equal(t, "inner\nouter\n", run(t, src))
}

func TestIfElse(t *testing.T) {
	require.Equal(t, "yes\n", run(t, `if (1 < 2) print "yes"; else print "no";`))
	require.Equal(t, "no\n", run(t, `if (1 > 2) print "yes"; else print "no";`))
}

func TestWhileLoop(t *testing.T) {
	src := `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
	`
	require.Equal(t, "0\n1\n2\n", run(t, src))
}

func TestForLoop(t *testing.T) {
	src := `for (var i = 0; i < 3; i = i + 1) print i;`
	require.Equal(t, "0\n1\n2\n", run(t, src))
}

func TestAndOrShortCircuit(t *testing.T) {
	require.Equal(t, "false\n", run(t, `print false and (1/0 > 0);`))
	require.Equal(t, "true\n", run(t, `print true or (1/0 > 0);`))
}

func TestFunctionCallAndReturn(t *testing.T) {
	src := `
		fun add(a, b) {
			return a + b;
		}
		print add(1, 2);
	`
	require.Equal(t, "3\n", run(t, src))
}

func TestRecursiveFunction(t *testing.T) {
	src := `
		fun fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`
	require.Equal(t, "55\n", run(t, src))
}

func TestClockNativeReturnsNumber(t *testing.T) {
	src := `print clock() >= 0;`
	require.Equal(t, "true\n", run(t, src))
}

func TestRuntimeErrorDivisionByZero(t *testing.T) {
	fn, err := compiler.Compile("print 1 / 0;")
	require.NoError(t, err)

	m := vm.New(vm.Config{})
	m.Stdout = &bytes.Buffer{}
	err = m.Interpret(context.Background(), fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Division by zero.")
}

func TestRuntimeErrorUndefinedGlobal(t *testing.T) {
	fn, err := compiler.Compile("print missing;")
	require.NoError(t, err)

	m := vm.New(vm.Config{})
	m.Stdout = &bytes.Buffer{}
	err = m.Interpret(context.Background(), fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable 'missing'")
}

func TestRuntimeErrorTypeMismatchIncludesTrace(t *testing.T) {
	fn, err := compiler.Compile(`fun f() { return 1 + "a"; } f();`)
	require.NoError(t, err)

	m := vm.New(vm.Config{})
	m.Stdout = &bytes.Buffer{}
	err = m.Interpret(context.Background(), fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
	require.Contains(t, err.Error(), "in f")
	require.Contains(t, err.Error(), "in script")
}

func TestStepLimitAborts(t *testing.T) {
	fn, err := compiler.Compile(`while (true) { }`)
	require.NoError(t, err)

	m := vm.New(vm.Config{MaxSteps: 50})
	m.Stdout = &bytes.Buffer{}
	err = m.Interpret(context.Background(), fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "step limit")
}

func TestCallFrameLimitAborts(t *testing.T) {
	fn, err := compiler.Compile(`fun rec(n) { return rec(n + 1); } rec(0);`)
	require.NoError(t, err)

	m := vm.New(vm.Config{MaxCallFrames: 8})
	m.Stdout = &bytes.Buffer{}
	err = m.Interpret(context.Background(), fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Stack overflow")
}

func TestContextCancellationAbortsExecution(t *testing.T) {
	fn, err := compiler.Compile(`while (true) { }`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := vm.New(vm.Config{})
	m.Stdout = &bytes.Buffer{}
	err = m.Interpret(ctx, fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cancelled")
}
