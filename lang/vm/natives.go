package vm

import (
	"fmt"
	"os"
	"time"

	"github.com/loxlang/loxgo/lang/value"
)

// defineNatives registers the VM's built-in native functions as globals,
// called once by New before any script runs.
func (vm *VM) defineNatives() {
	vm.defineNative("clock", 0, nativeClock)
	vm.defineNative("exit", 1, nativeExit)
}

func (vm *VM) defineNative(name string, arity int, fn value.NativeFunc) {
	vm.globals.Put(name, &value.Native{Name: name, Fn: fn})
	_ = arity // arity is documentation only: natives validate their own args
}

// nativeClock returns the number of seconds elapsed since the Unix epoch as
// a Lox number, read from the wall clock (so it follows any adjustment of
// the system clock).
func nativeClock(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("clock() takes no arguments")
	}
	return value.Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
}

// nativeExit terminates the host process with the given exit code, ending a
// script at that point without it falling off the end.
func nativeExit(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("exit() takes exactly one argument")
	}
	n, ok := args[0].(value.Number)
	if !ok {
		return nil, fmt.Errorf("exit() argument must be a number")
	}
	os.Exit(int(n))
	return value.Nil, nil
}
