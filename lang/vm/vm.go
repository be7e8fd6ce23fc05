// Package vm implements the stack-based virtual machine that executes
// bytecode produced by lang/compiler: a single dispatch loop over a growable
// value stack and an explicit call-frame stack, plus the natives and
// globals table available to every running script.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dolthub/swiss"
	"github.com/loxlang/loxgo/lang/bytecode"
	"github.com/loxlang/loxgo/lang/value"
)

// VM executes one compiled program at a time. A VM instance is not safe for
// concurrent use; run one script to completion (or to a reported error)
// before reusing it for another, or start a fresh instance per script.
type VM struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	TraceExecution bool
	TraceStack     bool

	cfg     Config
	globals *swiss.Map[string, value.Value]

	frames []callFrame
	stack  []value.Value

	steps     uint64
	cancelled atomic.Bool
}

// New returns a VM configured with cfg and the standard natives (clock,
// exit) already registered as globals.
func New(cfg Config) *VM {
	vm := &VM{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
		cfg:     cfg,
		globals: swiss.NewMap[string, value.Value](32),
	}
	vm.defineNatives()
	return vm
}

// Interpret runs a compiled top-level script function to completion. The
// script's final expression-statement value is not tracked: Interpret
// returns nil on success and a *RuntimeError on failure, including when a
// resource limit is exceeded. Cancelling ctx (a SIGINT during a
// long-running script, say) aborts execution at the next instruction
// boundary with a RuntimeError whose message includes the text of
// ctx.Err(); the context error itself is not wrapped.
func (vm *VM) Interpret(ctx context.Context, fn *value.Function) error {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.steps = 0
	vm.cancelled.Store(false)

	if ctx != nil && ctx.Done() != nil {
		done := ctx.Done()
		go func() {
			<-done
			vm.cancelled.Store(true)
		}()
	}

	closure := &value.Closure{Function: fn}
	vm.push(closure)
	vm.frames = append(vm.frames, callFrame{closure: closure, slotsBase: 0})

	return vm.run(ctx)
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) run(ctx context.Context) error {
	frame := &vm.frames[len(vm.frames)-1]

	readByte := func() byte {
		b := frame.chunk().Code[frame.ip]
		frame.ip++
		return b
	}
	readUint16 := func() uint16 {
		hi := readByte()
		lo := readByte()
		return uint16(hi)<<8 | uint16(lo)
	}
	readConstant := func(long bool) value.Value {
		var idx int
		if long {
			idx = int(readUint16())
		} else {
			idx = int(readByte())
		}
		return frame.chunk().Constants[idx]
	}

	for {
		if vm.cancelled.Load() {
			return vm.runtimeError(frame, "Execution cancelled: %s.", ctx.Err())
		}
		if vm.cfg.MaxSteps > 0 {
			vm.steps++
			if vm.steps > uint64(vm.cfg.MaxSteps) {
				return vm.runtimeError(frame, "Execution step limit exceeded.")
			}
		}
		if vm.TraceExecution {
			fmt.Fprintf(vm.Stderr, "%04d %s\n", frame.ip, bytecode.Opcode(frame.chunk().Code[frame.ip]))
		}
		if vm.TraceStack {
			vm.printStack()
		}

		op := bytecode.Opcode(readByte())
		switch op {
		case bytecode.CONSTANT:
			vm.push(readConstant(false))
		case bytecode.CONSTANT_LONG:
			vm.push(readConstant(true))

		case bytecode.NIL:
			vm.push(value.Nil)
		case bytecode.TRUE:
			vm.push(value.Bool(true))
		case bytecode.FALSE:
			vm.push(value.Bool(false))
		case bytecode.POP:
			vm.pop()

		case bytecode.GET_LOCAL:
			vm.push(vm.stack[frame.slotsBase+int(readByte())])
		case bytecode.GET_LOCAL_LONG:
			vm.push(vm.stack[frame.slotsBase+int(readUint16())])
		case bytecode.SET_LOCAL:
			vm.stack[frame.slotsBase+int(readByte())] = vm.peek(0)
		case bytecode.SET_LOCAL_LONG:
			vm.stack[frame.slotsBase+int(readUint16())] = vm.peek(0)

		case bytecode.GET_GLOBAL, bytecode.GET_GLOBAL_LONG:
			name := string(readConstant(op == bytecode.GET_GLOBAL_LONG).(value.String))
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError(frame, "Undefined variable '%s'.", name)
			}
			vm.push(v)

		case bytecode.DEFINE_GLOBAL, bytecode.DEFINE_GLOBAL_LONG:
			name := string(readConstant(op == bytecode.DEFINE_GLOBAL_LONG).(value.String))
			vm.globals.Put(name, vm.pop())

		case bytecode.SET_GLOBAL, bytecode.SET_GLOBAL_LONG:
			name := string(readConstant(op == bytecode.SET_GLOBAL_LONG).(value.String))
			if _, ok := vm.globals.Get(name); !ok {
				return vm.runtimeError(frame, "Undefined variable '%s'.", name)
			}
			vm.globals.Put(name, vm.peek(0))

		case bytecode.EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(a.Equals(b)))
		case bytecode.NOT_EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(!a.Equals(b)))

		case bytecode.GREATER, bytecode.GREATER_EQUAL, bytecode.LESS, bytecode.LESS_EQUAL:
			b, ok1 := vm.peek(0).(value.Number)
			a, ok2 := vm.peek(1).(value.Number)
			if !ok1 || !ok2 {
				return vm.runtimeError(frame, "Operands must be numbers.")
			}
			vm.pop()
			vm.pop()
			var result bool
			switch op {
			case bytecode.GREATER:
				result = a > b
			case bytecode.GREATER_EQUAL:
				result = a >= b
			case bytecode.LESS:
				result = a < b
			case bytecode.LESS_EQUAL:
				result = a <= b
			}
			vm.push(value.Bool(result))

		case bytecode.ADD:
			if err := vm.add(frame); err != nil {
				return err
			}
		case bytecode.SUBTRACT:
			if err := vm.numericBinary(frame, func(a, b float64) float64 { return a - b }); err != nil {
				return err
			}
		case bytecode.MULTIPLY:
			if err := vm.numericBinary(frame, func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case bytecode.DIVIDE:
			if err := vm.divide(frame); err != nil {
				return err
			}

		case bytecode.NOT:
			vm.push(value.Bool(!vm.pop().IsTruthy()))
		case bytecode.NEGATE:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return vm.runtimeError(frame, "Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case bytecode.PRINT:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case bytecode.JUMP:
			offset := readUint16()
			frame.ip += int(offset)
		case bytecode.JUMP_IF_FALSE:
			offset := readUint16()
			if !vm.peek(0).IsTruthy() {
				frame.ip += int(offset)
			}
		case bytecode.LOOP:
			offset := readUint16()
			frame.ip -= int(offset)

		case bytecode.CALL:
			argCount := int(readByte())
			newFrame, err := vm.callValue(frame, vm.peek(argCount), argCount)
			if err != nil {
				return err
			}
			if newFrame != nil {
				vm.frames = append(vm.frames, *newFrame)
				frame = &vm.frames[len(vm.frames)-1]
			}

		case bytecode.CLOSURE:
			fn := readConstant(false).(*value.Function)
			vm.push(&value.Closure{Function: fn})
		case bytecode.CLOSURE_LONG:
			fn := readConstant(true).(*value.Function)
			vm.push(&value.Closure{Function: fn})

		case bytecode.RETURN:
			result := vm.pop()
			finished := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the finished script's own reserved slot 0
				return nil
			}
			vm.stack = vm.stack[:finished.slotsBase]
			vm.push(result)
			frame = &vm.frames[len(vm.frames)-1]

		default:
			return vm.runtimeError(frame, "Unknown opcode %s.", op)
		}
	}
}

// add implements `+` for Lox's two overloads: numeric addition and string
// concatenation. Mixing the two is a runtime error, matching how Lox has no
// implicit numeric-to-string coercion.
func (vm *VM) add(frame *callFrame) error {
	b, a := vm.peek(0), vm.peek(1)
	switch a := a.(type) {
	case value.Number:
		bn, ok := b.(value.Number)
		if !ok {
			return vm.runtimeError(frame, "Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(a + bn)
		return nil
	case value.String:
		bs, ok := b.(value.String)
		if !ok {
			return vm.runtimeError(frame, "Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		vm.push(a + bs)
		return nil
	default:
		return vm.runtimeError(frame, "Operands must be two numbers or two strings.")
	}
}

// divide handles DIVIDE separately from numericBinary because it has an
// operand check the other arithmetic opcodes don't: a zero divisor.
func (vm *VM) divide(frame *callFrame) error {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return vm.runtimeError(frame, "Operands must be numbers.")
	}
	if b == 0 {
		return vm.runtimeError(frame, "Division by zero.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(float64(a) / float64(b)))
	return nil
}

func (vm *VM) numericBinary(frame *callFrame, fn func(a, b float64) float64) error {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return vm.runtimeError(frame, "Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(fn(float64(a), float64(b))))
	return nil
}

// callValue dispatches a CALL instruction. Native calls execute immediately
// and return no new frame; calling a closure returns a callFrame for the
// caller to push, since pushing happens in run's loop rather than here to
// keep call depth growth out of the Go call stack.
func (vm *VM) callValue(frame *callFrame, callee value.Value, argCount int) (*callFrame, error) {
	switch callee := callee.(type) {
	case *value.Closure:
		if argCount != callee.Function.Arity {
			return nil, vm.runtimeError(frame, "Expected %d arguments but got %d.", callee.Function.Arity, argCount)
		}
		if vm.cfg.MaxCallFrames > 0 && len(vm.frames) >= vm.cfg.MaxCallFrames {
			return nil, vm.runtimeError(frame, "Stack overflow.")
		}
		return &callFrame{closure: callee, slotsBase: len(vm.stack) - argCount - 1}, nil

	case *value.Native:
		args := append([]value.Value(nil), vm.stack[len(vm.stack)-argCount:]...)
		result, err := callee.Fn(args)
		if err != nil {
			return nil, vm.runtimeError(frame, "%s", err.Error())
		}
		vm.stack = vm.stack[:len(vm.stack)-argCount-1]
		vm.push(result)
		return nil, nil

	default:
		return nil, vm.runtimeError(frame, "Can only call functions and classes.")
	}
}

// runtimeError builds a RuntimeError carrying the current call-frame stack
// trace, innermost frame first, and unwinds vm.frames so a subsequent
// Interpret call starts clean.
func (vm *VM) runtimeError(frame *callFrame, format string, args ...any) error {
	// frame.ip has already advanced past the instruction that failed by the
	// time most opcodes report an error; GetLine(frame.ip-1) blames the
	// instruction itself, not whatever follows it.
	trace := make([]TraceEntry, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		ip := fr.ip
		if fr == frame {
			ip = frame.ip
		}
		line := fr.chunk().GetLine(ip - 1)
		trace = append(trace, TraceEntry{Line: line, In: fr.name()})
	}
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Trace: trace}
}

func (vm *VM) printStack() {
	fmt.Fprint(vm.Stderr, "          ")
	for _, v := range vm.stack {
		fmt.Fprintf(vm.Stderr, "[ %s ]", v.String())
	}
	fmt.Fprintln(vm.Stderr)
}
