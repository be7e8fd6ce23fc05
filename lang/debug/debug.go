// Package debug implements a textual disassembler for compiled chunks, used
// by the `-c` compile-and-disassemble command and the REPL's #debug_trace
// toggle. It is purely informational: nothing at runtime reads its output.
package debug

import (
	"fmt"
	"io"

	"github.com/loxlang/loxgo/lang/bytecode"
	"github.com/loxlang/loxgo/lang/value"
)

// DisassembleFunction writes every instruction in fn's chunk to w under a
// header naming the function, then recurses into any nested function held
// in the constant pool so a whole program disassembles in one call.
func DisassembleFunction(w io.Writer, fn *value.Function) {
	name := fn.Name
	if name == "" {
		name = "script"
	}
	fmt.Fprintf(w, "== %s ==\n", name)
	DisassembleChunk(w, fn.Chunk)

	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*value.Function); ok {
			fmt.Fprintln(w)
			DisassembleFunction(w, nested)
		}
	}
}

// DisassembleChunk writes every instruction in chunk to w, one per line.
func DisassembleChunk(w io.Writer, chunk *value.Chunk) {
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(w, chunk, offset)
	}
}

// DisassembleInstruction writes the single instruction at offset to w and
// returns the offset of the next instruction.
func DisassembleInstruction(w io.Writer, chunk *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	line := chunk.GetLine(offset)
	if offset > 0 && line == chunk.GetLine(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op := bytecode.Opcode(chunk.Code[offset])
	switch op {
	case bytecode.CONSTANT, bytecode.GET_LOCAL, bytecode.SET_LOCAL, bytecode.GET_GLOBAL,
		bytecode.DEFINE_GLOBAL, bytecode.SET_GLOBAL, bytecode.CLOSURE, bytecode.CALL:
		return shortOperandInstruction(w, op, chunk, offset)

	case bytecode.CONSTANT_LONG, bytecode.GET_LOCAL_LONG, bytecode.SET_LOCAL_LONG,
		bytecode.GET_GLOBAL_LONG, bytecode.DEFINE_GLOBAL_LONG, bytecode.SET_GLOBAL_LONG,
		bytecode.CLOSURE_LONG:
		return longOperandInstruction(w, op, chunk, offset)

	case bytecode.JUMP, bytecode.JUMP_IF_FALSE:
		return jumpInstruction(w, op, 1, chunk, offset)
	case bytecode.LOOP:
		return jumpInstruction(w, op, -1, chunk, offset)

	default:
		fmt.Fprintln(w, op)
		return offset + 1
	}
}

func shortOperandInstruction(w io.Writer, op bytecode.Opcode, chunk *value.Chunk, offset int) int {
	idx := int(chunk.Code[offset+1])
	printOperand(w, op, idx, chunk)
	return offset + 2
}

func longOperandInstruction(w io.Writer, op bytecode.Opcode, chunk *value.Chunk, offset int) int {
	idx := int(chunk.ReadUint16(offset + 1))
	printOperand(w, op, idx, chunk)
	return offset + 3
}

// printOperand prints the opcode name and its operand, resolving it to the
// constant value for constant/global/closure opcodes so the disassembly
// shows what will actually be pushed or looked up, not just a bare index.
func printOperand(w io.Writer, op bytecode.Opcode, idx int, chunk *value.Chunk) {
	switch op {
	case bytecode.CONSTANT, bytecode.CONSTANT_LONG, bytecode.GET_GLOBAL, bytecode.GET_GLOBAL_LONG,
		bytecode.DEFINE_GLOBAL, bytecode.DEFINE_GLOBAL_LONG, bytecode.SET_GLOBAL, bytecode.SET_GLOBAL_LONG,
		bytecode.CLOSURE, bytecode.CLOSURE_LONG:
		fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, chunk.Constants[idx].String())
	default:
		fmt.Fprintf(w, "%-16s %4d\n", op, idx)
	}
}

func jumpInstruction(w io.Writer, op bytecode.Opcode, sign int, chunk *value.Chunk, offset int) int {
	jump := int(chunk.ReadUint16(offset + 1))
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}
