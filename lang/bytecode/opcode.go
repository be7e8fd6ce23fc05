// Package bytecode defines the compiled instruction format shared by the
// compiler and the virtual machine: the Opcode set and its operand sizes.
// The Chunk that holds a compiled function's code, constant pool and line
// table lives in package value.
package bytecode

import "fmt"

// Opcode identifies a single VM instruction. Some opcodes carry an immediate
// operand, reported by OperandSize; the "_LONG" variant of such an opcode has
// identical semantics but encodes its operand as a 2-byte big-endian value
// instead of a single byte, used once the referenced index no longer fits in
// a byte.
type Opcode uint8

//nolint:revive
const (
	CONSTANT Opcode = iota
	CONSTANT_LONG
	NIL
	TRUE
	FALSE
	POP

	GET_LOCAL
	GET_LOCAL_LONG
	SET_LOCAL
	SET_LOCAL_LONG

	GET_GLOBAL
	GET_GLOBAL_LONG
	DEFINE_GLOBAL
	DEFINE_GLOBAL_LONG
	SET_GLOBAL
	SET_GLOBAL_LONG

	EQUAL
	NOT_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL

	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE

	NOT
	NEGATE

	PRINT

	JUMP
	JUMP_IF_FALSE
	LOOP

	CALL

	CLOSURE
	CLOSURE_LONG

	RETURN

	opcodeMax
)

var opcodeNames = [...]string{
	CONSTANT:           "OP_CONSTANT",
	CONSTANT_LONG:      "OP_CONSTANT_LONG",
	NIL:                "OP_NIL",
	TRUE:               "OP_TRUE",
	FALSE:              "OP_FALSE",
	POP:                "OP_POP",
	GET_LOCAL:          "OP_GET_LOCAL",
	GET_LOCAL_LONG:     "OP_GET_LOCAL_LONG",
	SET_LOCAL:          "OP_SET_LOCAL",
	SET_LOCAL_LONG:     "OP_SET_LOCAL_LONG",
	GET_GLOBAL:         "OP_GET_GLOBAL",
	GET_GLOBAL_LONG:    "OP_GET_GLOBAL_LONG",
	DEFINE_GLOBAL:      "OP_DEFINE_GLOBAL",
	DEFINE_GLOBAL_LONG: "OP_DEFINE_GLOBAL_LONG",
	SET_GLOBAL:         "OP_SET_GLOBAL",
	SET_GLOBAL_LONG:    "OP_SET_GLOBAL_LONG",
	EQUAL:              "OP_EQUAL",
	NOT_EQUAL:          "OP_NOT_EQUAL",
	GREATER:            "OP_GREATER",
	GREATER_EQUAL:      "OP_GREATER_EQUAL",
	LESS:               "OP_LESS",
	LESS_EQUAL:         "OP_LESS_EQUAL",
	ADD:                "OP_ADD",
	SUBTRACT:           "OP_SUBTRACT",
	MULTIPLY:           "OP_MULTIPLY",
	DIVIDE:             "OP_DIVIDE",
	NOT:                "OP_NOT",
	NEGATE:             "OP_NEGATE",
	PRINT:              "OP_PRINT",
	JUMP:               "OP_JUMP",
	JUMP_IF_FALSE:      "OP_JUMP_IF_FALSE",
	LOOP:               "OP_LOOP",
	CALL:               "OP_CALL",
	CLOSURE:            "OP_CLOSURE",
	CLOSURE_LONG:       "OP_CLOSURE_LONG",
	RETURN:             "OP_RETURN",
}

func (op Opcode) String() string {
	if op < opcodeMax {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// longOf maps each short-operand opcode to its "_LONG" counterpart. Opcodes
// with no operand, or whose operand is never an index into a growable table
// (JUMP family, CALL), are absent.
var longOf = map[Opcode]Opcode{
	CONSTANT:      CONSTANT_LONG,
	GET_LOCAL:     GET_LOCAL_LONG,
	SET_LOCAL:     SET_LOCAL_LONG,
	GET_GLOBAL:    GET_GLOBAL_LONG,
	DEFINE_GLOBAL: DEFINE_GLOBAL_LONG,
	SET_GLOBAL:    SET_GLOBAL_LONG,
	CLOSURE:       CLOSURE_LONG,
}

// LongOpcode returns the 2-byte-operand variant of a short-operand opcode,
// for use once an index no longer fits in a byte. It panics if op has no
// long variant.
func LongOpcode(op Opcode) Opcode {
	if long, ok := longOf[op]; ok {
		return long
	}
	panic(fmt.Sprintf("bytecode: %s has no long variant", op))
}

// OperandSize returns the number of immediate operand bytes following op in
// the instruction stream: 0 (no operand), 1 (short index or CALL argc), or 2
// (long index or a jump/loop offset).
func OperandSize(op Opcode) int {
	switch op {
	case CONSTANT, GET_LOCAL, SET_LOCAL, GET_GLOBAL, DEFINE_GLOBAL, SET_GLOBAL, CLOSURE, CALL:
		return 1
	case CONSTANT_LONG, GET_LOCAL_LONG, SET_LOCAL_LONG, GET_GLOBAL_LONG, DEFINE_GLOBAL_LONG,
		SET_GLOBAL_LONG, CLOSURE_LONG, JUMP, JUMP_IF_FALSE, LOOP:
		return 2
	default:
		return 0
	}
}
