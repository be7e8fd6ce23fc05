package value

import (
	"fmt"
	"strconv"

	"github.com/dolthub/swiss"

	"github.com/loxlang/loxgo/lang/bytecode"
)

// maxConstants is the largest number of constants a single Chunk's pool may
// hold: indices are encoded as a 2-byte big-endian operand at most.
const maxConstants = 1<<16 - 1

// A Chunk is a mutable buffer of compiled instructions for a single
// Function: an ordered byte stream of opcodes and their immediate operands,
// a constant pool, and a run-length-encoded line table. It is grown by the
// compiler and is read-only once the owning Function has been returned.
type Chunk struct {
	Code      []byte
	Constants []Value

	// lines holds (line, runLength) pairs: consecutive instructions compiled
	// from the same source line accumulate into the most recent pair instead
	// of allocating a new one.
	lines []lineRun

	// intern maps a literal-constant key (see internKey) to the pool index
	// it was first added at, so repeated string/number literals share one
	// constant slot instead of growing the pool for every occurrence.
	intern *swiss.Map[string, int]
}

type lineRun struct {
	line      int
	runLength int
}

// Write appends a single byte compiled from the given source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	if n := len(c.lines); n > 0 && c.lines[n-1].line == line {
		c.lines[n-1].runLength++
		return
	}
	c.lines = append(c.lines, lineRun{line: line, runLength: 1})
}

// WriteOp appends an opcode byte compiled from the given source line.
func (c *Chunk) WriteOp(op bytecode.Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant adds v to the constant pool and returns its index. String and
// number literals are interned: adding an equal one a second time returns
// the index the first occurrence already holds instead of growing the pool.
// Other value kinds (functions, natives, closures) are never interned, since
// each compiled function literal is its own distinct constant.
func (c *Chunk) AddConstant(v Value) int {
	key, internable := internKey(v)
	if internable {
		if c.intern == nil {
			c.intern = swiss.NewMap[string, int](8)
		}
		if idx, ok := c.intern.Get(key); ok {
			return idx
		}
	}

	idx := len(c.Constants)
	c.Constants = append(c.Constants, v)
	if internable {
		c.intern.Put(key, idx)
	}
	return idx
}

// internKey returns the dedup key for v and whether v is a kind this pool
// interns at all.
func internKey(v Value) (string, bool) {
	switch v := v.(type) {
	case String:
		return "s:" + string(v), true
	case Number:
		return "n:" + strconv.FormatFloat(float64(v), 'g', -1, 64), true
	default:
		return "", false
	}
}

// WriteConstant emits the instructions to push v: OP_CONSTANT with a 1-byte
// index if v's pool index fits in a byte, else OP_CONSTANT_LONG with a
// 2-byte big-endian index.
func (c *Chunk) WriteConstant(v Value, line int) error {
	idx, err := c.makeConstant(v)
	if err != nil {
		return err
	}
	if idx <= 0xff {
		c.WriteOp(bytecode.CONSTANT, line)
		c.Write(byte(idx), line)
	} else {
		c.WriteOp(bytecode.CONSTANT_LONG, line)
		c.writeUint16(uint16(idx), line)
	}
	return nil
}

// makeConstant adds v to the pool and returns its index, or an error if the
// pool would grow past what a 2-byte operand can address. The Chunk itself
// does not otherwise enforce this limit; only constant-operand opcodes do.
func (c *Chunk) makeConstant(v Value) (int, error) {
	if len(c.Constants) >= maxConstants {
		return 0, fmt.Errorf("too many constants in one chunk")
	}
	return c.AddConstant(v), nil
}

func (c *Chunk) writeUint16(v uint16, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// PatchByte overwrites the byte at offset with b, used to back-patch jump
// operands once their target address is known. It reports false if offset is
// out of range.
func (c *Chunk) PatchByte(offset int, b byte) bool {
	if offset < 0 || offset >= len(c.Code) {
		return false
	}
	c.Code[offset] = b
	return true
}

// GetLine returns the source line that produced the instruction byte at
// offset, via a linear scan of the run-length-encoded line table.
func (c *Chunk) GetLine(offset int) int {
	remaining := offset
	for _, run := range c.lines {
		if remaining < run.runLength {
			return run.line
		}
		remaining -= run.runLength
	}
	if len(c.lines) == 0 {
		return 0
	}
	return c.lines[len(c.lines)-1].line
}

// ReadUint16 decodes the big-endian 2-byte operand starting at offset.
func (c *Chunk) ReadUint16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// Clone returns a deep copy of c: the code and line table are copied, and
// every constant is recursively cloned (functions carry their own cloned
// chunk).
func (c *Chunk) Clone() *Chunk {
	nc := &Chunk{
		Code:      append([]byte(nil), c.Code...),
		Constants: make([]Value, len(c.Constants)),
		lines:     append([]lineRun(nil), c.lines...),
	}
	for i, v := range c.Constants {
		nc.Constants[i] = v.Clone()
	}
	return nc
}
