package vm

import "github.com/loxlang/loxgo/lang/value"

// callFrame records one call's bookkeeping: which closure is executing, the
// instruction offset to resume at, and the stack index its local slot 0
// sits at. Unlike a native call stack frame, pushing a callFrame does not
// recurse into run's dispatch loop: OP_CALL pushes a frame and the same loop
// keeps going against the new top frame, and OP_RETURN pops it back off.
type callFrame struct {
	closure   *value.Closure
	ip        int
	slotsBase int
}

func (f *callFrame) chunk() *value.Chunk { return f.closure.Function.Chunk }

func (f *callFrame) name() string {
	if f.closure.Function.Name == "" {
		return "script"
	}
	return f.closure.Function.Name
}
