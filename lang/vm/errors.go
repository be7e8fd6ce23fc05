package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is returned by Interpret when execution fails: the
// interpreted message plus the call-frame stack trace captured at the point
// of failure, innermost frame first, matching how the line of a runtime
// fault and the chain of calls that led to it are reported.
type RuntimeError struct {
	Message string
	Trace   []TraceEntry
}

// TraceEntry describes one call frame active when a RuntimeError was raised.
type TraceEntry struct {
	Line int
	In   string // function name, or "script" for the top-level frame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, t := range e.Trace {
		fmt.Fprintf(&b, "\n[line %d] in %s", t.Line, t.In)
	}
	return b.String()
}
