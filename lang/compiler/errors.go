package compiler

import "fmt"

// A CompileError is a single diagnostic raised while compiling a chunk: the
// source line, the token text the error was reported against (empty when
// reported at end of file), and the message.
type CompileError struct {
	Line    int
	Where   string
	AtEnd   bool
	Message string
}

func (e *CompileError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	}
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Where, e.Message)
}

// ErrorList accumulates every CompileError raised during one compilation.
// Compile errors are batched until synchronization/EOF rather than aborting
// on the first one, so a single call can report many mistakes at once.
type ErrorList []*CompileError

// Add appends a new CompileError to the list.
func (el *ErrorList) Add(e *CompileError) { *el = append(*el, e) }

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	s := el[0].Error()
	return fmt.Sprintf("%s (and %d more errors)", s, len(el)-1)
}

// Unwrap exposes every accumulated error so that callers can use errors.Is
// and errors.As across the whole batch.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}

// Err returns nil if the list is empty, else the list itself as an error.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}
