package program

import "fmt"

// ErrSyntax indicates a statement that could not be parsed or compiled.
type ErrSyntax struct {
	Line   int
	Source string
	Err    error
}

func (e *ErrSyntax) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Source, e.Err)
}

func (e *ErrSyntax) Unwrap() error { return e.Err }

// ErrRuntime indicates a statement that failed while executing.
type ErrRuntime struct {
	Line   int
	Source string
	Err    error
}

func (e *ErrRuntime) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Source, e.Err)
}

func (e *ErrRuntime) Unwrap() error { return e.Err }
