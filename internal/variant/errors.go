package variant

import "fmt"

// ErrProgram indicates the parameter program failed to parse or run.
type ErrProgram struct {
	TemplateID int64
	Statement  string
	Err        error
}

func (e *ErrProgram) Error() string {
	if e.Statement != "" {
		return fmt.Sprintf("template %d: program error in %q: %v", e.TemplateID, e.Statement, e.Err)
	}
	return fmt.Sprintf("template %d: program error: %v", e.TemplateID, e.Err)
}

func (e *ErrProgram) Unwrap() error { return e.Err }

// ErrPlaceholder indicates a {name} placeholder with no bound variable.
type ErrPlaceholder struct {
	TemplateID int64
	Name       string
}

func (e *ErrPlaceholder) Error() string {
	return fmt.Sprintf("template %d: placeholder {%s} has no bound variable", e.TemplateID, e.Name)
}

// ErrInsufficientPool indicates sampling could not reach enough distinct,
// valid alternatives.
type ErrInsufficientPool struct {
	TemplateID int64
	Have       int
	Need       int
}

func (e *ErrInsufficientPool) Error() string {
	return fmt.Sprintf("template %d: only %d of %d alternatives available", e.TemplateID, e.Have, e.Need)
}

// ErrAnswer indicates the correct answer itself is unusable (zero,
// negative, wrong type or an invalid marked letter).
type ErrAnswer struct {
	TemplateID int64
	Reason     string
}

func (e *ErrAnswer) Error() string {
	return fmt.Sprintf("template %d: %s", e.TemplateID, e.Reason)
}
