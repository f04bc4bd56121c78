package variant

import (
	"fmt"
	"strings"

	"github.com/abhisek/examgen/internal/question"
)

// Validator checks a materialized variant.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "structural".
	Name() string

	// Validate returns nil if the variant passes.
	Validate(v *Variant, t question.Template) *ValidationError
}

// ValidationError describes why a variant failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether a new seed is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks that the body and alternatives are present
// and that the alternative count fits the template.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(x *Variant, t question.Template) *ValidationError {
	if strings.TrimSpace(x.Body) == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "body is empty",
		}
	}
	if x.Format != question.FormatMultipleChoice {
		if len(x.Alternatives) != 0 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("%s question has alternatives", x.Format),
			}
		}
		return nil
	}
	if len(x.Alternatives) < 2 || len(x.Alternatives) > question.MaxAlternatives {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected 2-%d alternatives, got %d", question.MaxAlternatives, len(x.Alternatives)),
		}
	}
	if n := t.Choices(); len(x.Alternatives) != n {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d alternatives, got %d", n, len(x.Alternatives)),
			Retryable: t.Combinatorial(),
		}
	}
	for i, a := range x.Alternatives {
		if strings.TrimSpace(a) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("alternative %s is empty", question.Letters[i]),
			}
		}
	}
	return nil
}

// ContainmentValidator checks that the correct text appears exactly once
// among the alternatives, at CorrectIndex, and that generated alternatives
// are distinct.
type ContainmentValidator struct{}

func (v *ContainmentValidator) Name() string { return "containment" }

func (v *ContainmentValidator) Validate(x *Variant, t question.Template) *ValidationError {
	if x.Format != question.FormatMultipleChoice {
		return nil
	}
	if x.CorrectIndex < 0 || x.CorrectIndex >= len(x.Alternatives) || x.Alternatives[x.CorrectIndex] != x.Correct {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "correct answer is not at its marked position",
		}
	}
	seen := make(map[string]int, len(x.Alternatives))
	for _, a := range x.Alternatives {
		seen[a]++
	}
	if seen[x.Correct] != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct answer %q appears %d times", x.Correct, seen[x.Correct]),
			Retryable: true,
		}
	}
	if t.Combinatorial() && len(seen) != len(x.Alternatives) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "alternatives are not distinct",
			Retryable: true,
		}
	}
	return nil
}
