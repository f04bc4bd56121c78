package question

import (
	"fmt"
	"strings"
)

// Format describes how a question is answered.
type Format string

const (
	// FormatMultipleChoice means the learner picks one lettered alternative.
	FormatMultipleChoice Format = "multiple_choice"

	// FormatTrueFalse means the learner marks the statement true or false.
	FormatTrueFalse Format = "true_false"

	// FormatOpen is a discursive question with no key.
	FormatOpen Format = "open"
)

// ProgramKind selects how Template.Program is interpreted.
type ProgramKind string

const (
	// ProgramCode is a statement program ("x = choice([1, 2])").
	ProgramCode ProgramKind = "code"

	// ProgramTable is a JSON variable table plus an answer formula.
	ProgramTable ProgramKind = "table"
)

// Letters is the ordered alternative alphabet.
var Letters = []string{"A", "B", "C", "D", "E"}

// MaxAlternatives is the size of the alternative alphabet.
const MaxAlternatives = 5

// ParseFormat accepts the canonical names plus the labels used by older
// template banks.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiple_choice", "multiple choice", "mc", "múltipla escolha":
		return FormatMultipleChoice, nil
	case "true_false", "true/false", "tf", "verdadeiro ou falso":
		return FormatTrueFalse, nil
	case "open", "discursive", "discursiva":
		return FormatOpen, nil
	}
	return "", fmt.Errorf("unknown question format %q", s)
}

// LetterIndex returns the 0-based index of an alternative letter, or -1.
func LetterIndex(letter string) int {
	l := strings.ToUpper(strings.TrimSpace(letter))
	for i, x := range Letters {
		if x == l {
			return i
		}
	}
	return -1
}
