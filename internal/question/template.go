package question

import "strings"

// Template is an author-defined question: a body with {placeholders}, an
// optional parameter program and the settings that drive variant generation.
// Templates are owned by the template store and treated as read-only.
type Template struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject,omitempty"`
	Topic   string `json:"topic,omitempty"`

	// Body is the question text. Placeholders look like {name}; a placeholder
	// followed by a prefixed unit (e.g. "{i} mA") is scaled before display.
	Body string `json:"body"`

	// Program is the parameter program source. Its meaning depends on
	// ProgramKind.
	Program     string      `json:"program,omitempty"`
	ProgramKind ProgramKind `json:"program_kind,omitempty"`

	Format     Format `json:"format"`
	Difficulty string `json:"difficulty,omitempty"`

	// Unit is the base unit of the answer (e.g. "A", "Ω", "kWh").
	Unit          string `json:"unit,omitempty"`
	AllowNegative bool   `json:"allow_negative,omitempty"`

	// AlternativeCount is the number of alternatives shown for multiple
	// choice questions (2-5).
	AlternativeCount int `json:"alternative_count,omitempty"`

	// AutoAlternatives selects the combinatorial pool engine for distractors.
	// When false the literal Alternatives are used.
	AutoAlternatives bool `json:"auto_alternatives,omitempty"`

	// Group marks templates that are interchangeable in one exam slot.
	Group string `json:"group,omitempty"`

	// Alternatives holds manual alternative texts in letter order (A..E).
	Alternatives []string `json:"alternatives,omitempty"`

	// CorrectLetter marks the right manual alternative ("A".."E"), or the
	// expected answer of a true/false question without a program ("T"/"F").
	CorrectLetter string `json:"correct_letter,omitempty"`

	Image             string `json:"image,omitempty"`
	ImageWidthPercent int    `json:"image_width_percent,omitempty"`

	Active bool `json:"active"`
}

// DefaultAlternativeCount is used when a multiple choice template does not
// declare its alternative count.
const DefaultAlternativeCount = 5

// AltCount returns the effective number of alternatives.
func (t Template) AltCount() int {
	if t.AlternativeCount <= 0 {
		return DefaultAlternativeCount
	}
	if t.AlternativeCount > MaxAlternatives {
		return MaxAlternatives
	}
	return t.AlternativeCount
}

// Choices returns how many alternatives a multiple choice variant of t
// shows: AltCount for generated distractors, or the non-empty literal
// alternatives among the first AltCount for manual ones. It is 0 for other
// formats.
func (t Template) Choices() int {
	if t.Format != FormatMultipleChoice {
		return 0
	}
	n := t.AltCount()
	if t.Combinatorial() {
		return n
	}
	c := 0
	for _, a := range t.Alternatives[:min(n, len(t.Alternatives))] {
		if strings.TrimSpace(a) != "" {
			c++
		}
	}
	return c
}

// Combinatorial reports whether the template needs outcome-pool sampling.
func (t Template) Combinatorial() bool {
	return t.Format == FormatMultipleChoice && t.AutoAlternatives && strings.TrimSpace(t.Program) != ""
}

// GroupKey returns the trimmed group name, or "" for standalone templates.
func (t Template) GroupKey() string {
	return strings.TrimSpace(t.Group)
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	c := t
	if t.Alternatives != nil {
		c.Alternatives = append([]string(nil), t.Alternatives...)
	}
	return c
}
