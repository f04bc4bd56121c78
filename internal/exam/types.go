package exam

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/examgen/internal/answerkey"
	"github.com/abhisek/examgen/internal/cache"
	"github.com/abhisek/examgen/internal/question"
)

// Key markers for questions that carry no letter.
const (
	KeyTrue  = "T"
	KeyFalse = "F"
	KeyOpen  = "O"
)

// Payload is the format-specific part of a question: MultipleChoice,
// TrueFalse or Open.
type Payload interface {
	Format() question.Format
	Key() string
}

// MultipleChoice holds alternatives in letter order and the index of the
// correct one.
type MultipleChoice struct {
	Alternatives []string
	Correct      int
}

func (MultipleChoice) Format() question.Format { return question.FormatMultipleChoice }
func (m MultipleChoice) Key() string           { return answerkey.Letter(m.Correct) }

// TrueFalse holds the expected truth value.
type TrueFalse struct {
	Truth bool
}

func (TrueFalse) Format() question.Format { return question.FormatTrueFalse }

func (t TrueFalse) Key() string {
	if t.Truth {
		return KeyTrue
	}
	return KeyFalse
}

// Open is a discursive question.
type Open struct{}

func (Open) Format() question.Format { return question.FormatOpen }
func (Open) Key() string             { return KeyOpen }

// Question is one resolved exam question.
type Question struct {
	Slot       int
	TemplateID int64
	Body       string
	Image      string
	ImageWidth int
	Score      string
	Payload    Payload
}

// Key returns the answer key entry of q.
func (q Question) Key() string {
	if q.Payload == nil {
		return ""
	}
	return q.Payload.Key()
}

type questionJSON struct {
	Slot         int               `json:"slot"`
	TemplateID   int64             `json:"template_id"`
	Format       question.Format   `json:"format"`
	Body         string            `json:"body"`
	Image        string            `json:"image,omitempty"`
	ImageWidth   int               `json:"image_width,omitempty"`
	Alternatives map[string]string `json:"alternatives,omitempty"`
	Key          string            `json:"key"`
	Score        string            `json:"score,omitempty"`
}

// MarshalJSON flattens the payload into the question object; alternatives
// are keyed by letter.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		Slot:       q.Slot,
		TemplateID: q.TemplateID,
		Body:       q.Body,
		Image:      q.Image,
		Key:        q.Key(),
		Score:      q.Score,
	}
	if q.Image != "" {
		out.ImageWidth = q.ImageWidth
	}
	if q.Payload != nil {
		out.Format = q.Payload.Format()
	}
	if mc, ok := q.Payload.(MultipleChoice); ok {
		out.Alternatives = make(map[string]string, len(mc.Alternatives))
		for i, a := range mc.Alternatives {
			out.Alternatives[answerkey.Letter(i)] = a
		}
	}
	return json.Marshal(out)
}

// Version is one exam version.
type Version struct {
	ID        string     `json:"id"`
	Index     int        `json:"index"`
	Label     string     `json:"label"`
	Questions []Question `json:"questions"`
}

// AnswerKey returns the key entries of v in question order.
func (v Version) AnswerKey() []string {
	keys := make([]string, len(v.Questions))
	for i, q := range v.Questions {
		keys[i] = q.Key()
	}
	return keys
}

// Label returns the display label of version i: A..Z, then AA, AB, ...
func Label(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append(b, byte('A'+(i-1)%26))
	}
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
	return string(b)
}

// Warning is a non-fatal problem collected during a run.
type Warning struct {
	Version    int    `json:"version"`
	Slot       int    `json:"slot"`
	TemplateID int64  `json:"template_id,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (w Warning) String() string {
	return w.Message
}

// Result is the output of one exam-generation call.
type Result struct {
	RunID      string      `json:"run_id"`
	RunSeed    uint64      `json:"run_seed"`
	Mode       Mode        `json:"mode"`
	Workers    int         `json:"workers"`
	Versions   []Version   `json:"versions"`
	Warnings   []Warning   `json:"warnings,omitempty"`
	CacheStats cache.Stats `json:"cache_stats"`
}

// WarningMessages returns the human-readable warnings.
func (r *Result) WarningMessages() []string {
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.Message
	}
	return out
}

// ErrSlotUnfilled summarizes the questions a version could not fill.
type ErrSlotUnfilled struct {
	Version   string
	Found     int
	Requested int
}

func (e *ErrSlotUnfilled) Error() string {
	return fmt.Sprintf("version %s: %d of %d questions", e.Version, e.Found, e.Requested)
}

// ErrWorker wraps a panic recovered from a worker.
type ErrWorker struct {
	Version int
	Value   any
}

func (e *ErrWorker) Error() string {
	return fmt.Sprintf("worker for version %d panicked: %v", e.Version, e.Value)
}

// ErrGeneration wraps a panic recovered while generating one question.
type ErrGeneration struct {
	TemplateID int64
	Value      any
}

func (e *ErrGeneration) Error() string {
	return fmt.Sprintf("generating template %d panicked: %v", e.TemplateID, e.Value)
}
