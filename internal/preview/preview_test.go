package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examgen/internal/exam"
)

func sampleResult() *exam.Result {
	return &exam.Result{
		RunID:   "run-1",
		RunSeed: 7,
		Mode:    exam.ModeSerial,
		Workers: 1,
		Versions: []exam.Version{{
			Label: "A",
			Questions: []exam.Question{
				{Body: "Find I.", Score: "5,00", Payload: exam.MultipleChoice{Alternatives: []string{"1 A", "2 A"}, Correct: 1}},
				{Body: "Copper conducts.", Image: "img/cu.png", ImageWidth: 50, Payload: exam.TrueFalse{Truth: true}},
				{Body: "Explain.", Payload: exam.Open{}},
			},
		}},
		Warnings: []exam.Warning{{Message: "version A: 3 of 4 questions"}},
	}
}

func TestExam(t *testing.T) {
	out := Exam(sampleResult(), true)
	for _, want := range []string{
		"Version A", "1. Find I.", "(5,00)", "A)", "B)", "2 A",
		"img/cu.png", "(open answer)", "Key: B T O", "version A: 3 of 4 questions",
	} {
		assert.Contains(t, out, want)
	}

	out = Exam(sampleResult(), false)
	assert.NotContains(t, out, "Key:")
}

func TestMenu(t *testing.T) {
	m := &exam.Menu{Entries: []exam.MenuEntry{{
		TemplateID: 12,
		Subject:    "circuits",
		Topic:      "ohm",
		Question:   exam.Question{Body: "Find V.", Payload: exam.MultipleChoice{Alternatives: []string{"1 V", "2 V"}}},
	}}}
	out := Menu(m)
	assert.Contains(t, out, "#12 circuits / ohm")
	assert.Contains(t, out, "Find V.")
	assert.Contains(t, out, "1 V")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Exam(sampleResult(), true)))
	assert.Contains(t, buf.String(), "Find I.")
}
