package exam

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/variant"
)

func TestMenu(t *testing.T) {
	broken := question.Template{ID: 9, Body: "{missing}", Format: question.FormatOpen}
	e := newEngine(t, nil)
	m, err := e.Menu(context.Background(), []question.Template{ohmCurrent(1), manual(2), broken, statement(3, "")})
	require.NoError(t, err)

	require.Len(t, m.Entries, 3)
	assert.Equal(t, int64(1), m.Entries[0].TemplateID)
	assert.Equal(t, "circuits", m.Entries[0].Subject)
	assert.Equal(t, int64(2), m.Entries[1].TemplateID)
	assert.Equal(t, int64(3), m.Entries[2].TemplateID)

	mc := m.Entries[1].Question.Payload.(MultipleChoice)
	assert.Equal(t, []string{"right", "wrong 1", "wrong 2", "wrong 3", "wrong 4"}, mc.Alternatives)
	assert.Equal(t, 0, mc.Correct)

	ohm := m.Entries[0].Question.Payload.(MultipleChoice)
	require.Len(t, ohm.Alternatives, 4)
	for i := 1; i < len(ohm.Alternatives); i++ {
		prev, _ := magnitude(ohm.Alternatives[i-1])
		cur, _ := magnitude(ohm.Alternatives[i])
		assert.Less(t, prev, cur)
	}

	require.Len(t, m.Warnings, 1)
	assert.Equal(t, int64(9), m.Warnings[0].TemplateID)
}

func TestSortAlternatives(t *testing.T) {
	mc := sortAlternatives([]string{"2 A", "1,50 mA", "500 µA", "0,75 A"}, 1)
	assert.Equal(t, []string{"500 µA", "1,50 mA", "0,75 A", "2 A"}, mc.Alternatives)
	assert.Equal(t, 1, mc.Correct)

	mc = sortAlternatives([]string{"b", "3", "a"}, 0)
	assert.Equal(t, []string{"3", "a", "b"}, mc.Alternatives)
	assert.Equal(t, 2, mc.Correct)
}

func TestMagnitude(t *testing.T) {
	v, ok := magnitude("4,70 kΩ")
	require.True(t, ok)
	assert.InDelta(t, 4700, v, 1e-9)

	v, ok = magnitude("3,25 kWh")
	require.True(t, ok)
	assert.InDelta(t, 3.25, v, 1e-9)

	_, ok = magnitude("R = 1, V = 2")
	assert.False(t, ok)
}

func TestMenuReusesVariants(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.MaxThreadWorkers = 1 })
	m, err := e.Menu(context.Background(), []question.Template{manual(1), manual(1), statement(2, "")})
	require.NoError(t, err)
	require.Len(t, m.Entries, 3)
	assert.Equal(t, m.Entries[0], m.Entries[1])
	assert.Equal(t, 1, m.CacheStats.Hits)
	assert.Equal(t, 2, m.CacheStats.Entries)
}

func TestMenuRecoversFromPanics(t *testing.T) {
	e := newEngine(t, nil)
	e.gen = variant.New(variant.Config{Validators: []variant.Validator{panicValidator{id: 9}}})
	huge := question.Template{
		ID:      8,
		Body:    "{x}",
		Program: "x = randint(-4611686018427387904, 4611686018427387904)",
		Format:  question.FormatOpen,
	}
	m, err := e.Menu(context.Background(), []question.Template{manual(1), manual(9), huge})
	require.NoError(t, err)

	require.Len(t, m.Entries, 1)
	assert.Equal(t, int64(1), m.Entries[0].TemplateID)
	require.Len(t, m.Warnings, 2)

	var ge *ErrGeneration
	require.True(t, errors.As(m.Warnings[0].Err, &ge))
	assert.Equal(t, int64(9), ge.TemplateID)
	assert.Equal(t, int64(8), m.Warnings[1].TemplateID)
	assert.Contains(t, m.Warnings[1].Message, "too large")
}
