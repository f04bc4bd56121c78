package exam

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/seed"
)

func TestBuildSlots(t *testing.T) {
	templates := []question.Template{
		{ID: 1},
		{ID: 2, Group: "a"},
		{ID: 3},
		{ID: 4, Group: " a "},
		{ID: 5, Group: "b"},
	}
	slots := BuildSlots(templates, nil)
	require.Len(t, slots, 4)

	assert.Equal(t, []int64{1}, memberIDs(slots[0]))
	assert.Equal(t, []int64{2, 4}, memberIDs(slots[1]))
	assert.Equal(t, "a", slots[1].Group)
	assert.Equal(t, []int64{3}, memberIDs(slots[2]))
	assert.Equal(t, []int64{5}, memberIDs(slots[3]))
	for i, s := range slots {
		assert.Equal(t, i, s.Index)
	}

	assert.Equal(t, int64(2), slots[1].Pick(0).ID)
	assert.Equal(t, int64(4), slots[1].Pick(1).ID)
	assert.Equal(t, int64(2), slots[1].Pick(2).ID)
}

func TestBuildSlotsShuffled(t *testing.T) {
	var templates []question.Template
	for id := range int64(10) {
		templates = append(templates, question.Template{ID: id})
	}
	a := BuildSlots(templates, seed.Rand(5))
	b := BuildSlots(templates, seed.Rand(5))
	assert.Equal(t, a, b)
	require.Len(t, a, 10)
	for i, s := range a {
		assert.Equal(t, i, s.Index)
	}
}

func TestKeySize(t *testing.T) {
	mc := func(n int) question.Template {
		return question.Template{
			Format:           question.FormatMultipleChoice,
			AlternativeCount: n,
			AutoAlternatives: true,
			Program:          "answer = 1",
		}
	}
	assert.Equal(t, 0, Slot{Members: []question.Template{{Format: question.FormatOpen}}}.KeySize())
	assert.Equal(t, 5, Slot{Members: []question.Template{mc(0)}}.KeySize())
	assert.Equal(t, 3, Slot{Members: []question.Template{mc(5), {Format: question.FormatTrueFalse}, mc(3)}}.KeySize())

	literal := question.Template{Format: question.FormatMultipleChoice, Alternatives: []string{"w", "r", "w2", "w3"}}
	assert.Equal(t, 4, Slot{Members: []question.Template{literal}}.KeySize())
	assert.Equal(t, 4, Slot{Members: []question.Template{literal, mc(5)}}.KeySize())
}

func TestSlotClone(t *testing.T) {
	s := Slot{Members: []question.Template{{ID: 1, Alternatives: []string{"a"}}}}
	c := s.clone()
	c.Members[0].Alternatives[0] = "z"
	assert.Equal(t, "a", s.Members[0].Alternatives[0])
}

type fakeSource struct {
	templates []question.Template
	err       error
}

func (f *fakeSource) ByIDs(_ context.Context, ids []int64) ([]question.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []question.Template
	for _, id := range ids {
		for _, t := range f.templates {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeSource) ByGroup(_ context.Context, subject, group string) ([]question.Template, error) {
	var out []question.Template
	for _, t := range f.templates {
		if t.Subject == subject && t.GroupKey() == group {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestSlotsFromIDs(t *testing.T) {
	src := &fakeSource{templates: []question.Template{
		{ID: 1, Subject: "s", Group: "g"},
		{ID: 2, Subject: "s", Group: "g"},
		{ID: 3, Subject: "s"},
		{ID: 4, Subject: "s", Group: "g"},
		{ID: 5, Subject: "other", Group: "g"},
	}}
	slots, warnings, err := SlotsFromIDs(context.Background(), src, []int64{3, 2, 99, 1})
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, []int64{3}, memberIDs(slots[0]))
	assert.Equal(t, []int64{1, 2, 4}, memberIDs(slots[1]))
	assert.Equal(t, 1, slots[1].Index)
	assert.Equal(t, []string{"template 99 not found or inactive"}, warnings)
}

func TestSlotsFromIDsError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := SlotsFromIDs(context.Background(), &fakeSource{err: boom}, []int64{1})
	assert.ErrorIs(t, err, boom)
}

func TestGenerateFromIDs(t *testing.T) {
	src := &fakeSource{templates: []question.Template{ohmCurrent(1), ohmVoltage(2), manual(3)}}
	e := newEngine(t, func(o *Options) { o.Versions = 2 })
	res, err := e.GenerateFromIDs(context.Background(), src, []int64{3, 1, 50})
	require.NoError(t, err)

	require.Len(t, res.Versions, 2)
	assert.Equal(t, []int64{3, 1}, templateIDs(res.Versions[0]))
	assert.Equal(t, []int64{3, 2}, templateIDs(res.Versions[1]))
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, -1, res.Warnings[0].Version)
	assert.Contains(t, res.Warnings[0].Message, "50")
}

func memberIDs(s Slot) []int64 {
	ids := make([]int64, len(s.Members))
	for i, t := range s.Members {
		ids[i] = t.ID
	}
	return ids
}
