package store

import (
	"cmp"
	"context"
	"slices"

	"github.com/abhisek/examgen/internal/question"
)

// MemoryStore serves templates loaded from a file.
type MemoryStore struct {
	templates []question.Template
	byID      map[int64]int
}

// NewMemory creates a MemoryStore over a copy of templates.
func NewMemory(templates []question.Template) *MemoryStore {
	m := &MemoryStore{byID: make(map[int64]int, len(templates))}
	for _, t := range templates {
		m.templates = append(m.templates, t.Clone())
	}
	slices.SortFunc(m.templates, func(a, b question.Template) int { return cmp.Compare(a.ID, b.ID) })
	for i, t := range m.templates {
		m.byID[t.ID] = i
	}
	return m
}

func (m *MemoryStore) ByIDs(_ context.Context, ids []int64) ([]question.Template, error) {
	var out []question.Template
	for _, id := range ids {
		i, ok := m.byID[id]
		if !ok || !m.templates[i].Active {
			continue
		}
		out = append(out, m.templates[i].Clone())
	}
	return out, nil
}

func (m *MemoryStore) ByGroup(ctx context.Context, subject, group string) ([]question.Template, error) {
	if group == "" {
		return nil, nil
	}
	return m.List(ctx, Filter{Subject: subject, Group: group})
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]question.Template, error) {
	var out []question.Template
	for _, t := range m.templates {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}
