package exam

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/examgen/internal/question"
)

// Slot is one exam position, filled in each version by one of its
// interchangeable members.
type Slot struct {
	Index   int
	Group   string
	Members []question.Template
}

// Pick returns the member used by version v. Versions cycle through the
// members round-robin.
func (s Slot) Pick(v int) question.Template {
	return s.Members[v%len(s.Members)]
}

// KeySize is the alphabet size used for the slot's answer letter: the
// smallest number of alternatives its multiple choice members show, or 0
// when no member takes a letter.
func (s Slot) KeySize() int {
	size := 0
	for _, t := range s.Members {
		n := t.Choices()
		if n == 0 {
			continue
		}
		if size == 0 || n < size {
			size = n
		}
	}
	return size
}

func (s Slot) clone() Slot {
	c := s
	c.Members = make([]question.Template, len(s.Members))
	for i, t := range s.Members {
		c.Members[i] = t.Clone()
	}
	return c
}

// BuildSlots partitions templates into slots. Templates sharing a group
// form one slot placed where the group first appears; every other template
// is its own slot. With rng set the slot order is shuffled once.
func BuildSlots(templates []question.Template, rng *rand.Rand) []Slot {
	var slots []Slot
	byGroup := map[string]int{}
	for _, t := range templates {
		g := t.GroupKey()
		if g == "" {
			slots = append(slots, Slot{Members: []question.Template{t}})
			continue
		}
		if i, ok := byGroup[g]; ok {
			slots[i].Members = append(slots[i].Members, t)
			continue
		}
		byGroup[g] = len(slots)
		slots = append(slots, Slot{Group: g, Members: []question.Template{t}})
	}
	if rng != nil {
		rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })
	}
	for i := range slots {
		slots[i].Index = i
	}
	return slots
}

// Source is the part of the template store used to resolve identifiers.
type Source interface {
	// ByIDs returns the active templates with the given ids in request
	// order. Unknown ids are omitted.
	ByIDs(ctx context.Context, ids []int64) ([]question.Template, error)

	// ByGroup returns the active templates of one subject sharing group.
	ByGroup(ctx context.Context, subject, group string) ([]question.Template, error)
}

// SlotsFromIDs builds slots in the order of ids. A grouped template pulls
// in every active member of its group; each group yields one slot however
// many of its members were requested. Unknown ids produce warnings.
func SlotsFromIDs(ctx context.Context, src Source, ids []int64) ([]Slot, []string, error) {
	found, err := src.ByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load templates: %w", err)
	}
	byID := make(map[int64]question.Template, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	var (
		slots    []Slot
		warnings []string
		seen     = map[string]bool{}
	)
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("template %d not found or inactive", id))
			continue
		}
		g := t.GroupKey()
		if g == "" {
			slots = append(slots, Slot{Members: []question.Template{t}})
			continue
		}
		key := t.Subject + "\x00" + g
		if seen[key] {
			continue
		}
		seen[key] = true
		members, err := src.ByGroup(ctx, t.Subject, g)
		if err != nil {
			return nil, nil, fmt.Errorf("load group %q: %w", g, err)
		}
		if !slices.ContainsFunc(members, func(m question.Template) bool { return m.ID == t.ID }) {
			members = append([]question.Template{t}, members...)
		}
		slots = append(slots, Slot{Group: g, Members: members})
	}
	for i := range slots {
		slots[i].Index = i
	}
	return slots, warnings, nil
}
