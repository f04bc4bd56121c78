// Package store provides read access to question templates: an in-memory
// store for template files and a SQLite-backed store for a persistent bank.
package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/examgen/internal/question"
)

// TopicAll matches every topic.
const TopicAll = "all"

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Subject    string
	Topic      string
	Format     question.Format
	Difficulty string
	Group      string
}

// Match reports whether t passes f. Inactive templates never match.
func (f Filter) Match(t question.Template) bool {
	if !t.Active {
		return false
	}
	switch {
	case f.Subject != "" && t.Subject != f.Subject:
		return false
	case f.Topic != "" && !strings.EqualFold(f.Topic, TopicAll) && t.Topic != f.Topic:
		return false
	case f.Format != "" && t.Format != f.Format:
		return false
	case f.Difficulty != "" && t.Difficulty != f.Difficulty:
		return false
	case f.Group != "" && t.GroupKey() != f.Group:
		return false
	}
	return true
}

// Criterion asks for Count templates per exam version matching a filter.
type Criterion struct {
	Subject    string          `yaml:"subject" json:"subject"`
	Topic      string          `yaml:"topic" json:"topic"`
	Format     question.Format `yaml:"format" json:"format"`
	Difficulty string          `yaml:"difficulty" json:"difficulty"`
	Count      int             `yaml:"count" json:"count"`
}

func (c Criterion) filter() Filter {
	return Filter{Subject: c.Subject, Topic: c.Topic, Format: c.Format, Difficulty: c.Difficulty}
}

func (c Criterion) String() string {
	subject, topic := c.Subject, c.Topic
	if subject == "" {
		subject = "any"
	}
	if topic == "" {
		topic = TopicAll
	}
	return fmt.Sprintf("[%s / %s / %s / %s]", subject, topic, c.Format, c.Difficulty)
}

// Source is a read-only template bank. Implementations never return
// inactive templates.
type Source interface {
	// ByIDs returns the templates with the given ids in request order.
	// Unknown ids are omitted.
	ByIDs(ctx context.Context, ids []int64) ([]question.Template, error)

	// ByGroup returns the templates of one subject sharing group, by id.
	ByGroup(ctx context.Context, subject, group string) ([]question.Template, error)

	// List returns the templates matching f, by id.
	List(ctx context.Context, f Filter) ([]question.Template, error)
}

// Select picks random templates for an exam: Count × versions per
// criterion. A criterion that cannot be met in full contributes what it
// found plus a warning.
func Select(ctx context.Context, src Source, criteria []Criterion, versions int, rng *rand.Rand) ([]question.Template, []string, error) {
	var (
		out      []question.Template
		warnings []string
		taken    = map[int64]bool{}
	)
	for _, c := range criteria {
		if c.Count <= 0 {
			continue
		}
		need := c.Count * max(versions, 1)
		found, err := src.List(ctx, c.filter())
		if err != nil {
			return nil, nil, fmt.Errorf("select %s: %w", c, err)
		}
		rng.Shuffle(len(found), func(i, j int) { found[i], found[j] = found[j], found[i] })

		got := 0
		for _, t := range found {
			if got == need {
				break
			}
			if taken[t.ID] {
				continue
			}
			taken[t.ID] = true
			out = append(out, t)
			got++
		}
		if got < need {
			warnings = append(warnings, fmt.Sprintf("only %d of %d templates found for %s", got, need, c))
		}
	}
	return out, warnings, nil
}
