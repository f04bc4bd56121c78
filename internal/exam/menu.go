package exam

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examgen/internal/cache"
	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/seed"
	"github.com/abhisek/examgen/internal/units"
	"github.com/abhisek/examgen/internal/variant"
)

// MenuEntry is one catalogue line: a single variant of a template with its
// alternatives sorted.
type MenuEntry struct {
	TemplateID int64           `json:"template_id"`
	Subject    string          `json:"subject,omitempty"`
	Topic      string          `json:"topic,omitempty"`
	Format     question.Format `json:"format"`
	Question   Question        `json:"question"`
}

// Menu is the output of catalogue mode.
type Menu struct {
	Entries    []MenuEntry `json:"entries"`
	Warnings   []Warning   `json:"warnings,omitempty"`
	CacheStats cache.Stats `json:"cache_stats"`
}

// Menu materializes one variant per template for a catalogue listing. No
// key is rotated; alternatives are sorted. Templates that fail every
// attempt are left out with a warning. Variants are memoized for the call,
// so a template listed twice is generated once.
func (e *Engine) Menu(ctx context.Context, templates []question.Template) (*Menu, error) {
	type slot struct {
		entry MenuEntry
		err   error
	}
	out := make([]slot, len(templates))
	c := cache.New(e.opts.CacheSize)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.MaxThreadWorkers)
	for i, t := range templates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i].entry, out[i].err = e.menuEntry(t, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Menu{CacheStats: c.Stats()}
	for i, s := range out {
		t := templates[i]
		if s.err != nil {
			e.logger.Warn("template left out of menu",
				"template_id", t.ID,
				"attempts", e.opts.MenuAttempts,
				"error", s.err)
			m.Warnings = append(m.Warnings, Warning{
				Version:    -1,
				Slot:       i,
				TemplateID: t.ID,
				Message:    fmt.Sprintf("template %d dropped after %d attempts: %v", t.ID, e.opts.MenuAttempts, s.err),
				Err:        s.err,
			})
			continue
		}
		m.Entries = append(m.Entries, s.entry)
	}
	return m, nil
}

func (e *Engine) menuEntry(t question.Template, c *cache.Cache) (entry MenuEntry, err error) {
	defer recoverQuestion(t.ID, &err)

	var vr *variant.Variant
	for attempt := range e.opts.MenuAttempts {
		s := seed.Derive(e.opts.Seed, "menu", t.ID, attempt)
		vr, err = c.GetOrCompute(cache.Key{TemplateID: t.ID, Seed: s}, func() (*variant.Variant, error) {
			return e.gen.Generate(t, s)
		})
		if err == nil {
			break
		}
	}
	if err != nil {
		return MenuEntry{}, err
	}

	q := Question{
		TemplateID: t.ID,
		Body:       vr.Body,
		Image:      vr.Image,
		ImageWidth: vr.ImageWidth,
	}
	switch vr.Format {
	case question.FormatMultipleChoice:
		q.Payload = sortAlternatives(vr.Alternatives, vr.CorrectIndex)
	case question.FormatTrueFalse:
		q.Payload = TrueFalse{Truth: vr.Truth}
	default:
		q.Payload = Open{}
	}
	return MenuEntry{
		TemplateID: t.ID,
		Subject:    t.Subject,
		Topic:      t.Topic,
		Format:     vr.Format,
		Question:   q,
	}, nil
}

// sortAlternatives orders alternatives by magnitude when every one of them
// reads as a number (unit prefixes included), otherwise lexically.
func sortAlternatives(alts []string, correct int) MultipleChoice {
	type alt struct {
		text    string
		value   float64
		correct bool
	}
	items := make([]alt, len(alts))
	numeric := true
	for i, a := range alts {
		v, ok := magnitude(a)
		numeric = numeric && ok
		items[i] = alt{text: a, value: v, correct: i == correct}
	}
	slices.SortStableFunc(items, func(x, y alt) int {
		if numeric {
			if c := cmp.Compare(x.value, y.value); c != 0 {
				return c
			}
		}
		return strings.Compare(x.text, y.text)
	})

	mc := MultipleChoice{Alternatives: make([]string, len(items))}
	for i, it := range items {
		mc.Alternatives[i] = it.text
		if it.correct {
			mc.Correct = i
		}
	}
	return mc
}

// magnitude reads "1,50 mA" as 0.0015.
func magnitude(text string) (float64, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(fields[0], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	if len(fields) > 1 {
		if mult, _, ok := units.SplitPrefixed(fields[1]); ok {
			v *= mult
		}
	}
	return v, true
}
