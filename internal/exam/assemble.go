package exam

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/examgen/internal/answerkey"
	"github.com/abhisek/examgen/internal/cache"
	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/seed"
	"github.com/abhisek/examgen/internal/units"
	"github.com/abhisek/examgen/internal/variant"
)

// assembler builds single versions. Everything it holds is read-only once
// built, so one assembler may serve concurrent workers.
type assembler struct {
	gen    *variant.Generator
	slots  []Slot
	sizes  []int
	base   answerkey.Key
	opts   Options
	score  string
	logger *slog.Logger
}

func newAssembler(gen *variant.Generator, slots []Slot, base answerkey.Key, opts Options) *assembler {
	a := &assembler{
		gen:    gen,
		slots:  slots,
		sizes:  make([]int, len(slots)),
		base:   base,
		opts:   opts,
		logger: opts.Logger,
	}
	for i, s := range slots {
		a.sizes[i] = s.KeySize()
	}
	if opts.PerQuestionScore && opts.TotalScore > 0 && len(slots) > 0 {
		a.score = units.DecimalComma(fmt.Sprintf("%.2f", opts.TotalScore/float64(len(slots))))
	}
	return a
}

// isolated returns an assembler with its own copy of the slots and its own
// generator, sharing nothing mutable with a.
func (a *assembler) isolated() *assembler {
	slots := make([]Slot, len(a.slots))
	for i, s := range a.slots {
		slots[i] = s.clone()
	}
	c := *a
	c.slots = slots
	c.gen = variant.New(variant.Config{
		Validators: variant.DefaultConfig().Validators,
		Limits:     a.opts.Limits,
		Logger:     a.logger,
	})
	return &c
}

// version builds version i. Failed questions are dropped and reported as
// warnings.
func (a *assembler) version(ctx context.Context, i int, c *cache.Cache) (Version, []Warning, error) {
	label := Label(i)
	key := a.base.ForVersion(i, a.opts.Rotation, a.sizes)
	v := Version{Index: i, Label: label}
	var warnings []Warning

	for si, slot := range a.slots {
		if err := ctx.Err(); err != nil {
			return Version{}, nil, err
		}
		t := slot.Pick(i)
		q, err := a.question(i, slot, t, key[si], c)
		if err != nil {
			a.logger.Warn("question dropped",
				"version", label,
				"slot", slot.Index,
				"template_id", t.ID,
				"error", err)
			warnings = append(warnings, Warning{
				Version:    i,
				Slot:       slot.Index,
				TemplateID: t.ID,
				Message:    fmt.Sprintf("version %s: %v", label, err),
				Err:        err,
			})
			continue
		}
		v.Questions = append(v.Questions, q)
	}

	if len(v.Questions) < len(a.slots) {
		err := &ErrSlotUnfilled{Version: label, Found: len(v.Questions), Requested: len(a.slots)}
		warnings = append(warnings, Warning{Version: i, Slot: -1, Message: err.Error(), Err: err})
	}
	if a.opts.ShuffleQuestions {
		rng := seed.Rand(seed.Derive(a.opts.Seed, i, "order"))
		rng.Shuffle(len(v.Questions), func(x, y int) { v.Questions[x], v.Questions[y] = v.Questions[y], v.Questions[x] })
	}
	return v, warnings, nil
}

// question materializes t for version i, retrying with fresh seeds, and
// places the correct alternative under the letter the key assigns. A panic
// while generating fails the question, not the version.
func (a *assembler) question(i int, slot Slot, t question.Template, letter int, c *cache.Cache) (q Question, err error) {
	defer recoverQuestion(t.ID, &err)

	var (
		vr *variant.Variant
		s  uint64
	)
	for attempt := range a.opts.Attempts {
		s = seed.Derive(a.opts.Seed, i, slot.Index, t.ID, attempt)
		vr, err = c.GetOrCompute(cache.Key{TemplateID: t.ID, Seed: s}, func() (*variant.Variant, error) {
			return a.gen.Generate(t, s)
		})
		if err == nil {
			break
		}
		a.logger.Debug("variant attempt failed",
			"template_id", t.ID,
			"attempt", attempt,
			"error", err)
	}
	if err != nil {
		return Question{}, err
	}

	q = Question{
		Slot:       slot.Index,
		TemplateID: t.ID,
		Body:       vr.Body,
		Image:      vr.Image,
		ImageWidth: vr.ImageWidth,
		Score:      a.score,
	}
	switch vr.Format {
	case question.FormatMultipleChoice:
		mc, err := arrange(vr, letter, seed.Derive(s, "shuffle"))
		if err != nil {
			return Question{}, fmt.Errorf("template %d: %w", t.ID, err)
		}
		q.Payload = mc
	case question.FormatTrueFalse:
		q.Payload = TrueFalse{Truth: vr.Truth}
	default:
		q.Payload = Open{}
	}
	return q, nil
}

// arrange shuffles the alternatives of vr and swaps the correct one into
// position letter. A negative letter picks one at random; a letter beyond
// the alternatives is an error.
func arrange(vr *variant.Variant, letter int, s uint64) (MultipleChoice, error) {
	alts := vr.Alternatives
	if letter >= len(alts) {
		return MultipleChoice{}, fmt.Errorf("key letter %s outside %d alternatives", answerkey.Letter(letter), len(alts))
	}
	rng := seed.Rand(s)
	perm := rng.Perm(len(alts))
	shuffled := make([]string, len(alts))
	correct := 0
	for to, from := range perm {
		shuffled[to] = alts[from]
		if from == vr.CorrectIndex {
			correct = to
		}
	}
	if letter < 0 {
		letter = rng.IntN(len(alts))
	}
	shuffled[correct], shuffled[letter] = shuffled[letter], shuffled[correct]
	return MultipleChoice{Alternatives: shuffled, Correct: letter}, nil
}

// recoverQuestion turns a panic raised while generating template id into
// an error.
func recoverQuestion(id int64, err *error) {
	if r := recover(); r != nil {
		*err = &ErrGeneration{TemplateID: id, Value: r}
	}
}
