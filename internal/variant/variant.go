// Package variant materializes templates into concrete question variants:
// it runs the parameter program, fills the body, builds the outcome pool
// and picks distractors.
package variant

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/abhisek/examgen/internal/pool"
	"github.com/abhisek/examgen/internal/program"
	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/seed"
	"github.com/abhisek/examgen/internal/units"
)

// DefaultImageWidth is the image width, in percent, used when a template
// does not set one.
const DefaultImageWidth = 50

// Variant is one concrete instantiation of a template. Variants are never
// shared between exam versions; callers that reorder alternatives work on
// a Clone.
type Variant struct {
	TemplateID int64
	Format     question.Format
	Body       string

	Image      string
	ImageWidth int

	// Correct is the formatted correct alternative (multiple choice).
	Correct string

	// Alternatives holds the formatted alternatives; Alternatives[CorrectIndex]
	// equals Correct.
	Alternatives []string
	CorrectIndex int

	// MultiValue is set for structured multi-field answers.
	MultiValue bool

	// Truth is the expected answer of a true/false question.
	Truth bool

	// Strategy is the pool sampling law, empty when no pool was built.
	Strategy pool.Strategy

	Seed uint64
}

// Clone returns a deep copy of v.
func (v *Variant) Clone() *Variant {
	c := *v
	c.Alternatives = slices.Clone(v.Alternatives)
	return &c
}

// Config controls the behavior of the Generator.
type Config struct {
	// Validators is the ordered list of validators run on every variant.
	// The first failure stops the pipeline.
	Validators []Validator

	// Limits bounds pool sampling and distractor selection.
	Limits pool.Limits

	Logger *slog.Logger
}

// DefaultConfig returns a Config with the standard validator chain and
// sampling limits.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ContainmentValidator{},
		},
		Limits: pool.DefaultLimits(),
	}
}

// Generator materializes variants. It is safe for concurrent use.
type Generator struct {
	config Config
	engine *pool.Engine
	logger *slog.Logger

	programs sync.Map // program source -> *program.Program
}

// New creates a Generator.
func New(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Limits = cfg.Limits.WithDefaults()
	return &Generator{
		config: cfg,
		engine: pool.New(cfg.Limits, logger),
		logger: logger,
	}
}

// Engine returns the pool engine used by g.
func (g *Generator) Engine() *pool.Engine {
	return g.engine
}

// Program returns the parsed parameter program of t, or nil when t has
// none. Parsed programs are reused across calls.
func (g *Generator) Program(t question.Template) (*program.Program, error) {
	src := strings.TrimSpace(t.Program)
	if src == "" {
		return nil, nil
	}
	key := string(t.ProgramKind) + "\x00" + src
	if p, ok := g.programs.Load(key); ok {
		return p.(*program.Program), nil
	}
	var (
		p   *program.Program
		err error
	)
	if t.ProgramKind == question.ProgramTable {
		p, err = program.ParseTable(src)
	} else {
		p, err = program.Parse(src)
	}
	if err != nil {
		return nil, programError(t.ID, err)
	}
	g.programs.Store(key, p)
	return p, nil
}

// Generate materializes t with the given seed. The same template and seed
// always produce the same variant.
func (g *Generator) Generate(t question.Template, s uint64) (*Variant, error) {
	rng := seed.Rand(s)

	prog, err := g.Program(t)
	if err != nil {
		return nil, err
	}
	var binding *program.Binding
	vars := map[string]any{}
	if prog != nil {
		binding, err = prog.Run(rng)
		if err != nil {
			return nil, programError(t.ID, err)
		}
		vars = binding.Vars
	}

	body, err := render(t.Body, vars)
	if err != nil {
		return nil, placeholderError(t.ID, err)
	}

	v := &Variant{
		TemplateID: t.ID,
		Format:     t.Format,
		Body:       body,
		Image:      strings.ReplaceAll(t.Image, "\\", "/"),
		ImageWidth: t.ImageWidthPercent,
		Seed:       s,
	}
	if v.ImageWidth <= 0 {
		v.ImageWidth = DefaultImageWidth
	}

	switch t.Format {
	case question.FormatMultipleChoice:
		if t.Combinatorial() {
			err = g.combinatorial(v, t, prog, binding, rng, s)
		} else {
			err = g.manual(v, t, vars)
		}
	case question.FormatTrueFalse:
		err = g.trueFalse(v, t, binding)
	case question.FormatOpen:
	default:
		err = &ErrAnswer{TemplateID: t.ID, Reason: fmt.Sprintf("unknown format %q", t.Format)}
	}
	if err != nil {
		return nil, err
	}

	for _, val := range g.config.Validators {
		if verr := val.Validate(v, t); verr != nil {
			return nil, verr
		}
	}
	return v, nil
}

func (g *Generator) combinatorial(v *Variant, t question.Template, prog *program.Program, b *program.Binding, rng *rand.Rand, s uint64) error {
	answer, ok := b.Answer()
	if !ok {
		return &ErrAnswer{TemplateID: t.ID, Reason: "program binds no answer"}
	}
	p, err := g.engine.Build(pool.Request{
		Program:       prog,
		Seed:          b,
		SampleSeed:    seed.Derive(s, "pool"),
		AllowNegative: t.AllowNegative,
	})
	if err != nil {
		if errors.Is(err, pool.ErrNotCombinatorial) {
			return &ErrAnswer{TemplateID: t.ID, Reason: "automatic alternatives need at least one random draw"}
		}
		return programError(t.ID, err)
	}
	v.Strategy = p.Strategy
	if p.Structured {
		v.MultiValue = true
		return g.structured(v, t, answer, p, rng)
	}
	return g.scalar(v, t, answer, p, rng)
}

// scalar picks distractors from the formatted pool values.
func (g *Generator) scalar(v *Variant, t question.Template, answer any, p *pool.Pool, rng *rand.Rand) error {
	need := t.AltCount()

	correctNum, ok := program.ToFloat(answer)
	if !ok {
		return &ErrAnswer{TemplateID: t.ID, Reason: fmt.Sprintf("answer is %T, not a number", answer)}
	}
	if !t.AllowNegative && correctNum < 0 {
		return &ErrAnswer{TemplateID: t.ID, Reason: "negative answer not allowed"}
	}
	correct := units.Format(correctNum, t.Unit, true)
	if units.IsZero(correctNum) || units.IsZeroText(correct) {
		return &ErrAnswer{TemplateID: t.ID, Reason: "zero answer not allowed"}
	}

	var others []string
	seen := map[string]bool{correct: true}
	for _, x := range p.Scalars {
		txt := units.Format(x, t.Unit, true)
		if seen[txt] || units.IsZeroText(txt) {
			continue
		}
		seen[txt] = true
		others = append(others, txt)
	}
	if len(others)+1 < need {
		return &ErrInsufficientPool{TemplateID: t.ID, Have: len(others) + 1, Need: need}
	}

	rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	if limit := g.config.Limits.MaxPoolTexts - 1; len(others) > limit {
		others = others[:limit]
	}

	v.Correct = correct
	v.Alternatives = append([]string{correct}, others[:need-1]...)
	v.CorrectIndex = 0
	return nil
}

// structured builds distractor records by drawing each field from its own
// pool of observed values.
func (g *Generator) structured(v *Variant, t question.Template, answer any, p *pool.Pool, rng *rand.Rand) error {
	need := t.AltCount()
	rec, _, err := program.AsRecord(answer)
	if err != nil {
		return &ErrAnswer{TemplateID: t.ID, Reason: err.Error()}
	}
	for _, f := range rec.Fields {
		x := rec.Values[f]
		if !t.AllowNegative && x < 0 {
			return &ErrAnswer{TemplateID: t.ID, Reason: fmt.Sprintf("field %q is negative", f)}
		}
		if units.IsZero(x) {
			return &ErrAnswer{TemplateID: t.ID, Reason: fmt.Sprintf("field %q is zero", f)}
		}
	}

	fieldPools := make(map[string][]float64, len(rec.Fields))
	for _, f := range rec.Fields {
		seen := map[float64]bool{}
		for _, r := range p.Records {
			x, ok := r.Values[f]
			if !ok || seen[x] || !pool.Valid(x, t.AllowNegative) {
				continue
			}
			seen[x] = true
			fieldPools[f] = append(fieldPools[f], x)
		}
		if len(fieldPools[f]) == 0 {
			return &ErrInsufficientPool{TemplateID: t.ID, Have: 0, Need: need}
		}
	}

	correct, err := renderRecord(rec.TextFormat, rec.Values, t.Unit)
	if err != nil {
		return placeholderError(t.ID, err)
	}
	alts := []string{correct}
	for attempts := 0; len(alts) < need; attempts++ {
		if attempts >= g.config.Limits.StructuredAttempts {
			return &ErrInsufficientPool{TemplateID: t.ID, Have: len(alts), Need: need}
		}
		draw := make(map[string]float64, len(rec.Fields))
		for _, f := range rec.Fields {
			fp := fieldPools[f]
			draw[f] = fp[rng.IntN(len(fp))]
		}
		txt, err := renderRecord(rec.TextFormat, draw, t.Unit)
		if err != nil {
			return placeholderError(t.ID, err)
		}
		if !slices.Contains(alts, txt) {
			alts = append(alts, txt)
		}
	}

	v.Correct = correct
	v.Alternatives = alts
	v.CorrectIndex = 0
	return nil
}

// renderRecord formats each field with its unit prefix (but without the
// base unit) and fills the record's text format.
func renderRecord(format string, values map[string]float64, unit string) (string, error) {
	vars := make(map[string]any, len(values))
	for k, x := range values {
		vars[k] = units.Format(x, unit, false)
	}
	return render(format, vars)
}

// manual uses the literal alternatives. A placeholder that cannot be
// resolved leaves the literal text in place.
func (g *Generator) manual(v *Variant, t question.Template, vars map[string]any) error {
	n := min(t.AltCount(), len(t.Alternatives))
	correctIdx := question.LetterIndex(t.CorrectLetter)
	if correctIdx < 0 || correctIdx >= n || strings.TrimSpace(t.Alternatives[correctIdx]) == "" {
		return &ErrAnswer{TemplateID: t.ID, Reason: fmt.Sprintf("invalid correct letter %q", t.CorrectLetter)}
	}

	v.CorrectIndex = -1
	for i, lit := range t.Alternatives[:n] {
		if strings.TrimSpace(lit) == "" {
			continue
		}
		txt, err := render(lit, vars)
		if err != nil {
			g.logger.Warn("alternative placeholder not bound",
				"template_id", t.ID,
				"letter", question.Letters[i],
				"error", err)
			txt = lit
		}
		if i == correctIdx {
			v.Correct = txt
			v.CorrectIndex = len(v.Alternatives)
		}
		v.Alternatives = append(v.Alternatives, txt)
	}
	return nil
}

// trueFalse takes the expected answer from the program, or from the
// template's correct letter when there is no program answer.
func (g *Generator) trueFalse(v *Variant, t question.Template, b *program.Binding) error {
	if b != nil {
		if ans, ok := b.Answer(); ok {
			truth, ok := parseTruth(ans)
			if !ok {
				return &ErrAnswer{TemplateID: t.ID, Reason: fmt.Sprintf("true/false answer %v is not a truth value", ans)}
			}
			v.Truth = truth
			return nil
		}
	}
	truth, ok := parseTruth(t.CorrectLetter)
	if !ok {
		return &ErrAnswer{TemplateID: t.ID, Reason: fmt.Sprintf("invalid true/false marker %q", t.CorrectLetter)}
	}
	v.Truth = truth
	return nil
}

func parseTruth(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "t", "true", "v", "verdadeiro":
			return true, true
		case "f", "false", "falso":
			return false, true
		}
	}
	return false, false
}

func programError(id int64, err error) error {
	pe := &ErrProgram{TemplateID: id, Err: err}
	var syn *program.ErrSyntax
	var rt *program.ErrRuntime
	switch {
	case errors.As(err, &syn):
		pe.Statement = syn.Source
	case errors.As(err, &rt):
		pe.Statement = rt.Source
	}
	return pe
}

func placeholderError(id int64, err error) error {
	var me *missingError
	if errors.As(err, &me) {
		return &ErrPlaceholder{TemplateID: id, Name: me.name}
	}
	return fmt.Errorf("template %d: %w", id, err)
}
