// Package pool builds outcome pools: the distinct valid answers a parameter
// program can reach when its draw sites range over their domains.
package pool

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/abhisek/examgen/internal/program"
	"github.com/abhisek/examgen/internal/seed"
	"github.com/abhisek/examgen/internal/units"
)

// ErrNotCombinatorial is returned for programs without random-draw sites.
var ErrNotCombinatorial = errors.New("program has no random-draw sites")

// Strategy names the sampling law used for one pool.
type Strategy string

const (
	Exhaustive   Strategy = "exhaustive"
	Boundary     Strategy = "boundary"
	Proportional Strategy = "proportional"
	Uniform      Strategy = "uniform"
)

// Pool is the validated outcome space of one program.
type Pool struct {
	Strategy Strategy

	// Structured is true when the answer is a multi-value record; Records
	// is filled instead of Scalars.
	Structured bool
	Scalars    []float64
	Records    []program.Record

	// Canonical is the draw assignment of the seed execution.
	Canonical []any

	// Total is the size of the full Cartesian product, saturated at
	// math.MaxInt.
	Total int

	// Combinations is the number of assignments evaluated; Failures counts
	// the ones whose evaluation raised.
	Combinations int
	Failures     int
}

// Len returns the number of distinct outcomes.
func (p *Pool) Len() int {
	if p.Structured {
		return len(p.Records)
	}
	return len(p.Scalars)
}

// Request describes one pool computation.
type Request struct {
	Program *program.Program

	// Seed is the already executed binding whose draws define the domains
	// and the canonical combination.
	Seed *program.Binding

	// SampleSeed drives every random choice made while sampling.
	SampleSeed uint64

	AllowNegative bool
}

// Engine computes outcome pools. It holds no mutable state.
type Engine struct {
	limits Limits
	logger *slog.Logger
}

// New returns an Engine. A nil logger uses slog.Default().
func New(limits Limits, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{limits: limits.WithDefaults(), logger: logger}
}

// Limits returns the effective limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Build enumerates or samples the draw assignments of req.Program, runs
// the deterministic remainder for each and collects the valid, distinct
// answers. Identical requests yield identical pools.
func (e *Engine) Build(req Request) (*Pool, error) {
	if req.Program == nil || req.Seed == nil {
		return nil, errors.New("build pool: program and seed binding are required")
	}
	if req.Program.DrawCount() == 0 || len(req.Seed.Draws) == 0 {
		return nil, ErrNotCombinatorial
	}
	if len(req.Seed.Draws) != req.Program.DrawCount() {
		return nil, fmt.Errorf("build pool: seed has %d draws, program has %d", len(req.Seed.Draws), req.Program.DrawCount())
	}

	answer, ok := req.Seed.Answer()
	if !ok {
		return nil, errors.New("build pool: seed binding has no answer")
	}
	_, structured, err := program.AsRecord(answer)
	if err != nil {
		return nil, fmt.Errorf("build pool: %w", err)
	}
	if !structured {
		if _, ok := program.ToFloat(answer); !ok {
			return nil, fmt.Errorf("build pool: answer is %T, not a number or record", answer)
		}
	}

	domains := make([]program.Domain, len(req.Seed.Draws))
	sizes := make([]int, len(domains))
	for i, d := range req.Seed.Draws {
		domains[i] = d.Domain
		sizes[i] = d.Domain.Grid(e.limits.UniformSteps).Size()
	}
	total := product(sizes)

	s := &sampler{
		limits:  e.limits,
		rng:     seed.Rand(req.SampleSeed),
		domains: domains,
		seen:    make(map[string]bool),
	}
	s.add(req.Seed.Assignment())

	strategy := e.selectStrategy(domains, total)
	switch strategy {
	case Exhaustive:
		s.exhaustive()
	case Boundary:
		s.boundary(total)
	case Proportional:
		s.proportional(total)
	default:
		s.uniform(total)
	}

	pool := &Pool{
		Strategy:   strategy,
		Structured: structured,
		Canonical:  req.Seed.Assignment(),
		Total:      total,
	}
	e.evaluate(pool, req, s.combos)

	e.logger.Debug("outcome pool built",
		"strategy", strategy,
		"domains", sizes,
		"total", total,
		"combinations", pool.Combinations,
		"failures", pool.Failures,
		"outcomes", pool.Len())
	return pool, nil
}

// selectStrategy picks the sampling law. The order of the checks is the
// tie-break.
func (e *Engine) selectStrategy(domains []program.Domain, total int) Strategy {
	if total <= e.limits.MaxCombinations {
		return Exhaustive
	}
	large := false
	for _, d := range domains {
		if d.Continuous() || (d.Numeric() && d.Size() > e.limits.LargeDomain) {
			return Boundary
		}
		if d.Size() > e.limits.LargeDomain {
			large = true
		}
	}
	if large {
		return Proportional
	}
	return Uniform
}

func (e *Engine) evaluate(pool *Pool, req Request, combos [][]any) {
	seenScalar := make(map[float64]bool)
	seenRecord := make(map[string]bool)
	for _, combo := range combos {
		pool.Combinations++
		b, err := req.Program.Evaluate(combo)
		if err != nil {
			pool.Failures++
			e.logger.Debug("combination failed", "combination", combo, "error", err)
			continue
		}
		ans, ok := b.Answer()
		if !ok {
			continue
		}
		if pool.Structured {
			rec, ok, err := program.AsRecord(ans)
			if err != nil || !ok || !ValidRecord(rec, req.AllowNegative) {
				continue
			}
			key := rec.Key()
			if seenRecord[key] {
				continue
			}
			seenRecord[key] = true
			pool.Records = append(pool.Records, rec)
			continue
		}
		v, ok := program.ToFloat(ans)
		if !ok || !Valid(v, req.AllowNegative) || seenScalar[v] {
			continue
		}
		seenScalar[v] = true
		pool.Scalars = append(pool.Scalars, v)
	}
}

// Valid reports whether v may appear in a pool.
func Valid(v float64, allowNegative bool) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || units.IsZero(v) {
		return false
	}
	return allowNegative || v >= 0
}

// ValidRecord applies Valid to every field of rec.
func ValidRecord(rec program.Record, allowNegative bool) bool {
	for _, f := range rec.Fields {
		if !Valid(rec.Values[f], allowNegative) {
			return false
		}
	}
	return true
}

// product multiplies sizes, saturating at math.MaxInt. A zero size
// (continuous, ungridded) counts as unbounded.
func product(sizes []int) int {
	total := 1
	for _, n := range sizes {
		if n <= 0 {
			return math.MaxInt
		}
		if total > math.MaxInt/n {
			return math.MaxInt
		}
		total *= n
	}
	return total
}

func comboKey(combo []any) string {
	var b strings.Builder
	for i, v := range combo {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%T:%v", v, v)
	}
	return b.String()
}
