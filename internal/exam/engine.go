package exam

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examgen/internal/answerkey"
	"github.com/abhisek/examgen/internal/cache"
	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/seed"
	"github.com/abhisek/examgen/internal/variant"
)

// workerQueueTimeout bounds how long an isolated worker waits for a
// bulkhead slot.
const workerQueueTimeout = 10 * time.Minute

// Engine generates exams. It is safe for concurrent use; every call gets
// its own cache.
type Engine struct {
	opts   Options
	gen    *variant.Generator
	logger *slog.Logger

	// beforeWorker, when set, runs at the start of every parallel worker.
	beforeWorker func(mode Mode, version int)
}

// New validates opts and creates an Engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts = opts.withDefaults()
	cfg := variant.DefaultConfig()
	cfg.Limits = opts.Limits
	cfg.Logger = opts.Logger
	return &Engine{
		opts:   opts,
		gen:    variant.New(cfg),
		logger: opts.Logger,
	}, nil
}

// Options returns the effective options of e.
func (e *Engine) Options() Options {
	return e.opts
}

// Generate builds the configured number of versions from templates.
func (e *Engine) Generate(ctx context.Context, templates []question.Template) (*Result, error) {
	var rng *rand.Rand
	if e.opts.ShuffleSlots {
		rng = seed.Rand(seed.Derive(e.opts.Seed, "slots"))
	}
	return e.Assemble(ctx, BuildSlots(templates, rng), nil)
}

// GenerateFromIDs builds versions from the templates named by ids, in id
// order.
func (e *Engine) GenerateFromIDs(ctx context.Context, src Source, ids []int64) (*Result, error) {
	slots, notes, err := SlotsFromIDs(ctx, src, ids)
	if err != nil {
		return nil, err
	}
	warnings := make([]Warning, len(notes))
	for i, n := range notes {
		warnings[i] = Warning{Version: -1, Slot: -1, Message: n}
	}
	return e.Assemble(ctx, slots, warnings)
}

// Assemble builds every version over prepared slots. Versions are returned
// in order and, for a fixed run seed, are identical whatever backend ran
// them. warnings are prepended to the run's own warnings.
func (e *Engine) Assemble(ctx context.Context, slots []Slot, warnings []Warning) (*Result, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("no templates to assemble")
	}
	sizes := make([]int, len(slots))
	for i, s := range slots {
		sizes[i] = s.KeySize()
	}
	base := answerkey.Assign(sizes, e.opts.Balance, seed.Rand(seed.Derive(e.opts.Seed, "key")))
	a := newAssembler(e.gen, slots, base, e.opts)

	mode, workers := plan(e.opts, slots)
	runID := uuid.New()
	e.logger.Info("generating exam",
		"run_id", runID,
		"versions", e.opts.Versions,
		"slots", len(slots),
		"mode", mode,
		"workers", workers)

	// run outlives the parallel backends so a serial regeneration reuses
	// every variant they finished.
	var (
		out   *batch
		err   error
		run   = cache.New(e.opts.CacheSize)
		start = time.Now()
	)
	switch mode {
	case ModeThreads:
		out, err = e.threads(ctx, a, workers, run)
	case ModeProcesses:
		out, err = e.processes(ctx, a, workers, run)
	}
	if mode != ModeSerial && err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("parallel generation failed, regenerating serially",
			"mode", mode,
			"error", err)
		mode, workers = ModeSerial, 1
	}
	if mode == ModeSerial {
		out, err = e.serial(ctx, a, run)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{
		RunID:      runID.String(),
		RunSeed:    e.opts.Seed,
		Mode:       mode,
		Workers:    workers,
		Versions:   out.versions,
		Warnings:   warnings,
		CacheStats: out.stats,
	}
	for i := range res.Versions {
		res.Versions[i].ID = versionID(runID, i)
		res.Warnings = append(res.Warnings, out.warnings[i]...)
	}
	e.logger.Info("exam generated",
		"run_id", runID,
		"versions", len(res.Versions),
		"warnings", len(res.Warnings),
		"cache_hits", res.CacheStats.Hits,
		"elapsed", time.Since(start))
	return res, nil
}

func versionID(run uuid.UUID, i int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return uuid.NewSHA1(run, b[:]).String()
}

// batch collects per-version output in version order.
type batch struct {
	versions []Version
	warnings [][]Warning
	stats    cache.Stats
}

func newBatch(n int) *batch {
	return &batch{versions: make([]Version, n), warnings: make([][]Warning, n)}
}

func (e *Engine) serial(ctx context.Context, a *assembler, c *cache.Cache) (*batch, error) {
	b := newBatch(e.opts.Versions)
	for i := range e.opts.Versions {
		v, w, err := a.version(ctx, i, c)
		if err != nil {
			return nil, err
		}
		b.versions[i], b.warnings[i] = v, w
	}
	b.stats = c.Stats()
	return b, nil
}

// threads runs versions on a bounded goroutine pool sharing the run cache.
func (e *Engine) threads(ctx context.Context, a *assembler, workers int, c *cache.Cache) (*batch, error) {
	b := newBatch(e.opts.Versions)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range e.opts.Versions {
		g.Go(func() (err error) {
			defer recoverWorker(i, &err)
			e.enterWorker(ModeThreads, i)
			b.versions[i], b.warnings[i], err = a.version(gctx, i, c)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	b.stats = c.Stats()
	return b, nil
}

type isolatedResult struct {
	version  Version
	warnings []Warning
	stats    cache.Stats
}

// processes runs every version in an isolated worker: its own copy of the
// slots, its own generator and its own empty cache. A bulkhead bounds how
// many run at once. Each worker's cache is copied into run when it ends.
func (e *Engine) processes(ctx context.Context, a *assembler, workers int, run *cache.Cache) (*batch, error) {
	n := e.opts.Versions
	bh := bulkhead.New[isolatedResult](bulkhead.Config{
		MaxConcurrent: workers,
		MaxQueue:      n,
		QueueTimeout:  workerQueueTimeout,
	})
	b := newBatch(n)
	stats := make([]cache.Stats, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			r, err := bh.Execute(gctx, func(ctx context.Context) (r isolatedResult, err error) {
				defer recoverWorker(i, &err)
				w := a.isolated()
				c := cache.New(e.opts.CacheSize)
				defer run.Absorb(c)
				e.enterWorker(ModeProcesses, i)
				r.version, r.warnings, err = w.version(ctx, i, c)
				r.stats = c.Stats()
				return r, err
			})
			if err != nil {
				return err
			}
			b.versions[i], b.warnings[i], stats[i] = r.version, r.warnings, r.stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, s := range stats {
		b.stats = b.stats.Merge(s)
	}
	return b, nil
}

func (e *Engine) enterWorker(mode Mode, version int) {
	if e.beforeWorker != nil {
		e.beforeWorker(mode, version)
	}
}

func recoverWorker(version int, err *error) {
	if r := recover(); r != nil {
		*err = &ErrWorker{Version: version, Value: r}
	}
}
