// Package exam assembles multi-version exams: it groups templates into
// slots, distributes and rotates the answer key, materializes one variant
// per slot and version, and schedules versions on serial, thread-pool or
// isolated-worker backends.
package exam

import (
	"fmt"
	"log/slog"

	"github.com/abhisek/examgen/internal/pool"
)

// Mode selects the execution backend.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeSerial    Mode = "serial"
	ModeThreads   Mode = "threads"
	ModeProcesses Mode = "processes"
)

// ParseMode converts a user-facing mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAuto, ModeSerial, ModeThreads, ModeProcesses:
		return m, nil
	case "":
		return ModeAuto, nil
	}
	return "", fmt.Errorf("unknown mode %q (want auto, serial, threads or processes)", s)
}

// Options controls one exam-generation call.
type Options struct {
	// Versions is the number of exam versions to build.
	Versions int

	// Balance spreads the correct letters evenly over the first version.
	Balance bool

	// Rotation is the letter offset applied between successive versions.
	Rotation int

	// ShuffleSlots shuffles slot order once per call; every version sees
	// the same order.
	ShuffleSlots bool

	// ShuffleQuestions additionally shuffles question order per version.
	ShuffleQuestions bool

	// TotalScore is split evenly over the slots when PerQuestionScore is set.
	TotalScore       float64
	PerQuestionScore bool

	// Attempts is the number of seeds tried per question before it is
	// dropped. MenuAttempts is the same for catalogue mode.
	Attempts     int
	MenuAttempts int

	// Seed is the run seed every other seed is derived from.
	Seed uint64

	Mode              Mode
	MaxThreadWorkers  int
	MaxProcessWorkers int

	// ComplexRatio is the minimum share of combinatorial templates for
	// auto mode to consider parallel execution.
	ComplexRatio float64

	// CacheSize bounds the per-run variant cache.
	CacheSize int

	Limits pool.Limits
	Logger *slog.Logger

	// Probe reports host resources for auto mode. Nil uses ProbeHost.
	Probe func() Host
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Versions:          1,
		Balance:           true,
		Rotation:          1,
		Attempts:          3,
		MenuAttempts:      100,
		Mode:              ModeAuto,
		MaxThreadWorkers:  8,
		MaxProcessWorkers: 4,
		ComplexRatio:      0.25,
		Limits:            pool.DefaultLimits(),
	}
}

// Validate reports configuration mistakes. These are programmer errors and
// abort the call.
func (o Options) Validate() error {
	if o.Versions < 1 {
		return fmt.Errorf("versions must be at least 1, got %d", o.Versions)
	}
	if o.TotalScore < 0 {
		return fmt.Errorf("total score must not be negative, got %g", o.TotalScore)
	}
	if o.ComplexRatio < 0 || o.ComplexRatio > 1 {
		return fmt.Errorf("complex ratio must be within [0, 1], got %g", o.ComplexRatio)
	}
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Attempts < 0 || o.MenuAttempts < 0 {
		return fmt.Errorf("attempts must not be negative")
	}
	return nil
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Attempts <= 0 {
		o.Attempts = d.Attempts
	}
	if o.MenuAttempts <= 0 {
		o.MenuAttempts = d.MenuAttempts
	}
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	if o.MaxThreadWorkers <= 0 {
		o.MaxThreadWorkers = d.MaxThreadWorkers
	}
	if o.MaxProcessWorkers <= 0 {
		o.MaxProcessWorkers = d.MaxProcessWorkers
	}
	o.Limits = o.Limits.WithDefaults()
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Probe == nil {
		o.Probe = ProbeHost
	}
	return o
}
