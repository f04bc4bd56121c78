// Package config loads examgen settings from a YAML file with environment
// overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/pool"
	"github.com/abhisek/examgen/internal/store"
)

// Config holds every setting of an exam-generation run.
type Config struct {
	Versions    int               `yaml:"versions"`
	AnswerKey   AnswerKeyConfig   `yaml:"answer_key"`
	Score       ScoreConfig       `yaml:"score"`
	Sampling    pool.Limits       `yaml:"sampling"`
	Attempts    AttemptsConfig    `yaml:"attempts"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`

	// Selection picks templates from the bank when no ids are given.
	Selection []store.Criterion `yaml:"selection,omitempty"`

	LogLevel string `yaml:"log_level"`

	// Seed fixes the run seed. Unset means a fresh random seed per run.
	Seed *uint64 `yaml:"seed,omitempty"`

	// DB is the template bank path. Empty uses store.DefaultDBPath.
	DB string `yaml:"db,omitempty"`
}

// AnswerKeyConfig controls key distribution and ordering.
type AnswerKeyConfig struct {
	Balance          bool `yaml:"balance"`
	Rotation         int  `yaml:"rotation"`
	ShuffleSlots     bool `yaml:"shuffle_slots"`
	ShuffleQuestions bool `yaml:"shuffle_questions"`
}

// ScoreConfig controls per-question score text.
type ScoreConfig struct {
	Total       float64 `yaml:"total"`
	PerQuestion bool    `yaml:"per_question"`
}

// AttemptsConfig holds retry budgets per question.
type AttemptsConfig struct {
	Exam int `yaml:"exam"`
	Menu int `yaml:"menu"`
}

// ConcurrencyConfig selects the execution backend.
type ConcurrencyConfig struct {
	Mode              string  `yaml:"mode"`
	MaxThreadWorkers  int     `yaml:"max_thread_workers"`
	MaxProcessWorkers int     `yaml:"max_process_workers"`
	ComplexRatio      float64 `yaml:"complex_ratio"`
	CacheSize         int     `yaml:"cache_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := exam.DefaultOptions()
	return &Config{
		Versions: opts.Versions,
		AnswerKey: AnswerKeyConfig{
			Balance:  opts.Balance,
			Rotation: opts.Rotation,
		},
		Sampling: pool.DefaultLimits(),
		Attempts: AttemptsConfig{
			Exam: opts.Attempts,
			Menu: opts.MenuAttempts,
		},
		Concurrency: ConcurrencyConfig{
			Mode:              string(opts.Mode),
			MaxThreadWorkers:  opts.MaxThreadWorkers,
			MaxProcessWorkers: opts.MaxProcessWorkers,
			ComplexRatio:      opts.ComplexRatio,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/examgen/config.yaml, falling back
// to ~/.config/examgen/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "examgen", "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from EXAMGEN_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("EXAMGEN_VERSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXAMGEN_VERSIONS: %w", err)
		}
		c.Versions = n
	}
	if v := os.Getenv("EXAMGEN_SEED"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("EXAMGEN_SEED: %w", err)
		}
		c.Seed = &s
	}
	if v := os.Getenv("EXAMGEN_ROTATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXAMGEN_ROTATION: %w", err)
		}
		c.AnswerKey.Rotation = n
	}
	if v := os.Getenv("EXAMGEN_BALANCE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EXAMGEN_BALANCE: %w", err)
		}
		c.AnswerKey.Balance = b
	}
	if v := os.Getenv("EXAMGEN_MODE"); v != "" {
		c.Concurrency.Mode = v
	}
	if v := os.Getenv("EXAMGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("EXAMGEN_DB"); v != "" {
		c.DB = v
	}
	return nil
}

// Validate reports settings that can never work.
func (c *Config) Validate() error {
	if c.Versions < 1 {
		return fmt.Errorf("versions must be at least 1, got %d", c.Versions)
	}
	if _, err := exam.ParseMode(c.Concurrency.Mode); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for i, cr := range c.Selection {
		if cr.Count < 0 {
			return fmt.Errorf("selection %d: count must not be negative", i)
		}
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Limits returns the pool sampling limits with defaults filled in.
func (c *Config) Limits() pool.Limits {
	return c.Sampling.WithDefaults()
}

// Generation converts c into exam options. seed is used when the config
// does not fix one.
func (c *Config) Generation(seed uint64, logger *slog.Logger) exam.Options {
	if c.Seed != nil {
		seed = *c.Seed
	}
	mode, _ := exam.ParseMode(c.Concurrency.Mode)
	return exam.Options{
		Versions:          c.Versions,
		Balance:           c.AnswerKey.Balance,
		Rotation:          c.AnswerKey.Rotation,
		ShuffleSlots:      c.AnswerKey.ShuffleSlots,
		ShuffleQuestions:  c.AnswerKey.ShuffleQuestions,
		TotalScore:        c.Score.Total,
		PerQuestionScore:  c.Score.PerQuestion,
		Attempts:          c.Attempts.Exam,
		MenuAttempts:      c.Attempts.Menu,
		Seed:              seed,
		Mode:              mode,
		MaxThreadWorkers:  c.Concurrency.MaxThreadWorkers,
		MaxProcessWorkers: c.Concurrency.MaxProcessWorkers,
		ComplexRatio:      c.Concurrency.ComplexRatio,
		CacheSize:         c.Concurrency.CacheSize,
		Limits:            c.Limits(),
		Logger:            logger,
	}
}
