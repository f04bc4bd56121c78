package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/config"
	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examgen",
	Short: "Question variant generator and multi-version exam assembler",
	Long: `examgen turns parameterised question templates into concrete variants
and assembles them into several exam versions with rotated answer keys.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// cfg and logger are set by setup before any command runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/examgen/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite template bank (overrides EXAMGEN_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(poolCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		c.LogLevel = lvl
		if _, err := config.ParseLevel(lvl); err != nil {
			return err
		}
	}
	cfg = c

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config/EXAMGEN_DB value, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = cfg.DB
	}
	if p != "" {
		return p, os.MkdirAll(filepath.Dir(p), 0o755)
	}
	return store.DefaultDBPath()
}

// openSource opens the template file given by --templates, or the SQLite
// bank otherwise. The returned func releases the source.
func openSource(cmd *cobra.Command) (store.Source, func(), error) {
	if file, _ := cmd.Flags().GetString("templates"); file != "" {
		templates, err := question.LoadFile(file)
		if err != nil {
			return nil, nil, fmt.Errorf("load templates: %w", err)
		}
		logger.Debug("templates loaded", "file", file, "count", len(templates))
		return store.NewMemory(templates), func() {}, nil
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return s, func() { s.Close() }, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
