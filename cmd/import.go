package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import templates from a YAML or JSON file into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := question.LoadFile(args[0])
		if err != nil {
			return err
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.Import(commandContext(cmd), templates); err != nil {
			return err
		}
		logger.Info("templates imported", "db", dbPath, "count", len(templates))
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d templates into %s\n", len(templates), dbPath)
		return nil
	},
}
