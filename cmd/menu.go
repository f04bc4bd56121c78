package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/preview"
	"github.com/abhisek/examgen/internal/question"
	"github.com/abhisek/examgen/internal/store"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List one variant of every template with its answer",
	RunE:  runMenu,
}

func init() {
	f := menuCmd.Flags()
	f.String("templates", "", "Load templates from a YAML or JSON file instead of the database")
	f.String("subject", "", "Only list templates of this subject")
	f.String("topic", store.TopicAll, "Only list templates of this topic")
	f.String("format", "", "Only list templates of this format")
	f.Uint64("seed", 0, "Seed for the listed variants")
	f.StringP("out", "o", "", "Write JSON to this file instead of stdout")
	f.Bool("preview", false, "Render the menu to the terminal instead of JSON")
}

func runMenu(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	var filter store.Filter
	filter.Subject, _ = f.GetString("subject")
	filter.Topic, _ = f.GetString("topic")
	if s, _ := f.GetString("format"); s != "" {
		format, err := question.ParseFormat(s)
		if err != nil {
			return err
		}
		filter.Format = format
	}
	if f.Changed("seed") {
		s, _ := f.GetUint64("seed")
		cfg.Seed = &s
	}

	src, release, err := openSource(cmd)
	if err != nil {
		return err
	}
	defer release()

	ctx := commandContext(cmd)
	templates, err := src.List(ctx, filter)
	if err != nil {
		return err
	}

	engine, err := exam.New(cfg.Generation(0, logger))
	if err != nil {
		return err
	}
	m, err := engine.Menu(ctx, templates)
	if err != nil {
		return err
	}
	logger.Info("menu built", "entries", len(m.Entries), "warnings", len(m.Warnings))

	if show, _ := f.GetBool("preview"); show {
		return preview.Write(cmd.OutOrStdout(), preview.Menu(m))
	}
	out, _ := f.GetString("out")
	return writeJSON(cmd.OutOrStdout(), out, m)
}
