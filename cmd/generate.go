package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/preview"
	"github.com/abhisek/examgen/internal/seed"
	"github.com/abhisek/examgen/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate exam versions",
	Long: `Generate one or more exam versions from template IDs, from the selection
criteria in the config file, or from every template in a --templates file.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("templates", "", "Load templates from a YAML or JSON file instead of the database")
	f.Int64Slice("ids", nil, "Template IDs, one slot each (group members share a slot)")
	f.Int("versions", 0, "Number of exam versions")
	f.Uint64("seed", 0, "Run seed (random when unset)")
	f.String("mode", "", "Execution mode: auto, serial, threads or processes")
	f.Int("rotation", 0, "Answer key rotation step between versions")
	f.Bool("no-balance", false, "Draw the base answer key without letter balancing")
	f.Bool("shuffle-slots", false, "Shuffle slot order before assembling")
	f.Bool("shuffle-questions", false, "Shuffle question order inside each version")
	f.Float64("score", 0, "Total exam score")
	f.Bool("per-question", false, "Split the total score evenly across questions")
	f.StringP("out", "o", "", "Write JSON to this file instead of stdout")
	f.Bool("preview", false, "Render the exam to the terminal instead of JSON")
	f.Bool("key", false, "Highlight correct answers in the preview")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := applyGenerateFlags(cmd); err != nil {
		return err
	}

	runSeed := rand.Uint64()
	if cfg.Seed != nil {
		runSeed = *cfg.Seed
	}

	engine, err := exam.New(cfg.Generation(runSeed, logger))
	if err != nil {
		return err
	}

	src, release, err := openSource(cmd)
	if err != nil {
		return err
	}
	defer release()

	ctx := commandContext(cmd)
	ids, _ := cmd.Flags().GetInt64Slice("ids")
	file, _ := cmd.Flags().GetString("templates")

	var res *exam.Result
	switch {
	case len(ids) > 0:
		res, err = engine.GenerateFromIDs(ctx, src, ids)

	case len(cfg.Selection) > 0:
		rng := seed.Rand(seed.Derive(runSeed, "select"))
		templates, notes, selErr := store.Select(ctx, src, cfg.Selection, cfg.Versions, rng)
		if selErr != nil {
			return selErr
		}
		res, err = engine.Generate(ctx, templates)
		if err == nil {
			res.Warnings = append(notesAsWarnings(notes), res.Warnings...)
		}

	case file != "":
		templates, listErr := src.List(ctx, store.Filter{})
		if listErr != nil {
			return listErr
		}
		res, err = engine.Generate(ctx, templates)

	default:
		return errors.New("nothing to generate: pass --ids or configure selection")
	}
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("preview"); show {
		key, _ := cmd.Flags().GetBool("key")
		return preview.Write(cmd.OutOrStdout(), preview.Exam(res, key))
	}
	out, _ := cmd.Flags().GetString("out")
	return writeJSON(cmd.OutOrStdout(), out, res)
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("versions") {
		cfg.Versions, _ = f.GetInt("versions")
	}
	if f.Changed("seed") {
		s, _ := f.GetUint64("seed")
		cfg.Seed = &s
	}
	if f.Changed("mode") {
		cfg.Concurrency.Mode, _ = f.GetString("mode")
	}
	if f.Changed("rotation") {
		cfg.AnswerKey.Rotation, _ = f.GetInt("rotation")
	}
	if f.Changed("no-balance") {
		off, _ := f.GetBool("no-balance")
		cfg.AnswerKey.Balance = !off
	}
	if f.Changed("shuffle-slots") {
		cfg.AnswerKey.ShuffleSlots, _ = f.GetBool("shuffle-slots")
	}
	if f.Changed("shuffle-questions") {
		cfg.AnswerKey.ShuffleQuestions, _ = f.GetBool("shuffle-questions")
	}
	if f.Changed("score") {
		cfg.Score.Total, _ = f.GetFloat64("score")
	}
	if f.Changed("per-question") {
		cfg.Score.PerQuestion, _ = f.GetBool("per-question")
	}
	return cfg.Validate()
}

func notesAsWarnings(notes []string) []exam.Warning {
	out := make([]exam.Warning, len(notes))
	for i, n := range notes {
		out[i] = exam.Warning{Version: -1, Slot: -1, Message: n}
	}
	return out
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
