package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/pool"
	"github.com/abhisek/examgen/internal/seed"
	"github.com/abhisek/examgen/internal/units"
	"github.com/abhisek/examgen/internal/variant"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Show the outcome pool of a template's parameter program",
	RunE:  runPool,
}

func init() {
	f := poolCmd.Flags()
	f.String("templates", "", "Load templates from a YAML or JSON file instead of the database")
	f.Int64("id", 0, "Template ID")
	f.Uint64("seed", 0, "Seed for the canonical execution")
	f.Int("show", 20, "Maximum number of outcomes to print")
	_ = poolCmd.MarkFlagRequired("id")
}

func runPool(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	id, _ := f.GetInt64("id")
	s, _ := f.GetUint64("seed")
	show, _ := f.GetInt("show")

	src, release, err := openSource(cmd)
	if err != nil {
		return err
	}
	defer release()

	found, err := src.ByIDs(commandContext(cmd), []int64{id})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("template %d not found or inactive", id)
	}
	t := found[0]

	vcfg := variant.DefaultConfig()
	vcfg.Limits = cfg.Limits()
	vcfg.Logger = logger
	gen := variant.New(vcfg)

	prog, err := gen.Program(t)
	if err != nil {
		return err
	}
	if prog == nil {
		return fmt.Errorf("template %d has no parameter program", id)
	}
	b, err := prog.Run(seed.Rand(s))
	if err != nil {
		return err
	}
	p, err := gen.Engine().Build(pool.Request{
		Program:       prog,
		Seed:          b,
		SampleSeed:    seed.Derive(s, "pool"),
		AllowNegative: t.AllowNegative,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "template:     %d\n", t.ID)
	fmt.Fprintf(w, "strategy:     %s\n", p.Strategy)
	fmt.Fprintf(w, "product:      %d\n", p.Total)
	fmt.Fprintf(w, "evaluated:    %d\n", p.Combinations)
	fmt.Fprintf(w, "failures:     %d\n", p.Failures)
	fmt.Fprintf(w, "outcomes:     %d\n", p.Len())

	var values []string
	if p.Structured {
		for _, rec := range p.Records {
			values = append(values, rec.Key())
		}
	} else {
		for _, v := range p.Scalars {
			values = append(values, units.Format(v, t.Unit, true))
		}
	}
	if len(values) > show {
		values = append(values[:show], fmt.Sprintf("... %d more", p.Len()-show))
	}
	fmt.Fprintln(w, strings.Join(values, "\n"))
	return nil
}
