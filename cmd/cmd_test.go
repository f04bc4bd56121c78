package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bank = `
templates:
  - id: 1
    subject: circuits
    topic: ohm
    body: "A resistor of {r} Ω has {v} V across it. What current flows?"
    program: |
      r = choice([10, 20, 40, 50])
      v = choice([10, 20])
      answer = v / r
    format: multiple_choice
    unit: A
    alternative_count: 4
    auto_alternatives: true
  - id: 2
    subject: circuits
    topic: materials
    body: "Copper is a conductor."
    format: true_false
    correct_letter: T
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

// Flag values persist across Execute calls, so every command runs once.
func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("EXAMGEN_DB", "")

	bankPath := filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(bankPath, []byte(bank), 0o644))
	dbPath := filepath.Join(dir, "data", "bank.db")

	t.Run("import", func(t *testing.T) {
		out := run(t, "import", bankPath, "--db", dbPath)
		assert.Contains(t, out, "imported 2 templates")
	})

	t.Run("generate", func(t *testing.T) {
		outPath := filepath.Join(dir, "exam.json")
		run(t, "generate", "--db", dbPath, "--ids", "1,2", "--versions", "2",
			"--seed", "42", "--mode", "serial", "--score", "10", "--per-question", "--out", outPath)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		var res struct {
			RunSeed  uint64 `json:"run_seed"`
			Mode     string `json:"mode"`
			Versions []struct {
				Label     string `json:"label"`
				Questions []struct {
					Key   string `json:"key"`
					Score string `json:"score"`
				} `json:"questions"`
			} `json:"versions"`
		}
		require.NoError(t, json.Unmarshal(data, &res))
		assert.Equal(t, uint64(42), res.RunSeed)
		assert.Equal(t, "serial", res.Mode)
		require.Len(t, res.Versions, 2)
		for _, v := range res.Versions {
			require.Len(t, v.Questions, 2)
			assert.Equal(t, "5,00", v.Questions[0].Score)
			assert.Equal(t, "T", v.Questions[1].Key)
		}
	})

	t.Run("pool", func(t *testing.T) {
		out := run(t, "pool", "--templates", bankPath, "--id", "1", "--seed", "3")
		assert.Contains(t, out, "strategy:     exhaustive")
		assert.Contains(t, out, "product:      8")
	})

	t.Run("menu", func(t *testing.T) {
		out := run(t, "menu", "--templates", bankPath, "--subject", "circuits")
		var m struct {
			Entries []struct {
				TemplateID int64 `json:"template_id"`
			} `json:"entries"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &m))
		require.Len(t, m.Entries, 2)
		assert.Equal(t, int64(1), m.Entries[0].TemplateID)
	})

	t.Run("version", func(t *testing.T) {
		out := run(t, "version")
		assert.Contains(t, out, "examgen ")
		assert.Contains(t, out, "go:     "+runtime.Version())
	})
}

func TestBuildInfoKeepsStampedVersion(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	version = "v9.9.9"
	assert.Equal(t, "v9.9.9", buildInfo().version)

	version = "(devel)"
	assert.NotEmpty(t, buildInfo().version)
}
