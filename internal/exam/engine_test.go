package exam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examgen/internal/question"
)

func TestPlan(t *testing.T) {
	heavy := []Slot{{Members: []question.Template{ohmCurrent(1)}}, {Members: []question.Template{manual(2)}}}
	light := []Slot{{Members: []question.Template{manual(1)}}, {Members: []question.Template{manual(2)}}}

	tests := []struct {
		name     string
		mode     Mode
		versions int
		host     Host
		slots    []Slot
		want     Mode
		workers  int
	}{
		{"single version", ModeAuto, 1, Host{Cores: 16, MemoryGB: 64}, heavy, ModeSerial, 1},
		{"no pool sampling", ModeAuto, 4, Host{Cores: 16, MemoryGB: 64}, light, ModeSerial, 1},
		{"big host", ModeAuto, 6, Host{Cores: 16, MemoryGB: 64}, heavy, ModeProcesses, 4},
		{"few versions", ModeAuto, 2, Host{Cores: 16, MemoryGB: 64}, heavy, ModeProcesses, 2},
		{"medium host", ModeAuto, 20, Host{Cores: 2, MemoryGB: 4}, heavy, ModeThreads, 4},
		{"low memory", ModeAuto, 20, Host{Cores: 8, MemoryGB: 6}, heavy, ModeThreads, 8},
		{"small host", ModeAuto, 20, Host{Cores: 1, MemoryGB: 2}, heavy, ModeSerial, 1},
		{"forced threads", ModeThreads, 3, Host{Cores: 1, MemoryGB: 1}, light, ModeThreads, 2},
		{"forced processes", ModeProcesses, 10, Host{Cores: 2, MemoryGB: 1}, light, ModeProcesses, 2},
		{"forced serial", ModeSerial, 10, Host{Cores: 16, MemoryGB: 64}, heavy, ModeSerial, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Mode = tt.mode
			opts.Versions = tt.versions
			opts.Probe = func() Host { return tt.host }
			mode, workers := plan(opts.withDefaults(), tt.slots)
			assert.Equal(t, tt.want, mode)
			assert.Equal(t, tt.workers, workers)
		})
	}
}

func TestAutoModeRuns(t *testing.T) {
	e := newEngine(t, func(o *Options) {
		o.Mode = ModeAuto
		o.Versions = 4
	})
	res, err := e.Generate(context.Background(), []question.Template{ohmCurrent(1), ohmVoltage(2)})
	require.NoError(t, err)
	assert.Equal(t, ModeProcesses, res.Mode)
	assert.Equal(t, 4, res.Workers)
	assert.Len(t, res.Versions, 4)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero versions", func(o *Options) { o.Versions = 0 }},
		{"negative score", func(o *Options) { o.TotalScore = -1 }},
		{"ratio above one", func(o *Options) { o.ComplexRatio = 1.5 }},
		{"unknown mode", func(o *Options) { o.Mode = "fibers" }},
		{"negative attempts", func(o *Options) { o.Attempts = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			assert.Error(t, opts.Validate())
			_, err := New(opts)
			assert.Error(t, err)
		})
	}
	assert.NoError(t, DefaultOptions().Validate())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)
	m, err = ParseMode("threads")
	require.NoError(t, err)
	assert.Equal(t, ModeThreads, m)
	_, err = ParseMode("gpu")
	assert.Error(t, err)
}

func TestProbeHost(t *testing.T) {
	h := ProbeHost()
	assert.GreaterOrEqual(t, h.Cores, 1)
	assert.Greater(t, h.MemoryGB, 0.0)
}
