package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/hyperroute"
	"github.com/pdrpinto/hyperroute/jumper"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hyperroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Solver.GreedyMultiplier)
	assert.False(t, cfg.Solver.RippingEnabled)
	assert.Equal(t, 1000, cfg.Run.StepsPerTick)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Tracing.Enabled)
	assert.IsType(t, hyperroute.NopPolicy{}, cfg.Solver.CostPolicy())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
solver:
  greedy_multiplier: 1.5
  ripping_enabled: true
  policy: jumper
  through_jumper_penalty: 2
  max_entries: 3
run:
  max_steps: 500
logging:
  level: debug
  format: json
`)
	t.Setenv("HYPERROUTE_MAX_STEPS", "800")
	t.Setenv("HYPERROUTE_CONTENTION_PENALTY", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.Solver.GreedyMultiplier)
	assert.True(t, cfg.Solver.RippingEnabled)
	assert.Equal(t, 800, cfg.Run.MaxSteps)
	assert.Equal(t, 1000, cfg.Run.StepsPerTick, "defaults survive partial files")
	assert.Equal(t, "json", cfg.Logging.Logging().Format)

	pol, ok := cfg.Solver.CostPolicy().(*hyperroute.ContentionPolicy)
	require.True(t, ok)
	assert.Equal(t, 4.0, pol.Penalty)
	assert.Equal(t, jumper.Policy{ThroughJumperPenalty: 2, MaxEntries: 3}, pol.CostPolicy)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative multiplier": "solver:\n  greedy_multiplier: -1\n",
		"rip fraction":        "solver:\n  random_rip_fraction: 2\n",
		"policy":              "solver:\n  policy: magic\n",
		"steps":               "run:\n  max_steps: 0\n",
		"level":               "logging:\n  level: loud\n",
		"exporter":            "tracing:\n  enabled: true\n  exporter: zipkin\n",
		"metrics":             "metrics:\n  enabled: true\n  address: \"\"\n",
		"yaml":                "solver: [",
		"misspelled key":      "solver:\n  greedy_multiplyer: 2\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("HYPERROUTE_RIPPING_ENABLED", "sometimes")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Solver, cfg.Solver)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOptionsBuildSolver(t *testing.T) {
	a := &hyperroute.Region{ID: "A"}
	b := &hyperroute.Region{ID: "B"}
	ab := &hyperroute.Port{ID: "ab", Region1: a, Region2: b}
	a.Ports = []*hyperroute.Port{ab}
	b.Ports = []*hyperroute.Port{ab}
	g := hyperroute.NewGraph([]*hyperroute.Region{a, b}, []*hyperroute.Port{ab})

	cfg := Default()
	cfg.Solver.GreedyMultiplier = 2
	cfg.Solver.RipCost = 3
	s, err := hyperroute.NewSolver(g, []*hyperroute.Connection{{ID: "c", Start: a, End: b}}, cfg.Solver.Options()...)
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Options().GreedyMultiplier)
	assert.Equal(t, 3.0, s.Options().RipCost)
}
