// Package config provides configuration structures and loading logic for
// hyperroute runs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/hyperroute"
	"github.com/pdrpinto/hyperroute/internal/logging"
	"github.com/pdrpinto/hyperroute/jumper"
	"github.com/pdrpinto/hyperroute/telemetry"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HYPERROUTE_"

// Config holds the configuration of a routing run.
type Config struct {
	Solver  SolverConfig            `yaml:"solver"`
	Run     RunConfig               `yaml:"run"`
	Logging LoggingConfig           `yaml:"logging"`
	Tracing telemetry.TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig           `yaml:"metrics"`
}

// SolverConfig holds the solver tunables and the cost policy selection.
type SolverConfig struct {
	GreedyMultiplier  float64 `yaml:"greedy_multiplier"`
	RippingEnabled    bool    `yaml:"ripping_enabled"`
	RipCost           float64 `yaml:"rip_cost"`
	RandomRipFraction float64 `yaml:"random_rip_fraction"`

	// Policy is "nop" or "jumper".
	Policy               string  `yaml:"policy"`
	ContentionPenalty    float64 `yaml:"contention_penalty"`
	ThroughJumperPenalty float64 `yaml:"through_jumper_penalty"`
	MaxEntries           int     `yaml:"max_entries"`
}

// RunConfig bounds a run to completion.
type RunConfig struct {
	MaxSteps     int `yaml:"max_steps"`
	StepsPerTick int `yaml:"steps_per_tick"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			GreedyMultiplier: 1,
			Policy:           "nop",
		},
		Run: RunConfig{
			MaxSteps:     1_000_000,
			StepsPerTick: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: telemetry.TracingConfig{
			ServiceName: "hyperroute",
			Exporter:    "stdout",
			SampleRatio: 1,
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
	}
}

// Load reads configuration from a file and applies environment variable
// overrides. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	floats := map[string]*float64{
		"GREEDY_MULTIPLIER":      &cfg.Solver.GreedyMultiplier,
		"RIP_COST":               &cfg.Solver.RipCost,
		"RANDOM_RIP_FRACTION":    &cfg.Solver.RandomRipFraction,
		"CONTENTION_PENALTY":     &cfg.Solver.ContentionPenalty,
		"THROUGH_JUMPER_PENALTY": &cfg.Solver.ThroughJumperPenalty,
		"TRACING_SAMPLE_RATIO":   &cfg.Tracing.SampleRatio,
	}
	for key, dst := range floats {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"MAX_ENTRIES":    &cfg.Solver.MaxEntries,
		"MAX_STEPS":      &cfg.Run.MaxSteps,
		"STEPS_PER_TICK": &cfg.Run.StepsPerTick,
	}
	for key, dst := range ints {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"RIPPING_ENABLED": &cfg.Solver.RippingEnabled,
		"TRACING_ENABLED": &cfg.Tracing.Enabled,
		"METRICS_ENABLED": &cfg.Metrics.Enabled,
	}
	for key, dst := range bools {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	strs := map[string]*string{
		"POLICY":           &cfg.Solver.Policy,
		"LOG_LEVEL":        &cfg.Logging.Level,
		"LOG_FORMAT":       &cfg.Logging.Format,
		"TRACING_EXPORTER": &cfg.Tracing.Exporter,
		"TRACING_ENDPOINT": &cfg.Tracing.Endpoint,
		"METRICS_ADDRESS":  &cfg.Metrics.Address,
	}
	for key, dst := range strs {
		if val := os.Getenv(EnvPrefix + key); val != "" {
			*dst = val
		}
	}
	return nil
}

// Validate performs validation of the entire configuration.
func (c *Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver configuration: %w", err)
	}
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("run configuration: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}
	if err := validateTracing(c.Tracing); err != nil {
		return fmt.Errorf("tracing configuration: %w", err)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics configuration: address is required when enabled")
	}
	return nil
}

// Validate checks the solver tunables.
func (s SolverConfig) Validate() error {
	switch {
	case s.GreedyMultiplier < 0:
		return fmt.Errorf("greedy_multiplier must be >= 0, got %v", s.GreedyMultiplier)
	case s.RipCost < 0:
		return fmt.Errorf("rip_cost must be >= 0, got %v", s.RipCost)
	case s.RandomRipFraction < 0 || s.RandomRipFraction > 1:
		return fmt.Errorf("random_rip_fraction must be within [0, 1], got %v", s.RandomRipFraction)
	case s.ContentionPenalty < 0:
		return fmt.Errorf("contention_penalty must be >= 0, got %v", s.ContentionPenalty)
	case s.ThroughJumperPenalty < 0:
		return fmt.Errorf("through_jumper_penalty must be >= 0, got %v", s.ThroughJumperPenalty)
	case s.MaxEntries < 0:
		return fmt.Errorf("max_entries must be >= 0, got %d", s.MaxEntries)
	}
	switch strings.ToLower(s.Policy) {
	case "", "nop", "jumper":
		return nil
	}
	return fmt.Errorf("unknown policy %q", s.Policy)
}

// Validate checks the run bounds.
func (r RunConfig) Validate() error {
	if r.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", r.MaxSteps)
	}
	if r.StepsPerTick <= 0 {
		return fmt.Errorf("steps_per_tick must be positive, got %d", r.StepsPerTick)
	}
	return nil
}

// Validate checks the logging settings.
func (l LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	return nil
}

func validateTracing(t telemetry.TracingConfig) error {
	if !t.Enabled {
		return nil
	}
	switch strings.ToLower(t.Exporter) {
	case "", "stdout", "otlp", "otlpgrpc":
	default:
		return fmt.Errorf("unknown exporter %q", t.Exporter)
	}
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be within [0, 1], got %v", t.SampleRatio)
	}
	return nil
}

// Logging converts the logging section for the logging package.
func (l LoggingConfig) Logging() logging.Config {
	return logging.Config{Level: l.Level, Format: l.Format, AddSource: l.AddSource}
}

// CostPolicy builds the configured policy. A positive contention penalty
// wraps it in a hyperroute.ContentionPolicy.
func (s SolverConfig) CostPolicy() hyperroute.CostPolicy {
	var base hyperroute.CostPolicy = hyperroute.NopPolicy{}
	if strings.EqualFold(s.Policy, "jumper") {
		base = jumper.Policy{
			ThroughJumperPenalty: s.ThroughJumperPenalty,
			MaxEntries:           s.MaxEntries,
		}
	}
	if s.ContentionPenalty > 0 {
		return &hyperroute.ContentionPolicy{CostPolicy: base, Penalty: s.ContentionPenalty}
	}
	return base
}

// Options converts the solver section into solver options.
func (s SolverConfig) Options() []hyperroute.Option {
	return []hyperroute.Option{
		hyperroute.WithGreedyMultiplier(s.GreedyMultiplier),
		hyperroute.WithRipping(s.RippingEnabled),
		hyperroute.WithRipCost(s.RipCost),
		hyperroute.WithRandomRipFraction(s.RandomRipFraction),
		hyperroute.WithPolicy(s.CostPolicy()),
	}
}
