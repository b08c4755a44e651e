package hyperroute

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdrpinto/hyperroute/internal/logging"
	"github.com/pdrpinto/hyperroute/telemetry"
)

// ErrSearchExhausted is the terminal failure of a connection whose frontier
// emptied before reaching its end region.
var ErrSearchExhausted = errors.New("search space exhausted")

// Configuration errors returned by NewSolver.
var (
	ErrNilGraph          = errors.New("graph is nil")
	ErrInvalidConnection = errors.New("invalid connection")
	ErrInvalidOption     = errors.New("invalid option")
)

// RunStatus is the global state of a solver.
type RunStatus string

const (
	RunProcessing RunStatus = "processing"
	RunComplete   RunStatus = "complete"
	RunFailed     RunStatus = "failed"
)

// ConnectionStatus is the state of a single connection.
type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionSearching ConnectionStatus = "searching"
	ConnectionSolved    ConnectionStatus = "solved"
	ConnectionFailed    ConnectionStatus = "failed"
)

// Options defines the tunables of a solver.
type Options struct {
	// GreedyMultiplier scales the heuristic: f = g + h*GreedyMultiplier.
	GreedyMultiplier float64
	// RippingEnabled permits crossing ports held by other networks and
	// evicting their routes on commit.
	RippingEnabled bool
	// RipCost and RandomRipFraction are reserved. They are validated and
	// reported but do not influence the search.
	RipCost           float64
	RandomRipFraction float64

	Policy    CostPolicy
	Logger    *slog.Logger
	Collector *telemetry.Collector
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		GreedyMultiplier: 1.0,
		Policy:           NopPolicy{},
		Logger:           logging.Discard(),
	}
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithGreedyMultiplier sets the heuristic weight. Values above one trade
// optimality for speed; zero gives pure cost-ordered search.
func WithGreedyMultiplier(m float64) Option {
	return func(o *Options) { o.GreedyMultiplier = m }
}

// WithRipping enables or disables rip-up.
func WithRipping(enabled bool) Option {
	return func(o *Options) { o.RippingEnabled = enabled }
}

// WithRipCost sets the reserved rip cost.
func WithRipCost(cost float64) Option {
	return func(o *Options) { o.RipCost = cost }
}

// WithRandomRipFraction sets the reserved random rip fraction.
func WithRandomRipFraction(fraction float64) Option {
	return func(o *Options) { o.RandomRipFraction = fraction }
}

// WithPolicy installs the cost and heuristic hooks.
func WithPolicy(p CostPolicy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithLogger sets the logger used for solver events.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithCollector attaches a metrics collector.
func WithCollector(c *telemetry.Collector) Option {
	return func(o *Options) { o.Collector = c }
}

func (o Options) validate() error {
	switch {
	case o.GreedyMultiplier < 0:
		return fmt.Errorf("%w: greedy multiplier must be >= 0, got %v", ErrInvalidOption, o.GreedyMultiplier)
	case o.RipCost < 0:
		return fmt.Errorf("%w: rip cost must be >= 0, got %v", ErrInvalidOption, o.RipCost)
	case o.RandomRipFraction < 0 || o.RandomRipFraction > 1:
		return fmt.Errorf("%w: random rip fraction must be within [0, 1], got %v", ErrInvalidOption, o.RandomRipFraction)
	}
	return nil
}
