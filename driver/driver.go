// Package driver runs a stepping solver to completion.
//
// The solver performs one unit of work per Step and sets its own terminal
// state; Run decides how many steps to take, between which points the
// context is checked, and reports the outcome.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pdrpinto/hyperroute/internal/logging"
)

const tracerName = "github.com/pdrpinto/hyperroute/driver"

// Stepper is the stepping-lifecycle contract. *hyperroute.Solver satisfies
// it.
type Stepper interface {
	Step()
	Solved() bool
	Failed() bool
	ErrorMessage() string
}

var (
	// ErrStepBudgetExceeded is returned when MaxSteps elapse before the
	// stepper reaches a terminal state.
	ErrStepBudgetExceeded = errors.New("step budget exceeded")
	// ErrRunFailed wraps the stepper's own failure message.
	ErrRunFailed = errors.New("run failed")
)

// Options bounds a run. Zero values select defaults.
type Options struct {
	// MaxSteps caps the total number of Step calls. Zero means unbounded.
	MaxSteps int
	// StepsPerTick is the number of steps taken between context checks.
	StepsPerTick int
	Logger       *slog.Logger
	Tracer       trace.Tracer
}

// Result describes a finished run.
type Result struct {
	RunID   string
	Steps   int
	Solved  bool
	Failed  bool
	Message string
	Elapsed time.Duration
}

// Run steps s until it is solved or failed, the step budget runs out, or
// ctx is done.
func Run(ctx context.Context, s Stepper, opts Options) (Result, error) {
	if opts.StepsPerTick <= 0 {
		opts.StepsPerTick = 1000
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	res := Result{RunID: uuid.New().String()}
	log = log.With(slog.String("run_id", res.RunID))
	ctx, span := tracer.Start(ctx, "hyperroute.run", trace.WithAttributes(
		attribute.String("hyperroute.run_id", res.RunID),
		attribute.Int("hyperroute.max_steps", opts.MaxSteps),
	))
	defer span.End()

	start := time.Now()
	log.InfoContext(ctx, "run started", slog.Int("max_steps", opts.MaxSteps))

	err := loop(ctx, s, opts, &res)
	res.Elapsed = time.Since(start)
	res.Solved, res.Failed = s.Solved(), s.Failed()
	res.Message = s.ErrorMessage()

	span.SetAttributes(
		attribute.Int("hyperroute.steps", res.Steps),
		attribute.Bool("hyperroute.solved", res.Solved),
	)
	if err == nil && res.Failed {
		err = fmt.Errorf("%w: %s", ErrRunFailed, res.Message)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WarnContext(ctx, "run stopped",
			slog.Int("steps", res.Steps),
			slog.Duration("elapsed", res.Elapsed),
			slog.String("error", err.Error()))
		return res, err
	}
	span.SetStatus(codes.Ok, "")
	log.InfoContext(ctx, "run solved",
		slog.Int("steps", res.Steps),
		slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

func loop(ctx context.Context, s Stepper, opts Options, res *Result) error {
	for !s.Solved() && !s.Failed() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i < opts.StepsPerTick && !s.Solved() && !s.Failed(); i++ {
			if opts.MaxSteps > 0 && res.Steps >= opts.MaxSteps {
				return fmt.Errorf("%w after %d steps", ErrStepBudgetExceeded, res.Steps)
			}
			s.Step()
			res.Steps++
		}
		trace.SpanFromContext(ctx).AddEvent("tick", trace.WithAttributes(
			attribute.Int("hyperroute.steps", res.Steps),
		))
	}
	return nil
}
