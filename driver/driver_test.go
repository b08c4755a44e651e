package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pdrpinto/hyperroute"
)

// fakeStepper reaches its terminal state after a fixed number of steps.
type fakeStepper struct {
	steps   int
	solveAt int
	failAt  int
}

func (f *fakeStepper) Step() { f.steps++ }

func (f *fakeStepper) Solved() bool { return f.solveAt > 0 && f.steps >= f.solveAt }
func (f *fakeStepper) Failed() bool { return f.failAt > 0 && f.steps >= f.failAt }

func (f *fakeStepper) ErrorMessage() string {
	if f.Failed() {
		return "connection \"c\": search space exhausted"
	}
	return ""
}

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("tracer provider shutdown: %v", err)
		}
	})
	return recorder, tp
}

func TestRunSolves(t *testing.T) {
	recorder, tp := newRecorder(t)
	s := &fakeStepper{solveAt: 25}

	res, err := Run(context.Background(), s, Options{StepsPerTick: 10, Tracer: tp.Tracer("test")})
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.Equal(t, 25, res.Steps)
	assert.NotEmpty(t, res.RunID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "hyperroute.run", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 3)
}

func TestRunReportsFailure(t *testing.T) {
	recorder, tp := newRecorder(t)
	s := &fakeStepper{failAt: 3}

	res, err := Run(context.Background(), s, Options{Tracer: tp.Tracer("test")})
	require.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, err.Error(), "search space exhausted")
	assert.True(t, res.Failed)
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, codes.Error, recorder.Ended()[0].Status().Code)
}

func TestRunStepBudget(t *testing.T) {
	s := &fakeStepper{}
	res, err := Run(context.Background(), s, Options{MaxSteps: 7, StepsPerTick: 3})
	require.ErrorIs(t, err, ErrStepBudgetExceeded)
	assert.Equal(t, 7, res.Steps)
	assert.Equal(t, 7, s.steps)
	assert.False(t, res.Solved)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeStepper{solveAt: 5}
	res, err := Run(ctx, s, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Steps)
}

func TestRunAlreadySolved(t *testing.T) {
	s := &fakeStepper{solveAt: 1, steps: 1}
	res, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Steps)
}

func TestRunDrivesSolver(t *testing.T) {
	a := &hyperroute.Region{ID: "A"}
	b := &hyperroute.Region{ID: "B"}
	c := &hyperroute.Region{ID: "C"}
	ab := &hyperroute.Port{ID: "ab", Region1: a, Region2: b}
	bc := &hyperroute.Port{ID: "bc", Region1: b, Region2: c}
	a.Ports = []*hyperroute.Port{ab}
	b.Ports = []*hyperroute.Port{ab, bc}
	c.Ports = []*hyperroute.Port{bc}
	g := hyperroute.NewGraph([]*hyperroute.Region{a, b, c}, []*hyperroute.Port{ab, bc})

	s, err := hyperroute.NewSolver(g, []*hyperroute.Connection{{ID: "x", Start: a, End: c}})
	require.NoError(t, err)

	res, err := Run(context.Background(), s, Options{MaxSteps: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Steps)
	assert.Len(t, s.Routes(), 1)
}
