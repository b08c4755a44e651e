package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the solver's Prometheus metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Steps       prometheus.Counter
	Activations prometheus.Counter
	Commits     prometheus.Counter
	Evictions   prometheus.Counter
	Failures    prometheus.Counter
	RouteHops   prometheus.Histogram
	QueueDepth  prometheus.Gauge
}

// NewCollector registers solver metrics against reg, defaulting to the
// global registry when nil. Registering twice against the same registry
// reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error
	counters := []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&c.Steps, "hyperroute_steps_total", "Solver steps that popped a candidate."},
		{&c.Activations, "hyperroute_activations_total", "Connection activations, re-activations after rip-up included."},
		{&c.Commits, "hyperroute_routes_committed_total", "Routes committed to the assigned-port map."},
		{&c.Evictions, "hyperroute_routes_ripped_total", "Routes evicted by rip-up."},
		{&c.Failures, "hyperroute_failures_total", "Runs that exhausted the search space."},
	}
	for _, m := range counters {
		*m.dst, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: m.name,
			Help: m.help,
		}), m.name)
		if err != nil {
			return nil, err
		}
	}

	c.RouteHops, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyperroute_route_hops",
		Help:    "Ports crossed by committed routes.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	}), "hyperroute_route_hops")
	if err != nil {
		return nil, err
	}

	c.QueueDepth, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hyperroute_queue_depth",
		Help: "Candidates queued for the active connection after the last expansion.",
	}), "hyperroute_queue_depth")
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveStep() {
	if c == nil {
		return
	}
	c.Steps.Inc()
}

func (c *Collector) ObserveActivation() {
	if c == nil {
		return
	}
	c.Activations.Inc()
}

func (c *Collector) ObserveCommit(hops int) {
	if c == nil {
		return
	}
	c.Commits.Inc()
	c.RouteHops.Observe(float64(hops))
}

func (c *Collector) ObserveEviction() {
	if c == nil {
		return
	}
	c.Evictions.Inc()
}

func (c *Collector) ObserveFailure() {
	if c == nil {
		return
	}
	c.Failures.Inc()
}

func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.QueueDepth.Set(float64(n))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
