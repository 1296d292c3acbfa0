// Package metrics exposes Prometheus counters for lookups, reductions and
// saved sights.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/geopos"
)

// Reduction outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient_data"
	OutcomeError        = "error"
)

// Collector bundles the application's Prometheus metrics. A nil *Collector
// is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Lookups        *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	Reductions     *prometheus.CounterVec
	SavedSights    prometheus.Gauge
	ActiveSights   prometheus.Gauge
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ls_sights_lookups_total",
		Help: "Geographic position lookups, labeled by provider and result.",
	}, []string{"provider", "result"}), "ls_sights_lookups_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ls_sights_lookup_duration_seconds",
		Help:    "Geographic position lookup latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"provider"}), "ls_sights_lookup_duration_seconds")
	if err != nil {
		return nil, err
	}

	reductions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ls_sights_reductions_total",
		Help: "Sight reductions, labeled by outcome.",
	}, []string{"outcome"}), "ls_sights_reductions_total")
	if err != nil {
		return nil, err
	}

	saved, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ls_sights_saved_sights",
		Help: "Number of saved sights.",
	}), "ls_sights_saved_sights")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ls_sights_active_sights",
		Help: "Number of saved sights marked active for plotting.",
	}), "ls_sights_active_sights")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Lookups:        lookups,
		LookupDuration: durations,
		Reductions:     reductions,
		SavedSights:    saved,
		ActiveSights:   active,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RecordReduction counts one pipeline run by its outcome.
func (c *Collector) RecordReduction(err error) {
	if c == nil {
		return
	}
	c.Reductions.WithLabelValues(reductionOutcome(err)).Inc()
}

func reductionOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, celnav.ErrInsufficientData):
		return OutcomeInsufficient
	default:
		return OutcomeError
	}
}

// SetSightCounts updates the saved/active sight gauges.
func (c *Collector) SetSightCounts(saved, active int) {
	if c == nil {
		return
	}
	c.SavedSights.Set(float64(saved))
	c.ActiveSights.Set(float64(active))
}

// InstrumentProvider wraps p so every lookup is counted and timed.
func (c *Collector) InstrumentProvider(p geopos.Provider) geopos.Provider {
	if c == nil {
		return p
	}
	return &instrumentedProvider{Provider: p, c: c}
}

type instrumentedProvider struct {
	geopos.Provider
	c *Collector
}

func (ip *instrumentedProvider) Lookup(ctx context.Context, body string, t time.Time) (geopos.GeoPosition, error) {
	start := time.Now()
	gp, err := ip.Provider.Lookup(ctx, body, t)

	name := ip.Provider.Name()
	result := "ok"
	if err != nil {
		result = "error"
	}
	ip.c.Lookups.WithLabelValues(name, result).Inc()
	ip.c.LookupDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	return gp, err
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
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
