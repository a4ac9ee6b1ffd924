// Package metrics exposes Prometheus instrumentation for the Instagram client.
//
// A Collector is optional. Pass one through Config.Metrics and every API call
// is counted, timed, and the last reported rate-limit value is exported as a gauge.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// DefaultNamespace is used when Options.Namespace is empty.
	DefaultNamespace = "instagram"
	// DefaultSubsystem is used when Options.Subsystem is empty.
	DefaultSubsystem = "client"
)

// Options configures metric names.
type Options struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
}

// Collector records request counts, latencies and the remaining rate limit.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimit       prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
// A nil reg leaves the metrics unregistered, which is handy in tests.
func NewCollector(reg prometheus.Registerer, opts Options) *Collector {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.Subsystem == "" {
		opts.Subsystem = DefaultSubsystem
	}

	factory := promauto.With(reg)

	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   opts.Namespace,
				Subsystem:   opts.Subsystem,
				Name:        "requests_total",
				Help:        "Total number of Instagram API calls by verb and outcome",
				ConstLabels: opts.ConstLabels,
			},
			[]string{"verb", "outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   opts.Namespace,
				Subsystem:   opts.Subsystem,
				Name:        "request_duration_seconds",
				Help:        "Instagram API call latency in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: opts.ConstLabels,
			},
			[]string{"verb"},
		),
		rateLimit: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   opts.Namespace,
				Subsystem:   opts.Subsystem,
				Name:        "rate_limit_remaining",
				Help:        "Last X-Ratelimit-Remaining value reported by Instagram",
				ConstLabels: opts.ConstLabels,
			},
		),
	}
}

// ObserveCall records one finished call.
func (c *Collector) ObserveCall(verb, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(verb, outcome).Inc()
	c.requestDuration.WithLabelValues(verb).Observe(elapsed.Seconds())
}

// SetRateLimitRemaining records the latest X-Ratelimit-Remaining value.
func (c *Collector) SetRateLimitRemaining(remaining int) {
	if c == nil {
		return
	}
	c.rateLimit.Set(float64(remaining))
}
