// Package metrics exposes the driver's live state as Prometheus gauges and
// counters, grounded on aws-karpenter-provider-aws's karpenter/main.go
// MetricsPort option (a flag-controlled HTTP port the process serves
// metrics on) and built with the library the rest of the pack's cloud
// controllers use, github.com/prometheus/client_golang.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scheduler"

// Collectors groups every gauge/counter/histogram the driver updates across
// an iteration loop.
type Collectors struct {
	Iteration     prometheus.Gauge
	BestValue     prometheus.Gauge
	CoreCount     prometheus.Gauge
	SolverSeconds *prometheus.HistogramVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

// NewCollectors registers every metric against reg and returns the handle
// the driver updates from.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)

	return &Collectors{
		Iteration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "iteration",
			Help:      "Index of the Benders iteration currently in progress.",
		}),
		BestValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_value",
			Help:      "Objective value of the best feasible final result found so far.",
		}),
		CoreCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "core_count",
			Help:      "Number of no-good cores accumulated in the master problem.",
		}),
		SolverSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solver_seconds",
			Help:      "Wall-clock time spent inside a single solver.Solve call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of day obligations satisfied by solution-cache reuse instead of a subproblem solve.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of day obligations that required a fresh subproblem solve.",
		}),
	}
}

// Serve starts an HTTP server exposing /metrics on addr. It returns
// immediately; callers run it in its own goroutine and treat
// http.ErrServerClosed as a clean shutdown.
func Serve(addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
