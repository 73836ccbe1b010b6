/*
Package metrics holds the prometheus collectors of the date range engine.

COLLECTORS:
  daterange_ranges_generated_total{type}          ranges created by generator runs
  daterange_autogeneration_runs_total{outcome}    sweeps, by "ok" / "error"
  daterange_autogeneration_type_failures_total{type}
                                                  types skipped by a sweep
  daterange_autogeneration_duration_seconds       sweep latency
  daterange_period_resolutions_total{kind}        period searches, by value kind
  daterange_http_requests_total{method,status}    API requests

SEE ALSO:
  - api/scheduler.go: records sweeps
  - api/handlers.go: records generator runs and period searches
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RangesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daterange", Name: "ranges_generated_total",
			Help: "Date ranges created by the generator",
		},
		[]string{"type"},
	)

	AutogenerationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daterange", Name: "autogeneration_runs_total",
			Help: "Autogeneration sweeps",
		},
		[]string{"outcome"},
	)

	AutogenerationTypeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daterange", Name: "autogeneration_type_failures_total",
			Help: "Types skipped by an autogeneration sweep after a suppressed error",
		},
		[]string{"type"},
	)

	AutogenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "daterange", Name: "autogeneration_duration_seconds",
		Help:    "Autogeneration sweep duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	PeriodResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daterange", Name: "period_resolutions_total",
			Help: "Period searches resolved into date predicates",
		},
		[]string{"kind"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daterange", Name: "http_requests_total",
			Help: "API requests",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RangesGenerated,
		AutogenerationRuns,
		AutogenerationTypeFailures,
		AutogenerationDuration,
		PeriodResolutions,
		HTTPRequests,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

// ObserveGenerated counts ranges created for a type.
func ObserveGenerated(typeName string, n int) {
	if n > 0 {
		RangesGenerated.WithLabelValues(typeName).Add(float64(n))
	}
}

// ObserveSweep records one sweep. failedTypes are the names of the types
// the sweep skipped.
func ObserveSweep(d time.Duration, err error, failedTypes []string) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AutogenerationRuns.WithLabelValues(outcome).Inc()
	AutogenerationDuration.Observe(d.Seconds())
	for _, name := range failedTypes {
		AutogenerationTypeFailures.WithLabelValues(name).Inc()
	}
}

func ObserveResolution(kind string) { PeriodResolutions.WithLabelValues(kind).Inc() }

func ObserveRequest(method string, status int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
