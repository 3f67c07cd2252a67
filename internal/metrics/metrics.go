package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns the service's Prometheus collectors. A nil Recorder records
// nothing.
type Recorder struct {
	registry   *prometheus.Registry
	apiCalls   *prometheus.CounterVec
	apiLatency *prometheus.HistogramVec
	rollovers  *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: reg,
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabr_admin",
			Name:      "league_api_requests_total",
			Help:      "League API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fabr_admin",
			Name:      "league_api_request_duration_seconds",
			Help:      "League API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		rollovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fabr_admin",
			Name:      "season_rollovers_total",
			Help:      "Season rollover submissions by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.apiCalls, r.apiLatency, r.rollovers)
	return r
}

func (r *Recorder) ObserveAPICall(endpoint string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.apiCalls.WithLabelValues(endpoint, outcome(err)).Inc()
	r.apiLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (r *Recorder) RecordRollover(err error) {
	if r == nil {
		return
	}
	r.rollovers.WithLabelValues(outcome(err)).Inc()
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
