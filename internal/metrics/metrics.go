// Package metrics registers the prometheus collectors for remote calls and
// pipeline outcomes.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcome labels.
const (
	OutcomeKept     = "kept"
	OutcomeFiltered = "filtered"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

var (
	RemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listgen_remote_requests_total",
			Help: "Total number of requests sent to remote services",
		},
		[]string{"service", "operation", "status"},
	)

	RemoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listgen_remote_request_duration_seconds",
			Help:    "Duration of remote service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	PipelineItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listgen_pipeline_items_total",
			Help: "Place references processed by the enrichment pipeline, by outcome",
		},
		[]string{"outcome"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listgen_pipeline_runs_total",
			Help: "Enrichment runs, by result",
		},
		[]string{"result"},
	)
)

// StatusLabel turns an HTTP status code into a label value. Zero means the
// request never produced a response.
func StatusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
