// Package obs exposes the service's Prometheus instrumentation.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadboard_uploads_total",
		Help: "Uploaded files by classified kind.",
	}, []string{"kind"})

	PipelineRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadboard_pipeline_runs_total",
		Help: "Full pipeline executions.",
	})

	PipelineWarnings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadboard_pipeline_warnings_total",
		Help: "Non-fatal pipeline warnings by kind.",
	}, []string{"kind"})

	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadboard_pipeline_duration_seconds",
		Help:    "Wall time of one pipeline run.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(UploadsTotal, PipelineRuns, PipelineWarnings, PipelineDuration)
}

// Handler serves the /metrics scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }
