// Package metrics 暴露Prometheus指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airline_dataset_loads_total",
			Help: "Dataset load attempts by status",
		},
		[]string{"status"},
	)

	DatasetAirlines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airline_dataset_airlines",
			Help: "Number of airlines in the loaded dataset",
		},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airline_pipeline_duration_seconds",
			Help:    "Time to load the dataset and build all output tables",
			Buckets: prometheus.DefBuckets,
		},
	)

	LookupNotFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airline_lookup_not_found_total",
			Help: "Airline lookups that found no airline",
		},
		[]string{"operation"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airline_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airline_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	ExportRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airline_export_runs_total",
			Help: "Report export runs by status",
		},
		[]string{"status"},
	)
)
