package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medex_http_requests_total",
		Help: "HTTP requests by route and status class.",
	}, []string{"route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medex_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medex_validations_total",
		Help: "Claim validations by outcome status.",
	}, []string{"status"})

	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medex_pipeline_runs_total",
		Help: "Full document pipeline runs by result.",
	}, []string{"result"})

	ingestedDocs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medex_ingested_documents_total",
		Help: "Ingested documents, split by dedupe hits.",
	}, []string{"dedup"})
)
