package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	authoringSubmissionsTotal   *prometheus.CounterVec
	authoringLatencySeconds     *prometheus.HistogramVec
	authoringCompensationsTotal *prometheus.CounterVec
	assignmentCacheTotal        *prometheus.CounterVec
	openAssignmentForms         prometheus.Gauge
	audioUploadSeconds          *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		authoringSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authoring_submissions_total",
			Help: "Assignment form submit attempts by persistence path and outcome.",
		}, []string{"path", "outcome"})

		authoringLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authoring_submit_seconds",
			Help:    "Duration of assignment form submit attempts.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"path"})

		authoringCompensationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authoring_compensations_total",
			Help: "Compensating actions run after a failed authoring step.",
		}, []string{"step", "outcome"})

		assignmentCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_cache_requests_total",
			Help: "Assignment lookups served from cache or storage.",
		}, []string{"result"})

		openAssignmentForms = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "assignment_forms_open",
			Help: "Number of authoring forms currently held in memory.",
		})

		audioUploadSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audio_upload_seconds",
			Help:    "Duration of audio uploads to object storage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "status"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			authoringSubmissionsTotal,
			authoringLatencySeconds,
			authoringCompensationsTotal,
			assignmentCacheTotal,
			openAssignmentForms,
			audioUploadSeconds,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AuthoringSubmissions counts submit attempts.
func AuthoringSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return authoringSubmissionsTotal
}

// AuthoringLatency measures submit attempts end to end.
func AuthoringLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return authoringLatencySeconds
}

// AuthoringCompensations counts compensating actions.
func AuthoringCompensations() *prometheus.CounterVec {
	RegisterMetrics()
	return authoringCompensationsTotal
}

// AssignmentCacheRequests counts cache hits and misses for assignment lookups.
func AssignmentCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentCacheTotal
}

// OpenAssignmentForms tracks the size of the form registry.
func OpenAssignmentForms() prometheus.Gauge {
	RegisterMetrics()
	return openAssignmentForms
}

// AudioUploadLatency measures uploads per storage provider.
func AudioUploadLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return audioUploadSeconds
}
