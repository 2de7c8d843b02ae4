package metrics

import (
	"github.com/newthinker/insight/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	analyzerDuration *prometheus.HistogramVec
	analyzerOutcomes *prometheus.CounterVec
	jobsActive       *prometheus.GaugeVec
	watchlistSymbols prometheus.Gauge
	archivesTotal    *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_analyses_total",
			Help: "Total number of stock analyses run",
		},
		[]string{"status"},
	)
	r.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_analysis_duration_seconds",
			Help:    "Full analysis pipeline duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.analyzerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_analyzer_duration_seconds",
			Help:    "Individual analyzer duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"analyzer"},
	)
	r.analyzerOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_analyzer_outcomes_total",
			Help: "Analyzer completions by outcome",
		},
		[]string{"analyzer", "outcome"},
	)
	r.jobsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insight_jobs_active",
			Help: "Number of active jobs",
		},
		[]string{"type"},
	)
	r.watchlistSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "insight_watchlist_symbols",
			Help: "Number of symbols in watchlist",
		},
	)
	r.archivesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_archives_total",
			Help: "Total number of payload archive writes",
		},
		[]string{"backend", "status"},
	)

	reg.MustRegister(r.analysesTotal)
	reg.MustRegister(r.analysisDuration)
	reg.MustRegister(r.analyzerDuration)
	reg.MustRegister(r.analyzerOutcomes)
	reg.MustRegister(r.jobsActive)
	reg.MustRegister(r.watchlistSymbols)
	reg.MustRegister(r.archivesTotal)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// AnalyzerCompleted records one analyzer finishing, successful or not.
func (r *Registry) AnalyzerCompleted(t core.AnalysisType, seconds float64, outcome string) {
	r.analyzerDuration.WithLabelValues(string(t)).Observe(seconds)
	r.analyzerOutcomes.WithLabelValues(string(t), outcome).Inc()
}

// AnalysisCompleted records a full pipeline run for a ticker.
func (r *Registry) AnalysisCompleted(_ string, seconds float64, failed bool) {
	status := "success"
	if failed {
		status = "failed"
	}
	r.analysesTotal.WithLabelValues(status).Inc()
	r.analysisDuration.Observe(seconds)
}

// RecordArchive records an archive write attempt.
func (r *Registry) RecordArchive(backend, status string) {
	r.archivesTotal.WithLabelValues(backend, status).Inc()
}

// SetJobsActive sets the number of active jobs of a type.
func (r *Registry) SetJobsActive(jobType string, count int) {
	r.jobsActive.WithLabelValues(jobType).Set(float64(count))
}

// SetWatchlistSize sets the watchlist size.
func (r *Registry) SetWatchlistSize(size int) {
	r.watchlistSymbols.Set(float64(size))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
