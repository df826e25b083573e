package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rag_playground"

// Outcome labels shared by every recorder method.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeRejected = "rejected"
)

// Recorder collects client-side metrics of the orchestration core.
type Recorder struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	searchResults   prometheus.Histogram
	searchQuality   *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	uploadBytes     prometheus.Counter
	threadOps       *prometheus.CounterVec
	historyClearErr prometheus.Counter
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_requests_total",
				Help:      "Chat and ask requests by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		requestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chat_request_duration_seconds",
				Help:      "End-to-end latency of chat and ask requests",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"mode"},
		),
		searchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results_count",
				Help:      "Number of passages returned per retrieval",
				Buckets:   prometheus.LinearBuckets(0, 5, 5),
			},
		),
		searchQuality: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_quality_total",
				Help:      "Retrieval batches by quality rating",
			},
			[]string{"rating"},
		),
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_uploads_total",
				Help:      "Document uploads by outcome",
			},
			[]string{"outcome"},
		),
		uploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_upload_bytes_total",
				Help:      "Bytes of accepted document uploads",
			},
		),
		threadOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "thread_operations_total",
				Help:      "Thread operations by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),
		historyClearErr: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_clear_failures_total",
				Help:      "Server-side history clears that failed after retries",
			},
		),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveRequest(mode, outcome string, elapsed time.Duration) {
	r.requests.WithLabelValues(mode, outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeError {
		r.requestLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
	}
}

func (r *Recorder) ObserveSearch(resultCount int, rating string) {
	r.searchResults.Observe(float64(resultCount))
	r.searchQuality.WithLabelValues(rating).Inc()
}

func (r *Recorder) ObserveUpload(outcome string, size int64) {
	r.uploads.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		r.uploadBytes.Add(float64(size))
	}
}

func (r *Recorder) ObserveThreadOp(operation, outcome string) {
	r.threadOps.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) HistoryClearFailed() {
	r.historyClearErr.Inc()
}

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return OutcomeError
}
