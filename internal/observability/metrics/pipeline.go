package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics instruments the ingestion and retrieval paths. A private
// registry keeps the metric set explicit and test-friendly.
type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	ingestedFilesTotal   *prometheus.CounterVec
	ingestDuration       *prometheus.HistogramVec
	chunksIndexedTotal   prometheus.Counter
	retrievalDuration    prometheus.Histogram
	retrievedFragments   prometheus.Histogram
	contextSwitchesTotal *prometheus.CounterVec
	formSlotsTotal       *prometheus.CounterVec
	statusEventsTotal    *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	ingestedFilesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docscope",
			Subsystem: "ingest",
			Name:      "files_total",
			Help:      "Ingested files by terminal status.",
		},
		[]string{"service", "status"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docscope",
			Subsystem: "ingest",
			Name:      "file_duration_seconds",
			Help:      "Per-file ingestion duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	chunksIndexedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docscope",
			Subsystem: "ingest",
			Name:      "chunks_indexed_total",
			Help:      "Total chunks written to the vector index.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docscope",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievedFragments := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docscope",
			Subsystem: "retrieval",
			Name:      "fragments",
			Help:      "Distribution of fragments returned per retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	contextSwitchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docscope",
			Subsystem: "chat",
			Name:      "context_switches_total",
			Help:      "Detected category switches by target category.",
		},
		[]string{"service", "category"},
	)
	formSlotsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docscope",
			Subsystem: "forms",
			Name:      "slots_total",
			Help:      "Structured extraction slots by outcome.",
		},
		[]string{"service", "outcome"},
	)
	statusEventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docscope",
			Subsystem: "queue",
			Name:      "status_events_total",
			Help:      "Ingestion status events by direction.",
		},
		[]string{"service", "direction"},
	)

	registry.MustRegister(
		ingestedFilesTotal,
		ingestDuration,
		chunksIndexedTotal,
		retrievalDuration,
		retrievedFragments,
		contextSwitchesTotal,
		formSlotsTotal,
		statusEventsTotal,
	)

	return &PipelineMetrics{
		registry:             registry,
		service:              service,
		ingestedFilesTotal:   ingestedFilesTotal,
		ingestDuration:       ingestDuration,
		chunksIndexedTotal:   chunksIndexedTotal,
		retrievalDuration:    retrievalDuration,
		retrievedFragments:   retrievedFragments,
		contextSwitchesTotal: contextSwitchesTotal,
		formSlotsTotal:       formSlotsTotal,
		statusEventsTotal:    statusEventsTotal,
	}
}

func (m *PipelineMetrics) ObserveFileIngested(status string, duration time.Duration) {
	m.ingestedFilesTotal.WithLabelValues(m.service, status).Inc()
	m.ingestDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) AddChunksIndexed(n int) {
	m.chunksIndexedTotal.Add(float64(n))
}

func (m *PipelineMetrics) ObserveRetrieval(duration time.Duration, fragments int) {
	m.retrievalDuration.Observe(duration.Seconds())
	m.retrievedFragments.Observe(float64(fragments))
}

func (m *PipelineMetrics) IncContextSwitch(category string) {
	m.contextSwitchesTotal.WithLabelValues(m.service, category).Inc()
}

func (m *PipelineMetrics) IncFormSlot(outcome string) {
	m.formSlotsTotal.WithLabelValues(m.service, outcome).Inc()
}

func (m *PipelineMetrics) IncStatusEvent(direction string) {
	m.statusEventsTotal.WithLabelValues(m.service, direction).Inc()
}

// Handler serves the private registry.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
