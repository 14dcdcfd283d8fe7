// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_practice"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsTotal   prometheus.Counter
	SessionsActive  prometheus.Gauge
	SessionsSaved   prometheus.Counter
	SessionsDropped *prometheus.CounterVec
	SessionDuration prometheus.Histogram

	// Transcript metrics
	TranscriptsPartial prometheus.Counter
	TranscriptsFinal   prometheus.Counter
	AudioBytesReceived prometheus.Counter

	// AI gateway metrics
	GatewayCalls     *prometheus.CounterVec
	GatewayErrors    *prometheus.CounterVec
	GatewayLatency   *prometheus.HistogramVec
	SpeechSynthFails prometheus.Counter

	// Word bank metrics
	WordBankOps    *prometheus.CounterVec
	WordBankErrors *prometheus.CounterVec

	// Export metrics
	ExportsTotal prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of practice sessions started",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently recording sessions",
		}),
		SessionsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_saved_total",
			Help:      "Total number of sessions persisted with a recording",
		}),
		SessionsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_dropped_total",
			Help:      "Total number of sessions dropped",
		}, []string{"reason"}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of practice sessions in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		TranscriptsPartial: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_partial_total",
			Help:      "Total number of partial recognition results applied",
		}),
		TranscriptsFinal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_final_total",
			Help:      "Total number of final recognition results applied",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes buffered across sessions",
		}),

		GatewayCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Total number of AI gateway round trips",
		}, []string{"language"}),
		GatewayErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_errors_total",
			Help:      "Total number of AI gateway failures",
		}, []string{"kind"}),
		GatewayLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_latency_seconds",
			Help:      "AI gateway round-trip latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"step"}),
		SpeechSynthFails: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_synthesis_failures_total",
			Help:      "Total number of best-effort TTS failures",
		}),

		WordBankOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wordbank_operations_total",
			Help:      "Total number of word bank operations",
		}, []string{"op"}),
		WordBankErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wordbank_errors_total",
			Help:      "Total number of word bank persistence failures",
		}, []string{"op"}),

		ExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of word bank CSV exports",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionStart records a new session starting.
func (m *Metrics) RecordSessionStart() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a session ending.
func (m *Metrics) RecordSessionEnd(saved bool, durationSeconds float64) {
	m.SessionsActive.Dec()
	m.SessionDuration.Observe(durationSeconds)
	if saved {
		m.SessionsSaved.Inc()
	}
}

// RecordSessionDropped records a session dropped mid-flight.
func (m *Metrics) RecordSessionDropped(reason string) {
	m.SessionsDropped.WithLabelValues(reason).Inc()
}

// RecordTranscript records a recognition result applied to a transcript.
func (m *Metrics) RecordTranscript(final bool) {
	if final {
		m.TranscriptsFinal.Inc()
	} else {
		m.TranscriptsPartial.Inc()
	}
}

// RecordAudioReceived records audio bytes buffered for a session.
func (m *Metrics) RecordAudioReceived(bytes int) {
	m.AudioBytesReceived.Add(float64(bytes))
}

// RecordGatewayCall records an AI gateway round trip.
func (m *Metrics) RecordGatewayCall(language, step string, err error, latencySeconds float64) {
	m.GatewayCalls.WithLabelValues(language).Inc()
	m.GatewayLatency.WithLabelValues(step).Observe(latencySeconds)
	if err != nil {
		m.GatewayErrors.WithLabelValues(step).Inc()
	}
}

// RecordSpeechSynthesisFailure records a best-effort TTS failure.
func (m *Metrics) RecordSpeechSynthesisFailure() {
	m.SpeechSynthFails.Inc()
}

// RecordWordBankOp records a word bank operation and its outcome.
func (m *Metrics) RecordWordBankOp(op string, err error) {
	m.WordBankOps.WithLabelValues(op).Inc()
	if err != nil {
		m.WordBankErrors.WithLabelValues(op).Inc()
	}
}

// RecordExport records a CSV export.
func (m *Metrics) RecordExport() {
	m.ExportsTotal.Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
