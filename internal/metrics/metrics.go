// Package metrics provides Prometheus metrics for the capture and translation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "captrans"

// Sample outcomes.
const (
	OutcomeNoFrame    = "no_frame"
	OutcomeEmpty      = "empty"
	OutcomeSuppressed = "suppressed"
	OutcomeEmitted    = "emitted"
	OutcomeError      = "error"
)

// Metrics holds all Prometheus metrics for the process.
type Metrics struct {
	// Capture
	FramesCaptured prometheus.Counter
	ReadFailures   prometheus.Counter

	// Sampling
	Samples            *prometheus.CounterVec
	RecognitionLatency prometheus.Histogram
	RecognitionErrors  prometheus.Counter

	// Translation
	TranslationLatency   *prometheus.HistogramVec
	TranslationFallbacks *prometheus.CounterVec

	// Transcript
	TranscriptEntries  prometheus.Counter
	TranscriptWindows  prometheus.Counter
	LogWriteFailures   prometheus.Counter
	KafkaPublishTotal  *prometheus.CounterVec
	KafkaPublishErrors *prometheus.CounterVec

	// Display
	DisplayClients prometheus.Gauge
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FramesCaptured: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_captured_total",
			Help:      "Total number of frames read from the capture device",
		}),
		ReadFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_read_failures_total",
			Help:      "Total number of failed frame reads",
		}),

		Samples: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Total number of sampling ticks by outcome",
		}, []string{"outcome"}),
		RecognitionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recognition_duration_seconds",
			Help:      "Time spent recognizing text in a cropped frame",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2},
		}),
		RecognitionErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_errors_total",
			Help:      "Total number of recognizer failures",
		}),

		TranslationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translation_duration_seconds",
			Help:      "Time spent in the translation engine",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"engine"}),
		TranslationFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_fallbacks_total",
			Help:      "Translations that failed and fell back to the source text",
		}, []string{"engine"}),

		TranscriptEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_entries_total",
			Help:      "Total number of transcript entries written",
		}),
		TranscriptWindows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_windows_total",
			Help:      "Total number of conversation windows opened",
		}),
		LogWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_write_failures_total",
			Help:      "Total number of failed transcript writes",
		}),
		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of transcript events published",
		}, []string{"topic"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of failed transcript event publishes",
		}, []string{"topic"}),

		DisplayClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "display_clients",
			Help:      "Number of connected websocket display clients",
		}),
	}
}

func (m *Metrics) RecordFrameCaptured() {
	m.FramesCaptured.Inc()
}

func (m *Metrics) RecordReadFailure() {
	m.ReadFailures.Inc()
}

// RecordSample counts one sampling tick.
func (m *Metrics) RecordSample(outcome string) {
	m.Samples.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRecognition(seconds float64, err error) {
	m.RecognitionLatency.Observe(seconds)
	if err != nil {
		m.RecognitionErrors.Inc()
	}
}

func (m *Metrics) RecordTranslation(engine string, seconds float64, fellBack bool) {
	m.TranslationLatency.WithLabelValues(engine).Observe(seconds)
	if fellBack {
		m.TranslationFallbacks.WithLabelValues(engine).Inc()
	}
}

func (m *Metrics) RecordTranscriptEntry(newWindow bool) {
	m.TranscriptEntries.Inc()
	if newWindow {
		m.TranscriptWindows.Inc()
	}
}

func (m *Metrics) RecordLogWriteFailure() {
	m.LogWriteFailures.Inc()
}

// RecordKafkaPublish records a publish attempt.
func (m *Metrics) RecordKafkaPublish(topic string, err error) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}

func (m *Metrics) DisplayClientConnected() {
	m.DisplayClients.Inc()
}

func (m *Metrics) DisplayClientDisconnected() {
	m.DisplayClients.Dec()
}
