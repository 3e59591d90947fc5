package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func TestRecordSample(t *testing.T) {
	m := newTestMetrics()
	m.RecordSample(OutcomeEmitted)
	m.RecordSample(OutcomeEmitted)
	m.RecordSample(OutcomeSuppressed)

	if got := testutil.ToFloat64(m.Samples.WithLabelValues(OutcomeEmitted)); got != 2 {
		t.Errorf("emitted samples = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Samples.WithLabelValues(OutcomeSuppressed)); got != 1 {
		t.Errorf("suppressed samples = %v, want 1", got)
	}
}

func TestRecordTranslation(t *testing.T) {
	m := newTestMetrics()
	m.RecordTranslation("deepl", 0.2, false)
	m.RecordTranslation("deepl", 0.3, true)

	if got := testutil.ToFloat64(m.TranslationFallbacks.WithLabelValues("deepl")); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
}

func TestRecordTranscriptEntry(t *testing.T) {
	m := newTestMetrics()
	m.RecordTranscriptEntry(true)
	m.RecordTranscriptEntry(false)
	m.RecordTranscriptEntry(true)

	if got := testutil.ToFloat64(m.TranscriptEntries); got != 3 {
		t.Errorf("entries = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.TranscriptWindows); got != 2 {
		t.Errorf("windows = %v, want 2", got)
	}
}

func TestRecordKafkaPublish(t *testing.T) {
	m := newTestMetrics()
	m.RecordKafkaPublish("captrans.transcript", nil)
	m.RecordKafkaPublish("captrans.transcript", errors.New("broker down"))

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("captrans.transcript")); got != 2 {
		t.Errorf("publishes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("captrans.transcript")); got != 1 {
		t.Errorf("publish errors = %v, want 1", got)
	}
}

func TestDisplayClients(t *testing.T) {
	m := newTestMetrics()
	m.DisplayClientConnected()
	m.DisplayClientConnected()
	m.DisplayClientDisconnected()

	if got := testutil.ToFloat64(m.DisplayClients); got != 1 {
		t.Errorf("display clients = %v, want 1", got)
	}
}
