package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/leonardotrapani/captrans/internal/transcript"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"nil brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.Enabled() {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
		})
	}
}

func TestNew_Enabled(t *testing.T) {
	p := New(&Config{
		Enabled:   true,
		Brokers:   []string{"localhost:9092"},
		Topic:     "captrans.transcript",
		Principal: "tester",
	})
	defer p.Close()

	if !p.Enabled() {
		t.Fatal("expected publisher to be enabled")
	}
	if p.writer == nil || p.writer.Topic != "captrans.transcript" {
		t.Errorf("writer not configured for topic: %+v", p.writer)
	}
	if p.principal != "tester" {
		t.Errorf("principal = %q, want tester", p.principal)
	}
}

func TestPublish_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false, Topic: "captrans.transcript"})

	event := TranscriptEvent{
		SessionID: "session_20260101_000000",
		Entry: transcript.Entry{
			EntryID:        1,
			WindowID:       1,
			SourceText:     "こんにちは",
			TranslatedText: "안녕하세요",
		},
	}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Errorf("Publish() in disabled mode error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestTranscriptEvent_JSON(t *testing.T) {
	event := TranscriptEvent{
		SessionID: "s1",
		Entry: transcript.Entry{
			EntryID:    3,
			WindowID:   2,
			SourceText: "a",
			NewWindow:  true,
		},
		Engine: "deepl",
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["session_id"] != "s1" || m["entry_id"] != 3.0 || m["window_id"] != 2.0 || m["engine"] != "deepl" {
		t.Errorf("unexpected event json: %s", data)
	}
	if _, ok := m["NewWindow"]; ok {
		t.Errorf("internal field leaked into event json: %s", data)
	}
}
