package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/captrans/internal/capture"
	"github.com/leonardotrapani/captrans/internal/events"
	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/transcript"
	"github.com/leonardotrapani/captrans/internal/translate"
)

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within %v", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// ManualClock is a clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SolidFrame returns a frame filled with a single grey level.
func SolidFrame(width, height, channels int, level byte) frame.Frame {
	f := frame.New(width, height, channels)
	for i := range f.Pix {
		f.Pix[i] = level
	}
	f.Timestamp = time.Now()
	return f
}

// MockFrameSource implements pipeline.FrameSource for testing
type MockFrameSource struct {
	mu    sync.Mutex
	frame frame.Frame
	ok    bool
}

func NewMockFrameSource(f frame.Frame) *MockFrameSource {
	return &MockFrameSource{frame: f, ok: true}
}

func (m *MockFrameSource) Set(f frame.Frame) {
	m.mu.Lock()
	m.frame, m.ok = f, true
	m.mu.Unlock()
}

func (m *MockFrameSource) Latest() (frame.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return frame.Frame{}, false
	}
	return m.frame.Clone(), true
}

// MockDevice implements capture.Device, replaying Frames and then repeating the last one.
type MockDevice struct {
	Frames  []frame.Frame
	ReadErr error

	mu     sync.Mutex
	reads  int
	closed bool
}

func (m *MockDevice) Read() (frame.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return frame.Frame{}, capture.ErrDeviceUnavailable
	}
	m.reads++
	if m.ReadErr != nil || len(m.Frames) == 0 {
		return frame.Frame{}, errors.Join(capture.ErrNoFrame, m.ReadErr)
	}
	i := min(m.reads-1, len(m.Frames)-1)
	f := m.Frames[i].Clone()
	f.Timestamp = time.Now()
	return f, nil
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MockDevice) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockDeviceOpener returns an opener that hands out the given device
func MockDeviceOpener(dev *MockDevice) capture.Opener {
	return func(capture.Config) (capture.Device, error) {
		return dev, nil
	}
}

// Reading is one scripted recognizer output.
type Reading struct {
	Text string
	Err  error
}

// MockRecognizer implements ocr.Recognizer, returning Readings in order and
// then repeating the last one.
type MockRecognizer struct {
	Readings []Reading

	mu    sync.Mutex
	calls int
}

func NewMockRecognizer(texts ...string) *MockRecognizer {
	m := &MockRecognizer{}
	for _, t := range texts {
		m.Readings = append(m.Readings, Reading{Text: t})
	}
	return m
}

func (m *MockRecognizer) Recognize(ctx context.Context, _ frame.Frame) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.Readings) == 0 {
		return "", nil
	}
	r := m.Readings[min(m.calls-1, len(m.Readings)-1)]
	return r.Text, r.Err
}

func (m *MockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockTranslator implements translate.Translator. Translations are Prefix+text;
// with Err set every call falls back to the source text.
type MockTranslator struct {
	Prefix string
	Err    error

	mu     sync.Mutex
	inputs []string
}

func NewMockTranslator(prefix string) *MockTranslator {
	return &MockTranslator{Prefix: prefix}
}

func (m *MockTranslator) Name() string { return "mock" }

func (m *MockTranslator) Translate(_ context.Context, text string) translate.Result {
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()
	if m.Err != nil {
		return translate.Result{Text: text, Err: m.Err}
	}
	return translate.Result{Text: m.Prefix + text}
}

func (m *MockTranslator) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.inputs))
	copy(out, m.inputs)
	return out
}

// Pair is one (source, translated) update.
type Pair struct {
	Source     string
	Translated string
}

// MockResultSink records every Update call.
type MockResultSink struct {
	mu    sync.Mutex
	pairs []Pair
}

func (m *MockResultSink) Update(source, translated string) {
	m.mu.Lock()
	m.pairs = append(m.pairs, Pair{source, translated})
	m.mu.Unlock()
}

func (m *MockResultSink) Pairs() []Pair {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// MockTranscriptSink records logged pairs as entries with sequential ids.
type MockTranscriptSink struct {
	mu      sync.Mutex
	entries []transcript.Entry
}

func (m *MockTranscriptSink) Log(source, translated string) (transcript.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := transcript.Entry{
		EntryID:        len(m.entries) + 1,
		WindowID:       1,
		SourceText:     source,
		TranslatedText: translated,
		NewWindow:      len(m.entries) == 0,
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *MockTranscriptSink) Entries() []transcript.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transcript.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MockEventPublisher records published transcript events.
type MockEventPublisher struct {
	PublishError error

	mu     sync.Mutex
	events []events.TranscriptEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, event events.TranscriptEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return m.PublishError
}

func (m *MockEventPublisher) Events() []events.TranscriptEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.TranscriptEvent, len(m.events))
	copy(out, m.events)
	return out
}
