// Package pipeline runs the fixed-interval sampling loop: latest frame, crop,
// recognize, dedupe, translate, publish, log.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/leonardotrapani/captrans/internal/dedupe"
	"github.com/leonardotrapani/captrans/internal/events"
	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/metrics"
	"github.com/leonardotrapani/captrans/internal/ocr"
	"github.com/leonardotrapani/captrans/internal/transcript"
	"github.com/leonardotrapani/captrans/internal/translate"
)

type Status string

const (
	Idle    Status = "idle"
	Running Status = "running"
	Stopped Status = "stopped"
)

const (
	minSleep       = 10 * time.Millisecond
	noFrameSleep   = 20 * time.Millisecond
	publishTimeout = 2 * time.Second
)

// FrameSource yields the most recent captured frame.
type FrameSource interface {
	Latest() (frame.Frame, bool)
}

// ResultSink receives every emitted (source, translation) pair.
type ResultSink interface {
	Update(source, translated string)
}

// TranscriptSink persists emitted pairs.
type TranscriptSink interface {
	Log(source, translated string) (transcript.Entry, error)
}

// EventPublisher forwards logged entries downstream.
type EventPublisher interface {
	Publish(ctx context.Context, event events.TranscriptEvent) error
}

type Config struct {
	ROI       frame.Rect // zero value selects the bottom dialogue band
	Interval  time.Duration
	Dedupe    dedupe.Config
	StopGrace time.Duration
	SessionID string
	Clock     func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Interval:  350 * time.Millisecond,
		Dedupe:    dedupe.DefaultConfig(),
		StopGrace: 2 * time.Second,
	}
}

// Deps are the collaborators of a Coordinator. Transcript and Events are optional.
type Deps struct {
	Frames     FrameSource
	Recognizer ocr.Recognizer
	Translator translate.Translator
	Results    ResultSink
	Transcript TranscriptSink
	Events     EventPublisher
}

type Pipeline interface {
	Run(ctx context.Context)
	Stop()
	Status() Status
	Stats() Stats
}

// Stats counts sampling outcomes since the coordinator was created.
type Stats struct {
	Samples    int64
	NoFrame    int64
	Empty      int64
	Suppressed int64
	Emitted    int64
	Errors     int64
	Fallbacks  int64
}

// Coordinator is the sampling loop. Sample is single-threaded with respect
// to itself; Run must not be combined with direct Sample calls.
type Coordinator struct {
	config  Config
	deps    Deps
	dedupe  *dedupe.Deduplicator
	now     func() time.Time
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex // guards status and cancel
	status Status
	cancel context.CancelFunc
	done   chan struct{}

	samples, noFrame, empty, suppressed, emitted, errs, fallbacks atomic.Int64
}

func New(cfg Config, deps Deps) *Coordinator {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = DefaultConfig().StopGrace
	}
	return &Coordinator{
		config:  cfg,
		deps:    deps,
		dedupe:  dedupe.NewWithClock(cfg.Dedupe, now),
		now:     now,
		logger:  logging.WithComponent("pipeline"),
		metrics: metrics.DefaultMetrics,
		status:  Idle,
	}
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Coordinator) Stats() Stats {
	return Stats{
		Samples:    c.samples.Load(),
		NoFrame:    c.noFrame.Load(),
		Empty:      c.empty.Load(),
		Suppressed: c.suppressed.Load(),
		Emitted:    c.emitted.Load(),
		Errors:     c.errs.Load(),
		Fallbacks:  c.fallbacks.Load(),
	}
}

// Run starts the sampling loop on its own goroutine.
func (c *Coordinator) Run(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.status = Running

	c.logger.Info().
		Dur("interval", c.config.Interval).
		Str("roi", c.config.ROI.String()).
		Str("engine", c.deps.Translator.Name()).
		Msg("Pipeline started")

	go c.run(runCtx, done)
}

// Stop cancels the loop and waits up to StopGrace for it to exit.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	select {
	case <-done:
	case <-time.After(c.config.StopGrace):
		c.logger.Warn().Dur("grace", c.config.StopGrace).Msg("Pipeline did not stop in time")
	}

	c.mu.Lock()
	c.status = Stopped
	c.mu.Unlock()

	st := c.Stats()
	c.logger.Info().
		Int64("samples", st.Samples).
		Int64("emitted", st.Emitted).
		Int64("suppressed", st.Suppressed).
		Int64("fallbacks", st.Fallbacks).
		Msg("Pipeline stopped")
}

func (c *Coordinator) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	var lastTick time.Time
	for ctx.Err() == nil {
		now := c.now()
		if !lastTick.IsZero() {
			if elapsed := now.Sub(lastTick); elapsed < c.config.Interval {
				sleep(ctx, max(minSleep, c.config.Interval-elapsed))
				continue
			}
		}
		lastTick = now

		if c.Sample(ctx) == metrics.OutcomeNoFrame {
			sleep(ctx, noFrameSleep)
		}
	}
}

// Sample performs one tick and returns its outcome. No outcome stops the loop.
func (c *Coordinator) Sample(ctx context.Context) string {
	outcome := c.sample(ctx)
	c.samples.Add(1)
	c.metrics.RecordSample(outcome)
	return outcome
}

func (c *Coordinator) sample(ctx context.Context) string {
	f, ok := c.deps.Frames.Latest()
	if !ok {
		c.noFrame.Add(1)
		return metrics.OutcomeNoFrame
	}

	roi := c.config.ROI
	if roi.IsZero() {
		roi = frame.DefaultDialogueRect(f.Width, f.Height)
	}
	roi = roi.Clamp(f.Width, f.Height)

	crop, err := f.Crop(roi)
	if err != nil {
		c.errs.Add(1)
		c.logger.Warn().Err(err).Str("roi", roi.String()).Msg("Crop failed")
		return metrics.OutcomeError
	}

	start := time.Now()
	raw, err := c.deps.Recognizer.Recognize(ctx, crop)
	c.metrics.RecordRecognition(time.Since(start).Seconds(), err)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return metrics.OutcomeError
		}
		c.errs.Add(1)
		c.logger.Warn().Err(err).Msg("Recognition failed")
		return metrics.OutcomeError
	}

	text := ocr.NormalizeText(raw)
	if text == "" {
		c.empty.Add(1)
		return metrics.OutcomeEmpty
	}

	if !c.dedupe.ShouldEmit(text) {
		c.suppressed.Add(1)
		return metrics.OutcomeSuppressed
	}

	start = time.Now()
	res := c.deps.Translator.Translate(ctx, text)
	c.metrics.RecordTranslation(c.deps.Translator.Name(), time.Since(start).Seconds(), res.FellBack())
	if res.FellBack() {
		c.fallbacks.Add(1)
		c.logger.Warn().Err(res.Err).Str("text", text).Msg("Translation failed, showing source text")
	}

	c.deps.Results.Update(text, res.Text)
	c.emitted.Add(1)
	c.logger.Debug().Str("source", text).Str("translated", res.Text).Msg("Emitted")

	c.record(ctx, text, res.Text)
	return metrics.OutcomeEmitted
}

func (c *Coordinator) record(ctx context.Context, source, translated string) {
	if c.deps.Transcript == nil {
		return
	}

	entry, err := c.deps.Transcript.Log(source, translated)
	if err != nil {
		c.metrics.RecordLogWriteFailure()
		c.logger.Error().Err(err).Int("entry", entry.EntryID).Msg("Transcript write failed")
		if entry.EntryID == 0 {
			return
		}
	} else {
		c.metrics.RecordTranscriptEntry(entry.NewWindow)
	}

	if c.deps.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	event := events.TranscriptEvent{
		SessionID: c.config.SessionID,
		Entry:     entry,
		Engine:    c.deps.Translator.Name(),
	}
	if err := c.deps.Events.Publish(pubCtx, event); err != nil {
		c.logger.Warn().Err(err).Int("entry", entry.EntryID).Msg("Transcript event publish failed")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
