// Package capture runs the acquisition loop that keeps the most recent camera
// frame available to the sampling pipeline.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/metrics"
)

var (
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrNoFrame           = errors.New("no frame captured yet")
)

// Device is an opened video source. Read blocks until a frame is available
// and must return a buffer the caller may keep.
type Device interface {
	Read() (frame.Frame, error)
	Close() error
}

// Opener opens the device described by cfg.
type Opener func(cfg Config) (Device, error)

type Config struct {
	DeviceIndex int
	Width       int
	Height      int
	FPS         int
	ReadBackoff time.Duration // pause after a failed read
	StopGrace   time.Duration // how long Stop waits for the loop to exit
}

func DefaultConfig() Config {
	return Config{
		DeviceIndex: 0,
		Width:       1280,
		Height:      720,
		FPS:         30,
		ReadBackoff: 10 * time.Millisecond,
		StopGrace:   2 * time.Second,
	}
}

// pace is the pause after each successful read, a fifth of a frame period.
// It keeps the loop from spinning when the driver hands back buffered frames.
func (c Config) pace() time.Duration {
	if c.FPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(5*c.FPS)
}

// Source owns a Device and publishes only its latest frame.
type Source struct {
	config  Config
	open    Opener
	logger  zerolog.Logger
	metrics *metrics.Metrics

	running atomic.Bool

	mu        sync.Mutex // guards latest, hasLatest and accepting
	latest    frame.Frame
	hasLatest bool
	accepting bool

	ctrlMu sync.Mutex // guards cancel, done and device
	cancel context.CancelFunc
	done   chan struct{}
	device Device

	frames       atomic.Int64
	readFailures atomic.Int64
}

func NewSource(cfg Config, open Opener) *Source {
	return &Source{
		config:  cfg,
		open:    open,
		logger:  logging.WithComponent("capture"),
		metrics: metrics.DefaultMetrics,
	}
}

func (s *Source) IsRunning() bool {
	return s.running.Load()
}

// Start opens the device and starts the acquisition loop.
func (s *Source) Start(ctx context.Context) error {
	if err := s.validateConfig(); err != nil {
		return err
	}

	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	if s.running.Load() {
		return fmt.Errorf("capture already running")
	}

	dev, err := s.open(s.config)
	if err != nil {
		return fmt.Errorf("%w: device %d: %w", ErrDeviceUnavailable, s.config.DeviceIndex, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.device = dev
	s.running.Store(true)

	s.mu.Lock()
	s.accepting = true
	s.mu.Unlock()

	s.logger.Info().
		Int("device", s.config.DeviceIndex).
		Int("width", s.config.Width).
		Int("height", s.config.Height).
		Int("fps", s.config.FPS).
		Msg("Capture started")

	go s.captureLoop(loopCtx, dev, done)
	return nil
}

// Stop ends the loop and releases the device. It waits at most StopGrace for
// the loop to exit. Safe to call before Start and more than once.
func (s *Source) Stop() error {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.cancel = nil

	s.mu.Lock()
	s.accepting = false
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(s.config.StopGrace):
		s.logger.Warn().Dur("grace", s.config.StopGrace).Msg("Capture loop did not exit in time, releasing device")
	}

	err := s.device.Close()
	s.device = nil
	s.running.Store(false)

	s.logger.Info().
		Int64("frames", s.frames.Load()).
		Int64("read_failures", s.readFailures.Load()).
		Msg("Capture stopped")
	return err
}

// Latest returns a copy of the most recent frame, or false before the first
// successful read. After Stop it keeps returning the last frame.
func (s *Source) Latest() (frame.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasLatest {
		return frame.Frame{}, false
	}
	return s.latest.Clone(), true
}

// WaitFirstFrame polls until a frame is available or timeout elapses.
func (s *Source) WaitFirstFrame(ctx context.Context, timeout time.Duration) (frame.Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		if f, ok := s.Latest(); ok {
			return f, nil
		}
		select {
		case <-ctx.Done():
			return frame.Frame{}, fmt.Errorf("%w after %v", ErrNoFrame, timeout)
		case <-ticker.C:
		}
	}
}

// Stats returns the number of frames read and failed reads so far.
func (s *Source) Stats() (frames, readFailures int64) {
	return s.frames.Load(), s.readFailures.Load()
}

func (s *Source) captureLoop(ctx context.Context, dev Device, done chan<- struct{}) {
	defer close(done)

	var failuresSinceLog int
	lastFailureLog := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f, err := dev.Read()
		if err != nil {
			s.readFailures.Add(1)
			s.metrics.RecordReadFailure()
			failuresSinceLog++
			if time.Since(lastFailureLog) > time.Second {
				s.logger.Warn().Err(err).Int("failures", failuresSinceLog).Msg("Frame read failed, retrying")
				lastFailureLog = time.Now()
				failuresSinceLog = 0
			}
			sleep(ctx, s.config.ReadBackoff)
			continue
		}

		if f.Timestamp.IsZero() {
			f.Timestamp = time.Now()
		}

		s.mu.Lock()
		if !s.accepting {
			s.mu.Unlock()
			return
		}
		s.latest = f
		s.hasLatest = true
		s.mu.Unlock()

		s.frames.Add(1)
		s.metrics.RecordFrameCaptured()

		sleep(ctx, s.config.pace())
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Source) validateConfig() error {
	if s.open == nil {
		return fmt.Errorf("invalid capture: no device opener")
	}
	if s.config.DeviceIndex < 0 {
		return fmt.Errorf("invalid DeviceIndex: %d", s.config.DeviceIndex)
	}
	if s.config.Width <= 0 {
		return fmt.Errorf("invalid Width: %d", s.config.Width)
	}
	if s.config.Height <= 0 {
		return fmt.Errorf("invalid Height: %d", s.config.Height)
	}
	if s.config.FPS <= 0 {
		return fmt.Errorf("invalid FPS: %d", s.config.FPS)
	}
	if s.config.StopGrace <= 0 {
		return fmt.Errorf("invalid StopGrace: %v", s.config.StopGrace)
	}
	return nil
}
