package daemon

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/leonardotrapani/captrans/internal/bus"
	"github.com/leonardotrapani/captrans/internal/capture"
	"github.com/leonardotrapani/captrans/internal/capture/webcam"
	"github.com/leonardotrapani/captrans/internal/config"
	"github.com/leonardotrapani/captrans/internal/display"
	"github.com/leonardotrapani/captrans/internal/events"
	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/notify"
	"github.com/leonardotrapani/captrans/internal/ocr"
	"github.com/leonardotrapani/captrans/internal/ocr/tesseract"
	"github.com/leonardotrapani/captrans/internal/pipeline"
	"github.com/leonardotrapani/captrans/internal/server"
	"github.com/leonardotrapani/captrans/internal/state"
	"github.com/leonardotrapani/captrans/internal/transcript"
	"github.com/leonardotrapani/captrans/internal/translate"
)

const shutdownTimeout = 5 * time.Second

// Options select the collaborators the daemon builds. Nil fields use the
// real devices and engines.
type Options struct {
	ConfigPath    string // watched for edits when non-empty
	Notifier      notify.Notifier
	OpenDevice    capture.Opener
	NewRecognizer func(ocr.Config) (ocr.Recognizer, error)
	NewTranslator func(translate.Config) (translate.Translator, error)
	DisplayOut    io.Writer
	HandleSignals bool
}

type Daemon struct {
	config *config.Config
	opts   Options
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex // guards the fields below once Run has started
	source     *capture.Source
	recognizer ocr.Recognizer
	translator translate.Translator
	store      *state.Store
	transcript *transcript.Logger
	events     *events.Publisher
	server     *server.Server
	pipeline   *pipeline.Coordinator
	watcher    *config.Watcher
	sessionID  string
}

func New(cfg *config.Config, opts Options) *Daemon {
	if opts.OpenDevice == nil {
		opts.OpenDevice = webcam.Open
	}
	if opts.NewRecognizer == nil {
		opts.NewRecognizer = func(c ocr.Config) (ocr.Recognizer, error) { return tesseract.New(c) }
	}
	if opts.NewTranslator == nil {
		opts.NewTranslator = translate.New
	}
	if opts.DisplayOut == nil {
		opts.DisplayOut = os.Stdout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		config: cfg,
		opts:   opts,
		logger: logging.WithComponent("daemon"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (d *Daemon) status() pipeline.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pipeline == nil {
		return pipeline.Idle
	}
	return d.pipeline.Status()
}

// Shutdown asks a running daemon to exit.
func (d *Daemon) Shutdown() {
	d.cancel()
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if d.opts.HandleSignals {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigCh)

		go func() {
			select {
			case sig := <-sigCh:
				d.logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down gracefully")
				d.cancel()
			case <-d.ctx.Done():
			}
		}()
	}

	if err := d.start(); err != nil {
		d.notifier().Error(err.Error())
		d.stop()
		return err
	}
	defer d.stop()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	d.logger.Info().Msg("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				d.logger.Info().Msg("Shutdown requested")
				return nil
			}
			d.logger.Error().Err(err).Msg("Accept error")
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) notifier() notify.Notifier {
	if d.opts.Notifier == nil {
		return notify.Nop{}
	}
	return d.opts.Notifier
}

// start builds the components in dependency order. Whatever was built before
// a failure is released by stop.
func (d *Daemon) start() error {
	cfg := d.config
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sessionID = newSessionID()

	d.source = capture.NewSource(cfg.ToCaptureConfig(), d.opts.OpenDevice)
	if err := d.source.Start(d.ctx); err != nil {
		return err
	}
	first, err := d.source.WaitFirstFrame(d.ctx, cfg.Capture.FirstFrameTimeout)
	if err != nil {
		return fmt.Errorf("capture started but produced no frame: %w", err)
	}
	d.logger.Info().Int("width", first.Width).Int("height", first.Height).Msg("First frame received")

	d.recognizer, err = d.opts.NewRecognizer(cfg.ToOCRConfig())
	if err != nil {
		return fmt.Errorf("failed to create recognizer: %w", err)
	}

	d.translator, err = d.opts.NewTranslator(cfg.ToTranslateConfig())
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	d.store = state.NewStore()

	if cfg.Transcript.Enabled {
		d.transcript, err = transcript.Open(cfg.ToTranscriptConfig())
		if err != nil {
			return fmt.Errorf("failed to open transcript: %w", err)
		}
		d.logger.Info().Str("dir", d.transcript.SessionDir()).Msg("Transcript session opened")
	}

	d.events = events.New(cfg.ToEventsConfig())

	deps := pipeline.Deps{
		Frames:     d.source,
		Recognizer: d.recognizer,
		Translator: d.translator,
		Results:    d.store,
	}
	if d.transcript != nil {
		deps.Transcript = d.transcript
	}
	if d.events.Enabled() {
		deps.Events = d.events
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.ROI = cfg.ToROI()
	pcfg.Interval = cfg.SamplingInterval()
	pcfg.Dedupe = cfg.ToDedupeConfig()
	pcfg.SessionID = d.sessionID
	d.pipeline = pipeline.New(pcfg, deps)

	if cfg.Server.Enabled {
		p := d.pipeline
		d.server = server.New(cfg.ToServerConfig(), d.store, func() bool { return p.Status() == pipeline.Running })
		d.server.Start()
	}

	if cfg.Display.Mode == "terminal" {
		term := display.New(cfg.ToDisplayConfig(), d.store, d.opts.DisplayOut)
		go term.Run(d.ctx)
	}

	if d.opts.ConfigPath != "" {
		d.watcher = config.NewWatcher(d.opts.ConfigPath, cfg, func(*config.Config) {
			d.notifier().ConfigChanged()
		})
		if err := d.watcher.Start(d.ctx); err != nil {
			d.logger.Warn().Err(err).Msg("Config watcher unavailable")
			d.watcher = nil
		}
	}

	d.pipeline.Run(d.ctx)
	go d.notifier().Started(d.translator.Name(), cfg.Translation.SourceLang, cfg.Translation.TargetLang)
	return nil
}

// stop releases components in reverse order.
func (d *Daemon) stop() {
	d.cancel()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.pipeline != nil {
		d.pipeline.Stop()
	}
	if d.source != nil {
		if err := d.source.Stop(); err != nil {
			d.logger.Warn().Err(err).Msg("Capture stop failed")
		}
	}
	if d.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := d.server.Shutdown(ctx); err != nil {
			d.logger.Warn().Err(err).Msg("Display server shutdown failed")
		}
		cancel()
	}
	if d.transcript != nil {
		if err := d.transcript.Close(); err != nil {
			d.logger.Warn().Err(err).Msg("Transcript close failed")
		}
	}
	if d.events != nil {
		if err := d.events.Close(); err != nil {
			d.logger.Warn().Err(err).Msg("Event publisher close failed")
		}
	}
	if c, ok := d.recognizer.(io.Closer); ok {
		c.Close()
	}

	if d.pipeline != nil {
		d.notifier().Stopped()
	}
	d.logger.Info().Msg("Daemon stopped")
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil && line == "" {
		d.logger.Debug().Err(err).Msg("Client read error")
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	cmd := line[0]

	switch cmd {
	case bus.CmdStatus:
		fmt.Fprintf(c, "STATUS %s\n", d.statusLine())
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		d.logger.Warn().Str("command", string(cmd)).Msg("Unknown command")
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

func (d *Daemon) statusLine() string {
	status := d.status()

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pipeline == nil {
		return fmt.Sprintf("status=%s", status)
	}

	st := d.pipeline.Stats()
	frames, readFailures := d.source.Stats()
	snap := d.store.Snapshot()
	capturing := "stopped"
	if d.source.IsRunning() {
		capturing = "running"
	}
	return fmt.Sprintf("status=%s session=%s engine=%s capture=%s frames=%d read_failures=%d samples=%d emitted=%d suppressed=%d empty=%d errors=%d fallbacks=%d seq=%d",
		status, d.sessionID, d.translator.Name(), capturing, frames, readFailures,
		st.Samples, st.Emitted, st.Suppressed, st.Empty, st.Errors, st.Fallbacks, snap.Seq)
}

func newSessionID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405")
	}
	return hex.EncodeToString(b)
}
