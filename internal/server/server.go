// Package server exposes the latest result to display clients over HTTP and
// websocket, alongside health and Prometheus endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/metrics"
	"github.com/leonardotrapani/captrans/internal/state"
)

const writeWait = 5 * time.Second

// SnapshotSource is the read side of the shared result state.
type SnapshotSource interface {
	Snapshot() state.Snapshot
}

type Config struct {
	Addr         string
	PollInterval time.Duration // how often websocket clients are checked for a new result
}

func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8765",
		PollInterval: 100 * time.Millisecond,
	}
}

type Server struct {
	config  Config
	source  SnapshotSource
	ready   func() bool
	server  *http.Server
	logger  zerolog.Logger
	metrics *metrics.Metrics

	upgrader websocket.Upgrader

	wg      sync.WaitGroup
	closeMu sync.Mutex
	closing chan struct{}
}

// New builds the server. ready reports whether the pipeline is sampling; nil
// means always ready.
func New(cfg Config, source SnapshotSource, ready func() bool) *Server {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if ready == nil {
		ready = func() bool { return true }
	}

	s := &Server{
		config:  cfg,
		source:  source,
		ready:   ready,
		logger:  logging.WithComponent("server"),
		metrics: metrics.DefaultMetrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // overlays are served from file:// and localhost
			},
		},
		closing: make(chan struct{}),
	}

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !s.ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/ws", s.handleWebsocket)
	})

	return r
}

// Start serves in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting display server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Display server error")
		}
	}()
}

// Shutdown stops accepting connections and closes websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down display server")

	s.closeMu.Lock()
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	s.closeMu.Unlock()

	err := s.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	return err
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(s.source.Snapshot()); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode snapshot")
	}
}

// handleWebsocket pushes the current snapshot on connect and again whenever
// its sequence number changes.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if !s.track() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.wg.Done()
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s.metrics.DisplayClientConnected()
	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("Display client connected")

	// reads only detect the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer s.wg.Done()
		defer s.metrics.DisplayClientDisconnected()
		defer conn.Close()
		s.push(conn, gone)
		s.logger.Debug().Str("remote", r.RemoteAddr).Msg("Display client disconnected")
	}()
}

// track registers a websocket client with the shutdown WaitGroup. It fails
// once Shutdown has begun, so Add never races with Wait.
func (s *Server) track() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	select {
	case <-s.closing:
		return false
	default:
		s.wg.Add(1)
		return true
	}
}

func (s *Server) push(conn *websocket.Conn, gone <-chan struct{}) {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	var lastSeq uint64
	sent := false
	for {
		snap := s.source.Snapshot()
		if !sent || snap.Seq != lastSeq {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.Debug().Err(err).Msg("WebSocket write failed")
				return
			}
			lastSeq, sent = snap.Seq, true
		}

		select {
		case <-gone:
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}
	}
}
