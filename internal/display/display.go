// Package display renders the latest result in the terminal.
package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/state"
)

// SnapshotSource is the read side of the shared result state.
type SnapshotSource interface {
	Snapshot() state.Snapshot
}

type Config struct {
	Refresh    time.Duration
	ShowSource bool
	Width      int
	Clear      bool // redraw in place instead of appending
}

func DefaultConfig() Config {
	return Config{
		Refresh:    100 * time.Millisecond,
		ShowSource: true,
		Width:      72,
	}
}

var (
	colorAccent = lipgloss.Color("#7C3AED")
	colorText   = lipgloss.Color("#F8FAFC")
	colorMuted  = lipgloss.Color("#94A3B8")
	colorSubtle = lipgloss.Color("#64748B")
)

var (
	styleMeta = lipgloss.NewStyle().
			Foreground(colorSubtle)

	styleSource = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleTranslation = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

// Terminal polls a SnapshotSource and prints each new result once.
type Terminal struct {
	config Config
	source SnapshotSource
	out    *termenv.Output
	logger zerolog.Logger

	lastSeq uint64
}

func New(cfg Config, source SnapshotSource, w io.Writer) *Terminal {
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultConfig().Refresh
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultConfig().Width
	}
	return &Terminal{
		config: cfg,
		source: source,
		out:    termenv.NewOutput(w),
		logger: logging.WithComponent("display"),
	}
}

// Run blocks until ctx is done.
func (t *Terminal) Run(ctx context.Context) {
	ticker := time.NewTicker(t.config.Refresh)
	defer ticker.Stop()

	t.logger.Debug().Dur("refresh", t.config.Refresh).Msg("Terminal display started")
	for {
		t.Poll()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll prints the current snapshot if it has not been printed yet.
// It reports whether anything was written.
func (t *Terminal) Poll() bool {
	snap := t.source.Snapshot()
	if snap.Seq == 0 || snap.Seq == t.lastSeq {
		return false
	}
	t.lastSeq = snap.Seq

	if t.config.Clear {
		t.out.ClearScreen()
	}
	if _, err := fmt.Fprintln(t.out, t.Render(snap)); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to write to terminal")
	}
	return true
}

// Render formats one snapshot.
func (t *Terminal) Render(snap state.Snapshot) string {
	inner := t.config.Width - 4
	var lines []string

	lines = append(lines, styleMeta.Render(fmt.Sprintf("#%d  %s", snap.Seq, snap.UpdatedAt.Format("15:04:05"))))
	if t.config.ShowSource && snap.SourceText != snap.TranslatedText {
		lines = append(lines, styleSource.Width(inner).Render(snap.SourceText))
	}
	lines = append(lines, styleTranslation.Width(inner).Render(snap.TranslatedText))

	return styleBox.Width(t.config.Width - 2).Render(strings.Join(lines, "\n"))
}
