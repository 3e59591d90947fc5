// Package dedupe suppresses repeated OCR readings of the same dialogue line.
package dedupe

import (
	"strings"
	"time"

	"github.com/leonardotrapani/captrans/internal/similarity"
)

// Config holds deduplicator thresholds.
type Config struct {
	Similarity  float64       // suppress when ratio to the last accepted text is >= this
	MinInterval time.Duration // suppress anything arriving sooner than this after an acceptance
}

func DefaultConfig() Config {
	return Config{
		Similarity:  0.93,
		MinInterval: 150 * time.Millisecond,
	}
}

// Deduplicator remembers the last accepted text and when it was accepted.
// Only that single value is compared against; an A, B, A sequence emits all
// three. It is not safe for concurrent use.
type Deduplicator struct {
	config Config
	now    func() time.Time

	lastText   string
	lastAccept time.Time
}

func New(cfg Config) *Deduplicator {
	return NewWithClock(cfg, time.Now)
}

func NewWithClock(cfg Config, now func() time.Time) *Deduplicator {
	if now == nil {
		now = time.Now
	}
	return &Deduplicator{config: cfg, now: now}
}

// ShouldEmit reports whether text is novel enough to forward. Accepted text
// becomes the new reference value.
func (d *Deduplicator) ShouldEmit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	now := d.now()
	if !d.lastAccept.IsZero() && now.Sub(d.lastAccept) < d.config.MinInterval {
		return false
	}

	if d.lastText == "" {
		d.remember(text, now)
		return true
	}

	if similarity.Ratio(d.lastText, text) >= d.config.Similarity {
		return false
	}

	d.remember(text, now)
	return true
}

func (d *Deduplicator) remember(text string, now time.Time) {
	d.lastText = text
	d.lastAccept = now
}
