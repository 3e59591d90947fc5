// Package transcript records accepted lines to a per-session directory as a
// human-readable transcript and a JSON Lines stream, grouping consecutive
// related lines into conversation windows.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/captrans/internal/similarity"
)

var (
	ErrEmptySourceText = errors.New("cannot log empty source text")
	ErrClosed          = errors.New("transcript closed")
)

const (
	TextFileName  = "transcript.txt"
	JSONLFileName = "transcript.jsonl"

	timestampLayout = "2006-01-02T15:04:05"
	sessionLayout   = "20060102_150405"
	ruleWidth       = 72
)

// Config holds transcript settings.
type Config struct {
	Dir                  string
	SourceLang           string
	TargetLang           string
	SourceOnly           bool
	WindowMerge          time.Duration
	SameWindowSimilarity float64

	// Optional header details.
	Engine string
	ROI    string
}

func DefaultConfig() Config {
	return Config{
		Dir:                  "logs",
		SourceLang:           "ja",
		TargetLang:           "ko",
		WindowMerge:          1600 * time.Millisecond,
		SameWindowSimilarity: 0.72,
	}
}

// Entry is one logged line.
type Entry struct {
	EntryID        int    `json:"entry_id"`
	WindowID       int    `json:"window_id"`
	Timestamp      string `json:"timestamp"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`

	// NewWindow is set when this entry opened its window.
	NewWindow bool `json:"-"`
}

// Logger is the session sink. Log and Close are safe for concurrent use.
type Logger struct {
	config     Config
	now        func() time.Time
	sessionDir string

	mu       sync.Mutex
	txt      *os.File
	jsonl    *os.File
	entryID  int
	windowID int
	lastText string
	lastAt   time.Time
	closed   bool
}

// Open creates <Dir>/session_YYYYMMDD_HHMMSS/ and writes the transcript header.
func Open(cfg Config) (*Logger, error) {
	return OpenWithClock(cfg, time.Now)
}

func OpenWithClock(cfg Config, now func() time.Time) (*Logger, error) {
	if now == nil {
		now = time.Now
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfig().Dir
	}

	startedAt := now()
	sessionDir := filepath.Join(cfg.Dir, "session_"+startedAt.Format(sessionLayout))
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	txt, err := openAppend(filepath.Join(sessionDir, TextFileName))
	if err != nil {
		return nil, err
	}
	jsonl, err := openAppend(filepath.Join(sessionDir, JSONLFileName))
	if err != nil {
		txt.Close()
		return nil, err
	}

	l := &Logger{
		config:     cfg,
		now:        now,
		sessionDir: sessionDir,
		txt:        txt,
		jsonl:      jsonl,
	}

	if _, err := txt.WriteString(l.header(startedAt)); err != nil {
		txt.Close()
		jsonl.Close()
		return nil, fmt.Errorf("write transcript header: %w", err)
	}
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// SessionDir returns the directory holding this session's files.
func (l *Logger) SessionDir() string {
	return l.sessionDir
}

// Log records one line. The entry is returned even when a file write fails,
// alongside the error.
func (l *Logger) Log(source, translated string) (Entry, error) {
	source = strings.TrimSpace(source)
	translated = strings.TrimSpace(translated)
	if source == "" {
		return Entry{}, ErrEmptySourceText
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return Entry{}, ErrClosed
	}

	now := l.now()
	newWindow := l.isNewWindow(source, now)
	if newWindow {
		l.windowID++
	}
	l.entryID++

	entry := Entry{
		EntryID:        l.entryID,
		WindowID:       l.windowID,
		Timestamp:      now.Format(timestampLayout),
		SourceLang:     l.config.SourceLang,
		TargetLang:     l.config.TargetLang,
		SourceText:     source,
		TranslatedText: translated,
		NewWindow:      newWindow,
	}

	l.lastText = source
	l.lastAt = now

	jsonErr := l.appendJSONL(entry)
	txtErr := l.appendText(entry)
	return entry, errors.Join(jsonErr, txtErr)
}

// Close releases the session files. Calling it more than once is a no-op.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return errors.Join(l.txt.Close(), l.jsonl.Close())
}

func (l *Logger) isNewWindow(text string, now time.Time) bool {
	if l.lastText == "" {
		return true
	}
	if now.Sub(l.lastAt) > l.config.WindowMerge {
		return true
	}
	if similarity.Contains(text, l.lastText) {
		return false
	}
	return similarity.Ratio(l.lastText, text) < l.config.SameWindowSimilarity
}

func (l *Logger) header(startedAt time.Time) string {
	var b strings.Builder
	b.WriteString("OCR Translator Transcript\n")
	fmt.Fprintf(&b, "Started At: %s\n", startedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "Source Lang: %s\n", l.config.SourceLang)
	fmt.Fprintf(&b, "Target Lang: %s\n", l.config.TargetLang)
	if l.config.Engine != "" {
		fmt.Fprintf(&b, "Engine: %s\n", l.config.Engine)
	}
	if l.config.ROI != "" {
		fmt.Fprintf(&b, "ROI: %s\n", l.config.ROI)
	}
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n")
	return b.String()
}

func (l *Logger) appendJSONL(entry Entry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		return fmt.Errorf("encode entry %d: %w", entry.EntryID, err)
	}
	if _, err := l.jsonl.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", JSONLFileName, err)
	}
	return nil
}

func (l *Logger) appendText(entry Entry) error {
	var b strings.Builder
	if entry.NewWindow {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", ruleWidth))
		b.WriteString("\n")
		fmt.Fprintf(&b, "[WINDOW %04d]\n", entry.WindowID)
	}
	fmt.Fprintf(&b, "[ENTRY %05d] %s\n", entry.EntryID, entry.Timestamp)
	fmt.Fprintf(&b, "SRC(%s): %s\n", l.config.SourceLang, entry.SourceText)
	if !l.config.SourceOnly {
		fmt.Fprintf(&b, "TRN(%s): %s\n", l.config.TargetLang, entry.TranslatedText)
	}
	b.WriteString("\n")

	if _, err := l.txt.WriteString(b.String()); err != nil {
		return fmt.Errorf("write %s: %w", TextFileName, err)
	}
	return nil
}
