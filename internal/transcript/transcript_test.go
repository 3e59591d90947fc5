package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func openTestLogger(t *testing.T, mutate func(*Config)) (*Logger, *manualClock) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}
	clock := &manualClock{t: time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)}
	l, err := OpenWithClock(cfg, clock.Now)
	if err != nil {
		t.Fatalf("OpenWithClock() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, clock
}

func readJSONL(t *testing.T, l *Logger) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(l.SessionDir(), JSONLFileName))
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad jsonl line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func readText(t *testing.T, l *Logger) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(l.SessionDir(), TextFileName))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	return string(data)
}

func TestOpen_SessionLayout(t *testing.T) {
	l, _ := openTestLogger(t, nil)

	if got := filepath.Base(l.SessionDir()); got != "session_20260314_150926" {
		t.Errorf("session dir = %q, want session_20260314_150926", got)
	}

	want := "OCR Translator Transcript\n" +
		"Started At: 2026-03-14T15:09:26\n" +
		"Source Lang: ja\n" +
		"Target Lang: ko\n" +
		strings.Repeat("=", 72) + "\n"
	if got := readText(t, l); got != want {
		t.Errorf("header =\n%s\nwant\n%s", got, want)
	}
}

func TestOpen_HeaderDetails(t *testing.T) {
	l, _ := openTestLogger(t, func(c *Config) {
		c.Engine = "deepl"
		c.ROI = "0,519,1280,201"
	})

	text := readText(t, l)
	for _, want := range []string{"Engine: deepl\n", "ROI: 0,519,1280,201\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("header missing %q:\n%s", want, text)
		}
	}
}

func TestLog_EmptySource(t *testing.T) {
	l, _ := openTestLogger(t, nil)

	for _, src := range []string{"", "   ", "\n\t"} {
		if _, err := l.Log(src, "x"); !errors.Is(err, ErrEmptySourceText) {
			t.Errorf("Log(%q) error = %v, want ErrEmptySourceText", src, err)
		}
	}
	if entries := readJSONL(t, l); len(entries) != 0 {
		t.Errorf("empty source should write nothing, got %d entries", len(entries))
	}
}

func TestLog_Windows(t *testing.T) {
	type step struct {
		advance    time.Duration
		text       string
		wantWindow int
		wantNew    bool
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "substring growth stays in window",
			steps: []step{
				{0, "Hello", 1, true},
				{500 * time.Millisecond, "Hello world", 1, false},
				{500 * time.Millisecond, "Hello world, how are you", 1, false},
			},
		},
		{
			name: "superstring shrink stays in window",
			steps: []step{
				{0, "Hello world, how are you", 1, true},
				{time.Second, "how are you", 1, false},
			},
		},
		{
			name: "gap past merge threshold opens window",
			steps: []step{
				{0, "Hello", 1, true},
				{1700 * time.Millisecond, "Hello world", 2, true},
			},
		},
		{
			name: "exactly at merge threshold does not open window",
			steps: []step{
				{0, "Hello", 1, true},
				{1600 * time.Millisecond, "Hello world", 1, false},
			},
		},
		{
			name: "dissimilar text opens window",
			steps: []step{
				{0, "Hello world", 1, true},
				{200 * time.Millisecond, "Goodbye", 2, true},
			},
		},
		{
			name: "similar text continues window",
			steps: []step{
				{0, "The quick brown fox", 1, true},
				{200 * time.Millisecond, "The quick brown cat", 1, false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, clock := openTestLogger(t, nil)
			for i, s := range tt.steps {
				clock.Advance(s.advance)
				e, err := l.Log(s.text, "T:"+s.text)
				if err != nil {
					t.Fatalf("step %d Log() error = %v", i, err)
				}
				if e.EntryID != i+1 {
					t.Errorf("step %d EntryID = %d, want %d", i, e.EntryID, i+1)
				}
				if e.WindowID != s.wantWindow || e.NewWindow != s.wantNew {
					t.Errorf("step %d window = (%d, %v), want (%d, %v)",
						i, e.WindowID, e.NewWindow, s.wantWindow, s.wantNew)
				}
			}
		})
	}
}

func TestLog_MonotonicIDs(t *testing.T) {
	l, clock := openTestLogger(t, nil)

	const n = 20
	for i := 0; i < n; i++ {
		clock.Advance(2 * time.Second)
		if _, err := l.Log(fmt.Sprintf("line %c%c%c", 'a'+i, 'b'+i, 'c'+i), "t"); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	entries := readJSONL(t, l)
	if len(entries) != n {
		t.Fatalf("got %d entries, want %d", len(entries), n)
	}
	prevWindow := 0.0
	for i, e := range entries {
		if id := e["entry_id"].(float64); int(id) != i+1 {
			t.Errorf("entry %d has entry_id %v", i, id)
		}
		w := e["window_id"].(float64)
		if w < prevWindow {
			t.Errorf("window_id decreased: %v after %v", w, prevWindow)
		}
		prevWindow = w
	}
}

func TestLog_FileFormat(t *testing.T) {
	l, clock := openTestLogger(t, nil)

	clock.Advance(time.Second)
	if _, err := l.Log("  こんにちは  ", " 안녕하세요 "); err != nil {
		t.Fatal(err)
	}
	clock.Advance(100 * time.Millisecond)
	if _, err := l.Log("こんにちは、世界", "안녕, 세계"); err != nil {
		t.Fatal(err)
	}

	text := readText(t, l)
	body := text[strings.Index(text, strings.Repeat("=", 72))+73:]
	want := "\n" + strings.Repeat("-", 72) + "\n" +
		"[WINDOW 0001]\n" +
		"[ENTRY 00001] 2026-03-14T15:09:27\n" +
		"SRC(ja): こんにちは\n" +
		"TRN(ko): 안녕하세요\n" +
		"\n" +
		"[ENTRY 00002] 2026-03-14T15:09:27\n" +
		"SRC(ja): こんにちは、世界\n" +
		"TRN(ko): 안녕, 세계\n" +
		"\n"
	if body != want {
		t.Errorf("transcript body =\n%q\nwant\n%q", body, want)
	}

	entries := readJSONL(t, l)
	if len(entries) != 2 {
		t.Fatalf("got %d jsonl entries, want 2", len(entries))
	}
	first := entries[0]
	wantFields := map[string]any{
		"entry_id":        1.0,
		"window_id":       1.0,
		"timestamp":       "2026-03-14T15:09:27",
		"source_lang":     "ja",
		"target_lang":     "ko",
		"source_text":     "こんにちは",
		"translated_text": "안녕하세요",
	}
	for k, v := range wantFields {
		if first[k] != v {
			t.Errorf("jsonl %s = %v, want %v", k, first[k], v)
		}
	}
	if len(first) != len(wantFields) {
		t.Errorf("jsonl has %d fields, want %d: %v", len(first), len(wantFields), first)
	}
}

func TestLog_SourceOnly(t *testing.T) {
	l, _ := openTestLogger(t, func(c *Config) { c.SourceOnly = true })

	if _, err := l.Log("hello", "bonjour"); err != nil {
		t.Fatal(err)
	}
	text := readText(t, l)
	if strings.Contains(text, "TRN(") {
		t.Errorf("source-only transcript should omit TRN lines:\n%s", text)
	}
	if !strings.Contains(text, "SRC(ja): hello\n") {
		t.Errorf("transcript missing SRC line:\n%s", text)
	}
}

func TestClose_Idempotent(t *testing.T) {
	l, _ := openTestLogger(t, nil)

	if err := l.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := l.Log("late", "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("Log after Close error = %v, want ErrClosed", err)
	}
}

func TestLog_Concurrent(t *testing.T) {
	l, _ := openTestLogger(t, nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if _, err := l.Log(fmt.Sprintf("worker %d line %d", w, i), "t"); err != nil {
					t.Errorf("Log() error = %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	entries := readJSONL(t, l)
	if len(entries) != 200 {
		t.Fatalf("got %d entries, want 200", len(entries))
	}
	for i, e := range entries {
		if int(e["entry_id"].(float64)) != i+1 {
			t.Fatalf("entry order on disk does not match ids at line %d: %v", i, e["entry_id"])
		}
	}
}
