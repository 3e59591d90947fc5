package dedupe

import (
	"testing"
	"time"
)

type manualClock struct {
	t time.Time
}

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDeduplicator() (*Deduplicator, *manualClock) {
	clock := &manualClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return NewWithClock(DefaultConfig(), clock.Now), clock
}

func TestShouldEmit_ImmediateRepeat(t *testing.T) {
	d, _ := newTestDeduplicator()

	if !d.ShouldEmit("A line of dialogue") {
		t.Fatal("first text should be emitted")
	}
	if d.ShouldEmit("A line of dialogue") {
		t.Fatal("immediate repeat should be suppressed")
	}
}

func TestShouldEmit_Sequence(t *testing.T) {
	type step struct {
		advance time.Duration
		text    string
		want    bool
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "empty and blank never emitted",
			steps: []step{
				{0, "", false},
				{time.Second, "   \t", false},
				{time.Second, "Hello", true},
			},
		},
		{
			name: "same text after interval is still suppressed",
			steps: []step{
				{0, "Hello world", true},
				{time.Second, "Hello world", false},
				{time.Minute, "Hello world", false},
			},
		},
		{
			name: "different text within min interval is suppressed",
			steps: []step{
				{0, "Hello world", true},
				{100 * time.Millisecond, "Goodbye", false},
				{60 * time.Millisecond, "Goodbye", true},
			},
		},
		{
			name: "min interval measured from last acceptance",
			steps: []step{
				{0, "first", true},
				{200 * time.Millisecond, "first", false},
				{0, "second line", true},
			},
		},
		{
			name: "near duplicate suppressed",
			steps: []step{
				{0, "The quick brown fox jumps over the lazy dog", true},
				{time.Second, "The quick brown fox jumps over the lazy dog.", false},
			},
		},
		{
			name: "single previous value only",
			steps: []step{
				{0, "Alpha alpha alpha", true},
				{time.Second, "Bravo bravo bravo", true},
				{time.Second, "Alpha alpha alpha", true},
			},
		},
		{
			name: "surrounding whitespace ignored",
			steps: []step{
				{0, "  Hello  ", true},
				{time.Second, "Hello", false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, clock := newTestDeduplicator()
			for i, s := range tt.steps {
				clock.Advance(s.advance)
				if got := d.ShouldEmit(s.text); got != s.want {
					t.Fatalf("step %d ShouldEmit(%q) = %v, want %v", i, s.text, got, s.want)
				}
			}
		})
	}
}

func TestShouldEmit_FirstTextNotGated(t *testing.T) {
	// A zero-valued clock must not look "too soon" before anything was accepted.
	d := NewWithClock(DefaultConfig(), func() time.Time { return time.Time{} })
	if !d.ShouldEmit("hello") {
		t.Error("first text should be emitted regardless of clock value")
	}
}
