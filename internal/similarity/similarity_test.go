package similarity

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Hello world", "Hello world", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "", "abc", 0.0},
		{"one substitution", "abcd", "abce", 0.75},
		{"disjoint", "abc", "xyz", 0.0},
		{"multibyte", "こんにちは", "こんにちわ", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Hello world", "Hello"},
		{"Goodbye", "Hello world"},
		{"kitten", "sitting"},
		{"안녕하세요", "안녕"},
	}

	for _, p := range pairs {
		ab := Ratio(p[0], p[1])
		ba := Ratio(p[1], p[0])
		if ab != ba {
			t.Errorf("Ratio(%q, %q) = %v but Ratio(%q, %q) = %v", p[0], p[1], ab, p[1], p[0], ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Ratio(%q, %q) = %v out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Hello", "Hello world", true},
		{"Hello world", "Hello", true},
		{"Hello", "Goodbye", false},
		{"same", "same", true},
	}

	for _, tt := range tests {
		if got := Contains(tt.a, tt.b); got != tt.want {
			t.Errorf("Contains(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
