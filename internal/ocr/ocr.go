// Package ocr turns cropped dialogue frames into text.
package ocr

import (
	"context"
	"strings"

	"github.com/leonardotrapani/captrans/internal/frame"
)

// Recognizer extracts text from an image. Implementations may drop
// low-confidence words; an empty string means nothing was read.
type Recognizer interface {
	Recognize(ctx context.Context, img frame.Frame) (string, error)
}

// Config holds recognizer tuning.
type Config struct {
	Language      string  // ISO 639-1 source language
	PreScale      float64 // upscale factor applied before thresholding (<=1 disables)
	Threshold     int     // binary threshold, 0-255
	MinConfidence float64 // 0.0-1.0
}

func DefaultConfig() Config {
	return Config{
		Language:      "ja",
		PreScale:      2.0,
		Threshold:     170,
		MinConfidence: 0.45,
	}
}

// NormalizeText collapses runs of whitespace into single spaces and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img frame.Frame) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img frame.Frame) (string, error) {
	return f(ctx, img)
}
