// Package tesseract implements ocr.Recognizer with Tesseract, preprocessing
// each crop with OpenCV so light subtitle text on dark backgrounds reads well.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/leonardotrapani/captrans/internal/capture/webcam"
	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/language"
	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/ocr"
)

const medianKernel = 3

// Recognizer wraps a single Tesseract client. The client is not safe for
// concurrent use, so calls are serialized.
type Recognizer struct {
	config ocr.Config
	logger zerolog.Logger

	mu     sync.Mutex
	client *gosseract.Client
}

func New(cfg ocr.Config) (*Recognizer, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	lang := language.TesseractCode(cfg.Language)
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("set OCR language %q: %w", lang, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}

	return &Recognizer{
		config: cfg,
		logger: logging.WithComponent("ocr"),
		client: client,
	}, nil
}

func (r *Recognizer) Recognize(ctx context.Context, img frame.Frame) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	processed, err := Preprocess(img, r.config)
	if err != nil {
		return "", err
	}
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	defer buf.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("set OCR image: %w", err)
	}

	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return "", fmt.Errorf("read text lines: %w", err)
	}

	lines := make([]string, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		// gosseract reports confidence in percent.
		if box.Confidence/100 < r.config.MinConfidence {
			r.logger.Debug().Str("text", text).Float64("confidence", box.Confidence).Msg("Dropped low-confidence line")
			continue
		}
		lines = append(lines, text)
	}

	return ocr.NormalizeText(strings.Join(lines, " ")), nil
}

func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}

// Preprocess converts img to gray, upscales it by PreScale, applies a binary
// threshold and a median blur. The caller must Close the result.
func Preprocess(img frame.Frame, cfg ocr.Config) (gocv.Mat, error) {
	src, err := webcam.ToMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	switch img.Channels {
	case 1:
		src.CopyTo(&gray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	if cfg.PreScale > 1.0 {
		gocv.Resize(gray, &scaled, image.Point{}, cfg.PreScale, cfg.PreScale, gocv.InterpolationCubic)
	} else {
		gray.CopyTo(&scaled)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(scaled, &binary, float32(cfg.Threshold), 255, gocv.ThresholdBinary)

	out := gocv.NewMat()
	gocv.MedianBlur(binary, &out, medianKernel)
	return out, nil
}

func validateConfig(cfg ocr.Config) error {
	if cfg.Language == "" {
		return fmt.Errorf("invalid Language: empty")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 255 {
		return fmt.Errorf("invalid Threshold: %d", cfg.Threshold)
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("invalid MinConfidence: %v", cfg.MinConfidence)
	}
	return nil
}
