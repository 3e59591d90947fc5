package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/captrans/internal/config"
)

func editCapture(cfg *config.Config) error {
	device := strconv.Itoa(cfg.Capture.Device)
	width := strconv.Itoa(cfg.Capture.Width)
	height := strconv.Itoa(cfg.Capture.Height)
	fps := strconv.Itoa(cfg.Capture.FPS)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Capture Device").
				Description("Index of the video capture device (0 = first)").
				Value(&device).
				Validate(validateNonNegativeInt),
			huh.NewInput().
				Title("Width").
				Value(&width).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Height").
				Value(&height).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("FPS").
				Value(&fps).
				Validate(validatePositiveInt),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Capture.Device, _ = strconv.Atoi(device)
	cfg.Capture.Width, _ = strconv.Atoi(width)
	cfg.Capture.Height, _ = strconv.Atoi(height)
	cfg.Capture.FPS, _ = strconv.Atoi(fps)
	return nil
}

func editRegion(cfg *config.Config) error {
	region := formatRegion(cfg.ROI)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recognition Region").
				Description("x,y,width,height in frame pixels. Leave empty for the bottom dialogue band.").
				Placeholder("0,520,1280,200").
				Value(&region).
				Validate(func(s string) error {
					_, err := parseRegion(s)
					return err
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	roi, _ := parseRegion(region)
	cfg.ROI = roi
	return nil
}

func editRecognition(cfg *config.Config) error {
	interval := cfg.OCR.Interval.String()
	threshold := strconv.Itoa(cfg.OCR.Threshold)
	preScale := strconv.FormatFloat(cfg.OCR.PreScale, 'g', -1, 64)
	minConfidence := strconv.FormatFloat(cfg.OCR.MinConfidence, 'g', -1, 64)
	similarity := strconv.FormatFloat(cfg.Dedupe.Similarity, 'g', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sampling Interval").
				Description("How often the latest frame is recognized (e.g. 350ms)").
				Value(&interval).
				Validate(validatePositiveDuration),
			huh.NewInput().
				Title("Binary Threshold").
				Description("0-255, applied after grayscale conversion").
				Value(&threshold).
				Validate(validateThreshold),
			huh.NewInput().
				Title("Pre-scale").
				Description("Upscale factor before thresholding").
				Value(&preScale).
				Validate(validatePositiveFloat),
			huh.NewInput().
				Title("Minimum Confidence").
				Description("Text lines below this confidence (0-1) are dropped").
				Value(&minConfidence).
				Validate(validateUnitFloat),
			huh.NewInput().
				Title("Duplicate Similarity").
				Description("Readings at least this similar (0-1) to the last line are suppressed").
				Value(&similarity).
				Validate(validateUnitFloat),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.OCR.Interval, _ = parseDuration(interval)
	cfg.OCR.Threshold, _ = strconv.Atoi(threshold)
	cfg.OCR.PreScale, _ = strconv.ParseFloat(preScale, 64)
	cfg.OCR.MinConfidence, _ = strconv.ParseFloat(minConfidence, 64)
	cfg.Dedupe.Similarity, _ = strconv.ParseFloat(similarity, 64)
	return nil
}
