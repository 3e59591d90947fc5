package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/leonardotrapani/captrans/internal/language"
	"github.com/leonardotrapani/captrans/internal/translate"
)

func (c *Config) Validate() error {
	if c.Capture.Device < 0 {
		return fmt.Errorf("invalid capture.device: %d", c.Capture.Device)
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return fmt.Errorf("invalid capture size: %dx%d", c.Capture.Width, c.Capture.Height)
	}
	if c.Capture.FPS <= 0 {
		return fmt.Errorf("invalid capture.fps: %d", c.Capture.FPS)
	}
	if c.Capture.FirstFrameTimeout <= 0 {
		return fmt.Errorf("invalid capture.first_frame_timeout: %v", c.Capture.FirstFrameTimeout)
	}

	if c.ROI != (ROIConfig{}) {
		if c.ROI.Width <= 0 || c.ROI.Height <= 0 {
			return fmt.Errorf("invalid roi: width and height must be positive, got %dx%d", c.ROI.Width, c.ROI.Height)
		}
		if c.ROI.X < 0 || c.ROI.Y < 0 {
			return fmt.Errorf("invalid roi: x and y must not be negative, got %d,%d", c.ROI.X, c.ROI.Y)
		}
	}

	if c.OCR.Interval <= 0 {
		return fmt.Errorf("invalid ocr.interval: %v", c.OCR.Interval)
	}
	if c.OCR.PreScale <= 0 {
		return fmt.Errorf("invalid ocr.pre_scale: %v", c.OCR.PreScale)
	}
	if c.OCR.Threshold < 0 || c.OCR.Threshold > 255 {
		return fmt.Errorf("invalid ocr.threshold: %d (must be 0-255)", c.OCR.Threshold)
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("invalid ocr.min_confidence: %v (must be 0.0-1.0)", c.OCR.MinConfidence)
	}
	if c.OCR.Language != "" && !language.IsValidCode(c.OCR.Language) {
		return fmt.Errorf("invalid ocr.language: %s", c.OCR.Language)
	}

	if c.Dedupe.Similarity <= 0 || c.Dedupe.Similarity > 1 {
		return fmt.Errorf("invalid dedupe.similarity: %v (must be in (0, 1])", c.Dedupe.Similarity)
	}
	if c.Dedupe.MinInterval < 0 {
		return fmt.Errorf("invalid dedupe.min_interval: %v", c.Dedupe.MinInterval)
	}

	if err := c.validateTranslation(); err != nil {
		return err
	}

	if c.Transcript.Enabled {
		if c.Transcript.Directory == "" {
			return fmt.Errorf("invalid transcript.directory: empty")
		}
		if c.Transcript.WindowMerge <= 0 {
			return fmt.Errorf("invalid transcript.window_merge: %v", c.Transcript.WindowMerge)
		}
		if c.Transcript.SameWindowSimilarity <= 0 || c.Transcript.SameWindowSimilarity > 1 {
			return fmt.Errorf("invalid transcript.same_window_similarity: %v (must be in (0, 1])", c.Transcript.SameWindowSimilarity)
		}
	}

	validModes := map[string]bool{"terminal": true, "none": true}
	if !validModes[c.Display.Mode] {
		return fmt.Errorf("invalid display.mode: %s (must be terminal or none)", c.Display.Mode)
	}
	if c.Display.Mode == "terminal" && c.Display.Refresh <= 0 {
		return fmt.Errorf("invalid display.refresh: %v", c.Display.Refresh)
	}

	if c.Server.Enabled {
		if c.Server.Addr == "" {
			return fmt.Errorf("invalid server.addr: empty")
		}
		if c.Server.PollInterval <= 0 {
			return fmt.Errorf("invalid server.poll_interval: %v", c.Server.PollInterval)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers required when kafka.enabled = true")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic required when kafka.enabled = true")
		}
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		return fmt.Errorf("invalid logging.level: %q (must be debug, info, warn, or error)", c.Logging.Level)
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be console or json)", c.Logging.Format)
	}

	return nil
}

func (c *Config) validateTranslation() error {
	t := c.Translation

	if !language.IsValidCode(t.SourceLang) {
		return fmt.Errorf("invalid translation.source_lang: %q", t.SourceLang)
	}
	if !language.IsValidCode(t.TargetLang) {
		return fmt.Errorf("invalid translation.target_lang: %q", t.TargetLang)
	}
	if !translate.IsSupported(t.Engine) {
		return fmt.Errorf("unsupported translation.engine: %s (must be %s)", t.Engine, strings.Join(translate.Engines, ", "))
	}
	if t.Timeout < 0 {
		return fmt.Errorf("invalid translation.timeout: %v", t.Timeout)
	}

	pc := c.ResolveProvider(t.Engine)
	switch t.Engine {
	case translate.EngineGoogle:
		if translate.GoogleAuthMode(c.ToTranslateConfig()) == "" {
			return fmt.Errorf("google credentials required: set providers.google.api_key, or project_id with access_token or client_id/client_secret/refresh_token (environment: %s)",
				strings.Join(EnvVarsForEngine(t.Engine), ", "))
		}
	case translate.EngineDeepL, translate.EngineOpenAI, translate.EngineGroq:
		if pc.APIKey == "" {
			return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
				t.Engine, t.Engine, strings.Join(EnvVarsForEngine(t.Engine), ", "))
		}
	case translate.EnginePapago:
		if pc.ClientID == "" || pc.ClientSecret == "" {
			return fmt.Errorf("papago client id and secret required: not found in config (providers.papago.client_id, providers.papago.client_secret) or environment variables (%s)",
				strings.Join(EnvVarsForEngine(t.Engine), ", "))
		}
	}

	return nil
}
