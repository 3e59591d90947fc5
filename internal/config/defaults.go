package config

import "time"

// DefaultConfig returns the configuration used when no file exists and as
// the base every loaded file is decoded onto.
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			Device:            0,
			Width:             1280,
			Height:            720,
			FPS:               30,
			FirstFrameTimeout: 8 * time.Second,
		},
		OCR: OCRConfig{
			Interval:      350 * time.Millisecond,
			PreScale:      2.0,
			Threshold:     170,
			MinConfidence: 0.45,
		},
		Dedupe: DedupeConfig{
			Similarity:  0.93,
			MinInterval: 150 * time.Millisecond,
		},
		Translation: TranslationConfig{
			Engine:     "none",
			SourceLang: "ja",
			TargetLang: "ko",
			Timeout:    12 * time.Second,
		},
		Providers: make(map[string]ProviderConfig),
		Transcript: TranscriptConfig{
			Enabled:              true,
			Directory:            "logs",
			WindowMerge:          1600 * time.Millisecond,
			SameWindowSimilarity: 0.72,
		},
		Display: DisplayConfig{
			Mode:       "terminal",
			Refresh:    100 * time.Millisecond,
			ShowSource: true,
			Width:      72,
		},
		Server: ServerConfig{
			Enabled:      false,
			Addr:         "127.0.0.1:8765",
			PollInterval: 100 * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Topic:   "captrans.transcript",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
