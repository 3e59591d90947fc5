package config

import "time"

type Config struct {
	Capture       CaptureConfig             `toml:"capture"`
	ROI           ROIConfig                 `toml:"roi"`
	OCR           OCRConfig                 `toml:"ocr"`
	Dedupe        DedupeConfig              `toml:"dedupe"`
	Translation   TranslationConfig         `toml:"translation"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Transcript    TranscriptConfig          `toml:"transcript"`
	Display       DisplayConfig             `toml:"display"`
	Server        ServerConfig              `toml:"server"`
	Kafka         KafkaConfig               `toml:"kafka"`
	Notifications NotificationsConfig       `toml:"notifications"`
	Logging       LoggingConfig             `toml:"logging"`
}

type CaptureConfig struct {
	Device            int           `toml:"device"`
	Width             int           `toml:"width"`
	Height            int           `toml:"height"`
	FPS               int           `toml:"fps"`
	FirstFrameTimeout time.Duration `toml:"first_frame_timeout"`
}

// ROIConfig is the recognized region in frame pixels. A zero width selects
// the bottom dialogue band.
type ROIConfig struct {
	X      int `toml:"x"`
	Y      int `toml:"y"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type OCRConfig struct {
	Language      string        `toml:"language"` // empty = translation.source_lang
	Interval      time.Duration `toml:"interval"`
	PreScale      float64       `toml:"pre_scale"`
	Threshold     int           `toml:"threshold"`
	MinConfidence float64       `toml:"min_confidence"`
}

type DedupeConfig struct {
	Similarity  float64       `toml:"similarity"`
	MinInterval time.Duration `toml:"min_interval"`
}

type TranslationConfig struct {
	Engine     string        `toml:"engine"` // "none", "google", "deepl", "papago", "openai", "groq"
	SourceLang string        `toml:"source_lang"`
	TargetLang string        `toml:"target_lang"`
	Model      string        `toml:"model"`
	Endpoint   string        `toml:"endpoint"`
	Timeout    time.Duration `toml:"timeout"`
	Glossary   []string      `toml:"glossary"`
}

// ProviderConfig holds credentials for a translation engine. Google accepts
// an API key, or a project id with an access token or an OAuth client plus
// refresh token.
type ProviderConfig struct {
	APIKey       string `toml:"api_key"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	ProjectID    string `toml:"project_id"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

type TranscriptConfig struct {
	Enabled              bool          `toml:"enabled"`
	Directory            string        `toml:"directory"`
	SourceOnly           bool          `toml:"source_only"`
	WindowMerge          time.Duration `toml:"window_merge"`
	SameWindowSimilarity float64       `toml:"same_window_similarity"`
}

type DisplayConfig struct {
	Mode       string        `toml:"mode"` // "terminal", "none"
	Refresh    time.Duration `toml:"refresh"`
	ShowSource bool          `toml:"show_source"`
	Width      int           `toml:"width"`
	Clear      bool          `toml:"clear"`
}

type ServerConfig struct {
	Enabled      bool          `toml:"enabled"`
	Addr         string        `toml:"addr"`
	PollInterval time.Duration `toml:"poll_interval"`
}

type KafkaConfig struct {
	Enabled   bool     `toml:"enabled"`
	Brokers   []string `toml:"brokers"`
	Topic     string   `toml:"topic"`
	Principal string   `toml:"principal"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console", "json"
}
