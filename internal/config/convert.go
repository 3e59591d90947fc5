package config

import (
	"os"
	"time"

	"github.com/leonardotrapani/captrans/internal/capture"
	"github.com/leonardotrapani/captrans/internal/dedupe"
	"github.com/leonardotrapani/captrans/internal/display"
	"github.com/leonardotrapani/captrans/internal/events"
	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/ocr"
	"github.com/leonardotrapani/captrans/internal/server"
	"github.com/leonardotrapani/captrans/internal/transcript"
	"github.com/leonardotrapani/captrans/internal/translate"
)

// credentialEnv names the environment variables consulted when a provider
// credential is missing from the config file.
type credentialVars struct {
	apiKey, clientID, clientSecret, projectID, accessToken, refreshToken string
}

var credentialEnv = map[string]credentialVars{
	translate.EngineGoogle: {
		apiKey:       "GOOGLE_API_KEY",
		clientID:     "GOOGLE_CLIENT_ID",
		clientSecret: "GOOGLE_CLIENT_SECRET",
		projectID:    "GOOGLE_PROJECT_ID",
		accessToken:  "GOOGLE_ACCESS_TOKEN",
		refreshToken: "GOOGLE_REFRESH_TOKEN",
	},
	translate.EngineDeepL:  {apiKey: "DEEPL_API_KEY"},
	translate.EnginePapago: {clientID: "PAPAGO_CLIENT_ID", clientSecret: "PAPAGO_CLIENT_SECRET"},
	translate.EngineOpenAI: {apiKey: "OPENAI_API_KEY"},
	translate.EngineGroq:   {apiKey: "GROQ_API_KEY"},
}

// EnvVarsForEngine lists the environment variables an engine reads credentials from.
func EnvVarsForEngine(engine string) []string {
	env, ok := credentialEnv[engine]
	if !ok {
		return nil
	}
	var vars []string
	for _, v := range []string{env.apiKey, env.clientID, env.clientSecret, env.projectID, env.accessToken, env.refreshToken} {
		if v != "" {
			vars = append(vars, v)
		}
	}
	return vars
}

// ResolveProvider returns the credentials for an engine, filling each field
// missing from the config file from the environment.
func (c *Config) ResolveProvider(engine string) ProviderConfig {
	var pc ProviderConfig
	if c.Providers != nil {
		pc = c.Providers[engine]
	}

	env := credentialEnv[engine]
	if pc.APIKey == "" && env.apiKey != "" {
		pc.APIKey = os.Getenv(env.apiKey)
	}
	if pc.ClientID == "" && env.clientID != "" {
		pc.ClientID = os.Getenv(env.clientID)
	}
	if pc.ClientSecret == "" && env.clientSecret != "" {
		pc.ClientSecret = os.Getenv(env.clientSecret)
	}
	if pc.ProjectID == "" && env.projectID != "" {
		pc.ProjectID = os.Getenv(env.projectID)
	}
	if pc.AccessToken == "" && env.accessToken != "" {
		pc.AccessToken = os.Getenv(env.accessToken)
	}
	if pc.RefreshToken == "" && env.refreshToken != "" {
		pc.RefreshToken = os.Getenv(env.refreshToken)
	}
	return pc
}

func (c *Config) ToCaptureConfig() capture.Config {
	config := capture.DefaultConfig()
	config.DeviceIndex = c.Capture.Device
	config.Width = c.Capture.Width
	config.Height = c.Capture.Height
	config.FPS = c.Capture.FPS
	return config
}

// ToROI returns the configured region, or the zero Rect when the default
// dialogue band should be used.
func (c *Config) ToROI() frame.Rect {
	if c.ROI.Width == 0 {
		return frame.Rect{}
	}
	return frame.Rect{X: c.ROI.X, Y: c.ROI.Y, Width: c.ROI.Width, Height: c.ROI.Height}
}

// OCRLanguage is ocr.language, falling back to translation.source_lang.
func (c *Config) OCRLanguage() string {
	if c.OCR.Language != "" {
		return c.OCR.Language
	}
	return c.Translation.SourceLang
}

func (c *Config) ToOCRConfig() ocr.Config {
	return ocr.Config{
		Language:      c.OCRLanguage(),
		PreScale:      c.OCR.PreScale,
		Threshold:     c.OCR.Threshold,
		MinConfidence: c.OCR.MinConfidence,
	}
}

func (c *Config) SamplingInterval() time.Duration {
	return c.OCR.Interval
}

func (c *Config) ToDedupeConfig() dedupe.Config {
	return dedupe.Config{
		Similarity:  c.Dedupe.Similarity,
		MinInterval: c.Dedupe.MinInterval,
	}
}

func (c *Config) ToTranslateConfig() translate.Config {
	pc := c.ResolveProvider(c.Translation.Engine)
	return translate.Config{
		Engine:       c.Translation.Engine,
		SourceLang:   c.Translation.SourceLang,
		TargetLang:   c.Translation.TargetLang,
		APIKey:       pc.APIKey,
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		ProjectID:    pc.ProjectID,
		AccessToken:  pc.AccessToken,
		RefreshToken: pc.RefreshToken,
		Model:        c.Translation.Model,
		Glossary:     c.Translation.Glossary,
		Endpoint:     c.Translation.Endpoint,
		Timeout:      c.Translation.Timeout,
	}
}

func (c *Config) ToTranscriptConfig() transcript.Config {
	config := transcript.Config{
		Dir:                  c.Transcript.Directory,
		SourceLang:           c.Translation.SourceLang,
		TargetLang:           c.Translation.TargetLang,
		SourceOnly:           c.Transcript.SourceOnly,
		WindowMerge:          c.Transcript.WindowMerge,
		SameWindowSimilarity: c.Transcript.SameWindowSimilarity,
		Engine:               c.Translation.Engine,
	}
	if roi := c.ToROI(); !roi.IsZero() {
		config.ROI = roi.String()
	} else {
		config.ROI = "auto"
	}
	return config
}

func (c *Config) ToEventsConfig() *events.Config {
	return &events.Config{
		Enabled:   c.Kafka.Enabled,
		Brokers:   c.Kafka.Brokers,
		Topic:     c.Kafka.Topic,
		Principal: c.Kafka.Principal,
	}
}

func (c *Config) ToServerConfig() server.Config {
	return server.Config{
		Addr:         c.Server.Addr,
		PollInterval: c.Server.PollInterval,
	}
}

func (c *Config) ToDisplayConfig() display.Config {
	return display.Config{
		Refresh:    c.Display.Refresh,
		ShowSource: c.Display.ShowSource,
		Width:      c.Display.Width,
		Clear:      c.Display.Clear,
	}
}

func (c *Config) ToLoggingConfig() logging.Config {
	config := logging.DefaultConfig()
	if c.Logging.Level != "" {
		config.Level = c.Logging.Level
	}
	if c.Logging.Format != "" {
		config.Format = c.Logging.Format
	}
	return config
}
