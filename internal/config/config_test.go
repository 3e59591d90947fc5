package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/testutil"
	"github.com/leonardotrapani/captrans/internal/translate"
)

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("LoadFrom() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := testutil.CreateTempConfigFile(t, "[translation\nengine = ")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom() should fail on malformed TOML")
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := testutil.CreateTempConfigFile(t, `
[translation]
  engine = "deepl"
  source_lang = "ja"
  target_lang = "en"

[providers.deepl]
  api_key = "abc:fx"

[ocr]
  interval = "500ms"

[roi]
  x = 10
  y = 400
  width = 620
  height = 80
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Translation.Engine != "deepl" || cfg.Translation.TargetLang != "en" {
		t.Errorf("translation = %+v", cfg.Translation)
	}
	if cfg.Providers["deepl"].APIKey != "abc:fx" {
		t.Errorf("deepl key = %q", cfg.Providers["deepl"].APIKey)
	}
	if cfg.OCR.Interval != 500*time.Millisecond {
		t.Errorf("ocr.interval = %v, want 500ms", cfg.OCR.Interval)
	}
	if cfg.OCR.Threshold != 170 || cfg.Dedupe.Similarity != 0.93 {
		t.Errorf("defaults lost: threshold=%d similarity=%v", cfg.OCR.Threshold, cfg.Dedupe.Similarity)
	}
	if cfg.Transcript.WindowMerge != 1600*time.Millisecond {
		t.Errorf("transcript.window_merge = %v", cfg.Transcript.WindowMerge)
	}
	if got := cfg.ToROI(); got != (frame.Rect{X: 10, Y: 400, Width: 620, Height: 80}) {
		t.Errorf("ToROI() = %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero fps", func(c *Config) { c.Capture.FPS = 0 }, "capture.fps"},
		{"negative device", func(c *Config) { c.Capture.Device = -1 }, "capture.device"},
		{"roi without height", func(c *Config) { c.ROI = ROIConfig{Width: 10} }, "invalid roi"},
		{"roi negative origin", func(c *Config) { c.ROI = ROIConfig{X: -1, Width: 10, Height: 10} }, "invalid roi"},
		{"zero interval", func(c *Config) { c.OCR.Interval = 0 }, "ocr.interval"},
		{"threshold too high", func(c *Config) { c.OCR.Threshold = 300 }, "ocr.threshold"},
		{"confidence above one", func(c *Config) { c.OCR.MinConfidence = 1.5 }, "ocr.min_confidence"},
		{"unknown ocr language", func(c *Config) { c.OCR.Language = "xx" }, "ocr.language"},
		{"similarity zero", func(c *Config) { c.Dedupe.Similarity = 0 }, "dedupe.similarity"},
		{"negative min interval", func(c *Config) { c.Dedupe.MinInterval = -time.Second }, "dedupe.min_interval"},
		{"unknown engine", func(c *Config) { c.Translation.Engine = "babelfish" }, "unsupported translation.engine"},
		{"unknown source", func(c *Config) { c.Translation.SourceLang = "" }, "translation.source_lang"},
		{"unknown target", func(c *Config) { c.Translation.TargetLang = "klingon" }, "translation.target_lang"},
		{"transcript without dir", func(c *Config) { c.Transcript.Directory = "" }, "transcript.directory"},
		{"display mode", func(c *Config) { c.Display.Mode = "overlay" }, "display.mode"},
		{"server without addr", func(c *Config) { c.Server.Enabled = true; c.Server.Addr = "" }, "server.addr"},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, "kafka.brokers"},
		{"notification type", func(c *Config) { c.Notifications.Type = "email" }, "notifications.type"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"transcript disabled skips checks", func(c *Config) { c.Transcript = TranscriptConfig{} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Credentials(t *testing.T) {
	for _, v := range []string{"GOOGLE_API_KEY", "DEEPL_API_KEY", "PAPAGO_CLIENT_ID", "PAPAGO_CLIENT_SECRET", "OPENAI_API_KEY", "GROQ_API_KEY"} {
		t.Setenv(v, "")
	}

	tests := []struct {
		engine    string
		providers map[string]ProviderConfig
		env       map[string]string
		wantErr   bool
	}{
		{engine: "none"},
		{engine: "google", wantErr: true},
		{engine: "google", providers: map[string]ProviderConfig{"google": {APIKey: "k"}}},
		{engine: "google", providers: map[string]ProviderConfig{"google": {ProjectID: "p", ClientID: "id", ClientSecret: "s", RefreshToken: "rt"}}},
		{engine: "google", providers: map[string]ProviderConfig{"google": {AccessToken: "at"}}, wantErr: true},
		{engine: "google", providers: map[string]ProviderConfig{"google": {AccessToken: "at"}}, env: map[string]string{"GOOGLE_PROJECT_ID": "p"}},
		{engine: "deepl", env: map[string]string{"DEEPL_API_KEY": "k:fx"}},
		{engine: "papago", providers: map[string]ProviderConfig{"papago": {ClientID: "id"}}, wantErr: true},
		{engine: "papago", providers: map[string]ProviderConfig{"papago": {ClientID: "id"}}, env: map[string]string{"PAPAGO_CLIENT_SECRET": "s"}},
		{engine: "openai", wantErr: true},
		{engine: "groq", env: map[string]string{"GROQ_API_KEY": "gsk"}},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			cfg.Translation.Engine = tt.engine
			if tt.providers != nil {
				cfg.Providers = tt.providers
			}

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveProvider_ConfigWinsOverEnv(t *testing.T) {
	t.Setenv("DEEPL_API_KEY", "from-env")

	cfg := DefaultConfig()
	cfg.Providers["deepl"] = ProviderConfig{APIKey: "from-file"}
	if got := cfg.ResolveProvider("deepl").APIKey; got != "from-file" {
		t.Errorf("APIKey = %q, want from-file", got)
	}

	delete(cfg.Providers, "deepl")
	if got := cfg.ResolveProvider("deepl").APIKey; got != "from-env" {
		t.Errorf("APIKey = %q, want from-env", got)
	}
}

func TestGoogleOAuthCredentials(t *testing.T) {
	t.Setenv("GOOGLE_REFRESH_TOKEN", "rt-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[translation]
engine = "google"
source_lang = "ja"
target_lang = "ko"

[providers.google]
project_id = "my-proj"
client_id = "cid"
client_secret = "csecret"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tc := cfg.ToTranslateConfig()
	if tc.ProjectID != "my-proj" || tc.ClientID != "cid" || tc.ClientSecret != "csecret" || tc.RefreshToken != "rt-env" {
		t.Errorf("translate config = %+v", tc)
	}
	if mode := translate.GoogleAuthMode(tc); mode != translate.GoogleAuthRefreshToken {
		t.Errorf("auth mode = %q", mode)
	}
}

func TestConverters(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := DefaultConfig()
	cfg.Translation.Engine = "openai"
	cfg.Translation.Glossary = []string{"Aerith=에어리스"}
	cfg.Kafka = KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "t"}

	tc := cfg.ToTranslateConfig()
	if tc.APIKey != "sk-test" || tc.Engine != "openai" || len(tc.Glossary) != 1 {
		t.Errorf("ToTranslateConfig() = %+v", tc)
	}

	oc := cfg.ToOCRConfig()
	if oc.Language != "ja" || oc.PreScale != 2.0 || oc.Threshold != 170 || oc.MinConfidence != 0.45 {
		t.Errorf("ToOCRConfig() = %+v", oc)
	}
	cfg.OCR.Language = "en"
	if got := cfg.ToOCRConfig().Language; got != "en" {
		t.Errorf("ocr.language override = %q, want en", got)
	}

	cc := cfg.ToCaptureConfig()
	if cc.Width != 1280 || cc.Height != 720 || cc.FPS != 30 || cc.ReadBackoff <= 0 {
		t.Errorf("ToCaptureConfig() = %+v", cc)
	}

	tr := cfg.ToTranscriptConfig()
	if tr.SourceLang != "ja" || tr.TargetLang != "ko" || tr.ROI != "auto" || tr.Engine != "openai" {
		t.Errorf("ToTranscriptConfig() = %+v", tr)
	}
	cfg.ROI = ROIConfig{X: 1, Y: 2, Width: 3, Height: 4}
	if got := cfg.ToTranscriptConfig().ROI; got != "1,2,3,4" {
		t.Errorf("transcript ROI = %q, want 1,2,3,4", got)
	}

	ec := cfg.ToEventsConfig()
	if !ec.Enabled || ec.Topic != "t" || len(ec.Brokers) != 1 {
		t.Errorf("ToEventsConfig() = %+v", ec)
	}

	if got := cfg.ToDedupeConfig(); got.Similarity != 0.93 || got.MinInterval != 150*time.Millisecond {
		t.Errorf("ToDedupeConfig() = %+v", got)
	}
	if got := cfg.SamplingInterval(); got != 350*time.Millisecond {
		t.Errorf("SamplingInterval() = %v", got)
	}
	if got := cfg.ToLoggingConfig(); got.Level != "info" || got.Format != "console" {
		t.Errorf("ToLoggingConfig() = %+v", got)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Translation.Engine = "papago"
	cfg.Providers["papago"] = ProviderConfig{ClientID: "id", ClientSecret: "secret"}
	cfg.ROI = ROIConfig{X: 0, Y: 500, Width: 1280, Height: 220}
	cfg.Display.ShowSource = false

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Translation.Engine != "papago" || loaded.Providers["papago"].ClientSecret != "secret" {
		t.Errorf("loaded = %+v", loaded.Translation)
	}
	if loaded.ROI != cfg.ROI || loaded.Display.ShowSource {
		t.Errorf("roi/display not preserved: %+v %+v", loaded.ROI, loaded.Display)
	}
	if loaded.OCR.Interval != cfg.OCR.Interval {
		t.Errorf("interval = %v, want %v", loaded.OCR.Interval, cfg.OCR.Interval)
	}
}

func TestWatcher_ReportsValidChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	current, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	var changes atomic.Int32
	w := NewWatcher(path, current, func(*Config) { changes.Add(1) })

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	// invalid edit is ignored
	bad := DefaultConfig()
	bad.OCR.Threshold = 999
	if err := SaveTo(bad, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	time.Sleep(3 * watchDebounce)
	if changes.Load() != 0 {
		t.Fatalf("invalid config reported as change")
	}

	next := DefaultConfig()
	next.Translation.TargetLang = "en"
	if err := SaveTo(next, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	testutil.WaitForCondition(t, func() bool { return changes.Load() == 1 }, 3*time.Second)
}
