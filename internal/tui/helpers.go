package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/captrans/internal/config"
	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/language"
	"github.com/leonardotrapani/captrans/internal/translate"
)

// engineDisplayNames maps engine IDs to human-readable names.
var engineDisplayNames = map[string]string{
	translate.EngineNone:   "None (show source text)",
	translate.EngineGoogle: "Google Translate",
	translate.EngineDeepL:  "DeepL",
	translate.EnginePapago: "Naver Papago",
	translate.EngineOpenAI: "OpenAI",
	translate.EngineGroq:   "Groq",
}

func engineDisplayName(engine string) string {
	if name, ok := engineDisplayNames[engine]; ok {
		return name
	}
	return engine
}

func engineOptions(current string) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(translate.Engines))
	for _, e := range translate.Engines {
		label := engineDisplayName(e)
		if e == current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, e))
	}
	return options
}

func languageOptions(current string) []huh.Option[string] {
	langs := language.List()
	options := make([]huh.Option[string], 0, len(langs))
	for _, l := range langs {
		label := language.Label(l.Code)
		if strings.EqualFold(l.Code, current) {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, l.Code))
	}
	return options
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// hasCredentials reports whether engine can authenticate from the config
// file or the environment.
func hasCredentials(cfg *config.Config, engine string) bool {
	pc := cfg.ResolveProvider(engine)
	switch engine {
	case translate.EngineNone:
		return true
	case translate.EnginePapago:
		return pc.ClientID != "" && pc.ClientSecret != ""
	case translate.EngineGoogle:
		return translate.GoogleAuthMode(translate.Config{
			APIKey:       pc.APIKey,
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			ProjectID:    pc.ProjectID,
			AccessToken:  pc.AccessToken,
			RefreshToken: pc.RefreshToken,
		}) != ""
	default:
		return pc.APIKey != ""
	}
}

func formatTranslationLabel(cfg *config.Config) string {
	return fmt.Sprintf("Translation (%s: %s → %s)", engineDisplayName(cfg.Translation.Engine),
		cfg.Translation.SourceLang, cfg.Translation.TargetLang)
}

func formatCredentialsLabel(cfg *config.Config) string {
	if hasCredentials(cfg, cfg.Translation.Engine) {
		return "Credentials"
	}
	return "Credentials (missing)"
}

func formatCaptureLabel(cfg *config.Config) string {
	return fmt.Sprintf("Capture (device %d, %dx%d@%d)", cfg.Capture.Device, cfg.Capture.Width, cfg.Capture.Height, cfg.Capture.FPS)
}

func formatRegionLabel(cfg *config.Config) string {
	if region := formatRegion(cfg.ROI); region != "" {
		return fmt.Sprintf("Region (%s)", region)
	}
	return "Region (bottom dialogue band)"
}

func formatRecognitionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Recognition (every %v)", cfg.OCR.Interval)
}

func formatTranscriptLabel(cfg *config.Config) string {
	if !cfg.Transcript.Enabled {
		return "Transcript (off)"
	}
	return fmt.Sprintf("Transcript (%s)", cfg.Transcript.Directory)
}

func formatDisplayLabel(cfg *config.Config) string {
	label := fmt.Sprintf("Display (%s", cfg.Display.Mode)
	if cfg.Server.Enabled {
		label += ", http " + cfg.Server.Addr
	}
	return label + ")"
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled || cfg.Notifications.Type == "none" {
		return "Notifications (off)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

func formatRegion(roi config.ROIConfig) string {
	if roi.Width == 0 {
		return ""
	}
	return frame.Rect{X: roi.X, Y: roi.Y, Width: roi.Width, Height: roi.Height}.String()
}

// parseRegion accepts "x,y,w,h" or an empty string for the default band.
func parseRegion(s string) (config.ROIConfig, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return config.ROIConfig{}, nil
	}
	r, err := frame.ParseRect(s)
	if err != nil {
		return config.ROIConfig{}, err
	}
	return config.ROIConfig{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration (use values like 350ms or 1s)")
	}
	return d, nil
}

func validatePositiveDuration(s string) error {
	d, err := parseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive whole number")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("must be zero or a positive whole number")
	}
	return nil
}

func validateThreshold(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 255 {
		return fmt.Errorf("must be between 0 and 255")
	}
	return nil
}

func validatePositiveFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("must be a number greater than zero")
	}
	return nil
}

func validateUnitFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}

func validateNotEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// summaryLines renders the settings shown before saving.
func summaryLines(cfg *config.Config) []string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, fmt.Sprintf("  %s %s", StyleLabel.Render(label), value))
	}

	add("Engine:", engineDisplayName(cfg.Translation.Engine))
	add("Languages:", fmt.Sprintf("%s → %s", language.Label(cfg.Translation.SourceLang), language.Label(cfg.Translation.TargetLang)))
	if cfg.Translation.Model != "" {
		add("Model:", cfg.Translation.Model)
	}
	if cfg.Translation.Engine != translate.EngineNone {
		if hasCredentials(cfg, cfg.Translation.Engine) {
			add("Credentials:", "configured")
		} else {
			add("Credentials:", StyleWarning.Render("missing"))
		}
	}
	add("Capture:", fmt.Sprintf("device %d, %dx%d@%dfps", cfg.Capture.Device, cfg.Capture.Width, cfg.Capture.Height, cfg.Capture.FPS))
	if region := formatRegion(cfg.ROI); region != "" {
		add("Region:", region)
	} else {
		add("Region:", "bottom dialogue band")
	}
	add("Interval:", cfg.OCR.Interval.String())
	if cfg.Transcript.Enabled {
		add("Transcript:", cfg.Transcript.Directory)
	} else {
		add("Transcript:", "disabled")
	}
	add("Display:", cfg.Display.Mode)
	if cfg.Server.Enabled {
		add("Server:", cfg.Server.Addr)
	}
	add("Notifications:", cfg.Notifications.Type)
	return lines
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	for _, line := range summaryLines(cfg) {
		fmt.Println(line)
	}
	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
