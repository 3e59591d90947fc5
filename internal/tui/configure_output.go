package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/captrans/internal/config"
)

func editTranscript(cfg *config.Config) error {
	enabled := cfg.Transcript.Enabled
	dir := cfg.Transcript.Directory
	sourceOnly := cfg.Transcript.SourceOnly

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write a transcript?").
				Description("Each run writes transcript.txt and transcript.jsonl to a new session folder").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Transcript Directory").
				Value(&dir).
				Validate(validateNotEmpty("directory")),
			huh.NewConfirm().
				Title("Source text only?").
				Description("Omit the TRN lines from transcript.txt").
				Value(&sourceOnly),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcript.Enabled = enabled
	cfg.Transcript.Directory = dir
	cfg.Transcript.SourceOnly = sourceOnly
	return nil
}

func editDisplay(cfg *config.Config) error {
	mode := cfg.Display.Mode
	showSource := cfg.Display.ShowSource
	serverEnabled := cfg.Server.Enabled
	addr := cfg.Server.Addr

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Terminal Display").
				Options(
					huh.NewOption("Print each new line in the terminal", "terminal"),
					huh.NewOption("None (headless)", "none"),
				).
				Value(&mode),
			huh.NewConfirm().
				Title("Show source text above the translation?").
				Value(&showSource),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Serve results over HTTP?").
				Description("Exposes /v1/snapshot, a /v1/ws websocket feed for overlays, and /metrics").
				Value(&serverEnabled),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Value(&addr).
				Validate(validateNotEmpty("address")),
		).WithHideFunc(func() bool { return !serverEnabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Display.Mode = mode
	cfg.Display.ShowSource = showSource
	cfg.Server.Enabled = serverEnabled
	cfg.Server.Addr = addr
	return nil
}

// editNotifications handles the notifications section
func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" || notifType == "none" {
		notifType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Description("Notify when translation starts, stops, fails, or the config file changes").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Type").
				Description("How should notifications be displayed?").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
				).
				Value(&notifType),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	if enabled {
		cfg.Notifications.Type = notifType
	} else {
		cfg.Notifications.Type = "none"
	}
	return nil
}
