package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leonardotrapani/captrans/internal/config"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionTranslation   ConfigSection = "translation"
	SectionCredentials   ConfigSection = "credentials"
	SectionCapture       ConfigSection = "capture"
	SectionRegion        ConfigSection = "region"
	SectionRecognition   ConfigSection = "recognition"
	SectionTranscript    ConfigSection = "transcript"
	SectionDisplay       ConfigSection = "display"
	SectionNotifications ConfigSection = "notifications"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the configuration menu. The given config is edited in place.
func Run(cfg *config.Config) (*ConfigureResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Println(StyleError.Render("Configuration is not valid: " + err.Error()))
				if !confirm("Go back and fix it?", "Back", "Discard") {
					return &ConfigureResult{Cancelled: true}, nil
				}
				continue
			}
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionTranslation:
			if err := editTranslation(cfg); err != nil {
				continue
			}

		case SectionCredentials:
			if err := editCredentials(cfg, cfg.Translation.Engine); err != nil {
				continue
			}

		case SectionCapture:
			if err := editCapture(cfg); err != nil {
				continue
			}

		case SectionRegion:
			if err := editRegion(cfg); err != nil {
				continue
			}

		case SectionRecognition:
			if err := editRecognition(cfg); err != nil {
				continue
			}

		case SectionTranscript:
			if err := editTranscript(cfg); err != nil {
				continue
			}

		case SectionDisplay:
			if err := editDisplay(cfg); err != nil {
				continue
			}

		case SectionNotifications:
			if err := editNotifications(cfg); err != nil {
				continue
			}
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(formatTranslationLabel(cfg), SectionTranslation),
		huh.NewOption(formatCredentialsLabel(cfg), SectionCredentials),
		huh.NewOption(formatCaptureLabel(cfg), SectionCapture),
		huh.NewOption(formatRegionLabel(cfg), SectionRegion),
		huh.NewOption(formatRecognitionLabel(cfg), SectionRecognition),
		huh.NewOption(formatTranscriptLabel(cfg), SectionTranscript),
		huh.NewOption(formatDisplayLabel(cfg), SectionDisplay),
		huh.NewOption(formatNotificationsLabel(cfg), SectionNotifications),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}

func confirm(title, yes, no string) bool {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(yes).
				Negative(no).
				Value(&ok),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false
	}
	return ok
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ColorError)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
