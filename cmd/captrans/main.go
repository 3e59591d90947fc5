package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/captrans/internal/bus"
	"github.com/leonardotrapani/captrans/internal/config"
	"github.com/leonardotrapani/captrans/internal/daemon"
	"github.com/leonardotrapani/captrans/internal/deps"
	"github.com/leonardotrapani/captrans/internal/frame"
	"github.com/leonardotrapani/captrans/internal/language"
	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/notify"
	"github.com/leonardotrapani/captrans/internal/translate"
	"github.com/leonardotrapani/captrans/internal/tui"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "captrans",
	Short: "Live on-screen text translation from a capture device",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/captrans/config.toml)")
	rootCmd.AddCommand(
		serveCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
		translateCmd(),
		roiCmd(),
		doctorCmd(),
	)
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// loadConfig returns the defaults when no config file exists yet.
func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFrom(path)
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.DefaultConfig(), path, nil
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logging.Init(cfg.ToLoggingConfig())

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			opts := daemon.Options{
				ConfigPath:    path,
				HandleSignals: true,
			}
			if cfg.Notifications.Enabled {
				opts.Notifier = notify.New(cfg.Notifications.Type)
			}

			return daemon.New(cfg, opts).Run()
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStatus)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Get protocol version",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdVersion)
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdQuit)
			if err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for captrans.
This will guide you through setting up:
- Translation engine, languages and credentials
- Capture device, dialogue region and recognition
- Transcript, display and notification preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, path, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := config.SaveTo(result.Config, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", path)
	fmt.Println("Restart the daemon to apply: captrans stop && captrans serve")
	return nil
}

func translateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate one line with the configured engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logging.Init(cfg.ToLoggingConfig())

			tr, err := translate.New(cfg.ToTranslateConfig())
			if err != nil {
				return fmt.Errorf("failed to create translator: %w", err)
			}

			res := tr.Translate(context.Background(), args[0])
			fmt.Println(res.Text)
			if res.FellBack() {
				return fmt.Errorf("%s fell back to source text: %w", tr.Name(), res.Err)
			}
			return nil
		},
	}
}

func roiCmd() *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "roi [x,y,w,h]",
		Short: "Show the region sampled for a frame size",
		Long: `Parse and clamp a region against a frame size.
Without an argument the default dialogue band is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("frame width and height must be positive")
			}

			if len(args) == 0 {
				fmt.Printf("default %s\n", frame.DefaultDialogueRect(width, height))
				return nil
			}

			r, err := frame.ParseRect(args[0])
			if err != nil {
				return err
			}
			clamped := r.Clamp(width, height)
			if clamped != r {
				fmt.Printf("clamped %s -> %s\n", r, clamped)
				return nil
			}
			fmt.Println(clamped)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 1280, "frame width")
	cmd.Flags().IntVar(&height, "height", 720, "frame height")
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and recognition languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ok := true
			report := func(name string, status deps.Status, required bool) {
				switch {
				case status.Installed:
					fmt.Printf("%s %s (%s)\n", tui.StyleSuccess.Render("ok"), name, status.Version)
				case required:
					ok = false
					fmt.Printf("%s %s not found\n", tui.StyleError.Render("missing"), name)
				default:
					fmt.Printf("%s %s not found\n", tui.StyleWarning.Render("optional"), name)
				}
			}

			report("tesseract", deps.CheckTesseract(), true)
			report("notify-send", deps.CheckNotifySend(), cfg.Notifications.Enabled && cfg.Notifications.Type == "desktop")

			tessLang := language.TesseractCode(cfg.OCRLanguage())
			if langs, err := deps.TesseractLanguages(); err == nil {
				if missing := deps.MissingLanguages(tessLang, langs); len(missing) > 0 {
					ok = false
					fmt.Printf("%s traineddata for %v\n", tui.StyleError.Render("missing"), missing)
				} else {
					fmt.Printf("%s traineddata for %s\n", tui.StyleSuccess.Render("ok"), tessLang)
				}
			}

			if !hasEngineCredentials(cfg) {
				ok = false
				fmt.Printf("%s credentials for %s (%v)\n", tui.StyleError.Render("missing"),
					cfg.Translation.Engine, config.EnvVarsForEngine(cfg.Translation.Engine))
			}

			if !ok {
				return fmt.Errorf("some checks failed")
			}
			return nil
		},
	}
}

func hasEngineCredentials(cfg *config.Config) bool {
	_, err := translate.New(cfg.ToTranslateConfig())
	return err == nil
}
