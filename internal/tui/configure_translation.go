package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/captrans/internal/config"
	"github.com/leonardotrapani/captrans/internal/translate"
)

// editTranslation selects the engine and language pair, then asks for
// credentials when the chosen engine has none yet.
func editTranslation(cfg *config.Config) error {
	engine := cfg.Translation.Engine
	source := cfg.Translation.SourceLang
	target := cfg.Translation.TargetLang

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translation Engine").
				Description("Service used to translate recognized text").
				Options(engineOptions(engine)...).
				Value(&engine),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Source Language").
				Description("Language of the on-screen text").
				Options(languageOptions(source)...).
				Filtering(true).
				Value(&source),
			huh.NewSelect[string]().
				Title("Target Language").
				Description("Language to translate into").
				Options(languageOptions(target)...).
				Filtering(true).
				Value(&target),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Translation.Engine = engine
	cfg.Translation.SourceLang = source
	cfg.Translation.TargetLang = target

	if engine == translate.EngineOpenAI || engine == translate.EngineGroq {
		if err := editModel(cfg); err != nil {
			return err
		}
	}

	if engine != translate.EngineNone && !hasCredentials(cfg, engine) {
		return editCredentials(cfg, engine)
	}
	return nil
}

func editModel(cfg *config.Config) error {
	model := cfg.Translation.Model
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description(fmt.Sprintf("Leave empty for the %s default", engineDisplayName(cfg.Translation.Engine))).
				Value(&model),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}
	cfg.Translation.Model = model
	return nil
}

// editCredentials stores the API key, Papago client pair or Google OAuth
// credentials for engine.
func editCredentials(cfg *config.Config, engine string) error {
	if engine == translate.EngineNone {
		fmt.Println(StyleMuted.Render("The identity engine needs no credentials."))
		return nil
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	pc := cfg.Providers[engine]
	name := engineDisplayName(engine)

	var fields []huh.Field
	if engine == translate.EnginePapago {
		fields = append(fields,
			huh.NewInput().
				Title(name+" Client ID").
				Description(currentSecretDesc(pc.ClientID, config.EnvVarsForEngine(engine))).
				Value(&pc.ClientID),
			huh.NewInput().
				Title(name+" Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&pc.ClientSecret),
		)
	} else if engine == translate.EngineGoogle {
		fields = append(fields,
			huh.NewInput().
				Title(name+" API Key").
				Description("v2 API key. Leave empty to use OAuth below").
				EchoMode(huh.EchoModePassword).
				Value(&pc.APIKey),
			huh.NewInput().
				Title("Project ID").
				Description("Required for OAuth (v3 translateText)").
				Value(&pc.ProjectID),
			huh.NewInput().
				Title("OAuth Client ID").
				Value(&pc.ClientID),
			huh.NewInput().
				Title("OAuth Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&pc.ClientSecret),
			huh.NewInput().
				Title("OAuth Refresh Token").
				Description("Used with the client id and secret; takes precedence over a fixed access token").
				EchoMode(huh.EchoModePassword).
				Value(&pc.RefreshToken),
		)
	} else {
		fields = append(fields,
			huh.NewInput().
				Title(name+" API Key").
				Description(currentSecretDesc(pc.APIKey, config.EnvVarsForEngine(engine))).
				EchoMode(huh.EchoModePassword).
				Value(&pc.APIKey),
		)
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Providers[engine] = pc
	return nil
}

func currentSecretDesc(current string, envVars []string) string {
	if current != "" {
		return fmt.Sprintf("Current: %s", maskAPIKey(current))
	}
	if len(envVars) > 0 {
		return fmt.Sprintf("Leave empty to read %s from the environment", envVars[0])
	}
	return ""
}
