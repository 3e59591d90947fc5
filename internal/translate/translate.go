// Package translate converts recognized source text into the target language.
//
// Engines never abort the pipeline: a failed call yields a Result carrying
// the original text and the error that caused the fallback.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrUnsupportedEngine = errors.New("unsupported translation engine")

// Engine names.
const (
	EngineNone   = "none"
	EngineGoogle = "google"
	EngineDeepL  = "deepl"
	EnginePapago = "papago"
	EngineOpenAI = "openai"
	EngineGroq   = "groq"
)

// Engines lists every supported engine name.
var Engines = []string{EngineNone, EngineGoogle, EngineDeepL, EnginePapago, EngineOpenAI, EngineGroq}

// Result is the outcome of one translation. When Err is non-nil, Text holds
// the untranslated input.
type Result struct {
	Text string
	Err  error
}

// FellBack reports whether the engine failed and Text is the source text.
func (r Result) FellBack() bool {
	return r.Err != nil
}

// Translator translates a single line. Empty (or blank) input returns an
// empty Result without contacting the engine.
type Translator interface {
	Translate(ctx context.Context, text string) Result
	Name() string
}

// Config selects and configures an engine.
type Config struct {
	Engine     string
	SourceLang string
	TargetLang string

	APIKey       string // google, deepl, openai, groq
	ClientID     string // papago, google refresh-token mode
	ClientSecret string // papago, google refresh-token mode
	ProjectID    string // google OAuth modes
	AccessToken  string // google
	RefreshToken string // google
	Model        string // openai, groq
	Glossary     []string

	Endpoint string // overrides the engine's default URL (the API base URL for google)
	Timeout  time.Duration
}

const defaultTimeout = 12 * time.Second

// New builds the translator named by cfg.Engine.
func New(cfg Config) (Translator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := &http.Client{Timeout: cfg.Timeout}

	switch strings.ToLower(cfg.Engine) {
	case EngineNone, "":
		return Identity{}, nil
	case EngineGoogle:
		if GoogleAuthMode(cfg) == "" {
			return nil, fmt.Errorf("Google credentials required: an API key, or a project id with an access token or refresh token")
		}
		return NewGoogle(cfg, client), nil
	case EngineDeepL:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("DeepL API key required")
		}
		return NewDeepL(cfg, client), nil
	case EnginePapago:
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, fmt.Errorf("Papago client id and secret required")
		}
		return NewPapago(cfg, client), nil
	case EngineOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAI(cfg), nil
	case EngineGroq:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		return NewGroq(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, cfg.Engine)
	}
}

// IsSupported reports whether name is a known engine.
func IsSupported(name string) bool {
	for _, e := range Engines {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func fallback(engine, text string, err error) Result {
	return Result{Text: text, Err: fmt.Errorf("%s: %w", engine, err)}
}
