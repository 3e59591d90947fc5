package translate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/leonardotrapani/captrans/internal/logging"
)

const (
	groqBaseURL        = "https://api.groq.com/openai/v1"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

// LLM translates through an OpenAI-compatible chat completion API.
type LLM struct {
	name   string
	client *openai.Client
	config Config
	model  string
	logger zerolog.Logger
}

// NewOpenAI creates an engine backed by OpenAI's chat completions API.
func NewOpenAI(cfg Config) *LLM {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return newLLM(EngineOpenAI, clientConfig, cfg, defaultOpenAIModel)
}

// NewGroq creates an engine backed by Groq's OpenAI-compatible API.
func NewGroq(cfg Config) *LLM {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = groqBaseURL
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return newLLM(EngineGroq, clientConfig, cfg, defaultGroqModel)
}

func newLLM(name string, clientConfig openai.ClientConfig, cfg Config, defaultModel string) *LLM {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &LLM{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		model:  model,
		logger: logging.WithComponent("translate." + name),
	}
}

func (a *LLM) Name() string { return a.name }

func (a *LLM) Translate(ctx context.Context, text string) Result {
	if isBlank(text) {
		return Result{}
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(a.config.SourceLang, a.config.TargetLang, a.config.Glossary)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.3,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		a.logger.Debug().Err(err).Dur("duration", duration).Msg("Chat completion failed")
		return fallback(a.name, text, err)
	}
	if len(resp.Choices) == 0 {
		return fallback(a.name, text, errors.New("no response choices"))
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return fallback(a.name, text, errors.New("empty completion"))
	}
	a.logger.Debug().Dur("duration", duration).Str("source", text).Str("translated", result).Msg("Translated")
	return Result{Text: result}
}
