package translate

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

const (
	deeplEndpoint     = "https://api.deepl.com/v2/translate"
	deeplFreeEndpoint = "https://api-free.deepl.com/v2/translate"
)

// DeepL calls the DeepL v2 API. Keys ending in ":fx" belong to the free tier
// and are sent to the free endpoint.
type DeepL struct {
	config   Config
	client   *http.Client
	endpoint string
}

func NewDeepL(cfg Config, client *http.Client) *DeepL {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DeepLEndpoint(cfg.APIKey)
	}
	return &DeepL{config: cfg, client: client, endpoint: endpoint}
}

// DeepLEndpoint picks the API host for a key.
func DeepLEndpoint(apiKey string) string {
	if strings.HasSuffix(apiKey, ":fx") {
		return deeplFreeEndpoint
	}
	return deeplEndpoint
}

func (d *DeepL) Name() string { return EngineDeepL }

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (d *DeepL) Translate(ctx context.Context, text string) Result {
	if isBlank(text) {
		return Result{}
	}

	form := url.Values{
		"text":        {text},
		"source_lang": {strings.ToUpper(d.config.SourceLang)},
		"target_lang": {strings.ToUpper(d.config.TargetLang)},
	}
	headers := map[string]string{
		"Authorization": "DeepL-Auth-Key " + d.config.APIKey,
	}

	var resp deeplResponse
	if err := postForm(ctx, d.client, d.endpoint, form, headers, &resp); err != nil {
		return fallback(EngineDeepL, text, err)
	}
	if len(resp.Translations) == 0 {
		return fallback(EngineDeepL, text, errors.New("empty translations"))
	}
	translated := strings.TrimSpace(resp.Translations[0].Text)
	if translated == "" {
		return fallback(EngineDeepL, text, errors.New("empty translation"))
	}
	return Result{Text: translated}
}
