package translate

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

const papagoEndpoint = "https://openapi.naver.com/v1/papago/n2mt"

// Papago calls the Naver Papago NMT API.
type Papago struct {
	config   Config
	client   *http.Client
	endpoint string
}

func NewPapago(cfg Config, client *http.Client) *Papago {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = papagoEndpoint
	}
	return &Papago{config: cfg, client: client, endpoint: endpoint}
}

func (p *Papago) Name() string { return EnginePapago }

type papagoResponse struct {
	Message struct {
		Result struct {
			TranslatedText string `json:"translatedText"`
		} `json:"result"`
	} `json:"message"`
}

func (p *Papago) Translate(ctx context.Context, text string) Result {
	if isBlank(text) {
		return Result{}
	}

	form := url.Values{
		"source": {p.config.SourceLang},
		"target": {p.config.TargetLang},
		"text":   {text},
	}
	headers := map[string]string{
		"X-Naver-Client-Id":     strings.TrimSpace(p.config.ClientID),
		"X-Naver-Client-Secret": strings.TrimSpace(p.config.ClientSecret),
	}

	var resp papagoResponse
	if err := postForm(ctx, p.client, p.endpoint, form, headers, &resp); err != nil {
		return fallback(EnginePapago, text, err)
	}
	translated := strings.TrimSpace(resp.Message.Result.TranslatedText)
	if translated == "" {
		return fallback(EnginePapago, text, errors.New("missing translatedText"))
	}
	return Result{Text: translated}
}
