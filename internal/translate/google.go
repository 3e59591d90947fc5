package translate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const googleBaseURL = "https://translation.googleapis.com"

// googleTokenURL is the OAuth endpoint refresh tokens are exchanged at.
var googleTokenURL = "https://oauth2.googleapis.com/token"

// Google authentication modes, in order of preference.
const (
	GoogleAuthRefreshToken = "refresh-token"
	GoogleAuthAccessToken  = "access-token"
	GoogleAuthAPIKey       = "api-key"
)

// GoogleAuthMode returns the mode cfg's credentials allow, or "" when none is
// complete. OAuth modes call the v3 API and need a project id.
func GoogleAuthMode(cfg Config) string {
	project := strings.TrimSpace(cfg.ProjectID) != ""
	switch {
	case project && cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "":
		return GoogleAuthRefreshToken
	case project && cfg.AccessToken != "":
		return GoogleAuthAccessToken
	case cfg.APIKey != "":
		return GoogleAuthAPIKey
	default:
		return ""
	}
}

// Google calls Cloud Translation: v3 translateText with an OAuth bearer token,
// or v2 with an API key.
type Google struct {
	config  Config
	client  *http.Client
	baseURL string
	mode    string
	tokens  oauth2.TokenSource // nil in api-key mode
}

func NewGoogle(cfg Config, client *http.Client) *Google {
	baseURL := strings.TrimRight(cfg.Endpoint, "/")
	if baseURL == "" {
		baseURL = googleBaseURL
	}

	g := &Google{config: cfg, client: client, baseURL: baseURL, mode: GoogleAuthMode(cfg)}
	switch g.mode {
	case GoogleAuthRefreshToken:
		oc := &oauth2.Config{
			ClientID:     strings.TrimSpace(cfg.ClientID),
			ClientSecret: strings.TrimSpace(cfg.ClientSecret),
			Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL, AuthStyle: oauth2.AuthStyleInParams},
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		// ReuseTokenSource caches the access token until shortly before expiry.
		g.tokens = oauth2.ReuseTokenSource(nil, oc.TokenSource(ctx, &oauth2.Token{RefreshToken: strings.TrimSpace(cfg.RefreshToken)}))
	case GoogleAuthAccessToken:
		g.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(cfg.AccessToken), TokenType: "Bearer"})
	}
	return g
}

func (g *Google) Name() string { return EngineGoogle }

// Mode reports the authentication mode in use.
func (g *Google) Mode() string { return g.mode }

type googleV2Response struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

type googleV3Request struct {
	Contents           []string `json:"contents"`
	SourceLanguageCode string   `json:"sourceLanguageCode"`
	TargetLanguageCode string   `json:"targetLanguageCode"`
	MimeType           string   `json:"mimeType"`
}

type googleV3Response struct {
	Translations []struct {
		TranslatedText string `json:"translatedText"`
	} `json:"translations"`
}

func (g *Google) Translate(ctx context.Context, text string) Result {
	if isBlank(text) {
		return Result{}
	}

	var (
		translated string
		err        error
	)
	if g.tokens != nil {
		translated, err = g.translateV3(ctx, text)
	} else {
		translated, err = g.translateV2(ctx, text)
	}
	if err != nil {
		return fallback(EngineGoogle, text, err)
	}

	translated = strings.TrimSpace(html.UnescapeString(translated))
	if translated == "" {
		return fallback(EngineGoogle, text, errors.New("empty translation"))
	}
	return Result{Text: translated}
}

func (g *Google) translateV2(ctx context.Context, text string) (string, error) {
	u, err := url.Parse(g.baseURL + "/language/translate/v2")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", strings.TrimSpace(g.config.APIKey))
	u.RawQuery = q.Encode()

	form := url.Values{
		"q":      {text},
		"source": {g.config.SourceLang},
		"target": {g.config.TargetLang},
		"format": {"text"},
	}

	var resp googleV2Response
	if err := postForm(ctx, g.client, u.String(), form, nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Data.Translations) == 0 {
		return "", errors.New("empty translations")
	}
	return resp.Data.Translations[0].TranslatedText, nil
}

func (g *Google) translateV3(ctx context.Context, text string) (string, error) {
	tok, err := g.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("oauth token (%s): %w", g.mode, err)
	}

	endpoint := fmt.Sprintf("%s/v3/projects/%s/locations/global:translateText",
		g.baseURL, url.PathEscape(strings.TrimSpace(g.config.ProjectID)))
	req := googleV3Request{
		Contents:           []string{text},
		SourceLanguageCode: g.config.SourceLang,
		TargetLanguageCode: g.config.TargetLang,
		MimeType:           "text/plain",
	}
	headers := map[string]string{"Authorization": tok.Type() + " " + tok.AccessToken}

	var resp googleV3Response
	if err := postJSON(ctx, g.client, endpoint, req, headers, &resp); err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 {
		return "", errors.New("empty translations")
	}
	return resp.Translations[0].TranslatedText, nil
}
