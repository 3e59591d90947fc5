package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes caps how much of an engine response is read.
const maxResponseBytes = 1 << 20

// postForm sends a form-encoded POST and decodes a JSON response into out.
func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values, headers map[string]string, out any) error {
	return post(ctx, client, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), headers, out)
}

// postJSON sends payload as a JSON POST and decodes a JSON response into out.
func postJSON(ctx context.Context, client *http.Client, endpoint string, payload any, headers map[string]string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return post(ctx, client, endpoint, "application/json", bytes.NewReader(body), headers, out)
}

func post(ctx context.Context, client *http.Client, endpoint, contentType string, body io.Reader, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
