package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type GenerateConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// GeminiClient talks to the generative language REST API. One call per
// request, no retries: a failed generation is surfaced to the caller as-is.
type GeminiClient struct {
	httpClient *http.Client
}

func NewGeminiClient(timeout time.Duration) *GeminiClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *GeminiClient) GenerateContent(ctx context.Context, cfg GenerateConfig, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request failed: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(cfg.BaseURL, "/"), cfg.Model, cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build gemini request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse gemini json failed: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("empty gemini candidates")
	}

	var full strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		full.WriteString(part.Text)
	}
	text := strings.TrimSpace(full.String())
	if text == "" {
		return "", fmt.Errorf("empty gemini response text")
	}
	return text, nil
}
