// Package embed fetches OpenAI text embeddings over the pooled HTTP client,
// grounded on the source's ada_embeddings wrapper: plain REST, no SDK from
// the pack covers the embeddings endpoint, so this talks to it directly.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const embeddingsPath = "/v1/embeddings"

// Client fetches embeddings from the OpenAI-compatible embeddings API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

// Config configures a Client.
type Config struct {
	BaseURL string // e.g. "https://api.openai.com"
	APIKey  string
	Model   string // e.g. "text-embedding-ada-002"
}

// New builds an embeddings Client over the shared pooled http.Client.
func New(httpClient *http.Client, cfg Config) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one dense vector per non-empty input text, in order. Blank
// inputs are dropped before the call, matching the source's
// strip-then-skip-empty behavior, and an all-blank input returns an empty
// slice without calling the API.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.ReplaceAll(strings.TrimSpace(t), "\n", " ")
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingsRequest{Input: cleaned, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("marshalling embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+embeddingsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embeddings API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings API returned HTTP %d", resp.StatusCode)
	}

	var decoded embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding embeddings response: %w", err)
	}

	vectors := make([][]float32, len(decoded.Data))
	for i, d := range decoded.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
