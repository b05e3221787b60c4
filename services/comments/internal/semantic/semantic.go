// Package semantic talks to the external embedding service that scores how
// close each candidate comment is to a natural-language query. The service is
// optional; when it is not configured, semantic search degrades to lexical
// ranking.
package semantic

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

// Scorer is the port for semantic similarity scoring.
type Scorer interface {
	// Score returns one similarity per text, aligned by index, each in [0,1].
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type scoreRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Similarities []float64 `json:"similarities"`
}

func New(baseURL, apiKey string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: &http.Client{Timeout: 5 * time.Second}}
}

func (c *Client) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	b, _ := json.Marshal(scoreRequest{Query: query, Texts: texts})
	resp, err := c.do(ctx, http.MethodPost, "/v1/similarity", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	var out scoreResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, err
	}
	if len(out.Similarities) != len(texts) {
		return nil, fmt.Errorf("semantic: got %d scores for %d texts", len(out.Similarities), len(texts))
	}
	return out.Similarities, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("semantic error: %s", string(data))
	}
	return data, nil
}
