// Package llm handles communication with the remote inference endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/retailplus/inventory-engine/internal/observability"
)

// ErrTransport marks failures reaching the inference endpoint: network
// errors, timeouts, and non-success statuses. Callers map it to the
// fallback path without attempting to parse a response.
var ErrTransport = errors.New("model transport failure")

const defaultModel = "qwen2.5:0.5b"

// jsonEnvelope is appended to every prompt. The hosted models are small and
// drift into prose without explicit formatting instructions.
const jsonEnvelope = `

IMPORTANT: Your response MUST be valid JSON. Wrap your entire response in a valid JSON object.
Do not include any text before or after the JSON.

For the response, ONLY use double quotes (") for strings and keys, never single quotes (').
Do not include trailing commas in arrays or objects.
Ensure all keys and string values are properly quoted with double quotes.`

// Config holds inference client settings.
type Config struct {
	BaseURL        string
	Model          string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client sends prompts to an Ollama-compatible generate endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	retry      RetryConfig
	logger     *observability.Logger
}

// generateRequest is the wire request for /api/generate.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the wire response for /api/generate.
type generateResponse struct {
	Response string `json:"response"`
}

// NewClient creates a new inference client.
func NewClient(cfg Config, logger *observability.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 100 * time.Second
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	retry := DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialBackoff > 0 {
		retry.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		retry.MaxBackoff = cfg.MaxBackoff
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      retry,
		logger:     logger,
	}
}

// Generate sends one prompt and returns the raw completion text. The JSON
// formatting envelope is appended to every prompt before sending.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt + jsonEnvelope,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/api/generate"

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}

	return genResp.Response, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
