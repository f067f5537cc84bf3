package llmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fixed sampling configuration sent with every generation request.
const (
	maxNewTokens = 256
	doSample     = true
	temperature  = 0.7
	topP         = 0.9
)

const defaultTimeout = 60 * time.Second

// generateRequest is the request shape for the self-hosted generation endpoint.
type generateRequest struct {
	Prompt       string  `json:"prompt"`
	MaxNewTokens int     `json:"max_new_tokens"`
	DoSample     bool    `json:"do_sample"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
}

// generateResponse is the minimal response shape returned by the endpoint.
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("llmapi: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused client for a text-generation HTTP endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewClient creates a new Client for the given generation endpoint URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("llmapi: endpoint must not be empty")
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with
// the 60s timeout if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

// Generate posts the prompt with the fixed sampling configuration and
// returns the generated text. Non-2xx responses surface as *HTTPStatusError;
// transport failures and malformed bodies surface as plain wrapped errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Prompt:       prompt,
		MaxNewTokens: maxNewTokens,
		DoSample:     doSample,
		Temperature:  temperature,
		TopP:         topP,
	})
	if err != nil {
		return "", fmt.Errorf("llmapi: marshal request: %w", err)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("llmapi: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req)
	if err != nil {
		return "", fmt.Errorf("llmapi: request failed: %w", err)
	}

	var payload generateResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("llmapi: decode response: %w", decErr)
	}

	return payload.GeneratedText, nil
}

func (c *Client) doJSONRequest(req *http.Request) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        c.endpoint,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
