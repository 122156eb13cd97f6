// Package blueprint provides a client for the document/blueprint
// extraction service: extracted drawing text in, detected area and
// dimensions out.
package blueprint

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the blueprint extraction operations.
type Client interface {
	// Extract parses blueprint text and returns detected measurements.
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// Dimension is one measurement found in the drawing.
type Dimension struct {
	Label  string  `json:"label"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Unit   string  `json:"unit"`
}

// Extraction is the structured result of a blueprint pass.
type Extraction struct {
	DetectedArea float64     `json:"detected_area"`
	AreaUnit     string      `json:"area_unit"`
	Dimensions   []Dimension `json:"dimensions"`
}

// Option configures the blueprint client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRPS overrides the request rate limit.
func WithRPS(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a blueprint extraction client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.buildlane.dev/blueprint",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(2, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Extract(ctx context.Context, text string) (*Extraction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "blueprint: rate limit wait")
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, eris.Wrap(err, "blueprint: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "blueprint: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "blueprint: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "blueprint: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("blueprint: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out Extraction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "blueprint: parse response")
	}
	return &out, nil
}
