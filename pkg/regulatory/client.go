// Package regulatory provides a client for the code-compliance check
// service: a structured project-fact payload in, a per-section
// pass/warn/fail checklist out.
package regulatory

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

// SectionStatus is the outcome for one code section.
type SectionStatus string

const (
	SectionPass SectionStatus = "pass"
	SectionWarn SectionStatus = "warn"
	SectionFail SectionStatus = "fail"
)

// Client defines the compliance check operations.
type Client interface {
	// Check runs a compliance review of the given project facts.
	Check(ctx context.Context, facts ProjectFacts) (*Checklist, error)
}

// ProjectFacts is the payload sent for review.
type ProjectFacts struct {
	Trade         string  `json:"trade"`
	ConfirmedArea float64 `json:"confirmed_area"`
	AreaUnit      string  `json:"area_unit"`
	Materials     []string `json:"materials,omitempty"`
	Municipality  string  `json:"municipality,omitempty"`
}

// SectionResult is the outcome for one code section.
type SectionResult struct {
	Code   string        `json:"code"`
	Title  string        `json:"title"`
	Status SectionStatus `json:"status"`
	Note   string        `json:"note,omitempty"`
}

// Checklist is the full compliance result.
type Checklist struct {
	Sections []SectionResult `json:"sections"`
}

// FailCount returns the number of failing sections.
func (c *Checklist) FailCount() int {
	n := 0
	for _, s := range c.Sections {
		if s.Status == SectionFail {
			n++
		}
	}
	return n
}

// Option configures the regulatory client.
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

// NewClient creates a compliance check client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.buildlane.dev/regulatory",
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

func (c *httpClient) Check(ctx context.Context, facts ProjectFacts) (*Checklist, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "regulatory: rate limit wait")
	}

	payload, err := json.Marshal(facts)
	if err != nil {
		return nil, eris.Wrap(err, "regulatory: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "regulatory: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "regulatory: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "regulatory: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("regulatory: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out Checklist
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "regulatory: parse response")
	}
	return &out, nil
}
