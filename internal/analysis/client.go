// Package analysis calls an external summarization service to produce a
// short human-readable digest of a generated crash report. The service is
// optional and failures here never block report generation.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SummaryRequest carries the report context sent to the summarization service.
type SummaryRequest struct {
	Category string             `json:"category"`
	FromDate string             `json:"from_date"`
	ToDate   string             `json:"to_date"`
	Release  string             `json:"release,omitempty"`
	Severity string             `json:"severity"`
	Snapshot map[string]float64 `json:"snapshot"`
	TopIssue string             `json:"top_issue,omitempty"`
}

// SummaryResponse is the service's answer.
type SummaryResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Client talks to the summarization service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Summarize posts the report context and returns the generated summary.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (*SummaryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding summary request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/summarize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building summary request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling summarization service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading summary response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summarization service returned %d: %s", resp.StatusCode, string(data))
	}

	var out SummaryResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding summary response: %w", err)
	}
	return &out, nil
}
