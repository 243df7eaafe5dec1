// Package moderation talks to the external content-moderation service.
// The service classifies a submission's text for toxicity and checks it
// against a window of historical incident texts for duplicates. It is
// advisory only; callers are expected to fall open on any error here.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"campusapp/server/api"
)

// Client is an HTTP client for the moderation service. One attempt per
// submission, bounded by the configured timeout; no retries.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a moderation client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type moderateRequest struct {
	Text           string   `json:"text"`
	ExistingTitles []string `json:"existing_titles"`
}

type moderateResponse struct {
	IsToxic           bool    `json:"is_toxic"`
	DuplicateDetected bool    `json:"duplicate_detected"`
	ToxicityScore     float64 `json:"toxicity_score"`
}

// Moderate submits the current text plus historical context and returns
// the service's verdict. Any network error, non-2xx status or malformed
// body is returned as an error.
func (c *Client) Moderate(ctx context.Context, text string, historicalTexts []string) (api.Verdict, error) {
	if historicalTexts == nil {
		historicalTexts = []string{}
	}
	jsonData, err := json.Marshal(moderateRequest{
		Text:           text,
		ExistingTitles: historicalTexts,
	})
	if err != nil {
		return api.Verdict{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/moderate", bytes.NewBuffer(jsonData))
	if err != nil {
		return api.Verdict{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return api.Verdict{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.Verdict{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return api.Verdict{}, fmt.Errorf("moderation service error (status %d): %s", resp.StatusCode, string(body))
	}

	var mr moderateResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return api.Verdict{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return api.Verdict{
		IsToxic:       mr.IsToxic,
		IsDuplicate:   mr.DuplicateDetected,
		ToxicityScore: mr.ToxicityScore,
	}, nil
}
