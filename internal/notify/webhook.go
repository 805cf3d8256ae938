package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"youtube-summarizer/internal/pipeline"
)

// Client posts job completion notifications to a configured webhook.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a new webhook notification client
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// JobNotification is the payload posted on job completion.
type JobNotification struct {
	URL            string   `json:"url"`
	Title          string   `json:"title,omitempty"`
	Summary        string   `json:"summary"`
	Warnings       []string `json:"warnings,omitempty"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	CompletedAt    string   `json:"completed_at"`
}

// NotifyCompleted posts a summary result to the webhook.
func (c *Client) NotifyCompleted(ctx context.Context, result *pipeline.SummaryResult) error {
	payload := JobNotification{
		URL:            result.URL,
		Title:          result.Title,
		Summary:        result.Summary,
		Warnings:       result.Warnings,
		ElapsedSeconds: result.Elapsed.Seconds(),
		CompletedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
