package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/language-needs/radar/internal/report"
)

// Client posts feed-breakage alerts to a Slack incoming webhook. The
// radar only alerts; per-run summaries stay in the artifacts.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a new Slack webhook client.
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// webhookMessage is the incoming-webhook payload.
type webhookMessage struct {
	Text string `json:"text"`
}

// SendBreakageAlert notifies that a run found no usable feed.
func (c *Client) SendBreakageAlert(ctx context.Context, summary *report.Summary) error {
	message := c.formatBreakageMessage(summary)
	return c.sendMessage(ctx, message)
}

func (c *Client) formatBreakageMessage(summary *report.Summary) string {
	reason := summary.ParseError
	if reason == "" {
		reason = summary.Note
	}

	return fmt.Sprintf(`⚠️ *Job feed radar: feed looks broken*

🔗 Source: %s
📄 Detected: %s
💬 %s

⏰ Run %s at %s`,
		summary.Source,
		summary.FeedType,
		reason,
		summary.RunID,
		summary.GeneratedAt)
}

func (c *Client) sendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(webhookMessage{Text: text})
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected webhook status code: %d", resp.StatusCode)
	}
	return nil
}
