// Package slack posts incident notifications to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

const (
	maxMessageLen = 3000
	httpTimeout   = 10 * time.Second
)

// Notifier sends incident results to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Notify posts an incident result to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, result *triage.Result) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(result)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(r *triage.Result) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(r),
			{"type": "divider"},
			fieldsBlock(r),
			{"type": "divider"},
			messageBlock(r),
			{"type": "divider"},
			contextBlock(r),
		},
	}
}

func headerBlock(r *triage.Result) map[string]any {
	emoji := priorityEmoji(r.Priority)
	text := fmt.Sprintf("%s Incident #%d (%s priority)", emoji, r.ID, r.Priority)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(r *triage.Result) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Priority:* %s", r.Priority),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Source:* %s", r.Source),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Confidence:* %.0f%%", r.Confidence*100),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Incident ID:* %d", r.ID),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func messageBlock(r *triage.Result) map[string]any {
	text := truncate(r.Message, maxMessageLen)
	if text == "" {
		text = "_No message available._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Message*\n\n%s", text),
		},
	}
}

func contextBlock(r *triage.Result) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("triage • incident %d • %s UTC", r.ID, r.Timestamp),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func priorityEmoji(priority string) string {
	switch strings.ToLower(priority) {
	case triage.PriorityCritical:
		return "\U0001f534" // red circle
	case triage.PriorityHigh:
		return "\U0001f7e0" // orange circle
	case triage.PriorityMedium:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
