// Package claude implements a triage.Classifier backed by the Anthropic
// Messages API.
package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

// systemPrompt pins the model to a strict JSON verdict over the known
// priority levels.
const systemPrompt = `You are an incident triage classifier for production log messages.
Classify the severity of the log message you are given.

Respond with a single JSON object and nothing else:
{"priority": "<low|medium|high|critical>", "confidence": <number between 0 and 1>}`

const maxTokens = 256

// Classifier classifies messages with a single Claude call per message.
type Classifier struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Classifier using the given API key and model.
func New(apiKey, model string) *Classifier {
	return &Classifier{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// verdict is the JSON shape the model is instructed to return.
type verdict struct {
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// Classify implements triage.Classifier.
func (c *Classifier) Classify(ctx context.Context, message string) (triage.Classification, error) {
	if strings.TrimSpace(message) == "" {
		return triage.Classification{}, errors.New("empty message")
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	})
	if err != nil {
		return triage.Classification{}, fmt.Errorf("claude api: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		return triage.Classification{}, errors.New("empty model response")
	}
	return parseVerdict(text)
}

// firstText returns the first non-empty text block of a response.
func firstText(msg *anthropic.Message) string {
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text
		}
	}
	return ""
}

// parseVerdict extracts a classification from model output, tolerating a
// fenced code block around the JSON.
func parseVerdict(text string) (triage.Classification, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return triage.Classification{}, fmt.Errorf("parse verdict %q: %w", text, err)
	}

	priority := strings.ToLower(strings.TrimSpace(v.Priority))
	switch priority {
	case triage.PriorityLow, triage.PriorityMedium, triage.PriorityHigh, triage.PriorityCritical:
	default:
		return triage.Classification{}, fmt.Errorf("unknown priority %q", v.Priority)
	}

	confidence := v.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return triage.Classification{Priority: priority, Confidence: confidence}, nil
}
