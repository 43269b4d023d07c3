package claude

import (
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		in             string
		wantPriority   string
		wantConfidence float64
		wantErr        bool
	}{
		{
			name:           "plain_json",
			in:             `{"priority": "high", "confidence": 0.93}`,
			wantPriority:   "high",
			wantConfidence: 0.93,
		},
		{
			name:           "fenced_json",
			in:             "```json\n{\"priority\": \"critical\", \"confidence\": 0.99}\n```",
			wantPriority:   "critical",
			wantConfidence: 0.99,
		},
		{
			name:           "fenced_plain",
			in:             "```\n{\"priority\": \"low\", \"confidence\": 0.5}\n```",
			wantPriority:   "low",
			wantConfidence: 0.5,
		},
		{
			name:           "surrounding_whitespace",
			in:             "  \n{\"priority\": \"medium\", \"confidence\": 0.6}\n  ",
			wantPriority:   "medium",
			wantConfidence: 0.6,
		},
		{
			name:           "uppercase_priority_normalized",
			in:             `{"priority": "HIGH", "confidence": 0.8}`,
			wantPriority:   "high",
			wantConfidence: 0.8,
		},
		{
			name:           "confidence_clamped_high",
			in:             `{"priority": "high", "confidence": 1.7}`,
			wantPriority:   "high",
			wantConfidence: 1,
		},
		{
			name:           "confidence_clamped_low",
			in:             `{"priority": "low", "confidence": -0.2}`,
			wantPriority:   "low",
			wantConfidence: 0,
		},
		{
			name:    "unknown_priority",
			in:      `{"priority": "urgent", "confidence": 0.9}`,
			wantErr: true,
		},
		{
			name:    "not_json",
			in:      "The priority is high.",
			wantErr: true,
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseVerdict(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseVerdict(%q): expected error, got %+v", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict(%q): %v", tc.in, err)
			}
			if got.Priority != tc.wantPriority {
				t.Errorf("priority = %q, want %q", got.Priority, tc.wantPriority)
			}
			if got.Confidence != tc.wantConfidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, tc.wantConfidence)
			}
		})
	}
}

func TestFirstText(t *testing.T) {
	t.Parallel()

	msg := &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: `{"priority": "high", "confidence": 0.9}`},
		},
		StopReason: anthropic.StopReasonEndTurn,
		Usage:      anthropic.Usage{InputTokens: 40, OutputTokens: 20},
	}

	if got := firstText(msg); !strings.Contains(got, `"high"`) {
		t.Errorf("firstText = %q, want the text block", got)
	}

	empty := &anthropic.Message{StopReason: anthropic.StopReasonEndTurn}
	if got := firstText(empty); got != "" {
		t.Errorf("firstText(empty) = %q, want empty", got)
	}
}

func TestSystemPromptPinsLabelSet(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"low", "medium", "high", "critical"} {
		if !strings.Contains(systemPrompt, label) {
			t.Errorf("system prompt does not mention %q", label)
		}
	}
	if !strings.Contains(systemPrompt, "JSON") {
		t.Error("system prompt does not demand JSON output")
	}
}
