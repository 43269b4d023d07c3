package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	result := &triage.Result{
		ID:         42,
		Message:    "Database connection timeout",
		Priority:   "critical",
		Confidence: 0.93,
		Source:     "Database-Cluster",
		Timestamp:  "2024-05-04 12:30:45",
	}

	if err := n.Notify(context.Background(), result); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, message, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	// Verify header carries the incident id and critical emoji
	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "#42") {
		t.Errorf("header text = %q, want to contain #42", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for critical priority")
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Notify(context.Background(), &triage.Result{}); err != nil {
		t.Fatalf("Notify with empty URL should be no-op, got: %v", err)
	}
}

func TestNotify_TruncatesLongMessage(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	longMessage := strings.Repeat("x", 4000)
	n := New(srv.URL)
	err := n.Notify(context.Background(), &triage.Result{
		ID:       7,
		Message:  longMessage,
		Priority: "high",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks := got["blocks"].([]any)
	messageSection := blocks[4].(map[string]any)
	text := messageSection["text"].(map[string]any)["text"].(string)

	// Text includes the "*Message*\n\n" prefix, so the message portion is what follows.
	// The message itself should be truncated to maxMessageLen (3000) chars.
	if len(text) > maxMessageLen+len("*Message*\n\n") {
		t.Errorf("message text length = %d, expected <= %d", len(text), maxMessageLen+len("*Message*\n\n"))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated message to end with ...")
	}
}

func TestPriorityEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		priority string
		want     string
	}{
		{"critical", "critical", "\U0001f534"},
		{"high", "high", "\U0001f7e0"},
		{"medium", "medium", "\U0001f7e1"},
		{"low", "low", "\U0001f7e2"},
		{"empty", "", "\U0001f7e2"},
		{"uppercase", "CRITICAL", "\U0001f534"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := priorityEmoji(tt.priority)
			if got != tt.want {
				t.Errorf("priorityEmoji(%q) = %q, want %q", tt.priority, got, tt.want)
			}
		})
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add(int64(1), "Database connection timeout", "critical", "Database-Cluster", "2024-05-04 12:30:45")
	f.Add(int64(0), "", "", "", "")
	f.Add(int64(-1), "<@U123> mention", "high", "*bold* _italic_ ~strike~", "ts")
	f.Add(int64(9), "msg\x00\x01\x02", "pri\nline", "svc\ttab", "t\x00s")
	f.Add(int64(1<<40), strings.Repeat("A", 10000), "critical", strings.Repeat("x", 5000), "ts")
	f.Add(int64(2), "```code block``` and <http://example.com|link>", "medium", "Auth-Service", "2024-01-01 00:00:00")

	f.Fuzz(func(t *testing.T, id int64, message, priority, source, timestamp string) {
		result := &triage.Result{
			ID:         id,
			Message:    message,
			Priority:   priority,
			Confidence: 0.5,
			Source:     source,
			Timestamp:  timestamp,
		}

		// Must not panic
		msg := buildMessage(result)

		// Must produce valid JSON
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		// Must round-trip
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 7 {
			t.Fatalf("blocks count = %d, want 7", len(blocks))
		}
	})
}

func TestNotify_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Notify(context.Background(), &triage.Result{
		ID:       3,
		Priority: "high",
	})
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}
