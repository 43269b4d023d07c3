package bayes

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Database Connection TIMEOUT", []string{"database", "connection", "timeout"}},
		{"strips_punctuation", "error: disk-usage at 95%!", []string{"error", "disk", "usage", "at", "95"}},
		{"keeps_digits", "returned 500 errors", []string{"returned", "500", "errors"}},
		{"empty", "", nil},
		{"only_punctuation", "?!...", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("token %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestNewDefault_ClassifiesDatabaseTimeout(t *testing.T) {
	t.Parallel()

	c, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}

	got, err := c.Classify(context.Background(), "Database connection timeout")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Priority != "high" {
		t.Errorf("priority = %q, want %q", got.Priority, "high")
	}
	if got.Confidence <= 0 || got.Confidence > 1 {
		t.Errorf("confidence = %v, want (0, 1]", got.Confidence)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	c, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}

	first, err := c.Classify(context.Background(), "payment request timed out twice")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := c.Classify(context.Background(), "payment request timed out twice")
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if got != first {
			t.Fatalf("classification changed between calls: %+v then %+v", first, got)
		}
	}
}

func TestClassify_EmptyMessage(t *testing.T) {
	t.Parallel()

	c, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}

	for _, msg := range []string{"", "   ", "?!..."} {
		if _, err := c.Classify(context.Background(), msg); err == nil {
			t.Errorf("Classify(%q): expected error", msg)
		}
	}
}

func TestClassify_Untrained(t *testing.T) {
	t.Parallel()

	c := New(1.0)
	if _, err := c.Classify(context.Background(), "anything at all"); err == nil {
		t.Fatal("expected error from untrained classifier")
	}
}

func TestTrain_DerivesLabelSet(t *testing.T) {
	t.Parallel()

	c := New(1.0)
	c.Train([]Sample{
		{Message: "packet drop on switch", Priority: "network"},
		{Message: "link flapping detected", Priority: "network"},
		{Message: "disk failure imminent", Priority: "storage"},
		{Message: "raid array degraded", Priority: "storage"},
	})

	labels := c.Labels()
	if len(labels) != 2 || labels[0] != "network" || labels[1] != "storage" {
		t.Fatalf("labels = %v, want [network storage]", labels)
	}

	got, err := c.Classify(context.Background(), "packet drop detected")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Priority != "network" {
		t.Errorf("priority = %q, want %q", got.Priority, "network")
	}
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	t.Run("parses_quoted_fields", func(t *testing.T) {
		in := "message,priority\n\"Disk usage at 90%, escalating\",high\nall quiet,low\n"
		samples, err := LoadCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("LoadCSV: %v", err)
		}
		if len(samples) != 2 {
			t.Fatalf("samples = %d, want 2", len(samples))
		}
		if samples[0].Message != "Disk usage at 90%, escalating" {
			t.Errorf("message = %q", samples[0].Message)
		}
		if samples[0].Priority != "high" {
			t.Errorf("priority = %q, want high", samples[0].Priority)
		}
	})

	t.Run("rejects_wrong_header", func(t *testing.T) {
		if _, err := LoadCSV(strings.NewReader("msg,label\nfoo,low\n")); err == nil {
			t.Fatal("expected error for wrong header")
		}
	})

	t.Run("rejects_empty_corpus", func(t *testing.T) {
		if _, err := LoadCSV(strings.NewReader("message,priority\n")); err == nil {
			t.Fatal("expected error for corpus with no samples")
		}
	})

	t.Run("normalizes_priority_case", func(t *testing.T) {
		samples, err := LoadCSV(strings.NewReader("message,priority\nsomething broke,HIGH\n"))
		if err != nil {
			t.Fatalf("LoadCSV: %v", err)
		}
		if samples[0].Priority != "high" {
			t.Errorf("priority = %q, want high", samples[0].Priority)
		}
	})
}

func TestNewFromCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "train.csv")
	data := "message,priority\nnode rebooted cleanly,low\nnode on fire,critical\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write training file: %v", err)
	}

	c, err := NewFromCSVFile(path)
	if err != nil {
		t.Fatalf("NewFromCSVFile: %v", err)
	}
	got, err := c.Classify(context.Background(), "rack on fire")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Priority != "critical" {
		t.Errorf("priority = %q, want critical", got.Priority)
	}

	if _, err := NewFromCSVFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
