package triage

import (
	"math"
	"time"
)

// TimestampLayout is the wire format for incident timestamps: UTC wall clock
// at second precision, matching what consumers store and display.
const TimestampLayout = "2006-01-02 15:04:05"

// Priority levels emitted by the bundled classifier backends. The label set
// is owned by the classifier; stores and transports treat priority as an
// opaque string.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Incident is the durable record of one classified message. Rows are created
// by the pipeline on successful classification and never mutated by it;
// Resolved belongs to the acknowledgement workflow outside this package.
type Incident struct {
	ID         int64     `json:"id"`
	Message    string    `json:"message"`
	Priority   string    `json:"priority"`
	Source     string    `json:"source"`
	Confidence float64   `json:"confidence"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
}

// Result is the broadcastable projection of an Incident: the exact payload
// returned to the submitter, written to the latest-result cache slot, and
// delivered to every live subscriber.
type Result struct {
	ID         int64   `json:"id"`
	Message    string  `json:"message"`
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Timestamp  string  `json:"timestamp"`
}

// Result builds the wire projection: confidence rounded to two decimals,
// timestamp rendered in UTC at second precision.
func (in *Incident) Result() *Result {
	return &Result{
		ID:         in.ID,
		Message:    in.Message,
		Priority:   in.Priority,
		Confidence: math.Round(in.Confidence*100) / 100,
		Source:     in.Source,
		Timestamp:  in.CreatedAt.UTC().Format(TimestampLayout),
	}
}
