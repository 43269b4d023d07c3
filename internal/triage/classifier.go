package triage

import "context"

// Classification is a classifier verdict for one message.
type Classification struct {
	Priority   string
	Confidence float64
}

// Classifier is the interface for any classification backend. The label set
// is owned by the backend, not by this package.
type Classifier interface {
	Classify(ctx context.Context, message string) (Classification, error)
}
