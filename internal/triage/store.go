package triage

import "context"

// Store is the persistence interface for incidents.
type Store interface {
	// Insert persists a new incident and returns the store-assigned id.
	Insert(ctx context.Context, in *Incident) (int64, error)
	// ListRecent returns up to limit incidents, newest first by id.
	ListRecent(ctx context.Context, limit int) ([]Incident, error)
}
