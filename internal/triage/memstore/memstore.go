// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

// Store holds incidents in memory. Suitable for dev/testing.
type Store struct {
	mu        sync.RWMutex
	incidents []triage.Incident // append-only, index i holds id i+1
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{}
}

// Insert records a copy of the incident and returns its assigned id. Ids are
// monotonically increasing from 1.
func (s *Store) Insert(_ context.Context, in *triage.Incident) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *in
	cp.ID = int64(len(s.incidents)) + 1
	s.incidents = append(s.incidents, cp)
	return cp.ID, nil
}

// ListRecent returns up to limit incidents, newest first. Returns copies.
func (s *Store) ListRecent(_ context.Context, limit int) ([]triage.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 0 {
		limit = 0
	}
	if limit > len(s.incidents) {
		limit = len(s.incidents)
	}
	out := make([]triage.Incident, 0, limit)
	for i := len(s.incidents) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.incidents[i])
	}
	return out, nil
}
