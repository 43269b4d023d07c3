package triage

import "context"

// Cache overwrites the single latest-result slot. The slot is read by
// external consumers only; the pipeline never reads it back. Failures are
// non-fatal to the submission by contract.
type Cache interface {
	SetLatest(ctx context.Context, payload []byte) error
}

// NopCache discards writes. Used when no cache backend is configured.
type NopCache struct{}

// SetLatest implements Cache.
func (NopCache) SetLatest(context.Context, []byte) error { return nil }
