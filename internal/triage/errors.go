package triage

import "fmt"

// ClassificationError means the classifier rejected the message or its
// backend failed. Nothing was persisted, cached, or broadcast.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// PersistenceError means classification succeeded but the store rejected the
// insert. No durable record exists and no consumer saw the result.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
