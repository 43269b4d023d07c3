// Package triage is the business boundary of the incident triage pipeline.
// It defines the Service (classify, attribute, persist, cache, broadcast),
// the subscriber Registry (live fan-out with per-subscriber failure
// isolation), the narrow ports for classifier/store/cache/notifier, and the
// domain models.
package triage
