package triage

import "context"

// Notifier delivers out-of-band notifications for noteworthy incidents.
// The Service invokes it asynchronously and best-effort for high and
// critical priorities only.
type Notifier interface {
	Notify(ctx context.Context, res *Result) error
}
