package triage

import (
	"context"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// defaultDeliveryTimeout bounds a single subscriber delivery attempt.
const defaultDeliveryTimeout = 5 * time.Second

// Subscriber is a live delivery channel to one connected consumer. Deliver
// must honor the context deadline; Close must be safe after a failed write.
type Subscriber interface {
	Deliver(ctx context.Context, payload []byte) error
	Close() error
}

// Handle identifies a registered subscriber.
type Handle string

// RegistryHooks receive registry lifecycle events. Wired to Prometheus by
// Metrics.Hooks; all fields are optional.
type RegistryHooks struct {
	OnRegister   func()
	OnUnregister func()
	OnDelivery   func(ok bool)
	OnEvict      func()
}

// Registry tracks the set of live subscribers and fans payloads out to all
// of them with per-subscriber failure isolation.
type Registry struct {
	logger  log.Logger
	timeout time.Duration
	hooks   RegistryHooks

	mu   sync.RWMutex
	subs map[Handle]Subscriber
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDeliveryTimeout overrides the per-subscriber delivery timeout.
func WithDeliveryTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRegistryHooks attaches lifecycle hooks.
func WithRegistryHooks(h RegistryHooks) RegistryOption {
	return func(r *Registry) { r.hooks = h }
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry(logger log.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = log.Nop()
	}
	r := &Registry{
		logger:  logger,
		timeout: defaultDeliveryTimeout,
		subs:    make(map[Handle]Subscriber),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a subscriber to the live set and returns its handle.
// Subsequent broadcasts include the subscriber.
func (r *Registry) Register(sub Subscriber) Handle {
	h := Handle(ulid.Make().String())

	r.mu.Lock()
	r.subs[h] = sub
	n := len(r.subs)
	r.mu.Unlock()

	if r.hooks.OnRegister != nil {
		r.hooks.OnRegister()
	}
	r.logger.Info(context.Background(), "subscriber registered", "subscriber", string(h), "live", n)
	return h
}

// Unregister removes a subscriber from the live set. It does not close the
// subscriber; the transport owns the connection on this path. Removing an
// unknown handle is a no-op.
func (r *Registry) Unregister(h Handle) {
	if !r.remove(h) {
		return
	}
	if r.hooks.OnUnregister != nil {
		r.hooks.OnUnregister()
	}
}

// Len reports the number of live subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Broadcast delivers payload to every subscriber in a snapshot of the live
// set taken at call time: subscribers registering mid-call are not
// guaranteed this payload, and the set is never mutated while the pass
// iterates it. Each attempt is bounded by the delivery timeout. A failed or
// timed-out delivery is logged and evicts that one subscriber after the
// pass completes; it never surfaces to the caller and never blocks delivery
// to the rest. Broadcast returns once every snapshot member was attempted.
func (r *Registry) Broadcast(ctx context.Context, payload []byte) {
	type entry struct {
		handle Handle
		sub    Subscriber
	}

	r.mu.RLock()
	snapshot := make([]entry, 0, len(r.subs))
	for h, s := range r.subs {
		snapshot = append(snapshot, entry{handle: h, sub: s})
	}
	r.mu.RUnlock()

	var failed []entry
	for _, e := range snapshot {
		dctx, cancel := context.WithTimeout(ctx, r.timeout)
		err := e.sub.Deliver(dctx, payload)
		cancel()

		if r.hooks.OnDelivery != nil {
			r.hooks.OnDelivery(err == nil)
		}
		if err != nil {
			r.logger.Warn(ctx, "subscriber delivery failed", "subscriber", string(e.handle), "error", err)
			failed = append(failed, e)
		}
	}

	for _, e := range failed {
		r.evict(ctx, e.handle, e.sub)
	}
}

// Shutdown removes and closes every live subscriber. Used during process
// drain: hijacked connections are not covered by the HTTP server's own
// shutdown.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[Handle]Subscriber)
	r.mu.Unlock()

	for h, sub := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = sub.Close()
		if r.hooks.OnUnregister != nil {
			r.hooks.OnUnregister()
		}
		r.logger.Info(ctx, "subscriber closed on shutdown", "subscriber", string(h))
	}
	return nil
}

// evict removes and closes a subscriber that failed delivery. Remove happens
// before close, and close only when this call did the removing, so a
// subscriber is evicted exactly once even when its read side unregisters
// concurrently.
func (r *Registry) evict(ctx context.Context, h Handle, sub Subscriber) {
	if !r.remove(h) {
		return
	}
	_ = sub.Close()

	if r.hooks.OnUnregister != nil {
		r.hooks.OnUnregister()
	}
	if r.hooks.OnEvict != nil {
		r.hooks.OnEvict()
	}
	r.logger.Info(ctx, "subscriber evicted", "subscriber", string(h))
}

func (r *Registry) remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[h]; !ok {
		return false
	}
	delete(r.subs, h)
	return true
}
