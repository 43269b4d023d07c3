// Package incidentapi exposes incident triage over HTTP and WebSocket.
package incidentapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

// TriageService defines the business operations incidentapi needs.
type TriageService interface {
	Submit(ctx context.Context, message string) (*triage.Result, error)
	Recent(ctx context.Context, limit int) ([]triage.Incident, error)
}

// SubscriberRegistry is where the WebSocket transport attaches live
// connections.
type SubscriberRegistry interface {
	Register(sub triage.Subscriber) triage.Handle
	Unregister(h triage.Handle)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TriageService
	subs   SubscriberRegistry
	auth   func(http.Handler) http.Handler
}

// Option configures the API.
type Option func(*API)

// WithAuth guards the submission endpoint with the given middleware.
func WithAuth(mw func(http.Handler) http.Handler) Option {
	return func(a *API) {
		if mw != nil {
			a.auth = mw
		}
	}
}

// New creates a new API handler.
func New(logger log.Logger, svc TriageService, subs SubscriberRegistry, opts ...Option) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	if subs == nil {
		panic(xerrors.New("subscriber registry is required"))
	}
	a := &API{
		logger: logger,
		svc:    svc,
		subs:   subs,
		auth:   func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/logs", a.handleRecentIncidents)
		r.Group(func(r chi.Router) {
			r.Use(a.auth)
			r.Post("/predict", a.handleSubmit)
		})
	})
	r.Get("/ws", a.handleSubscribe)
	r.Get("/health", a.handleHealth)
}
