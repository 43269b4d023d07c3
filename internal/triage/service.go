package triage

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage")

// maxRecentLimit caps how many incidents Recent returns per call.
const maxRecentLimit = 50

// upstreamServices is the fixed set of services incidents are attributed to.
var upstreamServices = []string{
	"Auth-Service",
	"Payment-Gateway",
	"Database-Cluster",
	"User-Profile-API",
}

// AttributionPolicy decides which upstream service an incident is attributed
// to. Implementations must be deterministic for a given message.
type AttributionPolicy func(message string) string

// DefaultAttribution hashes the message over the fixed upstream service set.
func DefaultAttribution(message string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(message))
	return upstreamServices[h.Sum32()%uint32(len(upstreamServices))]
}

// Broadcaster is the send side of the subscriber registry as the Service
// sees it. Per-subscriber failures are handled inside the implementation and
// never surface to the caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, payload []byte)
}

// Service is the business boundary for triage operations: it classifies
// incoming log messages, records them, and fans results out to live
// subscribers.
type Service struct {
	classifier  Classifier
	store       Store
	cache       Cache
	broadcaster Broadcaster

	logger    log.Logger
	metrics   *Metrics
	notifier  Notifier
	attribute AttributionPolicy
	now       func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l log.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics attaches triage metrics.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithNotifier attaches an out-of-band notifier for high and critical
// incidents.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithAttribution overrides the source attribution policy.
func WithAttribution(p AttributionPolicy) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.attribute = p
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a triage service over the given ports. A nil cache
// disables latest-incident caching.
func NewService(classifier Classifier, store Store, cache Cache, broadcaster Broadcaster, opts ...ServiceOption) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	s := &Service{
		classifier:  classifier,
		store:       store,
		cache:       cache,
		broadcaster: broadcaster,
		logger:      log.Nop(),
		attribute:   DefaultAttribution,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one log message through the full pipeline: classify, attribute
// and stamp, persist, cache, broadcast. The returned Result carries the same
// bytes subscribers and the cache saw. A classification or persistence
// failure aborts the pipeline before any downstream effect; a cache failure
// is logged and swallowed.
func (s *Service) Submit(ctx context.Context, message string) (*Result, error) {
	start := s.now()

	ctx, span := tracer.Start(ctx, "triage.submit")
	defer span.End()

	cl, err := s.classifier.Classify(ctx, message)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SubmitFailures.WithLabelValues("classify").Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &ClassificationError{Err: err}
	}

	in := &Incident{
		Message:    message,
		Priority:   cl.Priority,
		Source:     s.attribute(message),
		Confidence: cl.Confidence,
		CreatedAt:  s.now().UTC().Truncate(time.Second),
	}

	id, err := s.store.Insert(ctx, in)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SubmitFailures.WithLabelValues("persist").Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &PersistenceError{Err: err}
	}
	in.ID = id

	res := in.Result()
	payload, _ := json.Marshal(res)

	if err := s.cache.SetLatest(ctx, payload); err != nil {
		if s.metrics != nil {
			s.metrics.CacheWriteFailures.Inc()
		}
		s.logger.Warn(ctx, "latest-incident cache write failed", "incident_id", id, "error", err)
	}

	s.broadcaster.Broadcast(ctx, payload)

	if s.metrics != nil {
		s.metrics.IncidentsTotal.WithLabelValues(in.Priority).Inc()
		s.metrics.BroadcastsTotal.Inc()
		s.metrics.SubmitDuration.Observe(s.now().Sub(start).Seconds())
	}
	span.SetAttributes(
		attribute.String("triage.priority", in.Priority),
		attribute.Int64("triage.incident_id", id),
	)

	if s.notifier != nil && (in.Priority == PriorityHigh || in.Priority == PriorityCritical) {
		// fire-and-forget: notification latency must not hold up the caller.
		go s.notify(context.WithoutCancel(ctx), res)
	}

	s.logger.Info(ctx, "incident triaged",
		"incident_id", id,
		"priority", in.Priority,
		"source", in.Source,
		"confidence", res.Confidence,
	)

	return res, nil
}

// Recent returns the newest incidents, most recent first. Limits outside
// 1..50 are clamped to 50.
func (s *Service) Recent(ctx context.Context, limit int) ([]Incident, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.store.ListRecent(ctx, limit)
}

func (s *Service) notify(ctx context.Context, res *Result) {
	if err := s.notifier.Notify(ctx, res); err != nil {
		s.logger.Warn(ctx, "incident notification failed", "incident_id", res.ID, "error", err)
	}
}
