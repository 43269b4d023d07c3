package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	IncidentsTotal     *prometheus.CounterVec
	SubmitFailures     *prometheus.CounterVec
	SubmitDuration     prometheus.Histogram
	CacheWriteFailures prometheus.Counter
	BroadcastsTotal    prometheus.Counter
	DeliveriesTotal    *prometheus.CounterVec
	Evictions          prometheus.Counter
	LiveSubscribers    prometheus.Gauge
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IncidentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_incidents_total",
			Help: "Total incidents accepted by assigned priority.",
		}, []string{"priority"}),
		SubmitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_submit_failures_total",
			Help: "Total failed submissions by pipeline stage.",
		}, []string{"stage"}),
		SubmitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_submit_duration_seconds",
			Help:    "Duration of incident submissions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		}),
		CacheWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_cache_write_failures_total",
			Help: "Total failed latest-incident cache writes.",
		}),
		BroadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_broadcasts_total",
			Help: "Total incident broadcasts to live subscribers.",
		}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_deliveries_total",
			Help: "Total per-subscriber delivery attempts by outcome.",
		}, []string{"outcome"}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_subscriber_evictions_total",
			Help: "Total subscribers evicted after failed delivery.",
		}),
		LiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "triage_live_subscribers",
			Help: "Number of currently registered live subscribers.",
		}),
	}

	reg.MustRegister(
		m.IncidentsTotal,
		m.SubmitFailures,
		m.SubmitDuration,
		m.CacheWriteFailures,
		m.BroadcastsTotal,
		m.DeliveriesTotal,
		m.Evictions,
		m.LiveSubscribers,
	)

	return m
}

// Hooks returns a RegistryHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() RegistryHooks {
	return RegistryHooks{
		OnRegister: func() {
			m.LiveSubscribers.Inc()
		},
		OnUnregister: func() {
			m.LiveSubscribers.Dec()
		},
		OnDelivery: func(ok bool) {
			outcome := "ok"
			if !ok {
				outcome = "error"
			}
			m.DeliveriesTotal.WithLabelValues(outcome).Inc()
		},
		OnEvict: func() {
			m.Evictions.Inc()
		},
	}
}
