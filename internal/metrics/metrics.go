package metrics

import (
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docker_hosts_sync"

// Metrics records reconciliation outcomes as Prometheus series.
type Metrics struct {
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	writes       prometheus.Counter
	skips        prometheus.Counter
	ownedEntries prometheus.Gauge
	events       *prometheus.CounterVec
}

// New registers all series on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		passes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes_total",
				Help:      "Reconciliation passes by kind and result",
			},
			[]string{"kind", "result"},
		),
		passDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_duration_seconds",
				Help:      "Reconciliation pass duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		writes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hosts_writes_total",
			Help:      "Hosts file rewrites",
		}),
		skips: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unchanged_skips_total",
			Help:      "Passes skipped because the desired mapping was unchanged",
		}),
		ownedEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "owned_entries",
			Help:      "Owned lines in the hosts file after the last successful reconcile",
		}),
		events: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "network_events_total",
				Help:      "Network events handled by type",
			},
			[]string{"type"},
		),
	}
}

func (m *Metrics) ObservePass(kind string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.passes.WithLabelValues(kind, result).Inc()
	m.passDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *Metrics) ObserveWrite(written bool, owned int) {
	if written {
		m.writes.Inc()
	}
	m.ownedEntries.Set(float64(owned))
}

func (m *Metrics) ObserveSkip() {
	m.skips.Inc()
}

func (m *Metrics) ObserveEvent(eventType domain.EventType) {
	m.events.WithLabelValues(string(eventType)).Inc()
}
