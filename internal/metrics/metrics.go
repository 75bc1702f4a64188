// Package metrics defines the Prometheus instrumentation surface and the
// HTTP handler that serves it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every counter/gauge behind a single registry so a test
// can construct an isolated instance instead of touching process-global
// state.
type Metrics struct {
	registry *prometheus.Registry

	MonitorsRunning prometheus.Gauge

	ScrapeCyclesTotal   *prometheus.CounterVec
	ListingsParsedTotal prometheus.Counter
	ListingsFailedTotal prometheus.Counter

	NotificationsSentTotal   *prometheus.CounterVec
	NotificationsFailedTotal *prometheus.CounterVec

	PersistenceSavesTotal *prometheus.CounterVec

	ProcessCPUPercent prometheus.Gauge
	ProcessRSSBytes   prometheus.Gauge
}

// New constructs a Metrics instance registered against its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		MonitorsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adwatch_monitors_running",
			Help: "Number of subscription monitor goroutines currently running",
		}),
		ScrapeCyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adwatch_scrape_cycles_total",
			Help: "Total scrape cycles by outcome",
		}, []string{"outcome"}),
		ListingsParsedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adwatch_listings_parsed_total",
			Help: "Total listing rows successfully parsed",
		}),
		ListingsFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adwatch_listings_failed_total",
			Help: "Total listing rows that failed to parse (including intentional skips)",
		}),
		NotificationsSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adwatch_notifications_sent_total",
			Help: "Total notifications delivered, by channel kind",
		}, []string{"channel_kind"}),
		NotificationsFailedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adwatch_notifications_failed_total",
			Help: "Total notification delivery failures, by channel kind",
		}, []string{"channel_kind"}),
		PersistenceSavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adwatch_persistence_saves_total",
			Help: "Total persistence save attempts, by collection and outcome",
		}, []string{"collection", "outcome"}),
		ProcessCPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adwatch_process_cpu_percent",
			Help: "Process CPU usage percent, sampled periodically",
		}),
		ProcessRSSBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adwatch_process_rss_bytes",
			Help: "Process resident memory in bytes, sampled periodically",
		}),
	}

	reg.MustRegister(
		m.MonitorsRunning,
		m.ScrapeCyclesTotal,
		m.ListingsParsedTotal,
		m.ListingsFailedTotal,
		m.NotificationsSentTotal,
		m.NotificationsFailedTotal,
		m.PersistenceSavesTotal,
		m.ProcessCPUPercent,
		m.ProcessRSSBytes,
	)

	return m
}

// Handler returns the HTTP handler that serves this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
