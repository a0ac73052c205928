// Package metrics exposes Prometheus metrics for watch mode.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WatchMetrics holds all Prometheus metrics for the agenda watch loop.
type WatchMetrics struct {
	// Recompute metrics
	TicksTotal      *prometheus.CounterVec
	AssembleSeconds *prometheus.HistogramVec
	VisibleSessions *prometheus.GaugeVec

	// Fetch metrics
	FetchesTotal     *prometheus.CounterVec
	FetchErrorsTotal *prometheus.CounterVec
	FetchSeconds     *prometheus.HistogramVec

	// Meeting state
	MeetingLive *prometheus.GaugeVec
}

// NewWatchMetrics creates a new set of watch metrics.
func NewWatchMetrics(reg prometheus.Registerer) *WatchMetrics {
	factory := promauto.With(reg)

	return &WatchMetrics{
		// Recompute metrics
		TicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracka_watch_ticks_total",
				Help: "Total watch-loop recompute ticks",
			},
			[]string{"meeting"},
		),
		AssembleSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracka_assemble_seconds",
				Help:    "View-model assembly latency",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"meeting"},
		),
		VisibleSessions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracka_visible_sessions",
				Help: "Sessions visible under the current filter",
			},
			[]string{"meeting"},
		),

		// Fetch metrics
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracka_fetches_total",
				Help: "Total agenda-data fetches",
			},
			[]string{"meeting"},
		),
		FetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracka_fetch_errors_total",
				Help: "Total failed agenda-data fetches",
			},
			[]string{"meeting"},
		),
		FetchSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracka_fetch_seconds",
				Help:    "Agenda-data fetch latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"meeting"},
		),

		// Meeting state
		MeetingLive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracka_meeting_live",
				Help: "Whether the meeting is currently in progress (1 or 0)",
			},
			[]string{"meeting"},
		),
	}
}

// RecordTick updates the per-tick gauges and counters after one recompute.
func (m *WatchMetrics) RecordTick(meeting string, visible int, live bool) {
	m.TicksTotal.WithLabelValues(meeting).Inc()
	m.VisibleSessions.WithLabelValues(meeting).Set(float64(visible))
	liveValue := 0.0
	if live {
		liveValue = 1.0
	}
	m.MeetingLive.WithLabelValues(meeting).Set(liveValue)
}

// Handler returns the Prometheus scrape handler for the registry the
// metrics were created on.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve starts a scrape endpoint on addr. It blocks until the server
// stops.
func Serve(addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))
	return http.ListenAndServe(addr, mux)
}
