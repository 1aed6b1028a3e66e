package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hitstertrainer/internal/core"
)

// Metrics are registered on a private registry so servers can be created
// repeatedly in one process.
type Metrics struct {
	Registry *prometheus.Registry

	LookupsTotal          *prometheus.CounterVec
	PlaybackAttemptsTotal *prometheus.CounterVec
	PlaybackDuration      *prometheus.HistogramVec
	SongSavesTotal        *prometheus.CounterVec
	RelayRequestsTotal    *prometheus.CounterVec
	DebugEntriesTotal     *prometheus.CounterVec
	FloodRejectionsTotal  *prometheus.CounterVec
	ActiveSessions        prometheus.Gauge
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		Registry: prometheus.NewRegistry(),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hitster_lookups_total",
				Help: "Total number of songs looked up on Spotify",
			},
			[]string{"status"},
		),
		PlaybackAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hitster_playback_attempts_total",
				Help: "Total number of playback attempts by outcome",
			},
			[]string{"mode", "status", "reason"},
		),
		PlaybackDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hitster_playback_duration_seconds",
				Help:    "Time from play request to a terminal playback state",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		SongSavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hitster_song_saves_total",
				Help: "Total number of song database updates",
			},
			[]string{"status"},
		),
		RelayRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hitster_relay_requests_total",
				Help: "Total number of relayed Deezer searches",
			},
			[]string{"status"},
		),
		DebugEntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hitster_debug_entries_total",
				Help: "Total number of client debug entries",
			},
			[]string{"status"},
		),
		FloodRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hitster_flood_rejections_total",
				Help: "Total number of requests rejected by the flood guard",
			},
			[]string{"scope"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hitster_active_sessions",
				Help: "Number of live playback sessions",
			},
		),
	}

	metrics.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.LookupsTotal,
		metrics.PlaybackAttemptsTotal,
		metrics.PlaybackDuration,
		metrics.SongSavesTotal,
		metrics.RelayRequestsTotal,
		metrics.DebugEntriesTotal,
		metrics.FloodRejectionsTotal,
		metrics.ActiveSessions,
	)

	return metrics
}

func (m *Metrics) RecordLookup(status core.LookupStatus) {
	m.LookupsTotal.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) RecordPlayback(attempt core.PlaybackAttempt, duration time.Duration) {
	mode := attempt.Mode.String()
	m.PlaybackAttemptsTotal.WithLabelValues(mode, attempt.Status.String(), attempt.Reason.String()).Inc()
	m.PlaybackDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *Metrics) RecordSave(status string) {
	m.SongSavesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRelay(status string) {
	m.RelayRequestsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordDebugEntry(status string) {
	m.DebugEntriesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordFloodRejection(scope string) {
	m.FloodRejectionsTotal.WithLabelValues(scope).Inc()
}
