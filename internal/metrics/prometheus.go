package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/san-kum/pathreplay/internal/replay"
)

var (
	replayTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathreplay_ticks_total",
		Help: "Snapshots published by replay engines",
	})

	replayCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathreplay_replays_completed_total",
		Help: "Replays that reached the end of their trace",
	})

	replayVisitedCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathreplay_visited_cells",
		Help:    "Visited count of completed replays",
		Buckets: prometheus.ExponentialBuckets(4, 2, 10),
	})

	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathreplay_provider_requests_total",
		Help: "Trace requests by algorithm and outcome",
	}, []string{"algorithm", "outcome"})

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pathreplay_provider_request_duration_seconds",
		Help:    "Duration of trace requests",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"algorithm"})

	bridgeSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathreplay_bridge_sessions_active",
		Help: "Open browser bridge sessions",
	})

	bridgeSessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathreplay_bridge_sessions_expired_total",
		Help: "Bridge sessions closed for inactivity",
	})
)

func ObserveProviderRequest(algorithm, outcome string, d time.Duration) {
	providerRequestsTotal.WithLabelValues(algorithm, outcome).Inc()
	providerRequestDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

func SessionOpened() { bridgeSessionsActive.Inc() }

func SessionClosed() { bridgeSessionsActive.Dec() }

func SessionExpired() { bridgeSessionsExpired.Inc() }

// Exporter is a replay.Observer that forwards ticks to the process
// registry.
type Exporter struct{}

func (Exporter) OnTick(s replay.Snapshot) {
	replayTicksTotal.Inc()
	if s.Done {
		replayCompletedTotal.Inc()
		replayVisitedCells.Observe(float64(s.VisitedCount))
	}
}
