// Package metrics exposes the observability surface of the maintenance
// process. All metrics hang off a Metrics value constructed once at startup
// from a caller-owned prometheus registry; nothing registers into the
// default global registry and nothing is looked up ambiently.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the metric vectors shared by all pollers. Each poller only
// addresses the series keyed by its own instance URL, so concurrent use
// needs no locking beyond the counters' own.
type Metrics struct {
	tickDuration *prometheus.HistogramVec
	tickFailures *prometheus.CounterVec
	torrentSizes *prometheus.HistogramVec
	deletions    *prometheus.CounterVec
	watchedCount *prometheus.GaugeVec
	watchedSize  *prometheus.GaugeVec
}

// New creates the metric vectors and registers them with the given
// registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "instance_fetch_duration_ms",
				Help: "Time one fetch-evaluate-act tick took against one Transmission instance",
			},
			[]string{"transmission_url"},
		),
		tickFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instance_fetch_failure_count",
				Help: "Number of ticks that did not complete successfully",
			},
			[]string{"transmission_url"},
		),
		torrentSizes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "torrent_sizes_bytes",
				Help: "Histogram of torrent sizes governed by a policy. Use sum and count for total size and torrent count.",
				// 500MB doubling up to about a terabyte.
				Buckets: prometheus.ExponentialBuckets(0.5e9, 2, 11),
			},
			[]string{"transmission_url", "policy"},
		),
		deletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "torrent_deletion_count",
				Help: "Number of torrents scheduled for deletion, per instance and policy",
			},
			[]string{"transmission_url", "policy"},
		),
		watchedCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "torrent_count",
				Help: "Number of torrents governed by a policy as of the latest tick",
			},
			[]string{"transmission_url", "policy"},
		),
		watchedSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "torrent_total_size_bytes",
				Help: "Cumulative size of torrents governed by a policy as of the latest tick",
			},
			[]string{"transmission_url", "policy"},
		),
	}

	registry.MustRegister(
		m.tickDuration,
		m.tickFailures,
		m.torrentSizes,
		m.deletions,
		m.watchedCount,
		m.watchedSize,
	)

	return m
}

// ObserveTickDuration records how long one complete tick took.
func (m *Metrics) ObserveTickDuration(instance string, d time.Duration) {
	ms := float64(d.Nanoseconds()) / float64(time.Millisecond)
	m.tickDuration.WithLabelValues(instance).Observe(ms)
}

// CountTickFailure records a tick that did not complete successfully.
func (m *Metrics) CountTickFailure(instance string) {
	m.tickFailures.WithLabelValues(instance).Inc()
}

// ObserveTorrentSize records the size of one torrent governed by a policy.
func (m *Metrics) ObserveTorrentSize(instance, policy string, bytes int64) {
	m.torrentSizes.WithLabelValues(instance, policy).Observe(float64(bytes))
}

// CountDeletion records one torrent scheduled for deletion by a policy.
func (m *Metrics) CountDeletion(instance, policy string) {
	m.deletions.WithLabelValues(instance, policy).Inc()
}

// SetWatched updates the per-policy gauges to the latest tick's aggregate.
func (m *Metrics) SetWatched(instance, policy string, count int, totalSize int64) {
	m.watchedCount.WithLabelValues(instance, policy).Set(float64(count))
	m.watchedSize.WithLabelValues(instance, policy).Set(float64(totalSize))
}

// TickFailures returns the failure counter series for an instance. Intended
// for tests, which read it back through prometheus' testutil.
func (m *Metrics) TickFailures(instance string) prometheus.Counter {
	return m.tickFailures.WithLabelValues(instance)
}

// WatchedCount returns the governed-torrent-count gauge series for an
// (instance, policy) pair. Intended for tests.
func (m *Metrics) WatchedCount(instance, policy string) prometheus.Gauge {
	return m.watchedCount.WithLabelValues(instance, policy)
}
