// Package metrics exposes the Prometheus collectors of the engagement and feed
// engines. Collectors register with the default registry and are served from
// /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Toggle outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeRemoved  = "removed"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

var (
	// EdgeTogglesTotal counts toggle calls by edge type and outcome.
	EdgeTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_edge_toggles_total",
			Help: "Total number of like and subscription toggles",
		},
		[]string{"edge", "outcome"},
	)

	// FeedQueryDuration tracks how long a paginated video listing takes end to end.
	FeedQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_feed_query_duration_seconds",
			Help:    "Duration of video feed queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"sort_by"},
	)

	// ChannelCacheLookupsTotal counts username cache lookups by result.
	ChannelCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_channel_cache_lookups_total",
			Help: "Total number of channel username cache lookups",
		},
		[]string{"result"},
	)
)

// RecordToggle increments the toggle counter for edge and outcome.
func RecordToggle(edge, outcome string) {
	EdgeTogglesTotal.WithLabelValues(edge, outcome).Inc()
}

// ObserveFeedQuery records the duration of a feed query.
func ObserveFeedQuery(sortBy string, d time.Duration) {
	FeedQueryDuration.WithLabelValues(sortBy).Observe(d.Seconds())
}

// RecordChannelCacheLookup counts a cache hit or miss.
func RecordChannelCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ChannelCacheLookupsTotal.WithLabelValues(result).Inc()
}
