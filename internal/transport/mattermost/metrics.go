package mattermost

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mattermost_rss_upstream_requests_total",
			Help: "Total number of Mattermost API requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mattermost_rss_upstream_request_duration_seconds",
			Help:    "Mattermost API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
