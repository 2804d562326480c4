// Package metrics holds the Prometheus collectors exported on the metrics port.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingup_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pingup_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingup_notification_failures_total",
			Help: "Notification writes that failed and were dropped",
		},
		[]string{"operation"},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingup_media_uploads_total",
			Help: "Media uploads by store and result",
		},
		[]string{"store", "result"}, // result: "ok", "error"
	)

	StoriesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pingup_stories_swept_total",
			Help: "Expired stories deleted by the background sweeper",
		},
	)
)

// RecordRequest observes one completed HTTP request.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordUpload counts one media upload attempt.
func RecordUpload(store string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	MediaUploads.WithLabelValues(store, result).Inc()
}
