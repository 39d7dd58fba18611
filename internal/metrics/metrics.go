package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farebox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farebox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TripsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farebox_trips_started_total",
			Help: "Total number of trips opened by check-in",
		},
	)

	TripsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farebox_trips_completed_total",
			Help: "Total number of trips closed by check-out",
		},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farebox_settlements_total",
			Help: "Fare settlement attempts by outcome",
		},
		[]string{"status"},
	)

	PassScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farebox_pass_scans_total",
			Help: "Pass scan attempts by result",
		},
		[]string{"result"},
	)

	WalletCreditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farebox_wallet_credits_total",
			Help: "Total number of wallet credits",
		},
	)

	NotificationsQueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farebox_notifications_queued_total",
			Help: "Total number of notifications queued for delivery",
		},
	)
)

func RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}
