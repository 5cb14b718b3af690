package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "restaurants"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by route.", Buckets: prometheus.DefBuckets},
		[]string{"route", "method"},
	)
	NodesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "nodes_created_total", Help: "Nodes created by node type."},
		[]string{"type"},
	)
	ReviewsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reviews_created_total", Help: "Reviews created, split into root reviews and replies."},
		[]string{"kind"},
	)
	RatingSyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rating_sync_runs_total", Help: "Rating reconciliation runs by outcome."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(NodesCreated)
	reg.MustRegister(ReviewsCreated)
	reg.MustRegister(RatingSyncRuns)
}
