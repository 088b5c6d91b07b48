package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "airpool", Name: "match_queries_total", Help: "Total match queries served"})
	MatchCandidates   = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "airpool", Name: "match_candidates", Help: "Candidates returned per match query", Buckets: []float64{0, 1, 2, 5, 10, 25, 50}})
	RequestsCreated   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "airpool", Name: "ride_requests_created_total", Help: "Ride requests posted"})
	RequestsDecided   = promauto.NewCounterVec(prometheus.CounterOpts{Namespace: "airpool", Name: "ride_requests_decided_total", Help: "Ride requests accepted or rejected"}, []string{"decision"})
	ChatMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "airpool", Name: "chat_messages_total", Help: "Chat messages persisted"})
	CheckoutSessions  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "airpool", Name: "checkout_sessions_total", Help: "Hosted checkout sessions created"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "airpool", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "airpool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
