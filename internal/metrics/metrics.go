// Package metrics holds the Prometheus collectors exported on the metrics port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twittor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twittor_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "twittor_registrations_total",
		Help: "Total number of user registrations",
	})
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twittor_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)
	PostsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "twittor_posts_created_total",
		Help: "Total number of tweets posted",
	})
	FollowChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twittor_follow_changes_total",
			Help: "Follow graph changes by action",
		},
		[]string{"action"},
	)
	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twittor_emails_sent_total",
			Help: "Outgoing emails by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// Result turns an error into the "success"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
