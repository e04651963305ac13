// SPDX-License-Identifier: GPL-3.0-only

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	KindReview = "review"
	KindReset  = "reset"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundrolink_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "laundrolink_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "laundrolink_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundrolink_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by the auth rate limiter",
		},
		[]string{"path"},
	)

	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundrolink_tokens_issued_total",
			Help: "Review and password reset tokens issued",
		},
		[]string{"kind"},
	)

	TokensConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundrolink_tokens_consumed_total",
			Help: "Tokens used successfully",
		},
		[]string{"kind"},
	)

	// TokensRejected counts lookups of absent or expired tokens
	TokensRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundrolink_tokens_rejected_total",
			Help: "Token lookups that were invalid or expired",
		},
		[]string{"kind"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundrolink_events_published_total",
			Help: "Domain events handed to the publisher",
		},
		[]string{"type", "result"},
	)
)
