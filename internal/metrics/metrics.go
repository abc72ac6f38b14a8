package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbridge_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailbridge_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Mailbox metrics
	MessagesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbridge_messages_submitted_total",
			Help: "Messages appended to a mailbox",
		},
		[]string{"mailbox", "sender"},
	)

	MessagesDrained = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbridge_messages_drained_total",
			Help: "Unread messages consumed from a mailbox",
		},
		[]string{"mailbox"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbridge_store_errors_total",
			Help: "Mailbox load and save failures",
		},
		[]string{"mailbox", "op"},
	)

	// Poller metrics
	PollIterations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailbridge_poll_iterations_total",
			Help: "Completed poll iterations",
		},
	)

	ResponderErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailbridge_responder_errors_total",
			Help: "Responder failures, including recovered panics",
		},
	)
)
