// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for listener invocation metrics.
const (
	StatusSuccess    = "success"
	StatusError      = "error"
	StatusMatchError = "match_error"
	StatusSendError  = "send_error"
)

// Result constants for inbound message metrics.
const (
	ResultDispatched      = "dispatched"
	ResultUnmatched       = "unmatched"
	ResultUnauthenticated = "unauthenticated"
	ResultFailed          = "failed"
)

// Messages is the counter for inbound message outcomes.
// Use RegisterMetrics to register this with a Prometheus registry.
var Messages = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatwire_messages_total",
		Help: "Total number of inbound messages by outcome",
	},
	[]string{"result"},
)

// ListenerInvocations is the counter for listener invocations.
// Use RegisterMetrics to register this with a Prometheus registry.
var ListenerInvocations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatwire_listener_invocations_total",
		Help: "Total number of plugin listener invocations",
	},
	[]string{"plugin", "listener", "status"},
)

// DispatchDuration is the histogram for per-plugin dispatch duration,
// covering Process plus the awaited send.
// Use RegisterMetrics to register this with a Prometheus registry.
var DispatchDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "chatwire_dispatch_duration_seconds",
		Help:    "Listener dispatch duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"plugin"},
)

// AuthDenied is the counter for messages rejected by the auth gate.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthDenied = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatwire_auth_denied_total",
		Help: "Total number of messages from unauthenticated senders",
	},
)

// SendFailures is the counter for outbound delivery failures.
// Use RegisterMetrics to register this with a Prometheus registry.
var SendFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "chatwire_send_failures_total",
		Help: "Total number of failed outbound sends",
	},
)

// RegisterMetrics registers dispatch package metrics with the given
// Prometheus registry. This must be called at startup to make metrics
// available on /metrics. Panics if registration fails (following
// prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Messages)
	reg.MustRegister(ListenerInvocations)
	reg.MustRegister(DispatchDuration)
	reg.MustRegister(AuthDenied)
	reg.MustRegister(SendFailures)
}

// RecordMessage increments the inbound message counter.
func RecordMessage(result string) {
	Messages.WithLabelValues(result).Inc()
}

// RecordListenerInvocation increments the listener invocation counter.
func RecordListenerInvocation(pluginName, listenerName, status string) {
	ListenerInvocations.WithLabelValues(pluginName, listenerName, status).Inc()
}

// RecordDispatchDuration records how long one listener's dispatch took.
func RecordDispatchDuration(pluginName string, duration time.Duration) {
	DispatchDuration.WithLabelValues(pluginName).Observe(duration.Seconds())
}
