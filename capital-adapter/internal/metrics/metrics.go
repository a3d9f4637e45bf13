package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapitalRequestsTotal tracks outbound API calls to Capital.com.
	CapitalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capital_api_requests_total",
			Help: "Total number of Capital.com API requests made (by endpoint, method, and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	// CapitalRequestDuration measures the duration of outbound Capital.com API calls.
	CapitalRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "capital_api_request_duration_seconds",
			Help:    "Duration of Capital.com API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint", "method"},
	)

	// SessionAuthenticated is 1 while the adapter holds a usable session token pair.
	SessionAuthenticated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "capital_session_authenticated",
			Help: "Whether the Capital.com session currently holds both session tokens.",
		},
	)

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capital_session_logins_total",
			Help: "Number of Capital.com login attempts by result.",
		},
		[]string{"result"},
	)

	// NATSRepliesTotal counts replies sent by the NATS responder.
	NATSRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capital_nats_replies_total",
			Help: "Number of NATS request replies by subject and result.",
		},
		[]string{"subject", "result"},
	)
)

// StatusLabel renders a status code label; transport failures are reported as "error".
func StatusLabel(code int) string {
	if code < 0 {
		return "error"
	}
	return strconv.Itoa(code)
}

// IncCapitalRequest increments the Capital.com API request counter.
func IncCapitalRequest(endpoint, method string, status int) {
	CapitalRequestsTotal.WithLabelValues(endpoint, method, StatusLabel(status)).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

// SetAuthenticated mirrors the session state into the SessionAuthenticated gauge.
func SetAuthenticated(ok bool) {
	if ok {
		SessionAuthenticated.Set(1)
		return
	}
	SessionAuthenticated.Set(0)
}

// IncLogin increments the login counter for result ("success", "rejected", "missing_credentials").
func IncLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

// IncNATSReply increments the NATS reply counter.
func IncNATSReply(subject, result string) {
	NATSRepliesTotal.WithLabelValues(subject, result).Inc()
}
