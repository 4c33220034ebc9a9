// Package metrics exposes Prometheus instrumentation for the dispatch loop.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Label constants.
const (
	Method   = "method"
	Status   = "status"
	ToolName = "tool_name"
)

// Status label values.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusNotFound = "not_found"
	StatusInvalid  = "invalid_params"
	StatusTimeout  = "timeout"
)

var (
	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// RequestsTotal Total number of requests dispatched, by method and status.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_requests_total",
			Help: "Total number of JSON-RPC requests dispatched",
		},
		[]string{Method, Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ToolCallsTotal Total number of tool invocations, by tool and status.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_tool_calls_total",
			Help: "Total number of tool invocations",
		},
		[]string{ToolName, Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// RequestsInFlight Current number of requests being processed.
	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcp_requests_in_flight",
			Help: "Current number of requests being processed",
		},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// RequestDuration Request processing time in seconds, by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_request_duration_seconds",
			Help:    "Request processing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{Method},
	)
)

//nolint:gochecknoinits // This is how the prometheus magic works.
func init() {
	_ = prometheus.Register(RequestsTotal)
	_ = prometheus.Register(ToolCallsTotal)
	_ = prometheus.Register(RequestsInFlight)
	_ = prometheus.Register(RequestDuration)
}
