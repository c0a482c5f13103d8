package observability

import "time"

// MetricsRecorder is an interface for recording client metrics.
// Implementations can use any metrics library (Prometheus, StatsD, etc.).
type MetricsRecorder interface {
	// RecordHTTPRequest records an HTTP round trip to the controller.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordRateLimit records time spent waiting for the client-side rate limiter.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordCommand records a command sent to a controller manager (stamgr, devmgr).
	RecordCommand(manager, command string, success bool)

	// RecordError records an error by operation and kind
	// (e.g. "read", "APIError").
	RecordError(operation, errorType string)
}

type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns a metrics recorder that does nothing.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordCommand(string, string, bool)                   {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}

// MetricsOrNoop returns metrics, or NoopMetricsRecorder if metrics is nil.
//
//nolint:ireturn // Nil-safe accessor for the MetricsRecorder interface
func MetricsOrNoop(metrics MetricsRecorder) MetricsRecorder {
	if metrics == nil {
		return NoopMetricsRecorder()
	}
	return metrics
}
