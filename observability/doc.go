// Package observability provides logging and metrics hooks for the
// controller client.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs.
// Use NewSlogLogger to plug in a *slog.Logger:
//
//	client, err := controller.NewWithConfig(ctx, &controller.ClientConfig{
//		Host:     "192.168.1.99",
//		Username: "admin",
//		Password: "p4ssw0rd",
//		Logger:   observability.NewSlogLogger(slog.Default()),
//	})
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks:
//   - HTTP request count, status codes, and duration
//   - Client-side rate limiter waits
//   - Commands sent to the station and device managers
//   - Error occurrences by kind
//
// # Default Behavior
//
// Without a logger or metrics recorder the client uses no-op
// implementations that discard all events.
//
// See examples/observability/main.go for a complete example.
package observability
