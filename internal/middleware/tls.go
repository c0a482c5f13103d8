package middleware

import (
	"crypto/tls"
	"net/http"
)

// TLSConfig returns a middleware that installs config on the underlying
// *http.Transport. It must be the innermost middleware: it replaces the
// transport rather than wrapping it.
func TLSConfig(config *tls.Config) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		transport, ok := next.(*http.Transport)
		if !ok {
			defaultTransport, ok := http.DefaultTransport.(*http.Transport)
			if !ok {
				return next
			}
			transport = defaultTransport
		}

		transport = transport.Clone()
		transport.TLSClientConfig = config

		return transport
	}
}

// ControllerTLS returns the TLS settings for a controller connection.
// Controllers ship with self-signed certificates on port 8443, so
// verification is usually disabled.
func ControllerTLS(insecureSkipVerify bool) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // User-configurable, controllers use self-signed certs
	}
}
