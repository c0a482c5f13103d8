// Package middleware provides the RoundTripper layers of the controller
// HTTP client.
package middleware

import (
	"maps"
	"net/http"
)

// Headers returns a middleware that sets the given headers on every request
// that does not already carry them. The controller client uses it for
// Accept and User-Agent.
func Headers(headers map[string]string) func(http.RoundTripper) http.RoundTripper {
	fixed := make(http.Header, len(headers))
	for name, value := range headers {
		fixed.Set(name, value)
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			next:    next,
			headers: fixed,
		}
	}
}

type headerTransport struct {
	next    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = cloneRequest(req)

	for name, values := range t.headers {
		if req.Header.Get(name) == "" {
			req.Header[name] = values
		}
	}

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
