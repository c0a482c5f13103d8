package controller

import (
	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-unifi-controller/internal/response"
)

// Error kinds. Every error returned by the client matches at most one of
// the sentinels below via errors.Is, or carries an *APIError retrievable
// with errors.As. Login failures additionally match ErrAuthentication.
var (
	// ErrTransport marks network failures and HTTP error statuses that
	// carry no controller envelope.
	ErrTransport = errors.New("controller transport error")

	// ErrMalformedResponse marks bodies that are not valid JSON or have an
	// unexpected shape.
	ErrMalformedResponse = response.ErrMalformed

	// ErrInvalidArgument marks calls rejected before any request is sent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAuthentication marks a failed login.
	ErrAuthentication = errors.New("controller authentication failed")
)

// APIError is an error reported by the controller in meta.rc/meta.msg.
type APIError = response.APIError

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// errorKind names err for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "InvalidArgumentError"
	case errors.Is(err, ErrMalformedResponse):
		return "MalformedResponseError"
	case errors.Is(err, ErrTransport):
		return "TransportError"
	}

	if _, ok := AsAPIError(err); ok {
		return "APIError"
	}

	return "UnknownError"
}

func invalidArgument(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}
