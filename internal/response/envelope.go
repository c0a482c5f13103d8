// Package response decodes the {meta, data} envelope the controller wraps
// around every API response.
package response

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

// RCOK is the meta.rc value of a successful call.
const RCOK = "ok"

// ErrMalformed is returned when a body is not a single JSON value or the
// envelope has an unexpected shape.
var ErrMalformed = errors.New("malformed controller response")

// APIError is a failure reported by the controller through meta.rc.
type APIError struct {
	// Code is the meta.rc value (usually "error").
	Code string

	// Message is meta.msg, e.g. "api.err.LoginRequired".
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "controller returned rc=" + e.Code
	}
	return e.Message
}

// Decode parses body and unwraps the envelope:
//   - meta.rc other than "ok" yields *APIError carrying meta.msg
//   - a data field is returned as the result
//   - anything else is returned as decoded
//
// Numbers are decoded as json.Number.
func Decode(body []byte) (any, error) {
	value, err := decodeValue(body)
	if err != nil {
		return nil, err
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}

	if rawMeta, ok := obj["meta"]; ok {
		if err := checkMeta(rawMeta); err != nil {
			return nil, err
		}
	}

	if data, ok := obj["data"]; ok {
		return data, nil
	}

	return obj, nil
}

func decodeValue(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode response body"), ErrMalformed)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(ErrMalformed, "trailing data after JSON value")
	}

	return value, nil
}

func checkMeta(rawMeta any) error {
	meta, ok := rawMeta.(map[string]any)
	if !ok {
		return errors.Wrapf(ErrMalformed, "meta is %T, want object", rawMeta)
	}

	rc, _ := meta["rc"].(string)
	if rc == RCOK {
		return nil
	}

	msg, _ := meta["msg"].(string)

	return &APIError{Code: rc, Message: msg}
}
