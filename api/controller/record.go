package controller

import (
	"encoding/json"
	"maps"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// DeviceStateConnected is the "state" value of an adopted, online device.
const DeviceStateConnected = 1

// Record is one device, client or WLAN record exactly as the controller
// returned it. No schema is enforced; numbers are json.Number.
type Record map[string]any

// String returns the string field key, or "" if it is absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns field key as an integer. Numeric strings are accepted;
// fractional values are truncated and values outside the int64 range fail.
func (r Record) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case json.Number:
		return parseInt(v.String())
	case string:
		return parseInt(v)
	case float64:
		return floatToInt(v)
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// MAC returns the "mac" field.
func (r Record) MAC() string { return r.String("mac") }

// Name returns the "name" field.
func (r Record) Name() string { return r.String("name") }

// State returns the "state" field. Only an integral JSON number counts;
// anything else, including a missing field, is 0.
func (r Record) State() int64 {
	var (
		state int64
		err   error
	)

	switch v := r["state"].(type) {
	case json.Number:
		state, err = strconv.ParseInt(v.String(), 10, 64)
	case int:
		state = int64(v)
	case int64:
		state = v
	}

	if err != nil {
		return 0
	}
	return state
}

func parseInt(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return floatToInt(f)
}

// floatToInt truncates f, rejecting NaN and values outside the int64 range.
func floatToInt(f float64) (int64, bool) {
	// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

// Payload is the JSON body of a command.
type Payload map[string]any

// with returns a copy of p with the given key set. p is never modified.
func (p Payload) with(key string, value any) Payload {
	out := make(Payload, len(p)+1)
	maps.Copy(out, p)
	out[key] = value
	return out
}

// toRecords converts the data of an envelope into records.
func toRecords(data any) ([]Record, error) {
	items, ok := data.([]any)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedResponse, "data is %T, want array", data)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedResponse, "data[%d] is %T, want object", i, item)
		}
		records = append(records, Record(obj))
	}

	return records, nil
}
