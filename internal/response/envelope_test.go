package response_test

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-unifi-controller/internal/response"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("ok envelope returns data", func(t *testing.T) {
		t.Parallel()

		result, err := response.Decode([]byte(`{"meta":{"rc":"ok"},"data":[{"name":"Study","mac":"dc:9f:db:1a:59:07"}]}`))
		require.NoError(t, err)

		assert.Equal(t, []any{
			map[string]any{"name": "Study", "mac": "dc:9f:db:1a:59:07"},
		}, result)
	})

	t.Run("data without meta", func(t *testing.T) {
		t.Parallel()

		result, err := response.Decode([]byte(`{"data":[]}`))
		require.NoError(t, err)

		assert.Equal(t, []any{}, result)
	})

	t.Run("no meta and no data returns object", func(t *testing.T) {
		t.Parallel()

		result, err := response.Decode([]byte(`{"up":true,"server_version":"5.4.11"}`))
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"up": true, "server_version": "5.4.11"}, result)
	})

	t.Run("ok meta without data returns object", func(t *testing.T) {
		t.Parallel()

		result, err := response.Decode([]byte(`{"meta":{"rc":"ok"}}`))
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"meta": map[string]any{"rc": "ok"}}, result)
	})

	t.Run("non-object value returned unchanged", func(t *testing.T) {
		t.Parallel()

		result, err := response.Decode([]byte(`[1,2]`))
		require.NoError(t, err)

		assert.Equal(t, []any{json.Number("1"), json.Number("2")}, result)
	})

	t.Run("numbers keep precision", func(t *testing.T) {
		t.Parallel()

		result, err := response.Decode([]byte(`{"data":[{"rx_bytes":9007199254740993}]}`))
		require.NoError(t, err)

		records, ok := result.([]any)
		require.True(t, ok)

		record, ok := records[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, json.Number("9007199254740993"), record["rx_bytes"])
	})
}

func TestDecodeAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "login required",
			body:     `{"meta":{"rc":"error","msg":"api.err.LoginRequired"},"data":[]}`,
			wantCode: "error",
			wantMsg:  "api.err.LoginRequired",
		},
		{
			name:     "invalid payload",
			body:     `{"meta":{"rc":"error","msg":"api.err.InvalidPayload"}}`,
			wantCode: "error",
			wantMsg:  "api.err.InvalidPayload",
		},
		{
			name:     "missing rc",
			body:     `{"meta":{"msg":"api.err.Invalid"}}`,
			wantCode: "",
			wantMsg:  "api.err.Invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := response.Decode([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, result)

			var apiErr *response.APIError
			require.True(t, errors.As(err, &apiErr))

			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestAPIErrorWithoutMessage(t *testing.T) {
	t.Parallel()

	err := &response.APIError{Code: "error"}
	assert.Equal(t, "controller returned rc=error", err.Error())
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ``},
		{name: "html login page", body: `<html><body>UniFi Controller</body></html>`},
		{name: "truncated", body: `{"meta":{"rc":"ok"},"data":[`},
		{name: "trailing data", body: `{"data":[]} {"data":[]}`},
		{name: "meta not an object", body: `{"meta":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := response.Decode([]byte(tt.body))
			require.Error(t, err)

			assert.True(t, errors.Is(err, response.ErrMalformed), "error %v should be ErrMalformed", err)
		})
	}
}
