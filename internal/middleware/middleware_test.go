package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-unifi-controller/internal/middleware"
)

func TestHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"), "explicit header must win")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	transport := middleware.Headers(map[string]string{
		"Accept":     "application/json",
		"User-Agent": "go-unifi-controller",
	})(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	req.Header.Set("User-Agent", "custom-agent")

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHeadersDoNotModifyOriginalRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	transport := middleware.Headers(map[string]string{"Accept": "application/json"})(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	originalHeaders := len(req.Header)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Len(t, req.Header, originalHeaders)
}

func TestTLSConfig(t *testing.T) {
	t.Parallel()

	config := &tls.Config{
		MinVersion: tls.VersionTLS13,
	}

	transport := middleware.TLSConfig(config)(http.DefaultTransport)

	httpTransport, ok := transport.(*http.Transport)
	require.True(t, ok, "transport is not *http.Transport")
	require.NotNil(t, httpTransport.TLSClientConfig)

	assert.Equal(t, uint16(tls.VersionTLS13), httpTransport.TLSClientConfig.MinVersion)
	assert.NotSame(t, http.DefaultTransport, transport, "default transport must be cloned")
}

func TestTLSConfigAgainstSelfSignedServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	t.Run("verification enabled", func(t *testing.T) {
		t.Parallel()

		transport := middleware.TLSConfig(middleware.ControllerTLS(false))(http.DefaultTransport)

		req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
		resp, err := transport.RoundTrip(req)
		if resp != nil {
			resp.Body.Close()
		}

		require.Error(t, err)

		var certErr *tls.CertificateVerificationError
		assert.ErrorAs(t, err, &certErr, "want a certificate error, got %v", err)
	})

	t.Run("verification disabled", func(t *testing.T) {
		t.Parallel()

		transport := middleware.TLSConfig(middleware.ControllerTLS(true))(http.DefaultTransport)

		req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestControllerTLS(t *testing.T) {
	t.Parallel()

	config := middleware.ControllerTLS(true)
	require.NotNil(t, config)

	assert.True(t, config.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), config.MinVersion)
	assert.False(t, middleware.ControllerTLS(false).InsecureSkipVerify)
}
