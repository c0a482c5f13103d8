// Package testutil provides a fake UniFi controller for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test credentials accepted by the mock controller.
const (
	TestUsername = "admin"
	TestPassword = "p4ssw0rd"

	SessionCookie = "unifises"
	sessionValue  = "c2Vzc2lvbi1mb3ItdGVzdHM"
)

// Canned envelopes.
const (
	OKEmpty       = `{"meta":{"rc":"ok"},"data":[]}`
	LoginRequired = `{"meta":{"rc":"error","msg":"api.err.LoginRequired"},"data":[]}`
	InvalidLogin  = `{"meta":{"rc":"error","msg":"api.err.Invalid"},"data":[]}`
)

// Request is one authenticated API call seen by the mock controller.
type Request struct {
	Method string
	Path   string

	// Payload is the decoded "json" form field, nil when absent.
	Payload map[string]any
}

// MockController is an httptest TLS server speaking the controller's login
// and envelope protocol. Unknown API paths answer with OKEmpty.
type MockController struct {
	Server *httptest.Server

	t         *testing.T
	mu        sync.Mutex
	responses map[string]string
	handlers  map[string]http.HandlerFunc
	requests  []Request
	logins    int
}

// NewMockController starts a mock controller and registers its shutdown
// with t.Cleanup.
func NewMockController(t *testing.T) *MockController {
	t.Helper()

	mc := &MockController{
		t:         t,
		responses: make(map[string]string),
		handlers:  make(map[string]http.HandlerFunc),
	}

	mc.Server = httptest.NewTLSServer(http.HandlerFunc(mc.serveHTTP))
	t.Cleanup(mc.Server.Close)

	return mc
}

// BaseURL returns the controller base URL with a trailing slash.
func (mc *MockController) BaseURL() string {
	return mc.Server.URL + "/"
}

// SetResponse sets the body returned (with 200 OK) for path, e.g. "/api/stat/sta".
func (mc *MockController) SetResponse(path, body string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.responses[path] = body
}

// SetHandler overrides the handling of path, including "/login".
func (mc *MockController) SetHandler(path string, handler http.HandlerFunc) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.handlers[path] = handler
}

// Requests returns the authenticated API calls received so far.
func (mc *MockController) Requests() []Request {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return append([]Request(nil), mc.requests...)
}

// RequestsTo returns the recorded calls to path.
func (mc *MockController) RequestsTo(path string) []Request {
	var matched []Request
	for _, req := range mc.Requests() {
		if req.Path == path {
			matched = append(matched, req)
		}
	}
	return matched
}

// Logins returns the number of successful logins.
func (mc *MockController) Logins() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.logins
}

func (mc *MockController) serveHTTP(w http.ResponseWriter, r *http.Request) {
	mc.mu.Lock()
	handler, hasHandler := mc.handlers[r.URL.Path]
	mc.mu.Unlock()

	if hasHandler {
		handler(w, r)
		return
	}

	if r.URL.Path == "/login" {
		mc.serveLogin(w, r)
		return
	}

	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value != sessionValue {
		WriteEnvelope(mc.t, w, http.StatusUnauthorized, LoginRequired)
		return
	}

	req := Request{Method: r.Method, Path: r.URL.Path}
	if r.Method == http.MethodPost {
		assert.NoError(mc.t, r.ParseForm(), "failed to parse form body")
		assert.Equal(mc.t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		if raw := r.PostForm.Get("json"); raw != "" {
			assert.NoError(mc.t, json.Unmarshal([]byte(raw), &req.Payload), "json form field must be valid JSON")
		}
	}

	mc.mu.Lock()
	mc.requests = append(mc.requests, req)
	body, ok := mc.responses[r.URL.Path]
	mc.mu.Unlock()

	if !ok {
		body = OKEmpty
	}

	WriteEnvelope(mc.t, w, http.StatusOK, body)
}

func (mc *MockController) serveLogin(w http.ResponseWriter, r *http.Request) {
	assert.Equal(mc.t, http.MethodPost, r.Method, "login must be a POST")
	assert.NoError(mc.t, r.ParseForm(), "failed to parse login form")
	assert.Equal(mc.t, "login", r.PostForm.Get("login"))

	if r.PostForm.Get("username") != TestUsername || r.PostForm.Get("password") != TestPassword {
		WriteEnvelope(mc.t, w, http.StatusBadRequest, InvalidLogin)
		return
	}

	mc.mu.Lock()
	mc.logins++
	mc.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sessionValue, Path: "/", Secure: true, HttpOnly: true})
	WriteEnvelope(mc.t, w, http.StatusOK, OKEmpty)
}

// WriteEnvelope writes a JSON body with the given status.
func WriteEnvelope(t *testing.T, w http.ResponseWriter, statusCode int, body string) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(statusCode)
	_, err := w.Write([]byte(body))
	assert.NoError(t, err, "Failed to write response body")
}
