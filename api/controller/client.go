package controller

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-unifi-controller/internal/httpclient"
	"github.com/lexfrei/go-unifi-controller/internal/middleware"
	"github.com/lexfrei/go-unifi-controller/internal/response"
	"github.com/lexfrei/go-unifi-controller/observability"
)

const (
	// DefaultPort is the controller's HTTPS management port.
	DefaultPort = 8443

	// DefaultRateLimit is the default client-side rate limit (requests per minute).
	DefaultRateLimit = 1000

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "go-unifi-controller"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 32 << 20
)

// Client talks to a single controller with one authenticated session.
// The session cookie lives in a jar owned by the client.
type Client struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *httpclient.Client
	logger     observability.Logger
	metrics    observability.MetricsRecorder
}

// Compile-time check to ensure Client implements ControllerAPIClient interface.
var _ ControllerAPIClient = (*Client)(nil)

// ClientConfig holds configuration for the controller client.
type ClientConfig struct {
	// Host is the controller address, IP or name
	Host string

	// Port is the HTTPS port (defaults to 8443)
	Port int

	// BaseURL overrides Host and Port, e.g. "https://unifi.local:8443/"
	BaseURL string

	// Username to log in with
	Username string

	// Password to log in with
	Password string

	// HTTPClient is the HTTP client to use (optional). Its transport is
	// used as-is; InsecureSkipVerify and Timeout are then ignored.
	HTTPClient *http.Client

	// InsecureSkipVerify disables TLS certificate verification (controllers use self-signed certs)
	InsecureSkipVerify bool

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// RateLimitPerMinute sets the rate limit (defaults to 1000, negative disables)
	RateLimitPerMinute int

	// UserAgent overrides DefaultUserAgent
	UserAgent string

	// Logger for observability (optional, uses noop logger if nil)
	Logger observability.Logger

	// Metrics recorder for observability (optional, uses noop recorder if nil)
	Metrics observability.MetricsRecorder
}

// New creates a client for the controller at https://{host}:8443/ and logs in.
//
// TLS verification is disabled because controllers ship with self-signed
// certificates. For custom configuration, use NewWithConfig.
//
// Example:
//
//	client, err := controller.New(ctx, "192.168.1.99", "admin", "p4ssw0rd")
func New(ctx context.Context, host, username, password string) (*Client, error) {
	return NewWithConfig(ctx, &ClientConfig{
		Host:               host,
		Username:           username,
		Password:           password,
		InsecureSkipVerify: true,
	})
}

// NewWithConfig creates a client with custom configuration and logs in.
// A rejected login fails construction with an error matching
// ErrAuthentication.
//
// Example:
//
//	client, err := controller.NewWithConfig(ctx, &controller.ClientConfig{
//	    Host:               "unifi.local",
//	    Username:           "admin",
//	    Password:           "p4ssw0rd",
//	    InsecureSkipVerify: true,
//	    Timeout:            10 * time.Second,
//	})
func NewWithConfig(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, invalidArgument("config is required")
	}
	if cfg.Username == "" {
		return nil, invalidArgument("username is required")
	}

	baseURL, err := resolveBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = DefaultRateLimit
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	logger := observability.LoggerOrNoop(cfg.Logger).With(
		observability.Field{Key: "controller", Value: baseURL.Host},
	)
	metrics := observability.MetricsOrNoop(cfg.Metrics)

	jar, err := httpclient.NewCookieJar()
	if err != nil {
		return nil, err
	}

	// Order from outside to inside: Observability -> RateLimit -> Headers -> TLS
	chain := []httpclient.Middleware{
		middleware.Observability(logger, metrics),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: middleware.NewLimiter(cfg.RateLimitPerMinute),
			Logger:  logger,
			Metrics: metrics,
		}),
		middleware.Headers(map[string]string{
			"Accept":     "application/json",
			"User-Agent": cfg.UserAgent,
		}),
	}

	opts := []httpclient.Option{httpclient.WithCookieJar(jar)}
	if cfg.HTTPClient != nil {
		opts = append([]httpclient.Option{httpclient.WithHTTPClient(cfg.HTTPClient)}, opts...)
	} else {
		if cfg.Timeout == 0 {
			cfg.Timeout = DefaultTimeout
		}
		chain = append(chain, middleware.TLSConfig(middleware.ControllerTLS(cfg.InsecureSkipVerify)))
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}
	opts = append(opts, httpclient.WithMiddleware(chain...))

	client := &Client{
		baseURL:    baseURL,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpclient.New(opts...),
		logger:     logger,
		metrics:    metrics,
	}

	logger.Debug("controller client created", observability.Field{Key: "url", Value: baseURL.String()})

	if err := client.Login(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

func resolveBaseURL(cfg *ClientConfig) (*url.URL, error) {
	raw := cfg.BaseURL
	if raw == "" {
		if cfg.Host == "" {
			return nil, invalidArgument("controller host is required")
		}

		port := cfg.Port
		if port == 0 {
			port = DefaultPort
		}

		raw = "https://" + net.JoinHostPort(cfg.Host, strconv.Itoa(port)) + "/"
	}

	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid controller URL %q", raw), ErrInvalidArgument)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, invalidArgument("controller URL %q must be absolute", raw)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	return baseURL, nil
}

// BaseURL returns the controller base URL, always ending in "/".
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login authenticates and stores the session cookie. It runs once from
// NewWithConfig; call it again to start a fresh session.
//
// A body that is not JSON is accepted: older controllers answer the form
// login with an HTML redirect.
func (c *Client) Login(ctx context.Context) error {
	c.logger.Debug("login", observability.Field{Key: "username", Value: c.username})

	form := url.Values{
		"login":    {"login"},
		"username": {c.username},
		"password": {c.password},
	}

	status, body, err := c.do(ctx, http.MethodPost, "login", form)
	if err != nil {
		c.metrics.RecordError("login", errorKind(err))
		return authError(err)
	}

	_, err = response.Decode(body)
	if apiErr, ok := AsAPIError(err); ok {
		c.metrics.RecordError("login", "APIError")
		return authError(errors.Wrapf(apiErr, "login as %s rejected", c.username))
	}

	if status >= http.StatusBadRequest {
		c.metrics.RecordError("login", "TransportError")
		return authError(statusError(http.MethodPost, "login", status))
	}

	return nil
}

func authError(err error) error {
	return errors.WithHint(
		errors.Mark(errors.Wrap(err, "login failed"), ErrAuthentication),
		"check the controller address, username and password",
	)
}

// Read sends a request to path (relative to the base URL) and returns the
// unwrapped envelope: the data field if present, otherwise the whole
// decoded value. A nil form sends a GET, anything else a form POST.
func (c *Client) Read(ctx context.Context, path string, form url.Values) (any, error) {
	method := http.MethodGet
	if form != nil {
		method = http.MethodPost
	}

	status, body, err := c.do(ctx, method, path, form)
	if err != nil {
		c.metrics.RecordError("read", errorKind(err))
		return nil, err
	}

	result, err := response.Decode(body)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			c.metrics.RecordError("read", "APIError")
			return nil, errors.Wrapf(apiErr, "controller rejected %s", path)
		}

		if status >= http.StatusBadRequest {
			c.metrics.RecordError("read", "TransportError")
			return nil, statusError(method, path, status)
		}

		c.metrics.RecordError("read", "MalformedResponseError")
		return nil, errors.Wrapf(err, "invalid response from %s", path)
	}

	if status >= http.StatusBadRequest {
		c.metrics.RecordError("read", "TransportError")
		return nil, statusError(method, path, status)
	}

	return result, nil
}

// ReadJSON JSON-encodes payload into the "json" form field and calls Read.
func (c *Client) ReadJSON(ctx context.Context, path string, payload any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to encode payload"), ErrInvalidArgument)
	}

	return c.Read(ctx, path, url.Values{"json": {string(encoded)}})
}

// do performs one request and returns the status code and the body.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) (int, []byte, error) {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})

	body := io.Reader(http.NoBody)
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return 0, nil, errors.Mark(errors.Wrapf(err, "failed to build request for %s", path), ErrInvalidArgument)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Mark(errors.Wrapf(err, "%s %s", method, path), ErrTransport)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, errors.Mark(errors.Wrapf(err, "failed to read response from %s", path), ErrTransport)
	}

	return resp.StatusCode, data, nil
}

func statusError(method, path string, status int) error {
	return errors.Mark(errors.Newf("%s %s: unexpected status %d", method, path, status), ErrTransport)
}
