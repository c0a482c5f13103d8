// Package config loads controller connection settings for the command-line
// tools from a YAML file and UNIFI_* environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lexfrei/go-unifi-controller/api/controller"
	"github.com/lexfrei/go-unifi-controller/observability"
)

// Environment variables. Each one overrides the matching file setting.
const (
	EnvConfig    = "UNIFI_CONFIG"
	EnvHost      = "UNIFI_HOST"
	EnvPort      = "UNIFI_PORT"
	EnvUsername  = "UNIFI_USERNAME"
	EnvPassword  = "UNIFI_PASSWORD"
	EnvInsecure  = "UNIFI_INSECURE"
	EnvTimeout   = "UNIFI_TIMEOUT"
	EnvRateLimit = "UNIFI_RATE_LIMIT"
	EnvLogLevel  = "UNIFI_LOG_LEVEL"
)

// ErrInvalid is returned for settings that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the connection configuration of the command-line tools.
type Config struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	Insecure  bool          `yaml:"insecure"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"`
	LogLevel  string        `yaml:"log_level"`
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Default returns the settings used when neither file nor environment sets
// a value. Controllers ship with self-signed certificates, so verification
// is off unless enabled explicitly.
func Default() *Config {
	return &Config{
		Port:      controller.DefaultPort,
		Insecure:  true,
		Timeout:   controller.DefaultTimeout,
		RateLimit: controller.DefaultRateLimit,
		LogLevel:  "warn",
	}
}

// Path picks the config file: the flag value wins over UNIFI_CONFIG.
// An empty result means no file.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvConfig)
}

// Load reads path (skipped when empty), applies the process environment
// and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with a custom environment lookup.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvHost); ok {
		c.Host = v
	}
	if v, ok := lookup(EnvUsername); ok {
		c.Username = v
	}
	if v, ok := lookup(EnvPassword); ok {
		c.Password = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}

	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "invalid %s", EnvPort), ErrInvalid)
		}
		c.Port = port
	}

	if v, ok := lookup(EnvRateLimit); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "invalid %s", EnvRateLimit), ErrInvalid)
		}
		c.RateLimit = limit
	}

	if v, ok := lookup(EnvInsecure); ok {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "invalid %s", EnvInsecure), ErrInvalid)
		}
		c.Insecure = insecure
	}

	if v, ok := lookup(EnvTimeout); ok {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "invalid %s", EnvTimeout), ErrInvalid)
		}
		c.Timeout = timeout
	}

	return nil
}

// Validate checks that the configuration can be used to connect.
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return errors.WithHint(errors.Wrap(ErrInvalid, "host is required"), "set host in the config file or "+EnvHost)
	case c.Username == "":
		return errors.WithHint(errors.Wrap(ErrInvalid, "username is required"), "set username in the config file or "+EnvUsername)
	case c.Port <= 0 || c.Port > 65535:
		return errors.Wrapf(ErrInvalid, "port %d out of range", c.Port)
	case c.Timeout <= 0:
		return errors.Wrapf(ErrInvalid, "timeout must be positive, got %s", c.Timeout)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "invalid log level %q", c.LogLevel), ErrInvalid)
	}
	return level, nil
}

// ClientConfig converts the settings into a controller client configuration.
func (c *Config) ClientConfig(logger observability.Logger, metrics observability.MetricsRecorder) *controller.ClientConfig {
	return &controller.ClientConfig{
		Host:               c.Host,
		Port:               c.Port,
		Username:           c.Username,
		Password:           c.Password,
		InsecureSkipVerify: c.Insecure,
		Timeout:            c.Timeout,
		RateLimitPerMinute: c.RateLimit,
		Logger:             logger,
		Metrics:            metrics,
	}
}
