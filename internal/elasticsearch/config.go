package elasticsearch

import (
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
)

// Default connection values.
const (
	DefaultURL                 = "http://localhost:9200"
	DefaultPingTimeout         = 5 * time.Second
	DefaultResponseTimeout     = 30 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
)

// Config holds search client configuration.
type Config struct {
	// URL is the service base URL (e.g. http://localhost:9200).
	URL string

	// Username and Password enable basic auth when both are set.
	Username string
	Password string

	// APIKey takes precedence over basic auth.
	APIKey string

	// CloudID selects an Elastic Cloud deployment; it requires APIKey.
	CloudID string

	// TLS configures secure connections.
	TLS TLSConfig

	// MaxRetries is the number of transport-level retries per request.
	// Zero disables retries entirely.
	MaxRetries int

	// ResponseTimeout bounds the wait for response headers.
	ResponseTimeout time.Duration

	// PingTimeout bounds each startup ping attempt.
	PingTimeout time.Duration

	// ConnectRetry governs the startup ping. Nil uses 5 attempts, 2s..10s.
	ConnectRetry *retry.Config

	// Pool sizes the connection pool.
	Pool PoolConfig

	// Transport replaces the pooled transport. Used by tests.
	Transport http.RoundTripper
}

// TLSConfig holds TLS configuration.
type TLSConfig struct {
	InsecureSkipVerify bool

	// CACert is a PEM bundle. CAFile is read when CACert is empty.
	CACert []byte
	CAFile string
}

// PoolConfig sizes the HTTP connection pool.
type PoolConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	c.URL = normalizeURL(c.URL)
	if c.PingTimeout == 0 {
		c.PingTimeout = DefaultPingTimeout
	}
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.ConnectRetry == nil {
		c.ConnectRetry = &retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
	if c.Pool.MaxIdleConns == 0 {
		c.Pool.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.Pool.MaxIdleConnsPerHost == 0 {
		c.Pool.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if c.Pool.IdleConnTimeout == 0 {
		c.Pool.IdleConnTimeout = DefaultIdleConnTimeout
	}
}
