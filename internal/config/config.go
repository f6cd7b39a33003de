package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Default configuration values.
const (
	defaultServiceName       = "search-probe"
	defaultServiceVersion    = "1.0.0"
	defaultESScheme          = "http"
	defaultESHost            = "localhost"
	defaultESPort            = 9200
	defaultESTimeout         = 30 * time.Second
	defaultESPingTimeout     = 5 * time.Second
	defaultConnectAttempts   = 5
	defaultConnectDelay      = 2 * time.Second
	defaultConnectMaxDelay   = 10 * time.Second
	defaultConnectMultiplier = 2.0
	defaultMaxIdleConns      = 100
	defaultMaxIdlePerHost    = 10
	defaultIdleConnTimeout   = 90 * time.Second
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultFixtureTimeout    = 30 * time.Second

	// DefaultAccountsURL is the public 1000-document bank accounts fixture.
	DefaultAccountsURL = "https://raw.githubusercontent.com/elastic/elasticsearch/master/docs/src/test/resources/accounts.json"
)

// Config holds the application configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Logging       LoggingConfig       `yaml:"logging"`
	Fixtures      FixturesConfig      `yaml:"fixtures"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// ServiceConfig holds service identity.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// ElasticsearchConfig describes how to reach the search service.
// URL takes precedence over Scheme/Host/Port when set.
type ElasticsearchConfig struct {
	URL                string        `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Scheme             string        `env:"ES_SCHEME"              yaml:"scheme"`
	Host               string        `env:"ES_HOST"                yaml:"host"`
	Port               int           `env:"ES_PORT"                yaml:"port"`
	Username           string        `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password           string        `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	APIKey             string        `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	CloudID            string        `env:"ELASTICSEARCH_CLOUD_ID" yaml:"cloud_id"`
	CAFile             string        `env:"ELASTICSEARCH_CA_FILE"  yaml:"ca_file"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	MaxRetries         int           `yaml:"max_retries"`
	Timeout            time.Duration `yaml:"timeout"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	ConnectRetry       RetryConfig   `yaml:"connect_retry"`
	Pool               PoolConfig    `yaml:"pool"`
}

// RetryConfig configures backoff for the startup ping and visibility polling.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

// PoolConfig sizes the HTTP connection pool.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// FixturesConfig points at the datasets used by verification scenarios.
type FixturesConfig struct {
	AccountsURL  string        `env:"FIXTURE_ACCOUNTS_URL"  yaml:"accounts_url"`
	AccountsFile string        `env:"FIXTURE_ACCOUNTS_FILE" yaml:"accounts_file"`
	Timeout      time.Duration `yaml:"timeout"`
}

// MetricsConfig toggles Prometheus instrumentation of the client transport.
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" yaml:"enabled"`
}

// Address returns the base URL of the search service.
func (c *ElasticsearchConfig) Address() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: c.Scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	}
	return u.String()
}

// Load loads configuration from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	return LoadWithDefaults[Config](path, true, SetDefaults)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

// SetDefaults fills zero values in cfg.
func SetDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setLoggingDefaults(&cfg.Logging)
	setFixturesDefaults(&cfg.Fixtures)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.Scheme == "" {
		e.Scheme = defaultESScheme
	}
	if e.Host == "" {
		e.Host = defaultESHost
	}
	if e.Port == 0 {
		e.Port = defaultESPort
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeout
	}
	if e.PingTimeout == 0 {
		e.PingTimeout = defaultESPingTimeout
	}

	r := &e.ConnectRetry
	if r.MaxAttempts == 0 {
		r.MaxAttempts = defaultConnectAttempts
	}
	if r.InitialDelay == 0 {
		r.InitialDelay = defaultConnectDelay
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = defaultConnectMaxDelay
	}
	if r.Multiplier == 0 {
		r.Multiplier = defaultConnectMultiplier
	}

	p := &e.Pool
	if p.MaxIdleConns == 0 {
		p.MaxIdleConns = defaultMaxIdleConns
	}
	if p.MaxIdleConnsPerHost == 0 {
		p.MaxIdleConnsPerHost = defaultMaxIdlePerHost
	}
	if p.IdleConnTimeout == 0 {
		p.IdleConnTimeout = defaultIdleConnTimeout
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setFixturesDefaults(f *FixturesConfig) {
	if f.AccountsURL == "" {
		f.AccountsURL = DefaultAccountsURL
	}
	if f.Timeout == 0 {
		f.Timeout = defaultFixtureTimeout
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	es := c.Elasticsearch
	if es.URL != "" {
		u, err := url.Parse(es.URL)
		if err != nil || u.Host == "" {
			return &ValidationError{Field: "elasticsearch.url", Message: "must be an absolute URL"}
		}
		if err := ValidateScheme("elasticsearch.url", u.Scheme); err != nil {
			return err
		}
	} else {
		if err := ValidateScheme("elasticsearch.scheme", es.Scheme); err != nil {
			return err
		}
		if es.Host == "" {
			return &ValidationError{Field: "elasticsearch.host", Message: "is required"}
		}
		if err := ValidatePort("elasticsearch.port", es.Port); err != nil {
			return err
		}
	}
	if es.MaxRetries < 0 {
		return &ValidationError{Field: "elasticsearch.max_retries", Message: "must not be negative"}
	}
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return ValidateLogFormat(c.Logging.Format)
}
