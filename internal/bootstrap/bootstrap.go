// Package bootstrap wires configuration, logging, metrics and the search
// client for the search-probe commands.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/search-probe/internal/config"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/jonesrussell/north-cloud/search-probe/internal/metrics"
	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
	"github.com/jonesrussell/north-cloud/search-probe/internal/scenario"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultConfigPath is used when neither --config nor CONFIG_PATH is set.
const DefaultConfigPath = "config.yml"

// Options are the command-line overrides applied on top of the config file.
type Options struct {
	ConfigPath string
	Debug      bool
}

// App holds the initialized dependencies of one command invocation.
type App struct {
	Config  *config.Config
	Log     logger.Logger
	Metrics *metrics.Metrics
	Client  *elasticsearch.Client
}

// Start loads config, creates the logger and metrics, and connects to the
// search service. Callers must Close the returned App.
func Start(ctx context.Context, opts Options) (*App, error) {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return nil, err
	}

	log.Debug("Starting search probe",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.String("elasticsearch", cfg.Elasticsearch.Address()),
	)

	// Phase 2: Metrics and client
	m := SetupMetrics(cfg)
	client, err := SetupElasticsearch(ctx, cfg, log, m)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to setup Elasticsearch: %w", err)
	}

	return &App{Config: cfg, Log: log, Metrics: m, Client: client}, nil
}

// Close releases the client and flushes the logger.
func (a *App) Close() {
	if a.Client != nil {
		a.Client.Close()
	}
	_ = a.Log.Sync()
}

// LoadConfig loads and validates configuration. An empty path falls back
// to CONFIG_PATH and then DefaultConfigPath.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath(DefaultConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// SetupMetrics returns client metrics on a fresh registry, or nil when
// metrics are disabled.
func SetupMetrics(cfg *config.Config) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New(prometheus.NewRegistry())
}

// SetupElasticsearch connects to the configured search service, retrying
// the startup ping.
func SetupElasticsearch(
	ctx context.Context,
	cfg *config.Config,
	log logger.Logger,
	m *metrics.Metrics,
) (*elasticsearch.Client, error) {
	client, err := elasticsearch.Open(ctx, ElasticsearchConfig(cfg), log, m)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

// ElasticsearchConfig converts file configuration into client configuration.
func ElasticsearchConfig(cfg *config.Config) elasticsearch.Config {
	es := cfg.Elasticsearch
	return elasticsearch.Config{
		URL:      es.Address(),
		Username: es.Username,
		Password: es.Password,
		APIKey:   es.APIKey,
		CloudID:  es.CloudID,
		TLS: elasticsearch.TLSConfig{
			InsecureSkipVerify: es.InsecureSkipVerify,
			CAFile:             es.CAFile,
		},
		MaxRetries:      es.MaxRetries,
		ResponseTimeout: es.Timeout,
		PingTimeout:     es.PingTimeout,
		ConnectRetry:    RetryConfig(es.ConnectRetry),
		Pool: elasticsearch.PoolConfig{
			MaxIdleConns:        es.Pool.MaxIdleConns,
			MaxIdleConnsPerHost: es.Pool.MaxIdleConnsPerHost,
			IdleConnTimeout:     es.Pool.IdleConnTimeout,
		},
	}
}

// RetryConfig converts a backoff policy. A zero policy yields nil so the
// client default applies.
func RetryConfig(rc config.RetryConfig) *retry.Config {
	if rc.MaxAttempts == 0 {
		return nil
	}
	return &retry.Config{
		MaxAttempts:  rc.MaxAttempts,
		InitialDelay: rc.InitialDelay,
		MaxDelay:     rc.MaxDelay,
		Multiplier:   rc.Multiplier,
	}
}

// ScenarioOptions builds verification options from the fixtures section.
func ScenarioOptions(cfg *config.Config) scenario.Options {
	return scenario.Options{
		AccountsURL:    cfg.Fixtures.AccountsURL,
		AccountsFile:   cfg.Fixtures.AccountsFile,
		FixtureTimeout: cfg.Fixtures.Timeout,
	}
}
