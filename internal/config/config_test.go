package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/search-probe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "search-probe", cfg.Service.Name)
	assert.Equal(t, "http://localhost:9200", cfg.Elasticsearch.Address())
	assert.Equal(t, 0, cfg.Elasticsearch.MaxRetries)
	assert.Equal(t, 5, cfg.Elasticsearch.ConnectRetry.MaxAttempts)
	assert.Equal(t, config.DefaultAccountsURL, cfg.Fixtures.AccountsURL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
elasticsearch:
  scheme: https
  host: search.internal
  port: 9243
  username: elastic
  timeout: 10s
  connect_retry:
    max_attempts: 2
logging:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://search.internal:9243", cfg.Elasticsearch.Address())
	assert.Equal(t, "elastic", cfg.Elasticsearch.Username)
	assert.Equal(t, 10*time.Second, cfg.Elasticsearch.Timeout)
	assert.Equal(t, 2, cfg.Elasticsearch.ConnectRetry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Elasticsearch.ConnectRetry.InitialDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
elasticsearch:
  host: from-file
  port: 9200
`)
	t.Setenv("ES_HOST", "from-env")
	t.Setenv("ES_PORT", "9201")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("METRICS_ENABLED", "yes")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:9201", cfg.Elasticsearch.Address())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_URLTakesPrecedence(t *testing.T) {
	t.Setenv("ELASTICSEARCH_URL", "http://es:9200")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "http://es:9200", cfg.Elasticsearch.Address())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "elasticsearch: [")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad scheme", func(c *config.Config) { c.Elasticsearch.Scheme = "ftp" }, "elasticsearch.scheme"},
		{"empty host", func(c *config.Config) { c.Elasticsearch.Host = "" }, "elasticsearch.host"},
		{"bad port", func(c *config.Config) { c.Elasticsearch.Port = 70000 }, "elasticsearch.port"},
		{"relative url", func(c *config.Config) { c.Elasticsearch.URL = "localhost" }, "elasticsearch.url"},
		{"negative retries", func(c *config.Config) { c.Elasticsearch.MaxRetries = -1 }, "elasticsearch.max_retries"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var vErr *config.ValidationError
			require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/probe.yml")
	assert.Equal(t, "/etc/probe.yml", config.GetConfigPath("config.yml"))
}

func TestLoadFile_RequiredFileMissing(t *testing.T) {
	type section struct {
		Name string `yaml:"name" env:"SECTION_NAME"`
	}

	_, err := config.LoadFile[section](filepath.Join(t.TempDir(), "absent.yml"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	t.Setenv("SECTION_NAME", "from-env")
	got, err := config.LoadFile[section](filepath.Join(t.TempDir(), "absent.yml"), true)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got.Name)
}
