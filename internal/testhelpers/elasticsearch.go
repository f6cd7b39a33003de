// Package testhelpers provides utilities for integration tests that need a
// live search service.
package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/jonesrussell/north-cloud/search-probe/internal/metrics"
	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
	"github.com/testcontainers/testcontainers-go"
	tcelasticsearch "github.com/testcontainers/testcontainers-go/modules/elasticsearch"
)

const (
	// ElasticsearchImage is the image started when no external cluster is configured.
	ElasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.11.0"
	// ElasticsearchPassword is the password of the elastic user in the container.
	ElasticsearchPassword = "changeme"
	// DefaultStartupTimeout bounds container startup.
	DefaultStartupTimeout = 2 * time.Minute

	// externalURLEnv points integration tests at an existing cluster instead of a container.
	externalURLEnv = "SEARCH_PROBE_TEST_URL"
)

// ElasticsearchContainer manages a test search service instance.
type ElasticsearchContainer struct {
	Container *tcelasticsearch.ElasticsearchContainer
	Config    elasticsearch.Config
}

// StartElasticsearch starts a single-node container with index
// auto-creation disabled, or reuses the cluster named by
// SEARCH_PROBE_TEST_URL when set. Stop must be called when done.
func StartElasticsearch(ctx context.Context) (*ElasticsearchContainer, error) {
	if external := os.Getenv(externalURLEnv); external != "" {
		return &ElasticsearchContainer{Config: elasticsearch.Config{
			URL:      external,
			Username: os.Getenv("SEARCH_PROBE_TEST_USERNAME"),
			Password: os.Getenv("SEARCH_PROBE_TEST_PASSWORD"),
		}}, nil
	}

	startCtx, cancel := context.WithTimeout(ctx, DefaultStartupTimeout)
	defer cancel()

	esContainer, err := tcelasticsearch.Run(startCtx, ElasticsearchImage,
		tcelasticsearch.WithPassword(ElasticsearchPassword),
		testcontainers.WithEnv(map[string]string{
			"ES_JAVA_OPTS": "-Xms512m -Xmx512m",
			// Writes to a missing index must fail rather than create it.
			"action.auto_create_index": "false",
		}),
	)
	if err != nil {
		if esContainer != nil {
			_ = esContainer.Terminate(ctx)
		}
		return nil, fmt.Errorf("failed to start Elasticsearch container: %w", err)
	}

	return &ElasticsearchContainer{
		Container: esContainer,
		Config: elasticsearch.Config{
			URL:      esContainer.Settings.Address,
			Username: "elastic",
			Password: esContainer.Settings.Password,
			TLS:      elasticsearch.TLSConfig{CACert: esContainer.Settings.CACert},
		},
	}, nil
}

// Stop stops and removes the container. It is a no-op for external clusters.
func (e *ElasticsearchContainer) Stop(ctx context.Context) error {
	if e.Container == nil {
		return nil
	}
	return e.Container.Terminate(ctx)
}

// NewClient starts (or reuses) a search service for t and returns a
// connected client. The test is skipped when no container runtime is available.
func NewClient(t *testing.T) (*elasticsearch.Client, *metrics.Metrics) {
	t.Helper()

	if os.Getenv(externalURLEnv) == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}

	ctx := context.Background()
	container, err := StartElasticsearch(ctx)
	if err != nil {
		t.Fatalf("start elasticsearch: %v", err)
	}
	t.Cleanup(func() {
		if stopErr := container.Stop(context.Background()); stopErr != nil {
			t.Logf("stop elasticsearch: %v", stopErr)
		}
	})

	cfg := container.Config
	cfg.ConnectRetry = &retry.Config{MaxAttempts: 10, InitialDelay: time.Second, MaxDelay: 5 * time.Second}

	m := metrics.New(nil)
	client, err := elasticsearch.Open(ctx, cfg, NewTestLogger(), m)
	if err != nil {
		t.Fatalf("connect elasticsearch: %v", err)
	}
	t.Cleanup(client.Close)

	return client, m
}

// UniqueIndex returns a fresh index name with the given prefix.
func UniqueIndex(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// NewTestLogger creates a logger suitable for testing.
func NewTestLogger() logger.Logger {
	if os.Getenv("SEARCH_PROBE_TEST_DEBUG") == "" {
		return logger.NewNop()
	}
	log, err := logger.New(logger.Config{Level: "debug", Format: logger.FormatConsole, Development: true})
	if err != nil {
		return logger.NewNop()
	}
	return log
}
