package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/httpclient"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
)

// ErrFetch is returned when a fixture cannot be downloaded.
var ErrFetch = errors.New("fixture download failed")

// Loader reads bulk fixtures from URLs or local files.
type Loader struct {
	client *http.Client
	retry  retry.Config
	log    logger.Logger
}

// NewLoader creates a Loader whose downloads time out after timeout.
func NewLoader(timeout time.Duration, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	cfg := retry.DefaultConfig()
	cfg.IsRetryable = isRetryableFetch
	return &Loader{
		client: httpclient.New(httpclient.Config{Timeout: timeout}),
		retry:  cfg,
		log:    log,
	}
}

// WithRetry replaces the download retry policy.
func (l *Loader) WithRetry(cfg retry.Config) *Loader {
	if cfg.IsRetryable == nil {
		cfg.IsRetryable = isRetryableFetch
	}
	l.retry = cfg
	return l
}

type statusError struct {
	url    string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.url, e.status)
}

func isRetryableFetch(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= http.StatusInternalServerError || se.status == http.StatusTooManyRequests
	}
	return retry.DefaultIsRetryable(err)
}

// Fetch downloads url and parses it as bulk input. Download failures wrap
// ErrFetch; a body that downloads but does not parse does not.
func (l *Loader) Fetch(ctx context.Context, url string) ([]domain.BulkOperation, error) {
	var body []byte
	err := retry.Retry(ctx, l.retry, func() error {
		var fetchErr error
		body, fetchErr = l.fetchOnce(ctx, url)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	ops, err := ParseBulk(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	l.log.Info("Fixture downloaded",
		logger.String("url", url),
		logger.Int("operations", len(ops)),
	)
	return ops, nil
}

func (l *Loader) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", httpclient.UserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{url: url, status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Open reads and parses a local bulk file.
func (l *Loader) Open(path string) ([]domain.BulkOperation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	ops, err := ParseBulk(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ops, nil
}

// Load prefers a local file and falls back to url.
func (l *Loader) Load(ctx context.Context, path, url string) ([]domain.BulkOperation, error) {
	if path != "" {
		return l.Open(path)
	}
	if url == "" {
		return nil, fmt.Errorf("%w: no fixture file or URL", ErrFetch)
	}
	return l.Fetch(ctx, url)
}
