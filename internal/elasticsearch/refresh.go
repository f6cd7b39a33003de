package elasticsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
)

// ErrNotVisible is returned by WaitForCount when the expected documents
// never became searchable.
var ErrNotVisible = errors.New("documents not visible")

// Refresh makes every write acknowledged so far on indices visible to search.
func (c *Client) Refresh(ctx context.Context, indices ...string) error {
	if len(indices) == 0 {
		return fmt.Errorf("refresh: %w: no index", ErrInvalidArgument)
	}
	joined := strings.Join(indices, ",")
	return c.roundTrip(call{op: "refresh", index: joined},
		func() (*esapi.Response, error) {
			return c.es.Indices.Refresh(
				c.es.Indices.Refresh.WithIndex(indices...),
				c.es.Indices.Refresh.WithContext(ctx),
			)
		},
		expectOK("refresh "+joined, nil),
	)
}

// WaitForCount polls Count until it returns want, backing off per cfg.
// Service errors other than connection failures stop the wait immediately.
func (c *Client) WaitForCount(ctx context.Context, index string, q domain.Query, want int64, cfg retry.Config) error {
	var last int64
	cfg.IsRetryable = func(err error) bool {
		return errors.Is(err, ErrNotVisible) || IsConnectionError(err)
	}

	err := retry.Retry(ctx, cfg, func() error {
		got, err := c.Count(ctx, index, q)
		if err != nil {
			return err
		}
		last = got
		if got != want {
			return fmt.Errorf("%w: %d of %d in %s", ErrNotVisible, got, want, index)
		}
		return nil
	})
	if err != nil {
		c.log.Debug("Documents did not become visible",
			logger.String("index", index),
			logger.Int64("want", want),
			logger.Int64("last", last),
			logger.Error(err),
		)
		return fmt.Errorf("wait for %d documents in %s: %w", want, index, err)
	}
	return nil
}
