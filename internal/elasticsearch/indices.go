package elasticsearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
)

// CreateIndex creates name with the given settings and mapping. It fails
// with ErrConflict when the index already exists.
func (c *Client) CreateIndex(ctx context.Context, name string, req domain.CreateIndexRequest) (*domain.IndexAck, error) {
	if name == "" {
		return nil, fmt.Errorf("create index: %w: empty index name", ErrInvalidArgument)
	}

	var ack domain.IndexAck
	err := c.roundTrip(call{op: "create_index", index: name},
		func() (*esapi.Response, error) {
			return c.es.Indices.Create(name,
				c.es.Indices.Create.WithBody(esutil.NewJSONReader(req.Body())),
				c.es.Indices.Create.WithContext(ctx),
			)
		},
		expectOK("create index "+name, &ack),
	)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// DeleteIndex removes name. It fails with ErrNotFound when the index is absent.
func (c *Client) DeleteIndex(ctx context.Context, name string) (*domain.IndexAck, error) {
	if name == "" {
		return nil, fmt.Errorf("delete index: %w: empty index name", ErrInvalidArgument)
	}

	var ack domain.IndexAck
	err := c.roundTrip(call{op: "delete_index", index: name},
		func() (*esapi.Response, error) {
			return c.es.Indices.Delete([]string{name}, c.es.Indices.Delete.WithContext(ctx))
		},
		expectOK("delete index "+name, &ack),
	)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// IndexExists reports whether name exists. Absence is not an error.
func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("index exists: %w: empty index name", ErrInvalidArgument)
	}

	var exists bool
	err := c.roundTrip(call{op: "index_exists", index: name},
		func() (*esapi.Response, error) {
			return c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
		},
		func(res *esapi.Response) error {
			switch {
			case res.StatusCode == http.StatusNotFound:
				return nil
			case res.IsError():
				return newResponseError("index exists "+name, res.StatusCode, res.Body)
			default:
				exists = true
				return nil
			}
		},
	)
	return exists, err
}

// EnsureIndex creates name unless it already exists and reports whether it
// created it.
func (c *Client) EnsureIndex(ctx context.Context, name string, req domain.CreateIndexRequest) (bool, error) {
	exists, err := c.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err = c.CreateIndex(ctx, name, req); err != nil {
		if IsConflict(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
