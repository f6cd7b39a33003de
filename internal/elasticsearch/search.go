package elasticsearch

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
)

// Search runs a structured query against index. An empty index searches
// every index. Hit totals are exact.
func (c *Client) Search(ctx context.Context, index string, req domain.SearchRequest) (*domain.SearchResult, error) {
	body, err := NewQueryBuilder().SearchBody(req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	reqOpts := []func(*esapi.SearchRequest){
		c.es.Search.WithBody(esutil.NewJSONReader(body)),
		c.es.Search.WithContext(ctx),
	}
	if index != "" {
		reqOpts = append(reqOpts, c.es.Search.WithIndex(index))
	}

	var result domain.SearchResult
	err = c.roundTrip(call{op: "search", index: index},
		func() (*esapi.Response, error) {
			return c.es.Search(reqOpts...)
		},
		expectOK("search "+index, &result),
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// URISearch is a query-string search such as q=* with sort=account_number:asc.
type URISearch struct {
	Q    string
	Sort []string
	Size *int
}

// SearchURI runs a query-string search against index.
func (c *Client) SearchURI(ctx context.Context, index string, s URISearch) (*domain.SearchResult, error) {
	reqOpts := []func(*esapi.SearchRequest){
		c.es.Search.WithTrackTotalHits(true),
		c.es.Search.WithContext(ctx),
	}
	if index != "" {
		reqOpts = append(reqOpts, c.es.Search.WithIndex(index))
	}
	if s.Q != "" {
		reqOpts = append(reqOpts, c.es.Search.WithQuery(s.Q))
	}
	if len(s.Sort) > 0 {
		reqOpts = append(reqOpts, c.es.Search.WithSort(s.Sort...))
	}
	if s.Size != nil {
		reqOpts = append(reqOpts, c.es.Search.WithSize(*s.Size))
	}

	var result domain.SearchResult
	err := c.roundTrip(call{op: "search_uri", index: index},
		func() (*esapi.Response, error) {
			return c.es.Search(reqOpts...)
		},
		expectOK("search "+index, &result),
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Count returns the number of documents in index matching q. A nil q counts
// every document.
func (c *Client) Count(ctx context.Context, index string, q domain.Query) (int64, error) {
	reqOpts := []func(*esapi.CountRequest){c.es.Count.WithContext(ctx)}
	if index != "" {
		reqOpts = append(reqOpts, c.es.Count.WithIndex(index))
	}
	if q != nil {
		query, err := NewQueryBuilder().Build(q)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", index, err)
		}
		reqOpts = append(reqOpts, c.es.Count.WithBody(esutil.NewJSONReader(map[string]any{"query": query})))
	}

	var result struct {
		Count int64 `json:"count"`
	}
	err := c.roundTrip(call{op: "count", index: index},
		func() (*esapi.Response, error) {
			return c.es.Count(reqOpts...)
		},
		expectOK("count "+index, &result),
	)
	return result.Count, err
}
