package elasticsearch_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateAggregationResponse = `{
	"took": 29,
	"timed_out": false,
	"hits": {"total": 1000, "max_score": 0, "hits": []},
	"aggregations": {
		"group_by_state": {
			"doc_count_error_upper_bound": 20,
			"sum_other_doc_count": 770,
			"buckets": [
				{"key": "ID", "doc_count": 27},
				{"key": "TX", "doc_count": 27},
				{"key": "AL", "doc_count": 25},
				{"key": "MD", "doc_count": 25},
				{"key": "TN", "doc_count": 23},
				{"key": "MA", "doc_count": 21},
				{"key": "NC", "doc_count": 21},
				{"key": "ND", "doc_count": 21},
				{"key": "ME", "doc_count": 20},
				{"key": "MO", "doc_count": 20}
			]
		}
	}
}`

func TestSearch_TermsAggregation(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, stateAggregationResponse)
	client, _ := setupMockClient(t, transport)

	result, err := client.Search(context.Background(), "bank", domain.SearchRequest{
		Size:         domain.Ptr(0),
		Aggregations: map[string]domain.TermsAggregation{"group_by_state": {Field: "state.keyword"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Total())

	terms, err := result.Terms("group_by_state")
	require.NoError(t, err)
	assert.Equal(t, int64(20), terms.DocCountErrorUpperBound)
	assert.Equal(t, int64(770), terms.SumOtherDocCount)
	require.Len(t, terms.Buckets, 10)
	assert.Equal(t, "ID", terms.Buckets[0].Key)
	assert.Equal(t, int64(230), terms.BucketTotal())

	req := transport.last(t)
	assert.Equal(t, "/bank/_search", req.Path)
	assert.JSONEq(t, `{
		"track_total_hits": true,
		"size": 0,
		"aggs": {"group_by_state": {"terms": {"field": "state.keyword"}}}
	}`, string(req.Body))

	_, err = result.Terms("missing")
	require.ErrorIs(t, err, domain.ErrAggregationMissing)
}

func TestSearch_BoolQueryBody(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{"took":1,"hits":{"total":{"value":43,"relation":"eq"},"hits":[]}}`)
	client, _ := setupMockClient(t, transport)

	result, err := client.Search(context.Background(), "bank", domain.SearchRequest{
		Query: domain.BoolQuery{
			Must:    []domain.Query{domain.Match("age", 40)},
			MustNot: []domain.Query{domain.Match("state", "ID")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(43), result.Total())
	assert.Equal(t, "eq", result.Hits.Total.Relation)

	assert.JSONEq(t, `{
		"track_total_hits": true,
		"query": {"bool": {
			"must": [{"match": {"age": 40}}],
			"must_not": [{"match": {"state": "ID"}}]
		}}
	}`, string(transport.last(t).Body))
}

func TestSearch_InvalidQueryNotSent(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{}`)
	client, _ := setupMockClient(t, transport)

	_, err := client.Search(context.Background(), "bank", domain.SearchRequest{
		Query: domain.RangeQuery{Field: "balance"},
	})
	require.ErrorIs(t, err, elasticsearch.ErrInvalidQuery)
	require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)
	assert.Zero(t, transport.count())
}

func TestSearch_BadRequest(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusBadRequest, `{"error":{"type":"search_phase_execution_exception",`+
		`"reason":"all shards failed"},"status":400}`)
	client, _ := setupMockClient(t, transport)

	_, err := client.Search(context.Background(), "bank", domain.SearchRequest{Query: domain.MatchAll()})
	require.ErrorIs(t, err, elasticsearch.ErrBadRequest)
	assert.Equal(t, "bad_request", elasticsearch.Outcome(err))
}

func TestSearchURI(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{"took":1,"hits":{"total":{"value":1000,"relation":"eq"},
		"hits":[{"_index":"bank","_id":"0","_score":null,"_source":{"account_number":0}}]}}`)
	client, _ := setupMockClient(t, transport)

	result, err := client.SearchURI(context.Background(), "bank", elasticsearch.URISearch{
		Q:    "*",
		Sort: []string{"account_number:asc"},
		Size: domain.Ptr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Total())
	assert.Equal(t, []string{"0"}, result.IDs())
	assert.Nil(t, result.Hits.Hits[0].Score)

	req := transport.last(t)
	assert.Equal(t, "/bank/_search", req.Path)
	assert.Equal(t, []string{"*"}, req.Query["q"])
	assert.Equal(t, []string{"account_number:asc"}, req.Query["sort"])
	assert.Equal(t, []string{"1"}, req.Query["size"])
	assert.Equal(t, []string{"true"}, req.Query["track_total_hits"])
}

func TestCount(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{"count":217,"_shards":{"total":1,"successful":1}}`)
	client, _ := setupMockClient(t, transport)

	n, err := client.Count(context.Background(), "bank", domain.BoolQuery{
		Must:   []domain.Query{domain.MatchAll()},
		Filter: []domain.Query{domain.Between("balance", 20000, 30000)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(217), n)

	req := transport.last(t)
	assert.Equal(t, "/bank/_count", req.Path)
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Contains(t, body, "query")
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{"_shards":{"total":2,"successful":1,"failed":0}}`)
	client, _ := setupMockClient(t, transport)

	require.NoError(t, client.Refresh(context.Background(), "bank", "customer"))

	req := transport.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/bank,customer/_refresh", req.Path)

	require.ErrorIs(t, client.Refresh(context.Background()), elasticsearch.ErrInvalidArgument)
}

func fastRetry(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWaitForCount(t *testing.T) {
	t.Parallel()

	t.Run("polls until visible", func(t *testing.T) {
		t.Parallel()

		counts := []string{`{"count":0}`, `{"count":2}`, `{"count":6}`}
		calls := 0
		transport := &mockTransport{
			RoundTripFn: func(req *http.Request) (*http.Response, error) {
				if !strings.HasSuffix(req.URL.Path, "/_count") {
					return respond(http.StatusOK, `{}`), nil
				}
				body := counts[min(calls, len(counts)-1)]
				calls++
				return respond(http.StatusOK, body), nil
			},
		}
		client, _ := setupMockClient(t, transport)

		err := client.WaitForCount(context.Background(), "library", nil, 6, fastRetry(5))
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		t.Parallel()

		client, _ := setupMockClient(t, fixed(http.StatusOK, `{"count":1}`))

		err := client.WaitForCount(context.Background(), "library", nil, 6, fastRetry(3))
		require.ErrorIs(t, err, elasticsearch.ErrNotVisible)
		require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	})

	t.Run("stops on service error", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusNotFound, `{"error":{"type":"index_not_found_exception","reason":"no such index"}}`)
		client, _ := setupMockClient(t, transport)

		err := client.WaitForCount(context.Background(), "library", nil, 6, fastRetry(5))
		require.ErrorIs(t, err, elasticsearch.ErrNotFound)
		assert.False(t, errors.Is(err, retry.ErrMaxAttemptsExceeded))
		assert.Equal(t, 1, transport.count())
	})
}
