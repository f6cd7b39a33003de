package elasticsearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIndex_SendsSettingsAndMapping(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{"acknowledged":true,"shards_acknowledged":true,"index":"bank"}`)
	client, _ := setupMockClient(t, transport)

	ack, err := client.CreateIndex(context.Background(), "bank", domain.CreateIndexRequest{
		Shards:   1,
		Replicas: 0,
		Mapping:  domain.NewMapping(map[string]domain.FieldType{"name": domain.FieldTypeText}),
	})
	require.NoError(t, err)
	assert.True(t, ack.Acknowledged)

	req := transport.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/bank", req.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Contains(t, body, "settings")
	assert.Contains(t, body, "mappings")
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusBadRequest, `{"error":{"root_cause":[],"type":"resource_already_exists_exception",`+
		`"reason":"index [customer/abc] already exists"},"status":400}`)
	client, _ := setupMockClient(t, transport)

	_, err := client.CreateIndex(context.Background(), "customer", domain.CreateIndexRequest{})
	require.Error(t, err)
	require.ErrorIs(t, err, elasticsearch.ErrConflict)
	assert.NotErrorIs(t, err, elasticsearch.ErrBadRequest)

	var respErr *elasticsearch.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "resource_already_exists_exception", respErr.Type)
	assert.Contains(t, respErr.Reason, "already exists")
}

func TestDeleteIndex_NotFound(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusNotFound, `{"error":{"type":"index_not_found_exception","reason":"no such index [gone]"},"status":404}`)
	client, _ := setupMockClient(t, transport)

	_, err := client.DeleteIndex(context.Background(), "gone")
	require.ErrorIs(t, err, elasticsearch.ErrNotFound)
	assert.Contains(t, err.Error(), "gone")

	req := transport.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/gone", req.Path)
}

func TestIndexExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr error
	}{
		{name: "present", status: http.StatusOK, want: true},
		{name: "absent", status: http.StatusNotFound, want: false},
		{name: "server failure", status: http.StatusServiceUnavailable, wantErr: elasticsearch.ErrServer},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport := fixed(tt.status, "")
			client, _ := setupMockClient(t, transport)

			exists, err := client.IndexExists(context.Background(), "library")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
			assert.Equal(t, http.MethodHead, transport.last(t).Method)
		})
	}
}

func TestEnsureIndex(t *testing.T) {
	t.Parallel()

	t.Run("creates when absent", func(t *testing.T) {
		t.Parallel()

		transport := &mockTransport{
			RoundTripFn: func(req *http.Request) (*http.Response, error) {
				if req.Method == http.MethodHead {
					return respond(http.StatusNotFound, ""), nil
				}
				return respond(http.StatusOK, `{"acknowledged":true,"index":"geo"}`), nil
			},
		}
		client, _ := setupMockClient(t, transport)

		created, err := client.EnsureIndex(context.Background(), "geo", domain.CreateIndexRequest{})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, http.MethodPut, transport.last(t).Method)
	})

	t.Run("skips when present", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusOK, "")
		client, _ := setupMockClient(t, transport)

		created, err := client.EnsureIndex(context.Background(), "geo", domain.CreateIndexRequest{})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 1, transport.count())
	})
}

func TestIndexOperations_RejectEmptyName(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{}`)
	client, _ := setupMockClient(t, transport)
	ctx := context.Background()

	_, err := client.CreateIndex(ctx, "", domain.CreateIndexRequest{})
	require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)

	_, err = client.DeleteIndex(ctx, "")
	require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)

	_, err = client.IndexExists(ctx, "")
	require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)

	assert.Zero(t, transport.count())
}
