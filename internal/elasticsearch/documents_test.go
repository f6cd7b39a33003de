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

func TestIndexDocument_Overwrite(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{"_index":"customer","_id":"1","_version":2,"result":"updated",`+
		`"_seq_no":1,"_primary_term":1}`)
	client, _ := setupMockClient(t, transport)

	result, err := client.IndexDocument(context.Background(), "customer", "1", domain.Document{"name": "John Doe"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResultUpdated, result.Result)
	assert.False(t, result.Created())
	assert.Equal(t, int64(2), result.Version)

	req := transport.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/customer/_doc/1", req.Path)
	assert.Empty(t, req.Query["op_type"])
	assert.JSONEq(t, `{"name":"John Doe"}`, string(req.Body))
}

func TestIndexDocument_CreateOnly(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusCreated, `{"_index":"customer","_id":"1","_version":1,"result":"created"}`)
		client, _ := setupMockClient(t, transport)

		result, err := client.IndexDocument(context.Background(), "customer", "1",
			domain.Document{"name": "John Doe"},
			elasticsearch.WithCreateOnly(),
			elasticsearch.WithRefresh(elasticsearch.RefreshWaitFor),
		)
		require.NoError(t, err)
		assert.True(t, result.Created())

		req := transport.last(t)
		assert.Equal(t, []string{"create"}, req.Query["op_type"])
		assert.Equal(t, []string{"wait_for"}, req.Query["refresh"])
	})

	t.Run("existing id conflicts", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusConflict, `{"error":{"type":"version_conflict_engine_exception",`+
			`"reason":"[1]: version conflict, document already exists (current version [1])"},"status":409}`)
		client, m := setupMockClient(t, transport)

		_, err := client.IndexDocument(context.Background(), "customer", "1",
			domain.Document{"name": "Jane Doe"}, elasticsearch.WithCreateOnly())
		require.ErrorIs(t, err, elasticsearch.ErrConflict)
		assert.True(t, elasticsearch.IsConflict(err))

		stats, err := m.Summary()
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, "create_document", stats[0].Operation)
		assert.Equal(t, "conflict", stats[0].Outcome)
	})
}

func TestIndexDocument_Validation(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{}`)
	client, _ := setupMockClient(t, transport)

	_, err := client.IndexDocument(context.Background(), "", "1", domain.Document{"a": 1})
	require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)

	_, err = client.IndexDocument(context.Background(), "customer", "1", nil)
	require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)

	assert.Zero(t, transport.count())
}

func TestGetDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		wantFound bool
		wantErr   error
	}{
		{
			name:      "found",
			status:    http.StatusOK,
			body:      `{"_index":"customer","_id":"1","_version":1,"found":true,"_source":{"name":"John Doe"}}`,
			wantFound: true,
		},
		{
			name:   "missing document",
			status: http.StatusNotFound,
			body:   `{"_index":"customer","_id":"1","found":false}`,
		},
		{
			name:    "missing index",
			status:  http.StatusNotFound,
			body:    `{"error":{"type":"index_not_found_exception","reason":"no such index [customer]"},"status":404}`,
			wantErr: elasticsearch.ErrNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport := fixed(tt.status, tt.body)
			client, _ := setupMockClient(t, transport)

			result, err := client.GetDocument(context.Background(), "customer", "1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, result.Found)
			assert.Equal(t, "1", result.ID)
			if tt.wantFound {
				assert.Equal(t, "John Doe", result.Source["name"])
			}

			req := transport.last(t)
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/customer/_doc/1", req.Path)
		})
	}
}

func TestGetDocumentInto(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `{"_index":"library","_id":"2","found":true,`+
		`"_source":{"title":"Thinking in Java","price":30,"tags":["java"]}}`)
	client, _ := setupMockClient(t, transport)

	var book struct {
		Title string   `json:"title"`
		Price int      `json:"price"`
		Tags  []string `json:"tags"`
	}
	found, err := client.GetDocumentInto(context.Background(), "library", "2", &book)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Thinking in Java", book.Title)
	assert.Equal(t, 30, book.Price)
	assert.Equal(t, []string{"java"}, book.Tags)
}

func TestUpdateDocument(t *testing.T) {
	t.Parallel()

	t.Run("sends partial document", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusOK, `{"_index":"customer","_id":"1","_version":2,"result":"updated"}`)
		client, _ := setupMockClient(t, transport)

		result, err := client.UpdateDocument(context.Background(), "customer", "1",
			domain.Document{"name": "Jane Doe", "age": 20})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultUpdated, result.Result)

		req := transport.last(t)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/customer/_update/1", req.Path)
		assert.JSONEq(t, `{"doc":{"name":"Jane Doe","age":20}}`, string(req.Body))
	})

	t.Run("missing document", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusNotFound, `{"error":{"type":"document_missing_exception",`+
			`"reason":"[1]: document missing"},"status":404}`)
		client, _ := setupMockClient(t, transport)

		_, err := client.UpdateDocument(context.Background(), "customer", "1", domain.Document{"name": "x"})
		require.ErrorIs(t, err, elasticsearch.ErrNotFound)
	})

	t.Run("empty partial", func(t *testing.T) {
		t.Parallel()

		client, _ := setupMockClient(t, fixed(http.StatusOK, `{}`))
		_, err := client.UpdateDocument(context.Background(), "customer", "1", domain.Document{})
		require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)
	})
}

func TestDeleteDocument(t *testing.T) {
	t.Parallel()

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusOK, `{"_index":"customer","_id":"1","_version":3,"result":"deleted"}`)
		client, _ := setupMockClient(t, transport)

		result, err := client.DeleteDocument(context.Background(), "customer", "1",
			elasticsearch.WithRefresh(elasticsearch.RefreshImmediate))
		require.NoError(t, err)
		assert.Equal(t, domain.ResultDeleted, result.Result)

		req := transport.last(t)
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, []string{"true"}, req.Query["refresh"])
	})

	t.Run("missing document", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusNotFound, `{"_index":"customer","_id":"1","_version":1,"result":"not_found"}`)
		client, _ := setupMockClient(t, transport)

		_, err := client.DeleteDocument(context.Background(), "customer", "1")
		require.ErrorIs(t, err, elasticsearch.ErrNotFound)

		var respErr *elasticsearch.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, "document not found", respErr.Reason)
	})
}

func TestIndexDocument_GeneratedID(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusCreated, `{"_index":"customer","_id":"aZ3x","_version":1,"result":"created"}`)
	client, _ := setupMockClient(t, transport)

	result, err := client.IndexDocument(context.Background(), "customer", "", domain.Document{"name": "n"})
	require.NoError(t, err)
	assert.Equal(t, "aZ3x", result.ID)

	req := transport.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/customer/_doc", req.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "n", body["name"])
}

func TestParseRefresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    elasticsearch.Refresh
		wantErr bool
	}{
		{in: "", want: elasticsearch.RefreshNone},
		{in: "false", want: elasticsearch.RefreshNone},
		{in: "true", want: elasticsearch.RefreshImmediate},
		{in: "wait_for", want: elasticsearch.RefreshWaitFor},
		{in: "later", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := elasticsearch.ParseRefresh(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexDocument_RequireIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headStatus int
		wantErr    error
		wantPuts   int
	}{
		{name: "missing index", headStatus: http.StatusNotFound, wantErr: elasticsearch.ErrNotFound},
		{name: "existing index", headStatus: http.StatusOK, wantPuts: 1},
		{name: "exists check fails", headStatus: http.StatusInternalServerError, wantErr: elasticsearch.ErrServer},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			puts := 0
			transport := &mockTransport{
				RoundTripFn: func(req *http.Request) (*http.Response, error) {
					if req.Method == http.MethodHead {
						return respond(tt.headStatus, ""), nil
					}
					puts++
					return respond(http.StatusCreated, `{"_index":"customer","_id":"1","result":"created"}`), nil
				},
			}
			client, _ := setupMockClient(t, transport)

			_, err := client.IndexDocument(context.Background(), "customer", "1",
				domain.Document{"name": "John Doe"}, elasticsearch.WithRequireIndex())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantPuts, puts)
		})
	}
}

func TestIndexDocument_WithoutRequireIndexSkipsCheck(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusCreated, `{"_index":"customer","_id":"1","result":"created"}`)
	client, _ := setupMockClient(t, transport)

	_, err := client.IndexDocument(context.Background(), "customer", "1", domain.Document{"name": "John Doe"})
	require.NoError(t, err)
	assert.Equal(t, 1, transport.count())
	assert.Equal(t, http.MethodPut, transport.last(t).Method)
}
