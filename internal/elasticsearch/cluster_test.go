package elasticsearch_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatHealth(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `[{"epoch":"1700000000","timestamp":"10:00:00","cluster":"docker-cluster",`+
		`"status":"green","node.total":"1","node.data":"1","shards":"3","pri":"3","relo":"0","init":"0",`+
		`"unassign":"0","active_shards_percent":"100.0%"}]`)
	client, _ := setupMockClient(t, transport)

	rows, err := client.CatHealth(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "green", rows[0].Status)
	assert.Equal(t, "1", rows[0].NodeTotal)

	req := transport.last(t)
	assert.Equal(t, "/_cat/health", req.Path)
	assert.Equal(t, []string{"json"}, req.Query["format"])
}

func TestCatNodes(t *testing.T) {
	t.Parallel()

	transport := fixed(http.StatusOK, `[
		{"ip":"172.18.0.2","heap.percent":"31","ram.percent":"90","cpu":"4","load_1m":"0.50",`+
		`"node.role":"cdfhilmrstw","master":"*","name":"es-1"},
		{"ip":"172.18.0.3","heap.percent":"20","ram.percent":"80","cpu":"2","load_1m":"0.10",`+
		`"node.role":"d","master":"-","name":"es-2"}
	]`)
	client, _ := setupMockClient(t, transport)

	nodes, err := client.CatNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].IsMaster())
	assert.False(t, nodes[1].IsMaster())
	assert.Equal(t, "es-2", nodes[1].Name)
	assert.Equal(t, "/_cat/nodes", transport.last(t).Path)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	client, _ := setupMockClient(t, fixed(http.StatusOK,
		`{"name":"es-1","cluster_name":"docker-cluster","version":{"number":"8.11.0","lucene_version":"9.8.0"}}`))

	info, err := client.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docker-cluster", info.ClusterName)
	assert.Equal(t, "8.11.0", info.Version.Number)
}

func TestWaitForHealth(t *testing.T) {
	t.Parallel()

	t.Run("reached", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusOK, `{"cluster_name":"docker-cluster","status":"yellow","timed_out":false,`+
			`"number_of_nodes":1,"active_shards_percent_as_number":50.0}`)
		client, _ := setupMockClient(t, transport)

		health, err := client.WaitForHealth(context.Background(), "yellow", 2*time.Second, "bank")
		require.NoError(t, err)
		assert.Equal(t, "yellow", health.Status)
		assert.False(t, health.TimedOut)

		req := transport.last(t)
		assert.Equal(t, "/_cluster/health/bank", req.Path)
		assert.Equal(t, []string{"yellow"}, req.Query["wait_for_status"])
		assert.Equal(t, []string{"2000ms"}, req.Query["timeout"])
	})

	t.Run("timed out", func(t *testing.T) {
		t.Parallel()

		client, _ := setupMockClient(t, fixed(http.StatusRequestTimeout,
			`{"cluster_name":"docker-cluster","status":"yellow","timed_out":true}`))

		health, err := client.WaitForHealth(context.Background(), "green", time.Second)
		require.NoError(t, err)
		assert.True(t, health.TimedOut)
		assert.Equal(t, "yellow", health.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()

		client, _ := setupMockClient(t, fixed(http.StatusOK, `{}`))
		_, err := client.WaitForHealth(context.Background(), "blue", time.Second)
		require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)
	})
}

func TestRaw(t *testing.T) {
	t.Parallel()

	t.Run("bulk body is ndjson", func(t *testing.T) {
		t.Parallel()

		transport := fixed(http.StatusOK, `{"took":1,"errors":false,"items":[]}`)
		client, _ := setupMockClient(t, transport)

		res, err := client.Raw(context.Background(), elasticsearch.RawRequest{
			Method: "post",
			Path:   "/bank/_bulk",
			Params: url.Values{"refresh": {"true"}},
			Body:   []byte("{\"index\":{}}\n{\"a\":1}\n"),
		})
		require.NoError(t, err)
		require.NoError(t, res.Err("bulk"))

		var decoded struct {
			Errors bool `json:"errors"`
		}
		require.NoError(t, res.Decode(&decoded))
		assert.False(t, decoded.Errors)

		req := transport.last(t)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/bank/_bulk", req.Path)
		assert.Equal(t, []string{"true"}, req.Query["refresh"])
		assert.Equal(t, "application/x-ndjson", req.Header.Get("Content-Type"))
	})

	t.Run("error status is a response", func(t *testing.T) {
		t.Parallel()

		client, _ := setupMockClient(t, fixed(http.StatusNotFound,
			`{"error":{"type":"index_not_found_exception","reason":"no such index [x]"},"status":404}`))

		res, err := client.Raw(context.Background(), elasticsearch.RawRequest{Path: "/x/_mapping"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		require.ErrorIs(t, res.Err("get mapping"), elasticsearch.ErrNotFound)
	})

	t.Run("relative path rejected", func(t *testing.T) {
		t.Parallel()

		client, _ := setupMockClient(t, fixed(http.StatusOK, `{}`))
		_, err := client.Raw(context.Background(), elasticsearch.RawRequest{Path: "_cat/indices"})
		require.ErrorIs(t, err, elasticsearch.ErrInvalidArgument)
	})
}
