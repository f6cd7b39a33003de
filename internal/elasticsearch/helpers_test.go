package elasticsearch_test

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/jonesrussell/north-cloud/search-probe/internal/metrics"
	"github.com/stretchr/testify/require"
)

// mockTransport implements http.RoundTripper for mocking Elasticsearch responses.
type mockTransport struct {
	Response    *http.Response
	RoundTripFn func(req *http.Request) (*http.Response, error)

	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	t.mu.Lock()
	t.requests = append(t.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	t.mu.Unlock()

	if t.RoundTripFn != nil {
		return t.RoundTripFn(req)
	}
	return t.Response, nil
}

// last returns the most recent request.
func (t *mockTransport) last(tb testing.TB) recordedRequest {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	require.NotEmpty(tb, t.requests, "no request was sent")
	return t.requests[len(t.requests)-1]
}

func (t *mockTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// respond builds a response the client accepts as coming from Elasticsearch.
func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
	}
}

// fixed returns a transport that always answers status and body.
func fixed(status int, body string) *mockTransport {
	return &mockTransport{
		RoundTripFn: func(*http.Request) (*http.Response, error) {
			return respond(status, body), nil
		},
	}
}

// setupMockClient creates a client over transport with a private metrics registry.
func setupMockClient(t *testing.T, transport http.RoundTripper) (*elasticsearch.Client, *metrics.Metrics) {
	t.Helper()

	m := metrics.New(nil)
	client, err := elasticsearch.New(elasticsearch.Config{
		URL:       "http://es.test:9200",
		Transport: transport,
	}, logger.NewNop(), m)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, m
}
