// Package elasticsearch is a thin client facade over a document-search
// service: index administration, document CRUD, bulk writes, structured
// search and cluster inspection.
//
// The client is stateless apart from its connection pool. It issues one
// request per call and never retries operations. Writes become visible to
// search only after a refresh; use Refresh, WaitForCount or WithRefresh when
// a read must observe a preceding write.
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/jonesrussell/north-cloud/search-probe/internal/metrics"
	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
)

// Client is the search service facade. It is safe for concurrent use.
type Client struct {
	es        *es.Client
	transport http.RoundTripper
	cfg       Config
	log       logger.Logger
	metrics   *metrics.Metrics

	closed    atomic.Bool
	closeOnce sync.Once
}

// New builds a Client without contacting the service. m may be nil.
func New(cfg Config, log logger.Logger, m *metrics.Metrics) (*Client, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	base := cfg.Transport
	if base == nil {
		pooled, err := newTransport(cfg)
		if err != nil {
			return nil, fmt.Errorf("build transport: %w", err)
		}
		base = pooled
	}

	clientConfig := es.Config{
		Addresses:    []string{cfg.URL},
		Transport:    m.InstrumentTransport(base),
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries == 0,
	}

	switch {
	case cfg.CloudID != "" && cfg.APIKey != "":
		clientConfig.Addresses = nil
		clientConfig.CloudID = cfg.CloudID
		clientConfig.APIKey = cfg.APIKey
	case cfg.APIKey != "":
		clientConfig.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	esClient, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &Client{
		es:        esClient,
		transport: base,
		cfg:       cfg,
		log:       log.With(logger.String("component", "elasticsearch")),
		metrics:   m,
	}, nil
}

// Open builds a Client and verifies the connection, retrying the ping with
// exponential backoff. Callers must Close the client.
func Open(ctx context.Context, cfg Config, log logger.Logger, m *metrics.Metrics) (*Client, error) {
	c, err := New(cfg, log, m)
	if err != nil {
		return nil, err
	}

	c.log.Info("Verifying Elasticsearch connection", logger.String("url", c.cfg.URL))

	retryCfg := *c.cfg.ConnectRetry
	if retryCfg.IsRetryable == nil {
		retryCfg.IsRetryable = isTransient
	}
	if pingErr := retry.Retry(ctx, retryCfg, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
		defer cancel()
		return c.Ping(pingCtx)
	}); pingErr != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to Elasticsearch after retries: %w", pingErr)
	}

	c.log.Info("Elasticsearch connection established", logger.String("url", c.cfg.URL))
	return c, nil
}

// isTransient retries connection failures and 5xx responses during startup.
func isTransient(err error) bool {
	return IsConnectionError(err) || Outcome(err) == "server_error"
}

// IsConnectionError reports whether err is a transport failure.
func IsConnectionError(err error) bool {
	return Outcome(err) == "connection_error"
}

// Close releases pooled connections. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if closer, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
			closer.CloseIdleConnections()
		}
		_ = c.log.Sync()
	})
}

// URL returns the configured service address.
func (c *Client) URL() string {
	return c.cfg.URL
}

// ES returns the underlying go-elasticsearch client.
func (c *Client) ES() *es.Client {
	return c.es
}

// call describes one operation for logging and metrics.
type call struct {
	op    string
	index string
	id    string
}

// responseHandler consumes a response whose body is closed by the caller.
type responseHandler func(res *esapi.Response) error

// roundTrip sends one request and hands the response to handle. Transport
// failures become ConnectionError. The body is always closed.
func (c *Client) roundTrip(cl call, send func() (*esapi.Response, error), handle responseHandler) error {
	if c.closed.Load() {
		return fmt.Errorf("%s: %w", cl.op, ErrClientClosed)
	}

	start := time.Now()
	res, err := send()
	status := 0
	if err != nil {
		err = &ConnectionError{Op: cl.op, Err: err}
	} else {
		status = res.StatusCode
		err = handle(res)
		if closeErr := res.Body.Close(); closeErr != nil {
			c.log.Debug("Failed to close response body", logger.Error(closeErr))
		}
	}

	elapsed := time.Since(start)
	outcome := Outcome(err)
	c.metrics.ObserveOperation(cl.op, outcome, elapsed)

	fields := []logger.Field{
		logger.String("operation", cl.op),
		logger.Int("status", status),
		logger.String("outcome", outcome),
		logger.Duration("duration", elapsed),
	}
	if cl.index != "" {
		fields = append(fields, logger.String("index", cl.index))
	}
	if cl.id != "" {
		fields = append(fields, logger.String("id", cl.id))
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	c.log.Debug("Elasticsearch call", fields...)

	return err
}

// expectOK maps non-2xx responses to ResponseError and decodes the body into out.
func expectOK(op string, out any) responseHandler {
	return func(res *esapi.Response) error {
		if res.IsError() {
			return newResponseError(op, res.StatusCode, res.Body)
		}
		return decodeBody(op, res.Body, out)
	}
}

func decodeBody(op string, body io.Reader, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w: %w", op, ErrUnexpectedResponse, err)
	}
	return nil
}
