package elasticsearch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
)

// Ping checks that the service answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.roundTrip(call{op: "ping"},
		func() (*esapi.Response, error) {
			return c.es.Ping(c.es.Ping.WithContext(ctx))
		},
		expectOK("ping", nil),
	)
}

// Info returns the cluster name and version.
func (c *Client) Info(ctx context.Context) (*domain.ClusterInfo, error) {
	var info domain.ClusterInfo
	err := c.roundTrip(call{op: "info"},
		func() (*esapi.Response, error) {
			return c.es.Info(c.es.Info.WithContext(ctx))
		},
		expectOK("info", &info),
	)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// CatHealth returns the _cat/health rows.
func (c *Client) CatHealth(ctx context.Context) ([]domain.ClusterHealth, error) {
	var rows []domain.ClusterHealth
	err := c.roundTrip(call{op: "cat_health"},
		func() (*esapi.Response, error) {
			return c.es.Cat.Health(
				c.es.Cat.Health.WithFormat("json"),
				c.es.Cat.Health.WithContext(ctx),
			)
		},
		expectOK("cat health", &rows),
	)
	return rows, err
}

// CatNodes returns the _cat/nodes rows.
func (c *Client) CatNodes(ctx context.Context) ([]domain.NodeInfo, error) {
	var rows []domain.NodeInfo
	err := c.roundTrip(call{op: "cat_nodes"},
		func() (*esapi.Response, error) {
			return c.es.Cat.Nodes(
				c.es.Cat.Nodes.WithFormat("json"),
				c.es.Cat.Nodes.WithContext(ctx),
			)
		},
		expectOK("cat nodes", &rows),
	)
	return rows, err
}

// WaitForHealth blocks until the cluster (or the given indices) reach
// status or timeout elapses. The returned status has TimedOut set when the
// service gave up waiting.
func (c *Client) WaitForHealth(
	ctx context.Context,
	status string,
	timeout time.Duration,
	indices ...string,
) (*domain.ClusterHealthStatus, error) {
	switch status {
	case "green", "yellow", "red":
	default:
		return nil, fmt.Errorf("cluster health: %w: unknown status %q", ErrInvalidArgument, status)
	}

	reqOpts := []func(*esapi.ClusterHealthRequest){
		c.es.Cluster.Health.WithWaitForStatus(status),
		c.es.Cluster.Health.WithTimeout(timeout),
		c.es.Cluster.Health.WithContext(ctx),
	}
	if len(indices) > 0 {
		reqOpts = append(reqOpts, c.es.Cluster.Health.WithIndex(indices...))
	}

	var health domain.ClusterHealthStatus
	err := c.roundTrip(call{op: "cluster_health"},
		func() (*esapi.Response, error) {
			return c.es.Cluster.Health(reqOpts...)
		},
		func(res *esapi.Response) error {
			// A timed-out wait answers 408 with a regular health body.
			if res.StatusCode == http.StatusRequestTimeout {
				return decodeBody("cluster health", res.Body, &health)
			}
			return expectOK("cluster health", &health)(res)
		},
	)
	if err != nil {
		return nil, err
	}
	return &health, nil
}
