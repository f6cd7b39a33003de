package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// RawRequest is an arbitrary call against the service REST API. Path is
// relative to the configured address, e.g. "/_cat/indices".
type RawRequest struct {
	Method string
	Path   string
	Params url.Values
	Body   []byte
}

// RawResponse is the undecoded reply to a RawRequest.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Err returns the taxonomy error for a non-2xx response and nil otherwise.
func (r *RawResponse) Err(op string) error {
	if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
		return newResponseError(op, r.StatusCode, bytes.NewReader(r.Body))
	}
	return nil
}

// Decode unmarshals the body into v.
func (r *RawResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return nil
}

// Raw sends req through the client's transport, authentication and metrics.
// Non-2xx statuses are returned as a response, not as an error.
func (c *Client) Raw(ctx context.Context, req RawRequest) (*RawResponse, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(req.Path, "/") {
		return nil, fmt.Errorf("raw request: %w: path %q must start with /", ErrInvalidArgument, req.Path)
	}

	target := req.Path
	if len(req.Params) > 0 {
		target += "?" + req.Params.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("raw request: %w: %w", ErrInvalidArgument, err)
	}
	if body != nil {
		contentType := "application/json"
		if strings.HasSuffix(req.Path, "/_bulk") || strings.HasSuffix(req.Path, "/_msearch") {
			contentType = "application/x-ndjson"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}

	var out *RawResponse
	err = c.roundTrip(call{op: "raw"},
		func() (*esapi.Response, error) {
			res, err := c.es.Perform(httpReq)
			if err != nil {
				return nil, err
			}
			return &esapi.Response{StatusCode: res.StatusCode, Header: res.Header, Body: res.Body}, nil
		},
		func(res *esapi.Response) error {
			data, err := io.ReadAll(res.Body)
			if err != nil {
				return &ConnectionError{Op: "raw", Err: err}
			}
			out = &RawResponse{StatusCode: res.StatusCode, Header: res.Header, Body: data}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
