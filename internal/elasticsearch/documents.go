package elasticsearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/mitchellh/mapstructure"
)

// IndexDocument writes body under id. Without WithCreateOnly an existing
// document is overwritten; with it the write fails with ErrConflict. An
// empty id lets the service generate one. A missing index is auto-created
// by a default cluster unless WithRequireIndex is given.
func (c *Client) IndexDocument(
	ctx context.Context,
	index, id string,
	body domain.Document,
	opts ...WriteOption,
) (*domain.IndexResult, error) {
	if index == "" {
		return nil, fmt.Errorf("index document: %w: empty index name", ErrInvalidArgument)
	}
	if body == nil {
		return nil, fmt.Errorf("index document: %w: nil body", ErrInvalidArgument)
	}

	o := applyWriteOptions(opts)
	if o.requireIndex {
		if err := c.requireIndex(ctx, "index document", index); err != nil {
			return nil, err
		}
	}

	reqOpts := []func(*esapi.IndexRequest){
		c.es.Index.WithContext(ctx),
		c.es.Index.WithRefresh(string(o.refresh)),
	}
	if id != "" {
		reqOpts = append(reqOpts, c.es.Index.WithDocumentID(id))
	}
	if o.createOnly {
		reqOpts = append(reqOpts, c.es.Index.WithOpType("create"))
	}

	op := "index_document"
	if o.createOnly {
		op = "create_document"
	}

	var result domain.IndexResult
	err := c.roundTrip(call{op: op, index: index, id: id},
		func() (*esapi.Response, error) {
			return c.es.Index(index, esutil.NewJSONReader(body), reqOpts...)
		},
		expectOK(fmt.Sprintf("index document %s/%s", index, id), &result),
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// requireIndex fails with ErrNotFound when index is absent.
func (c *Client) requireIndex(ctx context.Context, op, index string) error {
	exists, err := c.IndexExists(ctx, index)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w: index %s does not exist", op, ErrNotFound, index)
	}
	return nil
}

// GetDocument fetches id. A missing document yields Found false and no
// error; a missing index yields ErrNotFound.
func (c *Client) GetDocument(ctx context.Context, index, id string) (*domain.GetResult, error) {
	if index == "" || id == "" {
		return nil, fmt.Errorf("get document: %w: index and id are required", ErrInvalidArgument)
	}

	desc := fmt.Sprintf("get document %s/%s", index, id)
	var result domain.GetResult
	err := c.roundTrip(call{op: "get_document", index: index, id: id},
		func() (*esapi.Response, error) {
			return c.es.Get(index, id, c.es.Get.WithContext(ctx))
		},
		func(res *esapi.Response) error {
			if res.StatusCode != http.StatusNotFound {
				return expectOK(desc, &result)(res)
			}
			// A 404 carrying an error object means the index itself is missing.
			respErr := newResponseError(desc, res.StatusCode, res.Body)
			if respErr.Type != "" {
				return respErr
			}
			result = domain.GetResult{Index: index, ID: id, Found: false}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDocumentInto fetches id and decodes its source into out, which must be
// a pointer to a struct or map. It reports whether the document was found.
func (c *Client) GetDocumentInto(ctx context.Context, index, id string, out any) (bool, error) {
	result, err := c.GetDocument(ctx, index, id)
	if err != nil {
		return false, err
	}
	if !result.Found {
		return false, nil
	}
	if err = decodeSource(result.Source, out); err != nil {
		return true, fmt.Errorf("get document %s/%s: %w", index, id, err)
	}
	return true, nil
}

func decodeSource(source domain.Document, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err = decoder.Decode(map[string]any(source)); err != nil {
		return fmt.Errorf("decode source: %w", err)
	}
	return nil
}

// UpdateDocument merges partial into the stored document: provided fields
// overwrite, others are kept. It fails with ErrNotFound when id is absent.
func (c *Client) UpdateDocument(
	ctx context.Context,
	index, id string,
	partial domain.Document,
	opts ...WriteOption,
) (*domain.IndexResult, error) {
	if index == "" || id == "" {
		return nil, fmt.Errorf("update document: %w: index and id are required", ErrInvalidArgument)
	}
	if len(partial) == 0 {
		return nil, fmt.Errorf("update document: %w: empty partial document", ErrInvalidArgument)
	}

	o := applyWriteOptions(opts)
	var result domain.IndexResult
	err := c.roundTrip(call{op: "update_document", index: index, id: id},
		func() (*esapi.Response, error) {
			return c.es.Update(index, id,
				esutil.NewJSONReader(map[string]any{"doc": partial}),
				c.es.Update.WithRefresh(string(o.refresh)),
				c.es.Update.WithContext(ctx),
			)
		},
		expectOK(fmt.Sprintf("update document %s/%s", index, id), &result),
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDocument removes id. It fails with ErrNotFound when id is absent.
func (c *Client) DeleteDocument(ctx context.Context, index, id string, opts ...WriteOption) (*domain.IndexResult, error) {
	if index == "" || id == "" {
		return nil, fmt.Errorf("delete document: %w: index and id are required", ErrInvalidArgument)
	}

	o := applyWriteOptions(opts)
	var result domain.IndexResult
	err := c.roundTrip(call{op: "delete_document", index: index, id: id},
		func() (*esapi.Response, error) {
			return c.es.Delete(index, id,
				c.es.Delete.WithRefresh(string(o.refresh)),
				c.es.Delete.WithContext(ctx),
			)
		},
		expectOK(fmt.Sprintf("delete document %s/%s", index, id), &result),
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
