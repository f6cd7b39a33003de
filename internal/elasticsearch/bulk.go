package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
)

const ndjsonContentType = "application/x-ndjson"

type bulkMeta struct {
	Index string `json:"_index,omitempty"`
	ID    string `json:"_id,omitempty"`
}

// EncodeBulk renders ops as newline-delimited JSON: one action line per
// entry followed by its payload line, except for deletes.
func EncodeBulk(defaultIndex string, ops []domain.BulkOperation) ([]byte, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("bulk: %w: no operations", ErrInvalidArgument)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, op := range ops {
		if err := validateBulkOp(defaultIndex, op); err != nil {
			return nil, fmt.Errorf("bulk entry %d: %w", i, err)
		}

		action := map[domain.BulkKind]bulkMeta{op.Kind: {Index: op.Index, ID: op.ID}}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("bulk entry %d: encode action: %w", i, err)
		}

		var payload any
		switch op.Kind {
		case domain.BulkDelete:
			continue
		case domain.BulkUpdate:
			payload = map[string]any{"doc": op.Document}
		default:
			payload = op.Document
		}
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("bulk entry %d: encode payload: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func validateBulkOp(defaultIndex string, op domain.BulkOperation) error {
	switch {
	case !op.Kind.Valid():
		return fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, op.Kind)
	case op.Index == "" && defaultIndex == "":
		return fmt.Errorf("%w: no target index", ErrInvalidArgument)
	case op.ID == "" && (op.Kind == domain.BulkUpdate || op.Kind == domain.BulkDelete):
		return fmt.Errorf("%w: %s requires an id", ErrInvalidArgument, op.Kind)
	case op.Kind != domain.BulkDelete && op.Document == nil:
		return fmt.Errorf("%w: %s requires a document", ErrInvalidArgument, op.Kind)
	default:
		return nil
	}
}

// bulkTargets lists the distinct indices ops write to, in first-use order.
func bulkTargets(defaultIndex string, ops []domain.BulkOperation) []string {
	seen := make(map[string]struct{}, 1)
	var targets []string
	for _, op := range ops {
		target := op.Index
		if target == "" {
			target = defaultIndex
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		targets = append(targets, target)
	}
	return targets
}

type bulkResponse struct {
	Took   int64                                       `json:"took"`
	Errors bool                                        `json:"errors"`
	Items  []map[domain.BulkKind]domain.BulkItemResult `json:"items"`
}

// Bulk submits ops as a single request against index. The batch is not
// atomic: earlier entries may apply while later ones fail. Per-entry
// failures are reported in the result, not as an error; the returned items
// follow submission order.
func (c *Client) Bulk(
	ctx context.Context,
	index string,
	ops []domain.BulkOperation,
	opts ...WriteOption,
) (*domain.BulkResult, error) {
	body, err := EncodeBulk(index, ops)
	if err != nil {
		return nil, err
	}

	o := applyWriteOptions(opts)
	if o.requireIndex {
		for _, target := range bulkTargets(index, ops) {
			if err = c.requireIndex(ctx, "bulk", target); err != nil {
				return nil, err
			}
		}
	}

	reqOpts := []func(*esapi.BulkRequest){
		c.es.Bulk.WithRefresh(string(o.refresh)),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithHeader(map[string]string{"Content-Type": ndjsonContentType}),
	}
	if index != "" {
		reqOpts = append(reqOpts, c.es.Bulk.WithIndex(index))
	}

	var raw bulkResponse
	err = c.roundTrip(call{op: "bulk", index: index},
		func() (*esapi.Response, error) {
			return c.es.Bulk(bytes.NewReader(body), reqOpts...)
		},
		expectOK("bulk "+index, &raw),
	)
	if err != nil {
		return nil, err
	}

	if len(raw.Items) != len(ops) {
		return nil, fmt.Errorf("bulk %s: %w: %d items for %d operations",
			index, ErrUnexpectedResponse, len(raw.Items), len(ops))
	}

	result := &domain.BulkResult{
		Took:      raw.Took,
		HasErrors: raw.Errors,
		Items:     make([]domain.BulkItemResult, len(raw.Items)),
	}
	for i, entry := range raw.Items {
		for kind, item := range entry {
			item.Kind = kind
			result.Items[i] = item
		}
	}

	if result.HasErrors {
		c.log.Warn("Bulk request completed with errors",
			logger.String("index", index),
			logger.Int("failed", len(result.Failed())),
		)
	}
	return result, nil
}
