package fixtures

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/hashicorp/go-multierror"
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
)

// ErrImportFailed is returned when one or more fixture documents were rejected.
var ErrImportFailed = errors.New("fixture import failed")

const (
	defaultWorkers    = 2
	defaultFlushBytes = 1 << 20
)

// ImportOptions tunes Import. Zero values use defaults.
type ImportOptions struct {
	Workers    int
	FlushBytes int
	// Refresh is passed to every bulk request ("", "true" or "wait_for").
	Refresh elasticsearch.Refresh
}

// ImportStats summarizes an import.
type ImportStats struct {
	Added    uint64
	Indexed  uint64
	Created  uint64
	Updated  uint64
	Deleted  uint64
	Failed   uint64
	Requests uint64
	Duration time.Duration
}

// Import streams ops into index through a concurrent bulk indexer. Per-entry
// index overrides are honored. Rejected entries are collected and returned
// together with the stats. The summary is logged to the logger carried by ctx.
func Import(
	ctx context.Context,
	client *elasticsearch.Client,
	index string,
	ops []domain.BulkOperation,
	opts ImportOptions,
) (*ImportStats, error) {
	log := logger.FromContext(ctx)
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.FlushBytes <= 0 {
		opts.FlushBytes = defaultFlushBytes
	}

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	record := func(err error) {
		mu.Lock()
		errs = multierror.Append(errs, err)
		mu.Unlock()
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:      index,
		Client:     client.ES(),
		NumWorkers: opts.Workers,
		FlushBytes: opts.FlushBytes,
		Refresh:    string(opts.Refresh),
		OnError: func(_ context.Context, err error) {
			record(fmt.Errorf("bulk request: %w", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bulk indexer: %w", err)
	}

	start := time.Now()
	for i, op := range ops {
		item, itemErr := bulkItem(op, func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				record(fmt.Errorf("%s %s: %w", item.Action, item.DocumentID, err))
				return
			}
			record(fmt.Errorf("%s %s: [%d] %s: %s", item.Action, item.DocumentID, res.Status, res.Error.Type, res.Error.Reason))
		})
		if itemErr != nil {
			_ = bi.Close(ctx)
			return nil, fmt.Errorf("fixture entry %d: %w", i, itemErr)
		}
		if addErr := bi.Add(ctx, item); addErr != nil {
			_ = bi.Close(ctx)
			return nil, fmt.Errorf("add fixture entry %d: %w", i, addErr)
		}
	}

	if closeErr := bi.Close(ctx); closeErr != nil {
		return nil, fmt.Errorf("flush bulk indexer: %w", closeErr)
	}

	s := bi.Stats()
	stats := &ImportStats{
		Added:    s.NumAdded,
		Indexed:  s.NumIndexed,
		Created:  s.NumCreated,
		Updated:  s.NumUpdated,
		Deleted:  s.NumDeleted,
		Failed:   s.NumFailed,
		Requests: s.NumRequests,
		Duration: time.Since(start),
	}

	log.Info("Fixture imported",
		logger.String("index", index),
		logger.Any("added", stats.Added),
		logger.Any("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)

	if err = errs.ErrorOrNil(); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}
	return stats, nil
}

func bulkItem(
	op domain.BulkOperation,
	onFailure func(context.Context, esutil.BulkIndexerItem, esutil.BulkIndexerResponseItem, error),
) (esutil.BulkIndexerItem, error) {
	if !op.Kind.Valid() {
		return esutil.BulkIndexerItem{}, fmt.Errorf("%w: unknown action %q", elasticsearch.ErrInvalidArgument, op.Kind)
	}

	item := esutil.BulkIndexerItem{
		Index:      op.Index,
		Action:     string(op.Kind),
		DocumentID: op.ID,
		OnFailure:  onFailure,
	}
	if op.Kind == domain.BulkDelete {
		return item, nil
	}

	var payload any = op.Document
	if op.Kind == domain.BulkUpdate {
		payload = map[string]any{"doc": op.Document}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return esutil.BulkIndexerItem{}, fmt.Errorf("encode document %s: %w", op.ID, err)
	}
	item.Body = bytes.NewReader(data)
	return item, nil
}
