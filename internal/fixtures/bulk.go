// Package fixtures loads test data sets into the search service: bulk files
// such as the bank accounts sample, plus small built-in data sets.
package fixtures

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
)

// ErrMalformedBulk is returned for bulk input that is not action/source pairs.
var ErrMalformedBulk = errors.New("malformed bulk input")

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 4 * 1024 * 1024

type actionMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// ParseBulk reads newline-delimited bulk input: an action line such as
// {"index":{"_id":"1"}} followed by a source line, except for deletes.
// Blank lines are ignored. Operations keep input order.
func ParseBulk(r io.Reader) ([]domain.BulkOperation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		ops     []domain.BulkOperation
		pending *domain.BulkOperation
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if pending != nil {
			doc, err := decodeSourceLine(line, pending.Kind)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pending.Document = doc
			ops = append(ops, *pending)
			pending = nil
			continue
		}

		op, err := decodeActionLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if op.Kind == domain.BulkDelete {
			ops = append(ops, op)
			continue
		}
		pending = &op
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bulk input: %w", err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: %s action for %q has no source line", ErrMalformedBulk, pending.Kind, pending.ID)
	}
	return ops, nil
}

func decodeActionLine(line []byte) (domain.BulkOperation, error) {
	var action map[domain.BulkKind]actionMeta
	if err := json.Unmarshal(line, &action); err != nil {
		return domain.BulkOperation{}, fmt.Errorf("%w: action: %w", ErrMalformedBulk, err)
	}
	if len(action) != 1 {
		return domain.BulkOperation{}, fmt.Errorf("%w: action line must have exactly one key", ErrMalformedBulk)
	}
	for kind, meta := range action {
		if !kind.Valid() {
			return domain.BulkOperation{}, fmt.Errorf("%w: unknown action %q", ErrMalformedBulk, kind)
		}
		return domain.BulkOperation{Kind: kind, Index: meta.Index, ID: meta.ID}, nil
	}
	return domain.BulkOperation{}, ErrMalformedBulk
}

// decodeSourceLine keeps numbers exact. Update lines carry the partial
// document under "doc".
func decodeSourceLine(line []byte, kind domain.BulkKind) (domain.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var doc domain.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: source: %w", ErrMalformedBulk, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: source is not an object", ErrMalformedBulk)
	}

	if kind == domain.BulkUpdate {
		partial, ok := doc["doc"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: update source has no doc object", ErrMalformedBulk)
		}
		return partial, nil
	}
	return doc, nil
}
