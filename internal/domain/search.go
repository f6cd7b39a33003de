package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAggregationMissing is returned when a named aggregation is absent from a result.
var ErrAggregationMissing = errors.New("aggregation not present in result")

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortField orders hits by a field.
type SortField struct {
	Field string
	Order SortOrder
}

// TermsAggregation buckets documents by the distinct values of Field.
// Size of zero leaves the service default (10).
type TermsAggregation struct {
	Field string
	Size  int
}

// SearchRequest is a structured search. A nil Query matches everything.
type SearchRequest struct {
	Query        Query
	Aggregations map[string]TermsAggregation
	Size         *int
	From         int
	Sort         []SortField
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Total is the hit count. Relation is "eq" for exact counts.
type Total struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// UnmarshalJSON accepts both a bare number and the {value, relation} object.
func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode hits.total: %w", err)
		}
		*t = Total{Value: n, Relation: "eq"}
		return nil
	}

	type plain Total
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode hits.total: %w", err)
	}
	*t = Total(p)
	return nil
}

// Hit is one matching document. Score is nil when results are sorted.
type Hit struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Score  *float64       `json:"_score"`
	Source Document       `json:"_source,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Hits is the hits section of a search response.
type Hits struct {
	Total    Total    `json:"total"`
	MaxScore *float64 `json:"max_score"`
	Hits     []Hit    `json:"hits"`
}

// SearchResult is a decoded search response. Aggregations are kept raw
// and decoded on demand.
type SearchResult struct {
	Took         int64                      `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         Hits                       `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}

// Total returns the total hit count.
func (r *SearchResult) Total() int64 {
	return r.Hits.Total.Value
}

// IDs returns the ids of the returned hits in order.
func (r *SearchResult) IDs() []string {
	ids := make([]string, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		ids[i] = h.ID
	}
	return ids
}

// Bucket is one terms bucket. Key is a string or a number.
type Bucket struct {
	Key      any   `json:"key"`
	DocCount int64 `json:"doc_count"`
}

// TermsResult is a terms aggregation result. DocCountErrorUpperBound and
// SumOtherDocCount come from the service's distributed counting and are
// surfaced as returned.
type TermsResult struct {
	DocCountErrorUpperBound int64    `json:"doc_count_error_upper_bound"`
	SumOtherDocCount        int64    `json:"sum_other_doc_count"`
	Buckets                 []Bucket `json:"buckets"`
}

// BucketTotal sums the doc counts of the returned buckets.
func (t *TermsResult) BucketTotal() int64 {
	var sum int64
	for _, b := range t.Buckets {
		sum += b.DocCount
	}
	return sum
}

// Terms decodes the named terms aggregation.
func (r *SearchResult) Terms(name string) (*TermsResult, error) {
	raw, ok := r.Aggregations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAggregationMissing, name)
	}
	var out TermsResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode aggregation %s: %w", name, err)
	}
	return &out, nil
}
