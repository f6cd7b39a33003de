package domain

// Document is a JSON document body.
type Document map[string]any

// Result values reported by write operations.
const (
	ResultCreated  = "created"
	ResultUpdated  = "updated"
	ResultDeleted  = "deleted"
	ResultNotFound = "not_found"
	ResultNoop     = "noop"
)

// IndexResult is the outcome of a single-document write.
type IndexResult struct {
	Index       string `json:"_index"`
	ID          string `json:"_id"`
	Version     int64  `json:"_version"`
	Result      string `json:"result"`
	SeqNo       int64  `json:"_seq_no"`
	PrimaryTerm int64  `json:"_primary_term"`
}

// Created reports whether the write created a new document.
func (r *IndexResult) Created() bool {
	return r.Result == ResultCreated
}

// GetResult is the outcome of fetching a document by id. A missing id is
// reported with Found false, not as an error.
type GetResult struct {
	Index   string   `json:"_index"`
	ID      string   `json:"_id"`
	Version int64    `json:"_version,omitempty"`
	Found   bool     `json:"found"`
	Source  Document `json:"_source,omitempty"`
}
