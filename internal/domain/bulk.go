package domain

// BulkKind is the action of one bulk entry.
type BulkKind string

const (
	BulkIndex  BulkKind = "index"
	BulkCreate BulkKind = "create"
	BulkUpdate BulkKind = "update"
	BulkDelete BulkKind = "delete"
)

// Valid reports whether k is a known bulk action.
func (k BulkKind) Valid() bool {
	switch k {
	case BulkIndex, BulkCreate, BulkUpdate, BulkDelete:
		return true
	default:
		return false
	}
}

// BulkOperation is one entry of a bulk request. Index overrides the
// request-level index when set. Document is ignored for deletes and is the
// partial document for updates.
type BulkOperation struct {
	Kind     BulkKind
	Index    string
	ID       string
	Document Document
}

// ErrorCause is the service's structured error description.
type ErrorCause struct {
	Type     string      `json:"type"`
	Reason   string      `json:"reason"`
	CausedBy *ErrorCause `json:"caused_by,omitempty"`
}

// BulkItemResult is the outcome of one bulk entry.
type BulkItemResult struct {
	Kind   BulkKind    `json:"-"`
	Index  string      `json:"_index"`
	ID     string      `json:"_id"`
	Status int         `json:"status"`
	Result string      `json:"result,omitempty"`
	Error  *ErrorCause `json:"error,omitempty"`
}

// Failed reports whether the entry failed.
func (r BulkItemResult) Failed() bool {
	return r.Error != nil || r.Status >= 300
}

// BulkResult is the outcome of a bulk request. Items follow submission order.
type BulkResult struct {
	Took      int64            `json:"took"`
	HasErrors bool             `json:"errors"`
	Items     []BulkItemResult `json:"-"`
}

// Failed returns the entries that failed, in submission order.
func (r *BulkResult) Failed() []BulkItemResult {
	if !r.HasErrors {
		return nil
	}
	var failed []BulkItemResult
	for _, item := range r.Items {
		if item.Failed() {
			failed = append(failed, item)
		}
	}
	return failed
}
