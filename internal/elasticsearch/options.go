package elasticsearch

import "fmt"

// Refresh controls when a write becomes visible to search.
type Refresh string

const (
	// RefreshNone leaves visibility to the periodic refresh.
	RefreshNone Refresh = ""
	// RefreshImmediate refreshes the affected shards right after the write.
	RefreshImmediate Refresh = "true"
	// RefreshWaitFor blocks the write until the next refresh makes it visible.
	RefreshWaitFor Refresh = "wait_for"
)

// ParseRefresh parses a refresh policy as written on the command line.
func ParseRefresh(s string) (Refresh, error) {
	switch s {
	case "", "false":
		return RefreshNone, nil
	case "true":
		return RefreshImmediate, nil
	case "wait_for":
		return RefreshWaitFor, nil
	default:
		return RefreshNone, fmt.Errorf("%w: unknown refresh policy %q", ErrInvalidArgument, s)
	}
}

// WriteOption configures a document or bulk write.
type WriteOption func(*writeOptions)

type writeOptions struct {
	createOnly   bool
	requireIndex bool
	refresh      Refresh
}

// WithCreateOnly makes IndexDocument fail with ErrConflict when the id exists.
func WithCreateOnly() WriteOption {
	return func(o *writeOptions) {
		o.createOnly = true
	}
}

// WithRequireIndex makes the write fail with ErrNotFound when the target
// index does not exist, instead of letting the service auto-create it.
func WithRequireIndex() WriteOption {
	return func(o *writeOptions) {
		o.requireIndex = true
	}
}

// WithRefresh sets the refresh policy of the write.
func WithRefresh(r Refresh) WriteOption {
	return func(o *writeOptions) {
		o.refresh = r
	}
}

func applyWriteOptions(opts []WriteOption) writeOptions {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
