package elasticsearch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error taxonomy. A non-2xx response matches exactly one of the first five
// with errors.Is; transport failures match ErrConnection.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrServer       = errors.New("server error")
	ErrConnection   = errors.New("connection error")

	// ErrUnexpectedResponse reports a 2xx body that does not have the expected shape.
	ErrUnexpectedResponse = errors.New("unexpected response")
	// ErrInvalidArgument reports a request rejected before it was sent.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClientClosed is returned by calls made after Close.
	ErrClientClosed = errors.New("client closed")
)

// Error types the service reports for already-existing resources.
const (
	typeResourceExists  = "resource_already_exists_exception"
	typeVersionConflict = "version_conflict_engine_exception"
)

// maxErrorBody bounds how much of an error body is kept on ResponseError.
const maxErrorBody = 4096

// ResponseError is a non-2xx response from the service.
type ResponseError struct {
	Op         string
	StatusCode int
	Type       string
	Reason     string
	Body       string
}

func (e *ResponseError) Error() string {
	switch {
	case e.Type != "":
		return fmt.Sprintf("%s: [%d] %s: %s", e.Op, e.StatusCode, e.Type, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("%s: [%d] %s", e.Op, e.StatusCode, e.Reason)
	default:
		return fmt.Sprintf("%s: [%d] %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Unwrap returns the taxonomy sentinel for the status and error type.
func (e *ResponseError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict,
		e.Type == typeResourceExists,
		e.Type == typeVersionConflict:
		return ErrConflict
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// ConnectionError is a failure to complete the HTTP exchange.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection error: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrConnection and the underlying cause.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

// errorBody covers the shapes the service uses for error responses: a
// structured error object, a plain error string, or a write result such
// as {"result":"not_found"}.
type errorBody struct {
	Error  json.RawMessage `json:"error"`
	Result string          `json:"result"`
	Found  *bool           `json:"found"`
}

type errorObject struct {
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	RootCause []struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"root_cause"`
}

// newResponseError reads body and builds a ResponseError.
func newResponseError(op string, status int, body io.Reader) *ResponseError {
	e := &ResponseError{Op: op, StatusCode: status}
	if body == nil {
		return e
	}

	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		e.Reason = fmt.Sprintf("read error body: %v", err)
		return e
	}
	e.Body = string(data)
	parseErrorBody(e, data)
	return e
}

func parseErrorBody(e *ResponseError, data []byte) {
	var parsed errorBody
	if len(bytes.TrimSpace(data)) == 0 || json.Unmarshal(data, &parsed) != nil {
		return
	}

	if len(parsed.Error) > 0 {
		var obj errorObject
		if json.Unmarshal(parsed.Error, &obj) == nil && obj.Type != "" {
			e.Type, e.Reason = obj.Type, obj.Reason
			if e.Reason == "" && len(obj.RootCause) > 0 {
				e.Reason = obj.RootCause[0].Reason
			}
			return
		}
		var msg string
		if json.Unmarshal(parsed.Error, &msg) == nil {
			e.Reason = msg
			return
		}
	}

	switch {
	case parsed.Result == "not_found", parsed.Found != nil && !*parsed.Found:
		e.Reason = "document not found"
	case parsed.Result != "":
		e.Reason = parsed.Result
	}
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidArgument):
		return "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrServer):
		return "server_error"
	case errors.Is(err, ErrConnection):
		return "connection_error"
	default:
		return "error"
	}
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict outcome.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
