package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// defaultErrorMessage is used when an error would otherwise carry no text.
const defaultErrorMessage = "unknown error"

// ErrStopStream can be returned from a stream handler to end the stream
// early without reporting a failure. The response is still released.
var ErrStopStream = errors.New("stop stream")

// Error is the structured error returned for every failed request, both
// for non-200 responses and for failure events inside a stream.
type Error struct {
	// Message is the human readable description. Never empty.
	Message string

	// StatusCode is the HTTP status of the response, or 0 when the error
	// did not come from a response status (e.g. an in-stream failure event).
	StatusCode int

	// Data is the structured error payload sent by the server, if any.
	// Usually an object, but any JSON value is kept as sent.
	Data any

	// RequestID correlates the failure with server-side logs.
	RequestID string

	cause error
}

// NewError builds an Error. An empty message is replaced so the
// rendered text is never blank.
func NewError(message string, statusCode int, data any, requestID string) *Error {
	if strings.TrimSpace(message) == "" {
		message = defaultErrorMessage
	}
	if isEmptyData(data) {
		data = nil
	}
	return &Error{
		Message:    message,
		StatusCode: statusCode,
		Data:       data,
		RequestID:  requestID,
	}
}

// Error renders the message, then the data payload and the request id
// when they are present.
func (e *Error) Error() string {
	var builder strings.Builder
	builder.WriteString(e.Message)
	if e.Data != nil {
		fmt.Fprintf(&builder, " - Data: %s", formatData(e.Data))
	}
	if e.RequestID != "" {
		fmt.Fprintf(&builder, " - Request ID: %s", e.RequestID)
	}
	return builder.String()
}

// Unwrap returns the error this one was derived from, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Wrap prefixes the message of err with the name of the failed operation,
// e.g. "Failed to run test: <message>". When err is an *Error its status
// code, data and request id are carried over and the original stays
// reachable through errors.As/Unwrap.
func Wrap(prefix string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return &Error{
			Message:    prefix + ": " + apiErr.Message,
			StatusCode: apiErr.StatusCode,
			Data:       apiErr.Data,
			RequestID:  apiErr.RequestID,
			cause:      err,
		}
	}

	return &Error{
		Message: prefix + ": " + err.Error(),
		cause:   err,
	}
}

// AsError returns the outermost *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, statusCode int) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.StatusCode == statusCode
}

// errorFromResponse classifies a non-200 response body. A JSON object body
// yields its message, data and request id, taking each only when it has
// the expected type; anything else is embedded verbatim in the message.
func errorFromResponse(statusCode int, body []byte) *Error {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil || parsed == nil {
		return NewError(fmt.Sprintf("Request failed with status code %d: %s", statusCode, string(body)), statusCode, nil, "")
	}

	message, _ := parsed["message"].(string)
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", statusCode)
	}
	requestID, _ := parsed["request_id"].(string)
	return NewError(message, statusCode, parsed["data"], requestID)
}

func isEmptyData(data any) bool {
	switch d := data.(type) {
	case nil:
		return true
	case map[string]any:
		return len(d) == 0
	case []any:
		return len(d) == 0
	}
	return false
}

func formatData(data any) string {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(encoded)
}
