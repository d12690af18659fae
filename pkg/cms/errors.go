package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure for retry decisions.
type ErrorKind string

const (
	ErrorKindNetwork ErrorKind = "network"
	ErrorKindTimeout ErrorKind = "timeout"
	ErrorKindServer  ErrorKind = "server"
	ErrorKindClient  ErrorKind = "client"
	ErrorKindUnknown ErrorKind = "unknown"
)

// ClientError is returned for every failed API call. Status is 500 when no
// response was received.
type ClientError struct {
	Status  int            `json:"status"            yaml:"status"`
	Name    string         `json:"name,omitempty"    yaml:"name,omitempty"`
	Message string         `json:"message"           yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Kind    ErrorKind      `json:"-"                 yaml:"-"`
	Err     error          `json:"-"                 yaml:"-"`
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (status: %d)", e.Name, e.Message, e.Status)
	}

	return fmt.Sprintf("%s (status: %d)", e.Message, e.Status)
}

// Unwrap returns the transport error, if any.
func (e *ClientError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth another attempt.
func (e *ClientError) Retryable() bool {
	switch e.Kind {
	case ErrorKindNetwork, ErrorKindTimeout, ErrorKindServer:
		return true
	default:
		return false
	}
}

// ErrorEnvelope is the backend's error body.
type ErrorEnvelope struct {
	Error *struct {
		Status  int            `json:"status"`
		Name    string         `json:"name"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// ParseErrorResponse builds a ClientError from a non-2xx response body. The
// message falls back to fallback when the body has no structured error.
func ParseErrorResponse(status int, body []byte, fallback string) *ClientError {
	clientErr := &ClientError{
		Status:  status,
		Message: fallback,
		Kind:    KindForStatus(status),
	}

	var envelope ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		if envelope.Error.Message != "" {
			clientErr.Message = envelope.Error.Message
		}

		clientErr.Name = envelope.Error.Name
		clientErr.Details = envelope.Error.Details
	}

	if clientErr.Status == 0 {
		clientErr.Status = http.StatusInternalServerError
	}

	return clientErr
}

// KindForStatus maps an HTTP status to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status >= http.StatusInternalServerError:
		return ErrorKindServer
	case status >= http.StatusBadRequest:
		return ErrorKindClient
	default:
		return ErrorKindUnknown
	}
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrSiteIDRequired    = errors.New("site ID is required")
	ErrCacheMiss         = errors.New("cache miss")
	ErrInvalidRef        = errors.New("reference must carry an id or a slug")
	ErrRedisURLRequired  = errors.New("redis URL required for redis cache")
	ErrNATSURLRequired   = errors.New("NATS URL required for NATS cache")
	ErrUnsupportedCache  = errors.New("unsupported cache type")
	ErrUnexpectedPayload = errors.New("unexpected response payload")
)

// AsClientError extracts a ClientError from err.
func AsClientError(err error) (*ClientError, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr, true
	}

	return nil, false
}

// IsNotFound checks if the error is a 404.
func IsNotFound(err error) bool {
	clientErr, ok := AsClientError(err)

	return ok && clientErr.Status == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401.
func IsUnauthorized(err error) bool {
	clientErr, ok := AsClientError(err)

	return ok && clientErr.Status == http.StatusUnauthorized
}

// IsClientError checks if the error is any 4xx.
func IsClientError(err error) bool {
	clientErr, ok := AsClientError(err)

	return ok && clientErr.Kind == ErrorKindClient
}

// IsServerError checks if the error is a 5xx or a transport failure.
func IsServerError(err error) bool {
	clientErr, ok := AsClientError(err)

	return ok && clientErr.Status >= http.StatusInternalServerError
}
