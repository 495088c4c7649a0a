package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrNotFound matches any APIError with status 404.
	ErrNotFound = errors.New("not found")

	// ErrMalformedResponse is wrapped when a body does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response body")

	// ErrNoToken is returned by authenticated calls made before login.
	ErrNoToken = errors.New("no access token")
)

// APIError is a failed backend call, normalized for display.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch e.ErrorClass {
	case ErrorClassNetwork:
		return fmt.Sprintf("Network error: %v", e.Err)
	case ErrorClassDecode:
		return fmt.Sprintf("Unexpected response format: %v", e.Err)
	}
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Result is the outcome of a successful write call.
type Result struct {
	Message    string
	StatusCode int
}

// Outcome flattens a call result into the (ok, message, status) form the
// dashboard renders inline. status is 0 when no response was received.
func Outcome(res Result, err error) (ok bool, message string, status int) {
	if err == nil {
		return true, res.Message, res.StatusCode
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorClass == ErrorClassNetwork || apiErr.ErrorClass == ErrorClassDecode {
			return false, apiErr.Error(), apiErr.StatusCode
		}
		return false, apiErr.Message, apiErr.StatusCode
	}
	return false, err.Error(), 0
}

// errorDetail extracts the backend's error text from a response body: the
// JSON "detail" field when present, otherwise the raw body, otherwise fallback.
func errorDetail(body []byte, fallback string) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fallback
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil || len(payload.Detail) == 0 || string(payload.Detail) == "null" {
		return string(trimmed)
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return detail
	}

	// Validation errors arrive as a list of objects.
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload.Detail); err != nil {
		return strings.TrimSpace(string(payload.Detail))
	}
	return compact.String()
}

// errorClassForStatus categorizes a non-success HTTP status.
func errorClassForStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}
