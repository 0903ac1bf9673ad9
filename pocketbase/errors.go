package pocketbase

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ConfigurationError means the client cannot be built: base URL, collection
// or a required token is missing or malformed. It is not recoverable by
// retrying the call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ValidationError is returned before any I/O when a call is missing a
// required argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required parameter: %s", e.Field)
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func missingParam(field string) error {
	return &ValidationError{Field: field}
}

// APIError is a non-2xx response rendered as a Go error. Message and Fields
// come from PocketBase's {"code","message","data"} error body.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string

	// Transport is set when no complete response arrived; StatusCode is then
	// the synthesized 500.
	Transport bool
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("API error (status %d): %s\nValidation errors:\n%s", e.StatusCode, msg, formatFieldErrors(e.Fields))
}

func newAPIError(r Result) *APIError {
	apiErr := &APIError{StatusCode: r.StatusCode, Transport: r.transport}

	body, ok := r.Response.(map[string]any)
	if !ok {
		if r.Response == nil && len(r.Raw) > 0 {
			apiErr.Message = "API request failed (non-JSON response body)"
		}
		return apiErr
	}
	if msg, ok := body["message"].(string); ok {
		apiErr.Message = msg
	} else if msg, ok := body["error"].(string); ok {
		apiErr.Message = msg
	}
	if data, ok := body["data"].(map[string]any); ok {
		apiErr.Fields = fieldErrors(data)
	}
	return apiErr
}

// fieldErrors flattens PocketBase validation data:
// {"email": {"code": "validation_required", "message": "Missing required value."}}
func fieldErrors(data map[string]any) map[string]string {
	out := make(map[string]string)
	for field, value := range data {
		switch v := value.(type) {
		case string:
			out[field] = v
		case map[string]any:
			if msg, ok := v["message"].(string); ok {
				out[field] = msg
			} else if code, ok := v["code"].(string); ok {
				out[field] = code
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formatFieldErrors(fields map[string]string) string {
	lines := make([]string, 0, len(fields))
	for field, msg := range fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", field, msg))
	}
	// Sort for consistent output
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsValidationError checks if the error is a parameter validation error.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsAPIError checks if the error came from a non-2xx response.
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
