package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the structured error the API returns for non-200 responses.
type APIError struct {
	StatusCode int    `json:"code"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genai: %s (http %d %s)", e.Message, e.StatusCode, e.Status)
}

// Server reports whether the error came from the server side (5xx).
func (e *APIError) Server() bool {
	return e.StatusCode >= 500 && e.StatusCode <= 599
}

type apiErrorEnvelope struct {
	Error *APIError `json:"error"`
}

// parseAPIError builds an APIError from a non-200 response body. The HTTP
// status on the response wins over any code embedded in the body.
func parseAPIError(statusCode int, body []byte) *APIError {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		env.Error.StatusCode = statusCode
		return env.Error
	}
	return &APIError{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Message:    strings.TrimSpace(string(body)),
	}
}

// IsOverloaded reports whether err is the transient model-overloaded server
// error. Only this class of failure is worth retrying; everything else is
// terminal for the request that caused it.
func IsOverloaded(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Server() && strings.Contains(strings.ToLower(apiErr.Message), "overloaded")
}
