package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// getHTTPErrorCategory maps HTTP status codes to error categories.
func getHTTPErrorCategory(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		return Recoverable
	}
}

// NewHTTPError classifies a non-2xx response. The backend's error body, when it
// is JSON with an "error" or "message" field, becomes the error message; a plain
// text body is used verbatim.
func NewHTTPError(op string, statusCode int, body []byte) *ClassifiedError {
	msg := backendMessage(body)
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &ClassifiedError{
		Op:         op,
		Kind:       HTTP,
		Category:   getHTTPErrorCategory(statusCode),
		StatusCode: statusCode,
		Message:    msg,
		Underlying: fmt.Errorf("%s failed: HTTP %d", op, statusCode),
	}
}

// NewNetworkError creates a classified error for network-level failures.
func NewNetworkError(op string, err error) *ClassifiedError {
	return &ClassifiedError{
		Op:         op,
		Kind:       Transport,
		Category:   Recoverable,
		Underlying: err,
	}
}

// NewDecodeError reports a response body that could not be parsed.
func NewDecodeError(op string, err error) *ClassifiedError {
	return &ClassifiedError{
		Op:         op,
		Kind:       Decode,
		Category:   Irrecoverable,
		Underlying: err,
	}
}

func backendMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var eb struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Message != "":
			return eb.Message
		case eb.Error != "":
			return eb.Error
		}
		return ""
	}
	const maxLen = 256
	if len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen]
	}
	return trimmed
}
