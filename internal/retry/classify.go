package retry

import (
	"encoding/json"
	"errors"
	"strings"
)

// HTTPError is the error shape the seller API adapter's HTTP client
// raises on a non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "http error"
}

var retryableSubstrings = []string{
	"econnreset", "etimedout", "socket hang up", "network",
}

// IsRetryableError reports whether err should be retried: HTTP 429 or
// 5xx status codes, or a message containing one of a small set of
// known-transient network error substrings (case-insensitive).
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 || httpErr.StatusCode >= 500 {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, sub := range retryableSubstrings {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}

// ParseHTTPError unwraps an error that may carry a JSON-in-a-string body
// of the shape {"statusCode": N, "message": "..."}. If err is already an
// *HTTPError, its fields are returned as they are; if its message does
// not parse as that shape, the result carries StatusCode 0 and the raw
// error message. It never returns an error of its own.
func ParseHTTPError(err error) HTTPError {
	if err == nil {
		return HTTPError{}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return *httpErr
	}

	var body struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	}
	if jsonErr := json.Unmarshal([]byte(err.Error()), &body); jsonErr == nil {
		return HTTPError{StatusCode: body.StatusCode, Message: body.Message}
	}
	return HTTPError{Message: err.Error()}
}
