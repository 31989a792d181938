package vision

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnidentifiable marks a valid negative outcome: the model answered but
// could not name the subject. Not a service failure.
var ErrUnidentifiable = errors.New("subject could not be identified")

// ErrorKind classifies an identification failure for user-facing messaging.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindNotFound   ErrorKind = "not_found"
	KindRateLimit  ErrorKind = "rate_limit"
	KindPermission ErrorKind = "permission"
	KindNetwork    ErrorKind = "network"
)

// IdentificationError is a classified failure of the vision boundary.
type IdentificationError struct {
	Kind    ErrorKind
	Message string // user-facing
	Err     error  // underlying detail
}

func (e *IdentificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identification failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("identification failed (%s): %s", e.Kind, e.Message)
}

func (e *IdentificationError) Unwrap() error {
	return e.Err
}

var userMessages = map[ErrorKind]string{
	KindAuth:       "The identification service rejected the credentials. Check the configured API key.",
	KindNotFound:   "The identification model is unavailable.",
	KindRateLimit:  "The identification service quota is exhausted. Try again later.",
	KindPermission: "Access to the identification service was denied.",
	KindNetwork:    "The identification service could not be reached. Check your connection and try again.",
}

func newError(kind ErrorKind, err error) *IdentificationError {
	return &IdentificationError{
		Kind:    kind,
		Message: userMessages[kind],
		Err:     err,
	}
}

// NetworkError wraps a transport-level failure (no HTTP response).
func NetworkError(err error) *IdentificationError {
	return newError(KindNetwork, err)
}

// ClassifyHTTP maps a non-2xx provider response to a classified error.
// Unmatched statuses and bodies fall through to the generic network kind.
func ClassifyHTTP(status int, body string) *IdentificationError {
	detail := fmt.Errorf("status %d: %s", status, truncate(body, 300))
	lower := strings.ToLower(body)

	switch status {
	case http.StatusUnauthorized:
		return newError(KindAuth, detail)
	case http.StatusForbidden:
		return newError(KindPermission, detail)
	case http.StatusNotFound:
		return newError(KindNotFound, detail)
	case http.StatusTooManyRequests:
		return newError(KindRateLimit, detail)
	}

	switch {
	case strings.Contains(lower, "api key") || strings.Contains(lower, "authentication") || strings.Contains(lower, "invalid_api_key"):
		return newError(KindAuth, detail)
	case strings.Contains(lower, "not_found") || strings.Contains(lower, "model not found"):
		return newError(KindNotFound, detail)
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota") || strings.Contains(lower, "resource_exhausted"):
		return newError(KindRateLimit, detail)
	case strings.Contains(lower, "permission"):
		return newError(KindPermission, detail)
	}
	return newError(KindNetwork, detail)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
