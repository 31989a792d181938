package vision

import (
	"errors"
	"testing"
)

func TestClassifyHTTP(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		{"401 maps to auth", 401, `{"error":"whatever"}`, KindAuth},
		{"403 maps to permission", 403, "", KindPermission},
		{"404 maps to not found", 404, "", KindNotFound},
		{"429 maps to rate limit", 429, "", KindRateLimit},
		{"api key in body", 400, `{"message":"invalid API key provided"}`, KindAuth},
		{"authentication in body", 500, "authentication_error", KindAuth},
		{"model not found in body", 400, "model not found: gemini-9000", KindNotFound},
		{"quota in body", 400, "You have exceeded your quota", KindRateLimit},
		{"resource exhausted in body", 400, "RESOURCE_EXHAUSTED", KindRateLimit},
		{"permission in body", 400, "permission denied for project", KindPermission},
		{"unmatched falls through to network", 503, "upstream unavailable", KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyHTTP(tt.status, tt.body)
			if err.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", err.Kind, tt.want)
			}
			if err.Message == "" {
				t.Error("classified error should carry a user-facing message")
			}
		})
	}
}

func TestIdentificationErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := NetworkError(inner)

	if !errors.Is(err, inner) {
		t.Error("NetworkError should wrap the transport error")
	}
	if err.Kind != KindNetwork {
		t.Errorf("Kind = %q, want %q", err.Kind, KindNetwork)
	}

	var identErr *IdentificationError
	if !errors.As(error(err), &identErr) {
		t.Error("errors.As should match *IdentificationError")
	}
}
