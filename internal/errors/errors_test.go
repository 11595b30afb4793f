package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthError(t *testing.T) {
	err := NewAuthError(401, "invalid key")

	expected := "authentication failed: invalid key"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrAuthFailed) {
		t.Error("Expected AuthError to match ErrAuthFailed")
	}

	if !err.Is(NewAuthError(403, "other")) {
		t.Error("Expected error to be auth error type")
	}

	if err.Is(errors.New("standard error")) {
		t.Error("Expected error not to match standard error")
	}

	empty := NewAuthError(401, "")
	if empty.Error() != "authentication failed: check your API key" {
		t.Errorf("Error() = %s", empty.Error())
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "test-endpoint", "test API error")

	expected := "API error [400] at test-endpoint: test API error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "test-endpoint", "boom")
	if noStatus.Error() != "API error at test-endpoint: boom" {
		t.Errorf("Error() = %s", noStatus.Error())
	}
}

func TestNetworkError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewNetworkError("chat completion", "https://example.test", inner)

	if err.Error() != "connection refused" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("Expected NetworkError to unwrap to inner error")
	}
	if GetEndpoint(err) != "https://example.test" {
		t.Errorf("GetEndpoint() = %s", GetEndpoint(err))
	}

	if NewNetworkError("chat completion", "", nil).Error() != "chat completion failed" {
		t.Error("expected operation fallback message for nil inner error")
	}
}

func TestTimeoutError(t *testing.T) {
	inner := errors.New("i/o timeout")
	err := NewTimeoutError("chat completion", "https://example.test", inner)

	if err.Error() != "i/o timeout" {
		t.Errorf("Error() = %s, want the transport message", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("Expected TimeoutError to unwrap to inner error")
	}
	if GetEndpoint(err) != "https://example.test" {
		t.Errorf("GetEndpoint() = %s", GetEndpoint(err))
	}
	if NewTimeoutError("chat completion", "", nil).Error() != "request timed out" {
		t.Errorf("nil inner TimeoutError = %s", NewTimeoutError("chat completion", "", nil).Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("missing content", "choices.0.message.content")

	expected := "parse error: missing content (path choices.0.message.content)"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("Expected ParseError to match ErrInvalidResponse")
	}
	if !IsParseError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("Expected wrapped ParseError to be detected")
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		auth      bool
		rateLimit bool
		network   bool
		timeout   bool
		status    int
	}{
		{"auth", NewAuthError(401, ""), true, false, false, false, 401},
		{"rate limit", NewUsageLimitError("slow down"), false, true, false, false, 429},
		{"network", NewNetworkError("op", "ep", errors.New("reset")), false, false, true, false, 0},
		{"timeout", NewTimeoutError("op", "ep", errors.New("deadline")), false, false, false, true, 0},
		{"api", NewAPIError(500, "ep", "oops"), false, false, false, false, 500},
		{"wrapped api", fmt.Errorf("ctx: %w", NewAPIError(502, "ep", "bad gateway")), false, false, false, false, 502},
		{"plain", errors.New("plain"), false, false, false, false, 0},
		{"nil", nil, false, false, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.auth {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.auth)
			}
			if got := IsRateLimitError(tt.err); got != tt.rateLimit {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.rateLimit)
			}
			if got := IsNetworkError(tt.err); got != tt.network {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.network)
			}
			if got := IsTimeoutError(tt.err); got != tt.timeout {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.timeout)
			}
			if got := GetHTTPStatus(tt.err); got != tt.status {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestGetResponseBody(t *testing.T) {
	err := NewAPIErrorWithBody(500, "ep", "failed", `{"error":"boom"}`)
	if GetResponseBody(err) != `{"error":"boom"}` {
		t.Errorf("GetResponseBody() = %s", GetResponseBody(err))
	}
	if GetResponseBody(errors.New("x")) != "" {
		t.Error("expected empty body for plain error")
	}
}
