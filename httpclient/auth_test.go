package httpclient

import (
	"net/http"
	"testing"
)

func TestBearerAuth(t *testing.T) {
	auth := BearerAuth("sk-test")
	req, _ := http.NewRequest("POST", "http://example.com", nil)
	auth.apply(req)
	if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("got %q, want %q", got, "Bearer sk-test")
	}
}

func TestBearerAuth_EmptyToken(t *testing.T) {
	auth := BearerAuth("")
	if auth != nil {
		t.Fatalf("expected nil auth for empty token, got %+v", auth)
	}
	req, _ := http.NewRequest("POST", "http://example.com", nil)
	auth.apply(req)
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestAPIKeyAuthHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"custom header", "X-Custom-Key", "X-Custom-Key"},
		{"default header", "", "X-API-Key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://example.com", nil)
			APIKeyAuthHeader("secret", tt.header).apply(req)
			if got := req.Header.Get(tt.want); got != "secret" {
				t.Errorf("header %s = %q, want %q", tt.want, got, "secret")
			}
		})
	}
}

func TestAuthNone(t *testing.T) {
	auth := &AuthConfig{Type: AuthNone}
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.apply(req)
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("expected no auth header, got %q", got)
	}
}
