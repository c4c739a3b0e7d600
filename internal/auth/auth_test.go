package auth

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestAuthenticator(t *testing.T) {
	a := New(map[string]string{"tok-1": "alice"}, "X-Forwarded-User")

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"bearer", map[string]string{"Authorization": "Bearer tok-1"}, "alice"},
		{"bad_token", map[string]string{"Authorization": "Bearer nope"}, ""},
		{"basic_scheme", map[string]string{"Authorization": "Basic tok-1"}, ""},
		{"proxy_header", map[string]string{"X-Forwarded-User": " bob "}, "bob"},
		{"bearer_first", map[string]string{"Authorization": "Bearer tok-1", "X-Forwarded-User": "bob"}, "alice"},
		{"fallthrough_to_proxy", map[string]string{"Authorization": "Bearer nope", "X-Forwarded-User": "bob"}, "bob"},
		{"none", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/chats", nil)
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := a.UserID(r); got != tc.want {
				t.Fatalf("UserID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNoSources(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-User", "mallory")
	if got := New(nil, "").UserID(r); got != "" {
		t.Fatalf("UserID = %q with no configured source", got)
	}
}

func TestUserContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatal("empty context has a user")
	}
	id, ok := UserFromContext(WithUser(context.Background(), "alice"))
	if !ok || id != "alice" {
		t.Fatalf("UserFromContext = %q, %v", id, ok)
	}
}
