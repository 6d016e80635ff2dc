package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-123","email":"collector@example.com"}`))
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, "anon-key")
	claims, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.Subject)
	}
	if claims.Email != "collector@example.com" {
		t.Errorf("unexpected email %s", claims.Email)
	}
}

func TestVerify_RejectsBadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, "anon-key")
	if _, err := v.Verify(context.Background(), "bad-token"); err == nil {
		t.Error("expected error for rejected token")
	}
}

func TestVerify_EmptyToken(t *testing.T) {
	v := NewHTTPVerifier("https://auth.example.com", "key")
	if _, err := v.Verify(context.Background(), "  "); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email":"no-id@example.com"}`))
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, "key")
	if _, err := v.Verify(context.Background(), "token"); err == nil {
		t.Error("expected error when provider returns no user id")
	}
}

func TestVerify_Unconfigured(t *testing.T) {
	v := NewHTTPVerifier("", "")
	if _, err := v.Verify(context.Background(), "token"); err == nil {
		t.Error("expected error when base URL is not configured")
	}
}
