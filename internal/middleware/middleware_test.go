package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID_AssignsAndKeeps(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen == "" {
		t.Fatal("Expected a generated request ID")
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("Expected response header %q, got %q", seen, rr.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "client-id-1" {
		t.Errorf("Expected client ID kept, got %q", seen)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS("*")(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected wildcard origin")
	}
}

func TestRequireAdmin_PassthroughWithoutSecret(t *testing.T) {
	h := NewJWTAuth("").RequireAdmin(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/config", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	valid, err := auth.GenerateAdminToken("ops", time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	expired, _ := auth.GenerateAdminToken("ops", -time.Minute)
	otherSecret, _ := NewJWTAuth("other-secret").GenerateAdminToken("ops", time.Hour)
	noScope, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantErr  string
	}{
		{"bearer token", "Bearer " + valid, "", http.StatusOK, ""},
		{"query token", "", valid, http.StatusOK, ""},
		{"missing", "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad format", "Token " + valid, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"wrong secret", "Bearer " + otherSecret, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing scope", "Bearer " + noScope, "", http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := "/api/events"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			auth.RequireAdmin(okHandler).ServeHTTP(rr, req)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, rr.Code)
			}
			if tc.wantErr == "" {
				return
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if body.Error.Code != tc.wantErr {
				t.Errorf("Expected code %q, got %q", tc.wantErr, body.Error.Code)
			}
		})
	}
}

func TestGenerateAdminToken_RequiresSecret(t *testing.T) {
	if _, err := NewJWTAuth("").GenerateAdminToken("ops", time.Hour); err == nil {
		t.Fatal("Expected error without secret")
	}
}
