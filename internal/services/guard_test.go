package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

type guardCall struct {
	query url.Values
	auth  string
	body  []byte
}

func newGuardServer(t *testing.T, status int, body string, seen *guardCall) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen.query = r.URL.Query()
			seen.auth = r.Header.Get("Authorization")
			seen.body, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestContentGuard_DecisionFields(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantMalicious bool
		wantDecision  string
	}{
		{"decision block", `{"decision":"block"}`, true, "block"},
		{"decision uppercase", `{"decision":"BLOCK"}`, true, "block"},
		{"review does not block", `{"decision":"review"}`, false, "review"},
		{"allow", `{"decision":"allow"}`, false, "allow"},
		{"falls back to action", `{"action":"Block"}`, true, "block"},
		{"falls back to recommendation", `{"decision":"","recommendation":"block"}`, true, "block"},
		{"decision wins over action", `{"decision":"allow","action":"block"}`, false, "allow"},
		{"null decision falls through", `{"decision":null,"action":"block"}`, true, "block"},
		{"defaults to allow", `{"id":"abc"}`, false, "allow"},
		{"blocked is not block", `{"decision":"blocked"}`, false, "blocked"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newGuardServer(t, http.StatusOK, tc.body, nil)
			g := NewContentGuard()

			v := g.Check(context.Background(), GuardRequest{Text: "hi", APIKey: "key-123456", URL: srv.URL})

			if v.IsError {
				t.Fatalf("unexpected error verdict: %+v", v)
			}
			if v.Malicious != tc.wantMalicious {
				t.Errorf("expected malicious=%v, got %v", tc.wantMalicious, v.Malicious)
			}
			if v.Allowed == tc.wantMalicious {
				t.Errorf("allowed must be the inverse of malicious, got %+v", v)
			}
			if v.Decision != tc.wantDecision {
				t.Errorf("expected decision %q, got %q", tc.wantDecision, v.Decision)
			}
		})
	}
}

func TestContentGuard_SendsTextKeyAndDetailFlag(t *testing.T) {
	var seen guardCall
	srv := newGuardServer(t, http.StatusOK, `{"decision":"allow"}`, &seen)
	g := NewContentGuard()

	g.Check(context.Background(), GuardRequest{Text: "is this safe?", APIKey: "key-123456", URL: srv.URL + "/", Detailed: true})

	if got := seen.query.Get("detailedResponse"); got != "true" {
		t.Errorf("expected detailedResponse=true, got %q", got)
	}
	if got := seen.auth; got != "Bearer key-123456" {
		t.Errorf("unexpected authorization header %q", got)
	}
	var payload map[string]string
	if err := json.Unmarshal(seen.body, &payload); err != nil {
		t.Fatalf("failed to decode guard payload: %v", err)
	}
	if payload["guard"] != "is this safe?" {
		t.Errorf("expected text in guard field, got %v", payload)
	}
}

func TestContentGuard_FailsOpen(t *testing.T) {
	t.Run("upstream error status", func(t *testing.T) {
		srv := newGuardServer(t, http.StatusInternalServerError, `{"decision":"block"}`, nil)
		v := NewContentGuard().Check(context.Background(), GuardRequest{Text: "x", APIKey: "key-123456", URL: srv.URL})

		if !v.IsError || v.Malicious || !v.Allowed {
			t.Fatalf("expected allowed error verdict, got %+v", v)
		}
		if !strings.Contains(v.Reason, "500") {
			t.Errorf("expected status code in reason, got %q", v.Reason)
		}
		if v.Detail == "" {
			t.Errorf("expected upstream body in detail")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := newGuardServer(t, http.StatusOK, `{}`, nil)
		closedURL := srv.URL
		srv.Close()

		v := NewContentGuard().Check(context.Background(), GuardRequest{Text: "x", APIKey: "key-123456", URL: closedURL})
		if !v.IsError || v.Malicious || !v.Allowed {
			t.Fatalf("expected allowed error verdict, got %+v", v)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := newGuardServer(t, http.StatusOK, `not json`, nil)
		v := NewContentGuard().Check(context.Background(), GuardRequest{Text: "x", APIKey: "key-123456", URL: srv.URL})
		if !v.IsError || v.Malicious {
			t.Fatalf("expected allowed error verdict, got %+v", v)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		v := NewContentGuard().Check(context.Background(), GuardRequest{Text: "x"})
		if !v.IsError || !v.Allowed || v.Reason != "Guard not configured" {
			t.Fatalf("unexpected verdict %+v", v)
		}
	})
}
