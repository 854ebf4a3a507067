package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aiguard-backend/internal/models"
	"aiguard-backend/internal/settings"
)

func TestModelGateway_OllamaChat(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"message":{"role":"assistant","content":"Hello!"}}`))
	}))
	defer srv.Close()

	g := NewModelGateway()
	reply, err := g.Chat(context.Background(), ModelTarget{BaseURL: srv.URL, Model: "llama3.2"}, []models.ChatMessage{
		{Role: "user", Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Hello!" {
		t.Errorf("expected reply 'Hello!', got %q", reply)
	}
	if got.Model != "llama3.2" || got.Stream || len(got.Messages) != 1 {
		t.Errorf("unexpected upstream request %+v", got)
	}
}

func TestModelGateway_MissingMessageDefaultsToEmpty(t *testing.T) {
	for _, body := range []string{`{}`, `{"message":{}}`, `{"message":null}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		reply, err := NewModelGateway().Chat(context.Background(), ModelTarget{BaseURL: srv.URL, Model: "m"}, nil)
		srv.Close()

		if err != nil {
			t.Fatalf("body %s: unexpected error: %v", body, err)
		}
		if reply != "" {
			t.Errorf("body %s: expected empty reply, got %q", body, reply)
		}
	}
}

func TestModelGateway_ConfigError(t *testing.T) {
	_, err := NewModelGateway().Chat(context.Background(), ModelTarget{Model: "m"}, nil)

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestModelGateway_UpstreamErrorTruncatesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	_, err := NewModelGateway().Chat(context.Background(), ModelTarget{BaseURL: srv.URL, Model: "missing"}, nil)

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", upErr.StatusCode)
	}
	if len(upErr.Body) != maxUpstreamBody {
		t.Errorf("expected body truncated to %d, got %d", maxUpstreamBody, len(upErr.Body))
	}
}

func TestModelGateway_ConnectivityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewModelGateway().Chat(context.Background(), ModelTarget{BaseURL: url, Model: "m"}, nil)

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if !strings.Contains(connErr.Error(), "Cannot connect") {
		t.Errorf("unexpected message %q", connErr.Error())
	}
}

func TestModelGateway_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := NewModelGateway().Chat(context.Background(), ModelTarget{BaseURL: srv.URL, Model: "m"}, nil)

	var malErr *MalformedResponseError
	if !errors.As(err, &malErr) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
}

func TestModelGateway_ListOllamaModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2","details":{},"size":123}]}`))
	}))
	defer srv.Close()

	list, err := NewModelGateway().ListModels(context.Background(), settings.ModelAPIOllama, srv.URL+"/api/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "llama3.2" {
		t.Errorf("unexpected models %+v", list)
	}
}

func TestModelGateway_ListModelsRequiresURL(t *testing.T) {
	_, err := NewModelGateway().ListModels(context.Background(), settings.ModelAPIOllama, "  ")

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestModelGateway_OpenAIDialect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/chat/completions":
			w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}]}`))
		case "/v1/models":
			w.Write([]byte(`{"object":"list","data":[{"id":"llama3.2","object":"model","owned_by":"library"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"no such route","type":"invalid_request_error"}}`))
		}
	}))
	defer srv.Close()

	g := NewModelGateway()
	target := ModelTarget{API: settings.ModelAPIOpenAI, BaseURL: srv.URL, Model: "llama3.2"}

	reply, err := g.Chat(context.Background(), target, []models.ChatMessage{{Role: "user", Content: "ping"}})
	if err != nil {
		t.Fatalf("unexpected chat error: %v", err)
	}
	if reply != "pong" {
		t.Errorf("expected 'pong', got %q", reply)
	}

	list, err := g.ListModels(context.Background(), settings.ModelAPIOpenAI, srv.URL)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "llama3.2" {
		t.Errorf("unexpected models %+v", list)
	}
}

func TestModelGateway_OpenAIDialectUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"model \"nope\" not found","type":"api_error"}}`))
	}))
	defer srv.Close()

	_, err := NewModelGateway().Chat(context.Background(),
		ModelTarget{API: settings.ModelAPIOpenAI, BaseURL: srv.URL, Model: "nope"},
		[]models.ChatMessage{{Role: "user", Content: "hi"}})

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", upErr.StatusCode)
	}
}
