package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"aiguard-backend/internal/models"
	"aiguard-backend/internal/settings"
)

const (
	chatTimeout = 120 * time.Second
	listTimeout = 10 * time.Second
)

// ModelTarget selects the model endpoint a chat is sent to.
type ModelTarget struct {
	API     string // settings.ModelAPIOllama or settings.ModelAPIOpenAI
	BaseURL string
	Model   string
}

// ModelGateway talks to the language-model server, either through the
// native Ollama API or its OpenAI-compatible /v1 surface. Every call is a
// single attempt bounded by a client timeout.
type ModelGateway struct {
	chatClient *http.Client
	listClient *http.Client
}

func NewModelGateway() *ModelGateway {
	return &ModelGateway{
		chatClient: &http.Client{Timeout: chatTimeout}, // Long timeout for generation
		listClient: &http.Client{Timeout: listTimeout},
	}
}

// Chat sends the whole conversation and returns the assistant's reply text.
func (g *ModelGateway) Chat(ctx context.Context, target ModelTarget, messages []models.ChatMessage) (string, error) {
	if target.BaseURL == "" || target.Model == "" {
		return "", &ConfigError{Message: "Configure Ollama URL and model in Settings first."}
	}

	if target.API == settings.ModelAPIOpenAI {
		return g.chatOpenAI(ctx, target, messages)
	}
	return g.chatOllama(ctx, target, messages)
}

// ListModels returns the models advertised by the server at baseURL.
func (g *ModelGateway) ListModels(ctx context.Context, api, baseURL string) ([]models.ModelInfo, error) {
	baseURL = settings.NormalizeBaseURL(baseURL)
	if baseURL == "" {
		return nil, &ConfigError{Message: "Ollama base URL is required"}
	}

	if api == settings.ModelAPIOpenAI {
		return g.listOpenAI(ctx, baseURL)
	}
	return g.listOllama(ctx, baseURL)
}

// ──── Ollama native API ────

type ollamaChatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type ollamaChatResponse struct {
	Message *struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

type ollamaTagsResponse struct {
	Models []models.ModelInfo `json:"models"`
}

func (g *ModelGateway) chatOllama(ctx context.Context, target ModelTarget, messages []models.ChatMessage) (string, error) {
	endpoint := target.BaseURL + "/api/chat"
	body, err := json.Marshal(ollamaChatRequest{Model: target.Model, Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ConfigError{Message: fmt.Sprintf("Invalid Ollama URL %q: %v", target.BaseURL, err)}
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := g.do(g.chatClient, req, "Ollama at "+endpoint)
	if err != nil {
		return "", err
	}

	var res ollamaChatResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", &MalformedResponseError{Service: "Ollama", Err: err}
	}
	if res.Message == nil {
		return "", nil
	}
	return res.Message.Content, nil
}

func (g *ModelGateway) listOllama(ctx context.Context, baseURL string) ([]models.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("Invalid Ollama URL %q: %v", baseURL, err)}
	}

	raw, err := g.do(g.listClient, req, "Ollama at "+baseURL)
	if err != nil {
		return nil, err
	}

	var res ollamaTagsResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &MalformedResponseError{Service: "Ollama", Err: err}
	}
	if res.Models == nil {
		return []models.ModelInfo{}, nil
	}
	return res.Models, nil
}

// do performs req once and returns the body of a 2xx response.
func (g *ModelGateway) do(client *http.Client, req *http.Request, target string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &ConnectivityError{Target: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectivityError{Target: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Service:    "Ollama",
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxUpstreamBody),
		}
	}
	return raw, nil
}

// ──── OpenAI-compatible API ────

func (g *ModelGateway) openAIClient(baseURL string, httpClient *http.Client) *openai.Client {
	cfg := openai.DefaultConfig("ollama") // Ollama ignores the key but go-openai always sends one
	cfg.BaseURL = baseURL + "/v1"
	cfg.HTTPClient = httpClient
	return openai.NewClientWithConfig(cfg)
}

func (g *ModelGateway) chatOpenAI(ctx context.Context, target ModelTarget, messages []models.ChatMessage) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	client := g.openAIClient(target.BaseURL, g.chatClient)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    target.Model,
		Messages: msgs,
		Stream:   false,
	})
	if err != nil {
		return "", mapOpenAIError(err, "model endpoint at "+target.BaseURL+"/v1")
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *ModelGateway) listOpenAI(ctx context.Context, baseURL string) ([]models.ModelInfo, error) {
	client := g.openAIClient(baseURL, g.listClient)
	resp, err := client.ListModels(ctx)
	if err != nil {
		return nil, mapOpenAIError(err, "model endpoint at "+baseURL+"/v1")
	}

	out := make([]models.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, models.ModelInfo{
			Name:    m.ID,
			Details: map[string]any{"owned_by": m.OwnedBy},
		})
	}
	return out, nil
}

// mapOpenAIError sorts go-openai failures into the gateway error taxonomy.
func mapOpenAIError(err error, target string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			Service:    "Model endpoint",
			StatusCode: apiErr.HTTPStatusCode,
			Body:       truncate(apiErr.Message, maxUpstreamBody),
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{
			Service:    "Model endpoint",
			StatusCode: reqErr.HTTPStatusCode,
			Body:       truncate(reqErr.Error(), maxUpstreamBody),
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &ConnectivityError{Target: target, Err: err}
	}

	return &MalformedResponseError{Service: "Model endpoint", Err: err}
}
