package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"aiguard-backend/internal/models"
	"aiguard-backend/internal/settings"
)

// BlockedMarker prefixes every message that replaces blocked content.
const BlockedMarker = "[Blocked by AI Guard]"

const (
	blockedPromptNotice   = BlockedMarker + " Your prompt was flagged as unsafe."
	blockedResponseNotice = BlockedMarker + " The model response was flagged as unsafe."
)

type settingsSource interface {
	Get() settings.Settings
}

type chatModel interface {
	Chat(ctx context.Context, target ModelTarget, messages []models.ChatMessage) (string, error)
}

type contentGuard interface {
	Check(ctx context.Context, in GuardRequest) models.GuardVerdict
}

type fileScanner interface {
	Available() bool
	Scan(path, apiKey, region string) models.ScanVerdict
}

// Mediator applies the guard and scanner policy around model calls and
// file uploads. It reads one settings snapshot per request.
type Mediator struct {
	settings settingsSource
	model    chatModel
	guard    contentGuard
	scanner  fileScanner
	events   EventPublisher
	tempDir  string
}

func NewMediator(
	store settingsSource,
	model chatModel,
	guard contentGuard,
	scanner fileScanner,
	events EventPublisher,
	tempDir string,
) *Mediator {
	if events == nil {
		events = NopPublisher{}
	}
	return &Mediator{
		settings: store,
		model:    model,
		guard:    guard,
		scanner:  scanner,
		events:   events,
		tempDir:  tempDir,
	}
}

// Chat mediates one chat turn: optional prompt check, model call, optional
// reply check. Only the verdict of the last check performed is returned.
func (m *Mediator) Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, error) {
	cfg := m.settings.Get()
	if !cfg.ModelConfigured() {
		return nil, &ConfigError{Message: "Configure Ollama URL and model in Settings first."}
	}
	if len(messages) == 0 {
		return nil, &ConfigError{Message: "messages is required"}
	}

	lastUser := lastUserMessage(messages)
	var verdict *models.GuardVerdict

	if cfg.GuardsUser() && lastUser != "" {
		v := m.checkText(ctx, cfg, lastUser, settings.EnforceUser)
		verdict = &v
		if v.Malicious {
			m.publishBlocked(ctx, settings.EnforceUser)
			return &models.ChatResponse{
				Message: models.ChatMessage{Role: "assistant", Content: blockedPromptNotice},
				Guard:   verdict,
			}, nil
		}
	}

	reply, err := m.model.Chat(ctx, modelTarget(cfg), messages)
	if err != nil {
		return nil, err
	}

	if cfg.GuardsAssistant() && reply != "" {
		v := m.checkText(ctx, cfg, reply, settings.EnforceAssistant)
		verdict = &v
		if v.Malicious {
			m.publishBlocked(ctx, settings.EnforceAssistant)
			reply = blockedResponseNotice
		}
	}

	return &models.ChatResponse{
		Message: models.ChatMessage{Role: "assistant", Content: reply},
		Guard:   verdict,
	}, nil
}

// ScanUpload stages content in a temporary file, scans it when the scanner
// is enabled and removes the file before returning, whatever the outcome.
// The content guard is never consulted for files.
func (m *Mediator) ScanUpload(ctx context.Context, filename string, content io.Reader) (*models.ScanResponse, error) {
	tmp, err := os.CreateTemp(m.tempDir, "upload-*_"+tempSuffix(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, content); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	cfg := m.settings.Get()
	resp := &models.ScanResponse{Filename: filename}
	if !cfg.ScannerEnabled {
		return resp, nil
	}

	verdict := m.scanner.Scan(tmpPath, cfg.ScannerAPIKey, cfg.ScannerRegion)
	resp.ScanResult = &verdict
	resp.Malicious = verdict.Malicious

	evt := models.NewEvent(models.EventScanVerdict)
	evt.Filename = filename
	evt.Malicious = verdict.Malicious
	evt.IsError = verdict.Error != ""
	evt.Reason = verdict.Error
	m.events.Publish(ctx, evt)

	return resp, nil
}

func (m *Mediator) checkText(ctx context.Context, cfg settings.Settings, text, side string) models.GuardVerdict {
	v := m.guard.Check(ctx, GuardRequest{
		Text:     text,
		APIKey:   cfg.GuardAPIKey,
		URL:      cfg.GuardURL,
		Detailed: cfg.GuardDetailed,
	})

	evt := models.NewEvent(models.EventGuardVerdict)
	evt.Side = side
	evt.Malicious = v.Malicious
	evt.IsError = v.IsError
	evt.Reason = v.Reason
	m.events.Publish(ctx, evt)

	return v
}

func (m *Mediator) publishBlocked(ctx context.Context, side string) {
	evt := models.NewEvent(models.EventChatBlocked)
	evt.Side = side
	evt.Malicious = true
	m.events.Publish(ctx, evt)
}

// lastUserMessage returns the content of the most recent user message.
func lastUserMessage(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func modelTarget(cfg settings.Settings) ModelTarget {
	return ModelTarget{API: cfg.ModelAPI, BaseURL: cfg.ModelBaseURL, Model: cfg.ModelName}
}

// tempSuffix turns a client-supplied filename into a safe temp-file suffix.
func tempSuffix(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(name, "*", "_")
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
