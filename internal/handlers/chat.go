package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"aiguard-backend/internal/models"
	"aiguard-backend/internal/services"
)

type mediator interface {
	Chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, error)
	ScanUpload(ctx context.Context, filename string, content io.Reader) (*models.ScanResponse, error)
	ScanSample(ctx context.Context, sample services.Sample) (*models.ScanResponse, error)
	InjectionSample(ctx context.Context) (*services.InjectionResult, error)
}

type ChatHandler struct {
	mediator mediator
}

func NewChatHandler(m mediator) *ChatHandler {
	return &ChatHandler{mediator: m}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.mediator.Chat(r.Context(), req.Messages)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
