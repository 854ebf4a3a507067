package handlers

import (
	"net/http"

	"aiguard-backend/internal/models"
)

type HealthHandler struct {
	store            settingsStore
	scannerAvailable bool
}

func NewHealthHandler(store settingsStore, scannerAvailable bool) *HealthHandler {
	return &HealthHandler{store: store, scannerAvailable: scannerAvailable}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	cfg := h.store.Get()
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:            "ok",
		ModelConfigured:   cfg.ModelConfigured(),
		GuardConfigured:   cfg.GuardConfigured(),
		ScannerConfigured: cfg.ScannerConfigured(),
		ScannerAvailable:  h.scannerAvailable,
	})
}

// Index serves the single-page UI.
func Index(page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(page)
	}
}
