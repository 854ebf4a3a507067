package handlers

import (
	"encoding/json"
	"net/http"

	"aiguard-backend/internal/settings"
)

type settingsStore interface {
	Get() settings.Settings
	Set(next settings.Settings) settings.Settings
}

type ConfigHandler struct {
	store            settingsStore
	scannerAvailable bool
}

func NewConfigHandler(store settingsStore, scannerAvailable bool) *ConfigHandler {
	return &ConfigHandler{store: store, scannerAvailable: scannerAvailable}
}

// Get returns the current settings with API keys masked.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settings.NewView(h.store.Get(), h.scannerAvailable))
}

// Update replaces the whole settings record. Fields missing from the body
// take their zero value, so an omitted key clears the stored one.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	saved := h.store.Set(req)
	writeJSON(w, http.StatusOK, settings.NewView(saved, h.scannerAvailable))
}
