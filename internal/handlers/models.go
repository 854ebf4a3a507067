package handlers

import (
	"context"
	"net/http"

	"aiguard-backend/internal/models"
)

type modelLister interface {
	ListModels(ctx context.Context, api, baseURL string) ([]models.ModelInfo, error)
}

type ModelsHandler struct {
	store  settingsStore
	models modelLister
}

func NewModelsHandler(store settingsStore, lister modelLister) *ModelsHandler {
	return &ModelsHandler{store: store, models: lister}
}

// List returns the models offered by the configured server, or by the one
// given in the base_url query parameter.
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	cfg := h.store.Get()
	baseURL := r.URL.Query().Get("base_url")
	if baseURL == "" {
		baseURL = cfg.ModelBaseURL
	}

	list, err := h.models.ListModels(r.Context(), cfg.ModelAPI, baseURL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.ModelInfo{}
	}

	writeJSON(w, http.StatusOK, models.ModelList{Models: list})
}
