package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"aiguard-backend/internal/models"
	"aiguard-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr  *services.ConfigError
		connErr *services.ConnectivityError
		upErr   *services.UpstreamError
		malErr  *services.MalformedResponseError
	)

	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, errorResp("CONFIG_ERROR", cfgErr.Message, r))
	case errors.As(err, &connErr):
		writeJSON(w, http.StatusBadGateway, errorResp("CONNECTIVITY_ERROR", connErr.Error(), r))
	case errors.As(err, &upErr):
		status := upErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResp("UPSTREAM_ERROR", upErr.Error(), r))
	case errors.As(err, &malErr):
		writeJSON(w, http.StatusBadGateway, errorResp("BAD_GATEWAY", malErr.Error(), r))
	default:
		log.Printf("Unhandled error on %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
