package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"aiguard-backend/internal/services"
)

type ScanHandler struct {
	mediator      mediator
	maxUploadSize int64
}

func NewScanHandler(m mediator, maxUploadMB int) *ScanHandler {
	return &ScanHandler{mediator: m, maxUploadSize: int64(maxUploadMB) << 20}
}

// Upload scans the multipart "file" field with the file scanner.
func (h *ScanHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Multipart framing needs a little room above the file itself.
	limit := h.maxUploadSize + 1<<20
	if r.ContentLength > limit {
		h.tooLarge(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(w, r)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		h.tooLarge(w, r)
		return
	}

	resp, err := h.mediator.ScanUpload(r.Context(), header.Filename, file)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ScanHandler) tooLarge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE",
		fmt.Sprintf("File size exceeds %dMB limit", h.maxUploadSize>>20), r))
}

func (h *ScanHandler) Hello(w http.ResponseWriter, r *http.Request) {
	h.scanSample(w, r, services.HelloSample)
}

func (h *ScanHandler) EICAR(w http.ResponseWriter, r *http.Request) {
	h.scanSample(w, r, services.EICARSample)
}

func (h *ScanHandler) scanSample(w http.ResponseWriter, r *http.Request, sample services.Sample) {
	resp, err := h.mediator.ScanSample(r.Context(), sample)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Injection screens the prompt-injection sample with the guard, or sends it
// to the model when the guard is off.
func (h *ScanHandler) Injection(w http.ResponseWriter, r *http.Request) {
	res, err := h.mediator.InjectionSample(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if res.Chat != nil {
		writeJSON(w, http.StatusOK, res.Chat)
		return
	}
	writeJSON(w, http.StatusOK, res.Scan)
}
