package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/service"
)

func (h *Handler) handleShorten(w http.ResponseWriter, r *http.Request) {
	var request model.ShortenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.urlService.Shorten(r.Context(), request)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.writeError(w, http.StatusBadRequest, validationErr.Message)
		case errors.Is(err, service.ErrCodeTaken):
			h.writeError(w, http.StatusConflict, service.ErrCodeTaken.Error())
		default:
			log.Error().Err(err).Str("url", request.URL).Msg("Failed to shorten URL")
			h.writeError(w, http.StatusInternalServerError, "failed to store link")
		}
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}

	h.writeJSON(w, status, model.ShortenResponse{
		ShortURL:  result.ShortURL,
		ShortCode: result.Code,
		Reused:    result.Reused,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.urlService.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		h.writeJSON(w, http.StatusInternalServerError, model.HealthResponse{
			Status: "error",
			Detail: err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, model.HealthResponse{
		Status: "ok",
		DB:     "connected",
	})
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	originalURL, err := h.urlService.Resolve(r.Context(), code)
	switch {
	case err == nil:
		http.Redirect(w, r, originalURL, http.StatusTemporaryRedirect)
	case errors.Is(err, service.ErrNotFound):
		h.writeError(w, http.StatusNotFound, service.ErrNotFound.Error())
	case errors.Is(err, service.ErrExpired):
		h.writeError(w, http.StatusGone, service.ErrExpired.Error())
	default:
		log.Error().Err(err).Str("code", code).Msg("Failed to resolve link")
		h.writeError(w, http.StatusInternalServerError, "failed to resolve link")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeJSON encodes v into a pooled buffer before writing any headers.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	buf := h.buffers.Get()
	defer h.buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}
