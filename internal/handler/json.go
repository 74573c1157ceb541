package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/scheduling"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) createdResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusCreated, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string, data any) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator), nil)
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, "internal server error", nil)
}

// schedulingError maps the error taxonomy onto HTTP status codes. The kind
// travels in the data payload so clients can branch without parsing messages.
func (h *Handler) schedulingError(w http.ResponseWriter, r *http.Request, err error) {
	var se *scheduling.Error
	if !errors.As(err, &se) {
		h.internalServerError(w, r, err)
		return
	}

	status := statusForClass(se.Kind.Class())
	if status == http.StatusInternalServerError {
		h.logInternalServerError(r, err)
	}

	h.errorResponse(w, r, status, se.Message, map[string]any{"kind": se.Kind})
}

func statusForClass(c scheduling.Class) int {
	switch c {
	case scheduling.ClassNotFound:
		return http.StatusNotFound
	case scheduling.ClassValidation:
		return http.StatusBadRequest
	case scheduling.ClassConflict:
		return http.StatusConflict
	case scheduling.ClassLockUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
