package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/obs"
)

func (h *Handler) AssignShift(w http.ResponseWriter, r *http.Request) {
	shiftID, err := shiftIDParam(r)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid shift id", nil)
		return
	}

	var req struct {
		EngineerID int64 `json:"engineerId" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	a, err := h.engine.Assign(r.Context(), shiftID, req.EngineerID, h.actor(r))
	obs.ObserveAssignmentOp("assign", err)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.publishEvent(r, domain.EventAssigned, shiftID, req.EngineerID)
	h.successResponse(w, r, "engineer assigned", a)
}

func (h *Handler) ReassignShift(w http.ResponseWriter, r *http.Request) {
	shiftID, err := shiftIDParam(r)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid shift id", nil)
		return
	}

	var req struct {
		EngineerID     int64 `json:"engineerId" validate:"required"`
		FromEngineerID int64 `json:"fromEngineerId" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	a, err := h.engine.Reassign(r.Context(), shiftID, req.EngineerID, req.FromEngineerID, h.actor(r))
	obs.ObserveAssignmentOp("reassign", err)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.publishEvent(r, domain.EventReassigned, shiftID, req.EngineerID)
	h.successResponse(w, r, "engineer reassigned", map[string]any{
		"assignment":     a,
		"reassignedFrom": req.FromEngineerID,
	})
}

func (h *Handler) UnassignShift(w http.ResponseWriter, r *http.Request) {
	shiftID, err := shiftIDParam(r)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid shift id", nil)
		return
	}

	// engineerId is optional: absent (or an empty body) unassigns everyone
	var req struct {
		EngineerID *int64 `json:"engineerId"`
	}
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}

	remaining, err := h.engine.Unassign(r.Context(), shiftID, req.EngineerID, h.actor(r))
	obs.ObserveAssignmentOp("unassign", err)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	if req.EngineerID != nil {
		h.publishEvent(r, domain.EventUnassigned, shiftID, *req.EngineerID)
	}
	h.successResponse(w, r, "engineer unassigned", map[string]any{
		"remainingAssignments": remaining,
	})
}

func (h *Handler) MarkShiftPerformed(w http.ResponseWriter, r *http.Request) {
	shiftID, err := shiftIDParam(r)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "invalid shift id", nil)
		return
	}

	var req struct {
		PerformedStart time.Time `json:"performedStart" validate:"required"`
		PerformedEnd   time.Time `json:"performedEnd" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.engine.MarkPerformed(r.Context(), shiftID, req.PerformedStart, req.PerformedEnd)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift marked performed", shift)
}

// publishEvent pushes an assignment-change notification. Failures are logged
// and swallowed: the mutation already committed.
func (h *Handler) publishEvent(r *http.Request, eventType string, shiftID, engineerID int64) {
	if h.publisher == nil {
		return
	}

	engineer, err := h.repository.GetEngineerByID(engineerID)
	if err != nil {
		slog.Warn("notification skipped", "reason", "engineer lookup failed", "error", err)
		return
	}
	shift, err := h.repository.GetShiftByID(shiftID)
	if err != nil {
		slog.Warn("notification skipped", "reason", "shift lookup failed", "error", err)
		return
	}

	event := &domain.AssignmentEvent{
		Type:         eventType,
		ShiftID:      shiftID,
		ShiftDate:    shift.Date,
		EngineerName: engineer.Name,
		To:           engineer.Email,
		Actor:        h.actor(r),
		OccurredAt:   time.Now().UTC(),
	}
	if err := h.publisher.AssignmentChanged(event); err != nil {
		slog.Warn("notification publish failed", "error", err)
	}
}
