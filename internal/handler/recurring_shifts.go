package handler

import (
	"net/http"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/generator"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/obs"
)

func (h *Handler) ListRecurringShifts(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")

	shifts, err := h.repository.ListRecurringShifts(country)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "recurring shifts fetched", shifts)
}

func (h *Handler) CreateRecurringShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string   `json:"name" validate:"required"`
		Start         string   `json:"start" validate:"required"`
		End           string   `json:"end" validate:"required"`
		Kind          string   `json:"kind" validate:"required,oneof=ONSITE REMOTE"`
		ShiftType     string   `json:"shiftType" validate:"required,oneof=recurring one-shot"`
		Days          []string `json:"days" validate:"omitempty,dive,oneof=Mon Tue Wed Thu Fri Sat Sun PH"`
		RequiredCount int32    `json:"requiredCount" validate:"omitempty,gte=1"`
		CountryCode   string   `json:"countryCode" validate:"required"`
		SectorIDs     []int64  `json:"sectorIDs" validate:"required,min=1"`
		StartDate     string   `json:"startDate"`
		EndDate       string   `json:"endDate"`
		OneShotDate   string   `json:"oneShotDate"`
		AutoExtend    bool     `json:"autoExtend"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.RequiredCount == 0 {
		req.RequiredCount = 1
	}
	if _, _, err := generator.PlannedWindow(time.Now(), req.Start, req.End); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "start and end must be HH:MM times", nil)
		return
	}

	rs := &domain.RecurringShift{
		Name:          req.Name,
		StartTime:     req.Start,
		EndTime:       req.End,
		Kind:          domain.ShiftKind(req.Kind),
		RequiredCount: req.RequiredCount,
		CountryCode:   req.CountryCode,
		SectorIDs:     req.SectorIDs,
		AutoExtend:    req.AutoExtend,
	}

	var oneShotDate time.Time
	switch req.ShiftType {
	case "recurring":
		if len(req.Days) == 0 {
			h.errorResponse(w, r, http.StatusBadRequest, "days must be a non-empty array for recurring shifts", nil)
			return
		}
		startDate, err := parseDate(req.StartDate)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "startDate and endDate are required for recurring shifts", nil)
			return
		}
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "startDate and endDate are required for recurring shifts", nil)
			return
		}
		if endDate.After(generator.MaxWindowEnd(startDate)) {
			h.errorResponse(w, r, http.StatusBadRequest, "date range cannot exceed 6 months", nil)
			return
		}
		rs.Days = req.Days
		rs.StartDate = startDate
		rs.EndDate = endDate
	case "one-shot":
		date, err := parseDate(req.OneShotDate)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "oneShotDate is required for one-shot shifts", nil)
			return
		}
		// one-shot definitions carry an empty day set and a single-day window
		oneShotDate = date
		rs.Days = []string{}
		rs.StartDate = date
		rs.EndDate = date
	}

	if err := h.repository.CreateRecurringShift(rs); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var generated int
	var err error
	if req.ShiftType == "recurring" {
		generated, err = h.generator.Generate(rs.ID, rs.StartDate, rs.EndDate)
	} else {
		generated, err = h.generator.GenerateOneShot(rs.ID, oneShotDate)
	}
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}
	obs.ObserveGenerated(generated)

	h.createdResponse(w, r, "recurring shift created", map[string]any{
		"recurringShift":  rs,
		"generatedShifts": generated,
	})
}

func (h *Handler) ExtendRecurringShift(w http.ResponseWriter, r *http.Request) {
	rs := r.Context().Value(RecurringShiftCtx).(*domain.RecurringShift)

	if !rs.Active {
		h.errorResponse(w, r, http.StatusNotFound, "recurring shift not found or inactive", nil)
		return
	}

	var req struct {
		EndDate string `json:"endDate" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	newEndDate, err := parseDate(req.EndDate)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "endDate must be a YYYY-MM-DD date", nil)
		return
	}

	if !newEndDate.After(rs.EndDate) {
		h.errorResponse(w, r, http.StatusBadRequest, "new end date must be after current end date", nil)
		return
	}
	if newEndDate.After(generator.MaxWindowEnd(rs.EndDate)) {
		h.errorResponse(w, r, http.StatusBadRequest, "cannot extend more than 6 months from current end date", nil)
		return
	}

	if err := h.repository.ExtendRecurringShift(rs.ID, newEndDate); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// generate only the delta window; existing instances make the overlap safe anyway
	windowStart := rs.EndDate.AddDate(0, 0, 1)
	generated, err := h.generator.Generate(rs.ID, windowStart, newEndDate)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}
	obs.ObserveGenerated(generated)

	rs.EndDate = newEndDate
	h.successResponse(w, r, "recurring shift extended", map[string]any{
		"recurringShift":  rs,
		"generatedShifts": generated,
	})
}

func (h *Handler) DeleteRecurringShift(w http.ResponseWriter, r *http.Request) {
	rs := r.Context().Value(RecurringShiftCtx).(*domain.RecurringShift)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	deleted, err := h.repository.DeleteRecurringShiftCascade(rs.ID, today)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "recurring shift deleted", map[string]any{
		"deletedShifts": deleted,
	})
}
