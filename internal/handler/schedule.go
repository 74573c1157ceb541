package handler

import (
	"net/http"
)

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := struct {
		Country string `validate:"required"`
		From    string `validate:"required"`
		To      string `validate:"required"`
	}{
		Country: query.Get("country"),
		From:    query.Get("from"),
		To:      query.Get("to"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	from, err := parseDate(req.From)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "from must be a YYYY-MM-DD date", nil)
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "to must be a YYYY-MM-DD date", nil)
		return
	}

	entries, err := h.repository.ListSchedule(req.Country, from, to)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule fetched", map[string]any{
		"schedule": entries,
		"meta": map[string]any{
			"country": req.Country,
			"from":    req.From,
			"to":      req.To,
			"count":   len(entries),
		},
	})
}
