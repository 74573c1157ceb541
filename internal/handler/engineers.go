package handler

import (
	"net/http"
	"strconv"
)

func (h *Handler) ListEngineers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := struct {
		Country string `validate:"required"`
		Start   string `validate:"required"`
		End     string `validate:"required"`
	}{
		Country: query.Get("country"),
		Start:   query.Get("start"),
		End:     query.Get("end"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	start, err := parseDate(req.Start)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "start must be a YYYY-MM-DD date", nil)
		return
	}
	end, err := parseDate(req.End)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "end must be a YYYY-MM-DD date", nil)
		return
	}

	var sectorID *int64
	if s := query.Get("sector"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "sector must be an id", nil)
			return
		}
		sectorID = &id
	}

	engineers, err := h.repository.ListEngineers(req.Country, sectorID, start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "engineers fetched", map[string]any{
		"engineers": engineers,
		"meta": map[string]any{
			"country": req.Country,
			"start":   req.Start,
			"end":     req.End,
			"count":   len(engineers),
		},
	})
}
