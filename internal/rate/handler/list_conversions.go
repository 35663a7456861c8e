package handler

import (
	"errors"
	"fxconvert/internal/domain"
	"fxconvert/internal/rate"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type ListConversionsResponse struct {
	Conversions []domain.ConversionRecord `json:"conversions"`
}

// ListConversions godoc
// @Summary Recent conversions
// @Description Most recent journaled conversion attempts, newest first
// @Tags Conversions
// @Produce json
// @Param limit query int false "Page size (1-100, default 20)"
// @Success 200 {object} ListConversionsResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /conversions [get]
func (h *Handler) ListConversions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, rate.ErrInvalidLimit.Error())
			return
		}
		limit = parsed
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		switch {
		case errors.Is(err, rate.ErrInvalidLimit):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, rate.ErrJournalDisabled):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			msg := "ups, couldn't list conversions this time"
			logrus.WithError(err).WithFields(logrus.Fields{"handler": "ListConversions", "limit": limit}).Error(msg)
			writeError(w, http.StatusInternalServerError, msg)
		}
		return
	}

	if records == nil {
		records = []domain.ConversionRecord{}
	}
	writeJSON(w, http.StatusOK, ListConversionsResponse{Conversions: records})
}
