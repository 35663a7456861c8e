package handler

import (
	"errors"
	"fxconvert/internal/domain"
	"net/http"

	"github.com/sirupsen/logrus"
)

type GetSupportedCodesResponse struct {
	Date  string   `json:"date" example:"2024-03-02"`
	Codes []string `json:"codes" example:"eur,jpy,usd"`
}

// GetSupportedCodes godoc
// @Summary List supported currencies
// @Description Currency codes of the most recent cached rate snapshot
// @Tags Currencies
// @Produce json
// @Success 200 {object} GetSupportedCodesResponse
// @Failure 503 {object} errorResponse
// @Router /currencies [get]
func (h *Handler) GetSupportedCodes(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.SupportedCodes(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCacheEmpty) {
			writeError(w, http.StatusServiceUnavailable, "rates are not loaded yet")
			return
		}
		msg := "ups, couldn't list currencies this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetSupportedCodes"}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, http.StatusOK, GetSupportedCodesResponse{
		Date:  view.Date,
		Codes: view.Codes,
	})
}
