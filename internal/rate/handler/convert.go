package handler

import (
	"bytes"
	"encoding/json"
	"fxconvert/internal/rate"
	"io"
	"net/http"
)

const maxConvertBodyBytes = 1024

const msgInvalidBody = "invalid request body"

// Convert godoc
// @Summary Convert an amount between currencies
// @Description Converts baseAmt of baseCcy into counterCcy using the rates of the given date (latest when empty)
// @Tags Conversions
// @Accept json
// @Produce json
// @Param request body rate.ConvertRequest true "Conversion request"
// @Success 200 {object} rate.ConvertView
// @Failure 400 {object} rate.ConvertView
// @Failure 422 {object} rate.ConvertView
// @Router /conversions [post]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxConvertBodyBytes)

	req, err := decodeConvertRequest(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, rate.ConvertView{Msg: msgInvalidBody, Error: true})
		return
	}
	if err = rate.ValidateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, rate.ConvertView{Msg: err.Error(), Error: true})
		return
	}

	view := h.service.Convert(r.Context(), req)
	if view.Error {
		writeJSON(w, http.StatusUnprocessableEntity, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decodeConvertRequest keeps numeric amounts as json.Number so they are
// echoed back exactly as sent.
func decodeConvertRequest(body io.Reader) (rate.ConvertRequest, error) {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var req rate.ConvertRequest
	err := dec.Decode(&req)
	return req, err
}

func decodeConvertData(data json.RawMessage) (rate.ConvertRequest, error) {
	return decodeConvertRequest(bytes.NewReader(data))
}
