package handler

import (
	"context"
	"encoding/json"
	"fxconvert/internal/domain"
	"fxconvert/internal/rate"
	"net/http"
)

type ConversionService interface {
	Convert(ctx context.Context, req rate.ConvertRequest) rate.ConvertView
	SupportedCodes(ctx context.Context) (rate.CurrenciesView, error)
	History(ctx context.Context, limit int) ([]domain.ConversionRecord, error)
}

type Handler struct {
	service ConversionService
}

func NewRateHandler(service ConversionService) *Handler {
	return &Handler{service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
