package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversion is the success variant of a conversion result.
type Conversion struct {
	ConvertedAmount float64 `json:"converted_amount"`
	Rate            float64 `json:"rate"`
	Base            string  `json:"base"`
	Quote           string  `json:"quote"`
	Date            string  `json:"date"`
}

// ConversionResult holds exactly one of Value or Err.
type ConversionResult struct {
	Value *Conversion
	Err   error
}

func Succeeded(c Conversion) ConversionResult {
	return ConversionResult{Value: &c}
}

func Failed(err error) ConversionResult {
	return ConversionResult{Err: err}
}

func (r ConversionResult) OK() bool { return r.Err == nil && r.Value != nil }

// ErrorMessage returns the text of the failure variant, or "" on success.
func (r ConversionResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ConversionRecord is one journaled conversion attempt.
type ConversionRecord struct {
	ID              uuid.UUID `json:"id"`
	RequestedDate   string    `json:"requested_date"`
	SnapshotDate    string    `json:"snapshot_date,omitempty"`
	Base            string    `json:"base"`
	Quote           string    `json:"quote"`
	Amount          string    `json:"amount"`
	ConvertedAmount *float64  `json:"converted_amount,omitempty"`
	Rate            *float64  `json:"rate,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
