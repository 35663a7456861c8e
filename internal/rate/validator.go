package rate

import (
	"errors"
	"strings"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

var (
	ErrBaseRequired   = errors.New("base currency is required")
	ErrQuoteRequired  = errors.New("quote currency is required")
	ErrAmountRequired = errors.New("base amount is required")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 100")
)

// ValidateRequest checks presence only; whether a code or amount is usable is
// decided against the snapshot by the Converter.
func ValidateRequest(req ConvertRequest) error {
	if strings.TrimSpace(req.BaseCcy) == "" {
		return ErrBaseRequired
	}
	if strings.TrimSpace(req.CounterCcy) == "" {
		return ErrQuoteRequired
	}
	if req.BaseAmt == nil {
		return ErrAmountRequired
	}
	return nil
}

// NormalizeLimit maps 0 to the default page size.
func NormalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultHistoryLimit, nil
	}
	if limit < 0 || limit > MaxHistoryLimit {
		return 0, ErrInvalidLimit
	}
	return limit, nil
}
