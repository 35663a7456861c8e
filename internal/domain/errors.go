package domain

import "errors"

var (
	ErrRateLimited       = errors.New("too many requests")
	ErrFetch             = errors.New("rates fetch failed")
	ErrInvalidDateFormat = errors.New("wrong date format")
	ErrCacheEmpty        = errors.New("no rate snapshots cached")

	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrUnsupportedBase     = currencyKind("unsupported BASE currency")
	ErrUnsupportedQuote    = currencyKind("unsupported QUOTE currency")

	ErrInvalidAmount    = errors.New("unsupported AMOUNT type")
	ErrDegenerateResult = errors.New("converted amount rounds to zero, implied RATE is undefined")
)

// kindError is a sentinel that also matches a broader kind through errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func currencyKind(msg string) error {
	return &kindError{msg: msg, kind: ErrUnsupportedCurrency}
}
