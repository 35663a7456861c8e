package domain

import (
	"maps"
	"slices"
)

const (
	// ReferenceCurrency is the pivot every snapshot is quoted against.
	ReferenceCurrency = "usd"
	DateLatest        = "latest"
	DateLayout        = "2006-01-02"
)

// RateSnapshot is one fetched table of currency -> reference currency rates.
// Rates holds the value of each currency per one unit of ReferenceCurrency.
type RateSnapshot struct {
	Date  string
	Rates map[string]float64
}

func (s RateSnapshot) Rate(code string) (float64, bool) {
	v, ok := s.Rates[code]
	return v, ok
}

// Codes returns the currency codes of the snapshot in sorted order.
func (s RateSnapshot) Codes() []string {
	codes := slices.Collect(maps.Keys(s.Rates))
	slices.Sort(codes)
	return codes
}

// IsLatest reports whether date asks for the most recent cached snapshot.
func IsLatest(date string) bool {
	return date == "" || date == DateLatest
}
