package rate

import (
	"context"
	"fmt"
	"fxconvert/internal/domain"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const decimals = 4

type SnapshotSource interface {
	GetOrFetch(ctx context.Context, date string) (domain.RateSnapshot, error)
}

// Converter turns an amount of one currency into another through the
// reference currency rates of a single snapshot.
type Converter struct {
	snapshots SnapshotSource
}

func NewConverter(snapshots SnapshotSource) *Converter {
	return &Converter{snapshots: snapshots}
}

// Convert never returns an error out of band: every failure ends up in the result.
//
// Checks run in a fixed order: date, base, quote, amount.
func (c *Converter) Convert(ctx context.Context, base, quote string, amount any, date string) domain.ConversionResult {
	snap, err := c.snapshots.GetOrFetch(ctx, date)
	if err != nil {
		return domain.Failed(err)
	}

	baseRate, ok := snap.Rate(base)
	if !ok || baseRate == 0 {
		return domain.Failed(fmt.Errorf(`%w("%s"). Try different currency`, domain.ErrUnsupportedBase, base))
	}
	quoteRate, ok := snap.Rate(quote)
	if !ok || quoteRate == 0 {
		return domain.Failed(fmt.Errorf(`%w("%s"). Try different currency`, domain.ErrUnsupportedQuote, quote))
	}

	value, err := ParseAmount(amount)
	if err != nil {
		return domain.Failed(err)
	}

	baseTotal := value / baseRate
	converted, ok := round(baseTotal * quoteRate)
	if !ok || converted == 0 {
		return domain.Failed(domain.ErrDegenerateResult)
	}
	// implied rate keeps the historical formula: reference total per unit of quote
	implied, ok := round(baseTotal / converted)
	if !ok {
		return domain.Failed(domain.ErrDegenerateResult)
	}

	return domain.Succeeded(domain.Conversion{
		ConvertedAmount: converted,
		Rate:            implied,
		Base:            base,
		Quote:           quote,
		Date:            snap.Date,
	})
}

// ParseAmount accepts numbers, numeric strings and booleans (as 1 and 0).
func ParseAmount(amount any) (float64, error) {
	invalid := fmt.Errorf(`%w ("%v"). Must be a number`, domain.ErrInvalidAmount, amount)
	if amount == nil {
		return 0, invalid
	}
	if s, ok := amount.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, invalid
		}
		amount = s
	}

	v, err := cast.ToFloat64E(amount)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid
	}
	return v, nil
}

// round rounds half away from zero to four decimal places.
func round(x float64) (float64, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	v, _ := decimal.NewFromFloat(x).Round(decimals).Float64()
	return v, true
}
