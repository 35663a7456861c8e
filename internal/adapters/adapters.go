package adapters

import (
	"context"
	"fxconvert/internal/domain"
)

// RateClient fetches one rate snapshot. An empty date means "latest", an
// empty currency means the reference currency table.
type RateClient interface {
	Fetch(ctx context.Context, date string, currency string) (domain.RateSnapshot, error)
}

type CodesCache interface {
	Get(date string) ([]string, bool)
	Set(date string, codes []string)
}

type ConversionJournal interface {
	Save(ctx context.Context, record domain.ConversionRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.ConversionRecord, error)
}
