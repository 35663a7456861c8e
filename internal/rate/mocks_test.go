package rate

import (
	"context"
	"time"

	"fxconvert/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- Testify mocks ---

type MockRateClient struct{ mock.Mock }

func (m *MockRateClient) Fetch(ctx context.Context, date string, currency string) (domain.RateSnapshot, error) {
	args := m.Called(ctx, date, currency)
	snap, _ := args.Get(0).(domain.RateSnapshot)
	return snap, args.Error(1)
}

type MockCodesCache struct{ mock.Mock }

func (m *MockCodesCache) Get(date string) ([]string, bool) {
	args := m.Called(date)
	codes, _ := args.Get(0).([]string)
	return codes, args.Bool(1)
}

func (m *MockCodesCache) Set(date string, codes []string) {
	m.Called(date, codes)
}

type MockConversionJournal struct{ mock.Mock }

func (m *MockConversionJournal) Save(ctx context.Context, record domain.ConversionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockConversionJournal) ListRecent(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]domain.ConversionRecord)
	return records, args.Error(1)
}

// --- fixtures ---

func snapshot(date string) domain.RateSnapshot {
	return domain.RateSnapshot{
		Date: date,
		Rates: map[string]float64{
			"usd": 1,
			"eur": 0.9,
			"jpy": 150,
			"gbp": 0.8,
			"btc": 0,
		},
	}
}

// newPermissiveLimiter never rejects: the clock is frozen at the last request.
func newPermissiveLimiter() *Limiter {
	l := NewLimiter(0, ModeMaxGap)
	frozen := l.now()
	l.now = func() time.Time { return frozen }
	return l
}
