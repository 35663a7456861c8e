package rate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSeededCache(t *testing.T, client *MockRateClient) *SnapshotCache {
	t.Helper()
	client.On("Fetch", mock.Anything, domain.DateLatest, "usd").Return(snapshot("2024-03-05"), nil).Once()
	cache := NewSnapshotCache(client, newPermissiveLimiter(), nil, 3)
	require.NoError(t, cache.Seed(context.Background()))
	return cache
}

// --- Convert ---

func TestService_Convert_Success(t *testing.T) {
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, nil, nil)

	view := svc.Convert(context.Background(), ConvertRequest{BaseCcy: "usd", CounterCcy: "eur", BaseAmt: "10"})

	require.False(t, view.Error)
	require.NotNil(t, view.Answer)
	require.Equal(t, 9.0, *view.Answer)
	require.Equal(t, "As of 2024-03-05, 10 usd is equivalent to 9 eur.", view.Msg)
}

func TestService_Convert_MessageUsesResolvedDate(t *testing.T) {
	client := new(MockRateClient)
	svc := NewService(newSeededCache(t, client), nil, nil, nil)
	client.On("Fetch", mock.Anything, "2024-03-03", "usd").Return(snapshot("2024-03-02"), nil).Once()

	view := svc.Convert(context.Background(), ConvertRequest{Date: "2024-03-03", BaseCcy: "eur", CounterCcy: "jpy", BaseAmt: json.Number("100")})

	require.False(t, view.Error)
	require.Equal(t, "As of 2024-03-02, 100 eur is equivalent to 16666.6667 jpy.", view.Msg)
}

func TestService_Convert_ErrorView(t *testing.T) {
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, nil, nil)

	view := svc.Convert(context.Background(), ConvertRequest{BaseCcy: "xyz", CounterCcy: "eur", BaseAmt: 1})

	require.True(t, view.Error)
	require.Nil(t, view.Answer)
	require.Equal(t, `unsupported BASE currency("xyz"). Try different currency`, view.Msg)
}

func TestService_Convert_MissingFields(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	client := new(MockRateClient)
	svc := NewService(newSeededCache(t, client), nil, nil, m)

	view := svc.Convert(context.Background(), ConvertRequest{BaseCcy: "usd", BaseAmt: 1})

	require.True(t, view.Error)
	require.Equal(t, ErrQuoteRequired.Error(), view.Msg)
	require.InDelta(t, 1, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("invalid_request")), 1e-9)
	client.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestService_Convert_ObservesOutcome(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, nil, m)
	ctx := context.Background()

	svc.Convert(ctx, ConvertRequest{BaseCcy: "usd", CounterCcy: "eur", BaseAmt: 1})
	svc.Convert(ctx, ConvertRequest{BaseCcy: "usd", CounterCcy: "eur", BaseAmt: "abc"})
	svc.Convert(ctx, ConvertRequest{Date: "bad", BaseCcy: "usd", CounterCcy: "eur", BaseAmt: 1})

	require.InDelta(t, 1, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("success")), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("invalid_amount")), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("invalid_date")), 1e-9)
}

func TestService_Convert_JournalsSuccess(t *testing.T) {
	journal := new(MockConversionJournal)
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, journal, nil)
	fixedTime := time.Date(2024, 3, 5, 10, 9, 8, 0, time.UTC)
	svc.now = func() time.Time { return fixedTime }

	journal.On("Save", mock.Anything, mock.MatchedBy(func(r domain.ConversionRecord) bool {
		return r.Base == "usd" && r.Quote == "eur" && r.Amount == "10" &&
			r.SnapshotDate == "2024-03-05" && r.RequestedDate == "" &&
			r.ConvertedAmount != nil && *r.ConvertedAmount == 9 &&
			r.Rate != nil && *r.Rate == 1.1111 &&
			r.Error == "" && r.CreatedAt.Equal(fixedTime)
	})).Return(nil).Once()

	view := svc.Convert(context.Background(), ConvertRequest{BaseCcy: "usd", CounterCcy: "eur", BaseAmt: 10})

	require.False(t, view.Error)
	journal.AssertExpectations(t)
}

func TestService_Convert_JournalsFailure(t *testing.T) {
	journal := new(MockConversionJournal)
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, journal, nil)

	journal.On("Save", mock.Anything, mock.MatchedBy(func(r domain.ConversionRecord) bool {
		return r.Error != "" && r.ConvertedAmount == nil && r.Rate == nil && r.SnapshotDate == ""
	})).Return(nil).Once()

	view := svc.Convert(context.Background(), ConvertRequest{BaseCcy: "usd", CounterCcy: "eur", BaseAmt: "abc"})

	require.True(t, view.Error)
	journal.AssertExpectations(t)
}

func TestService_Convert_JournalErrorIsNotSurfaced(t *testing.T) {
	journal := new(MockConversionJournal)
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, journal, nil)
	journal.On("Save", mock.Anything, mock.Anything).Return(errors.New("db temporarily unavailable")).Once()

	view := svc.Convert(context.Background(), ConvertRequest{BaseCcy: "usd", CounterCcy: "eur", BaseAmt: 10})

	require.False(t, view.Error)
	journal.AssertExpectations(t)
}

func TestService_Convert_JournalSurvivesCanceledRequest(t *testing.T) {
	journal := new(MockConversionJournal)
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, journal, nil)
	journal.On("Save", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Convert(ctx, ConvertRequest{BaseCcy: "usd", CounterCcy: "eur", BaseAmt: 10})

	journal.AssertExpectations(t)
}

// --- SupportedCodes ---

func TestService_SupportedCodes_CacheMiss(t *testing.T) {
	codes := new(MockCodesCache)
	svc := NewService(newSeededCache(t, new(MockRateClient)), codes, nil, nil)
	want := []string{"btc", "eur", "gbp", "jpy", "usd"}

	codes.On("Get", "2024-03-05").Return(nil, false).Once()
	codes.On("Set", "2024-03-05", want).Return().Once()

	view, err := svc.SupportedCodes(context.Background())

	require.NoError(t, err)
	require.Equal(t, "2024-03-05", view.Date)
	require.Equal(t, want, view.Codes)
	codes.AssertExpectations(t)
}

func TestService_SupportedCodes_CacheHit(t *testing.T) {
	codes := new(MockCodesCache)
	svc := NewService(newSeededCache(t, new(MockRateClient)), codes, nil, nil)

	codes.On("Get", "2024-03-05").Return([]string{"eur", "usd"}, true).Once()

	view, err := svc.SupportedCodes(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"eur", "usd"}, view.Codes)
	codes.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestService_SupportedCodes_EmptyCache(t *testing.T) {
	cache := NewSnapshotCache(new(MockRateClient), newPermissiveLimiter(), nil, 3)
	svc := NewService(cache, nil, nil, nil)

	_, err := svc.SupportedCodes(context.Background())
	require.ErrorIs(t, err, domain.ErrCacheEmpty)
}

// --- History ---

func TestService_History(t *testing.T) {
	journal := new(MockConversionJournal)
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, journal, nil)
	records := []domain.ConversionRecord{{Base: "usd", Quote: "eur", Amount: "1"}}

	journal.On("ListRecent", mock.Anything, DefaultHistoryLimit).Return(records, nil).Once()

	got, err := svc.History(context.Background(), 0)

	require.NoError(t, err)
	require.Equal(t, records, got)
	journal.AssertExpectations(t)
}

func TestService_History_Errors(t *testing.T) {
	svc := NewService(newSeededCache(t, new(MockRateClient)), nil, nil, nil)
	_, err := svc.History(context.Background(), 10)
	require.ErrorIs(t, err, ErrJournalDisabled)

	journal := new(MockConversionJournal)
	svc = NewService(newSeededCache(t, new(MockRateClient)), nil, journal, nil)
	_, err = svc.History(context.Background(), 500)
	require.ErrorIs(t, err, ErrInvalidLimit)

	wantErr := errors.New("db temporarily unavailable")
	journal.On("ListRecent", mock.Anything, 5).Return(nil, wantErr).Once()
	_, err = svc.History(context.Background(), 5)
	require.ErrorIs(t, err, wantErr)
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "success", outcome(nil))
	require.Equal(t, "rate_limited", outcome(domain.ErrRateLimited))
	require.Equal(t, "unsupported_currency", outcome(domain.ErrUnsupportedQuote))
	require.Equal(t, "error", outcome(errors.New("boom")))
}
