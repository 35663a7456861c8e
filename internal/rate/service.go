package rate

import (
	"context"
	"errors"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const journalTimeout = 3 * time.Second

var ErrJournalDisabled = errors.New("conversion history is not enabled")

type Service struct {
	snapshots *SnapshotCache
	converter *Converter
	codes     adapters.CodesCache
	journal   adapters.ConversionJournal // optional
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Convert answers one ConvertRequest. Failures are reported in the view.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) ConvertView {
	if err := ValidateRequest(req); err != nil {
		s.metrics.ObserveConversion(outcomeInvalidRequest)
		return errorView(err.Error())
	}

	res := s.converter.Convert(ctx, req.BaseCcy, req.CounterCcy, req.BaseAmt, req.Date)
	s.metrics.ObserveConversion(outcome(res.Err))
	s.record(ctx, req, res)

	if !res.OK() {
		logrus.WithError(res.Err).WithFields(logrus.Fields{
			"date":  req.Date,
			"base":  req.BaseCcy,
			"quote": req.CounterCcy,
		}).Debug("conversion failed")
		return errorView(res.ErrorMessage())
	}

	converted := res.Value.ConvertedAmount
	return ConvertView{
		Msg: fmt.Sprintf("As of %s, %s %s is equivalent to %s %s.",
			res.Value.Date,
			cast.ToString(req.BaseAmt),
			req.BaseCcy,
			strconv.FormatFloat(converted, 'f', -1, 64),
			req.CounterCcy,
		),
		Answer: &converted,
	}
}

// SupportedCodes lists the currency codes of the most recent snapshot.
func (s *Service) SupportedCodes(_ context.Context) (CurrenciesView, error) {
	snap, ok := s.snapshots.Latest()
	if !ok {
		return CurrenciesView{}, domain.ErrCacheEmpty
	}

	if s.codes != nil {
		if codes, hit := s.codes.Get(snap.Date); hit {
			return CurrenciesView{Date: snap.Date, Codes: codes}, nil
		}
	}

	codes := snap.Codes()
	if s.codes != nil {
		s.codes.Set(snap.Date, codes)
	}
	return CurrenciesView{Date: snap.Date, Codes: codes}, nil
}

// History returns the most recent journaled conversions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	limit, err := NormalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	records, err := s.journal.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	return records, nil
}

func (s *Service) record(ctx context.Context, req ConvertRequest, res domain.ConversionResult) {
	if s.journal == nil {
		return
	}

	rec := domain.ConversionRecord{
		ID:            uuid.New(),
		RequestedDate: req.Date,
		Base:          req.BaseCcy,
		Quote:         req.CounterCcy,
		Amount:        cast.ToString(req.BaseAmt),
		Error:         res.ErrorMessage(),
		CreatedAt:     s.now().UTC(),
	}
	if res.OK() {
		converted, implied := res.Value.ConvertedAmount, res.Value.Rate
		rec.SnapshotDate = res.Value.Date
		rec.ConvertedAmount = &converted
		rec.Rate = &implied
	}

	// the write outlives a client that has already disconnected
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := s.journal.Save(saveCtx, rec); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"id": rec.ID,
		}).Warn("failed to journal conversion")
	}
}

const (
	outcomeSuccess        = "success"
	outcomeInvalidRequest = "invalid_request"
)

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrFetch):
		return "fetch_error"
	case errors.Is(err, domain.ErrInvalidDateFormat):
		return "invalid_date"
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		return "unsupported_currency"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrDegenerateResult):
		return "degenerate_result"
	case errors.Is(err, domain.ErrCacheEmpty):
		return "cache_empty"
	default:
		return "error"
	}
}

// NewService wires a converter on top of snapshots. codes and journal may be nil.
func NewService(snapshots *SnapshotCache, codes adapters.CodesCache, journal adapters.ConversionJournal, m *metrics.Metrics) *Service {
	return &Service{
		snapshots: snapshots,
		converter: NewConverter(snapshots),
		codes:     codes,
		journal:   journal,
		metrics:   m,
		now:       time.Now,
	}
}
