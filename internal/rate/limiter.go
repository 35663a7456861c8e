package rate

import (
	"fmt"
	"fxconvert/internal/domain"
	"sync"
	"time"
)

type LimitMode string

const (
	// ModeMaxGap rejects a fetch when more than the interval has passed
	// since the previous one. This is the historical behavior of the service.
	ModeMaxGap LimitMode = "max_gap"
	// ModeMinGap rejects a fetch issued sooner than the interval after the
	// previous one.
	ModeMinGap LimitMode = "min_gap"
)

const defaultMinInterval = time.Second

// Limiter gates outbound fetches. It never sleeps: Check either passes or fails.
type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	mode        LimitMode
	last        time.Time
	now         func() time.Time
}

func NewLimiter(minInterval time.Duration, mode LimitMode) *Limiter {
	if minInterval <= 0 {
		minInterval = defaultMinInterval
	}
	if mode != ModeMinGap {
		mode = ModeMaxGap
	}
	return &Limiter{minInterval: minInterval, mode: mode, now: time.Now}
}

// Check must be called right before a fetch. It does not record the fetch.
func (l *Limiter) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last.IsZero() {
		return nil
	}
	elapsed := l.now().Sub(l.last)

	var limited bool
	switch l.mode {
	case ModeMinGap:
		limited = elapsed < l.minInterval
	default:
		limited = elapsed > l.minInterval
	}
	if limited {
		return fmt.Errorf("%w: rate limit is 1 request per %s", domain.ErrRateLimited, l.minInterval)
	}
	return nil
}

// MarkRequest records that a fetch attempt has been issued.
func (l *Limiter) MarkRequest() {
	l.mu.Lock()
	l.last = l.now()
	l.mu.Unlock()
}

// LastRequest returns the time of the last recorded fetch, zero if none.
func (l *Limiter) LastRequest() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func (l *Limiter) Mode() LimitMode { return l.mode }
