package rate

import (
	"context"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const DefaultMaxSnapshots = 3

// SnapshotCache keeps at most maxSize rate snapshots keyed by their date.
// When full, the snapshot with the oldest date is evicted.
type SnapshotCache struct {
	client  adapters.RateClient
	limiter *Limiter
	metrics *metrics.Metrics
	maxSize int
	// -----
	mu        sync.RWMutex
	snapshots map[string]domain.RateSnapshot
	// fetchMu serializes provider calls so limiter check and mark stay paired.
	fetchMu sync.Mutex
	group   singleflight.Group
}

func NewSnapshotCache(client adapters.RateClient, limiter *Limiter, m *metrics.Metrics, maxSize int) *SnapshotCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSnapshots
	}
	return &SnapshotCache{
		client:    client,
		limiter:   limiter,
		metrics:   m,
		maxSize:   maxSize,
		snapshots: make(map[string]domain.RateSnapshot, maxSize+1),
	}
}

// Seed loads the latest snapshot. It must succeed before the cache can serve
// "latest" lookups.
func (c *SnapshotCache) Seed(ctx context.Context) error {
	_, err := c.Refresh(ctx)
	return err
}

// Refresh fetches the latest snapshot and stores it under the date reported
// by the provider.
func (c *SnapshotCache) Refresh(ctx context.Context) (domain.RateSnapshot, error) {
	return c.fetchShared(ctx, domain.DateLatest)
}

// GetOrFetch returns the snapshot for date. An empty date or "latest" means
// the most recent cached snapshot and never triggers a fetch.
func (c *SnapshotCache) GetOrFetch(ctx context.Context, date string) (domain.RateSnapshot, error) {
	if domain.IsLatest(date) {
		snap, ok := c.Latest()
		if !ok {
			return domain.RateSnapshot{}, domain.ErrCacheEmpty
		}
		return snap, nil
	}

	if err := ValidateDate(date); err != nil {
		return domain.RateSnapshot{}, err
	}

	if snap, ok := c.lookup(date); ok {
		return snap, nil
	}
	return c.fetchShared(ctx, date)
}

func (c *SnapshotCache) lookup(date string) (domain.RateSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[date]
	return snap, ok
}

// fetchShared collapses concurrent fetches of one date into a single call.
// Readers are never blocked by the provider round trip.
func (c *SnapshotCache) fetchShared(ctx context.Context, date string) (domain.RateSnapshot, error) {
	v, err, _ := c.group.Do(date, func() (any, error) {
		// a fetch for date may have completed while we waited
		if date != domain.DateLatest {
			if snap, ok := c.lookup(date); ok {
				return snap, nil
			}
		}
		return c.fetch(ctx, date)
	})
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	return v.(domain.RateSnapshot), nil
}

func (c *SnapshotCache) fetch(ctx context.Context, date string) (domain.RateSnapshot, error) {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	if err := c.limiter.Check(); err != nil {
		c.metrics.ObserveRateLimited()
		return domain.RateSnapshot{}, err
	}

	snap, err := c.client.Fetch(ctx, date, domain.ReferenceCurrency)
	c.limiter.MarkRequest()
	if err == nil {
		if verr := ValidateDate(snap.Date); verr != nil {
			err = fmt.Errorf("%w: provider returned invalid date %q", domain.ErrFetch, snap.Date)
		}
	}
	if err != nil {
		c.metrics.ObserveFetch("error")
		logrus.WithError(err).WithFields(logrus.Fields{
			"date": date,
		}).Warn("rates fetch failed")
		return domain.RateSnapshot{}, err
	}
	c.metrics.ObserveFetch("ok")

	c.insert(snap)

	if snap.Date != date && date != domain.DateLatest {
		logrus.WithFields(logrus.Fields{
			"requested": date,
			"resolved":  snap.Date,
		}).Info("provider resolved a different date")
	}
	return snap, nil
}

func (c *SnapshotCache) insert(snap domain.RateSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots[snap.Date] = snap
	for len(c.snapshots) > c.maxSize {
		oldest := slices.Min(slices.Collect(maps.Keys(c.snapshots)))
		delete(c.snapshots, oldest)
		logrus.WithFields(logrus.Fields{
			"evicted": oldest,
		}).Debug("snapshot evicted")
	}
	c.metrics.SetCachedSnapshots(len(c.snapshots))
}

// Latest returns the snapshot with the greatest date.
func (c *SnapshotCache) Latest() (domain.RateSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.snapshots) == 0 {
		return domain.RateSnapshot{}, false
	}
	latest := slices.Max(slices.Collect(maps.Keys(c.snapshots)))
	return c.snapshots[latest], true
}

// Dates returns the cached dates in ascending order.
func (c *SnapshotCache) Dates() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.snapshots))
}

func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}

// ValidateDate accepts only real calendar dates written as YYYY-MM-DD.
func ValidateDate(date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return fmt.Errorf("%w. Date must be in YYYY-MM-DD format", domain.ErrInvalidDateFormat)
	}
	return nil
}
