package rate

import (
	"context"
	"fxconvert/internal/domain"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Refresher interface {
	Refresh(ctx context.Context) (domain.RateSnapshot, error)
}

// Scheduler periodically pulls the latest snapshot into the cache.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

// Start is a no-op when the interval is not positive.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		logrus.Info("Snapshot refresh is disabled")
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		RefreshLatest(jobCtx, execID, s.refresher)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

// RefreshLatest runs one refresh and logs its outcome.
func RefreshLatest(ctx context.Context, execID string, refresher Refresher) {
	snap, err := refresher.Refresh(ctx)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"exec_id": execID,
		}).Error("Refresh latest rates job failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"exec_id": execID,
		"date":    snap.Date,
		"codes":   len(snap.Rates),
	}).Info("Latest rates refreshed")
}

func NewScheduler(refresher Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{refresher: refresher, interval: interval}
}
