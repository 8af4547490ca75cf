// Package worker runs background jobs of the booking engine.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Expirer releases holds that ended at or before now.
type Expirer interface {
	ExpireReservations(ctx context.Context, now time.Time) (int, error)
}

// SweeperConfig contains configuration for the reservation sweeper.
type SweeperConfig struct {
	// Interval is the time between two sweeps.
	Interval time.Duration
}

// DefaultSweeperConfig returns default configuration.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{Interval: time.Minute}
}

// Sweeper periodically returns expired ticket holds to AVAILABLE.
type Sweeper struct {
	expirer Expirer
	config  SweeperConfig
	log     *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	scheduler gocron.Scheduler

	statsMu       sync.Mutex
	totalReleased int64
	lastSweep     time.Time
}

// NewSweeper creates a sweeper.  A nil logger discards output.
func NewSweeper(expirer Expirer, config SweeperConfig, log *zap.Logger) *Sweeper {
	if config.Interval <= 0 {
		config = DefaultSweeperConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		expirer: expirer,
		config:  config,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep every Interval, running once immediately.
// Overlapping runs are skipped.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return fmt.Errorf("sweeper already running")
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(s.config.Interval),
		gocron.NewTask(func(ctx context.Context) { s.RunOnce(ctx) }, ctx),
		gocron.WithName("reservation-sweeper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule sweep: %w", err)
	}
	sched.Start()
	s.scheduler = sched
	s.log.Info("reservation sweeper started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop waits for a running sweep and stops the schedule.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.Shutdown(); err != nil {
		s.log.Warn("reservation sweeper shutdown", zap.Error(err))
	}
	s.scheduler = nil
	s.log.Info("reservation sweeper stopped")
}

// RunOnce performs one sweep and returns how many holds were released.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	now := s.now()
	n, err := s.expirer.ExpireReservations(ctx, now)
	if err != nil {
		s.log.Error("reservation sweep failed", zap.Error(err), zap.Int("released", n))
	}
	if n > 0 {
		s.log.Info("expired reservations released", zap.Int("released", n))
	}

	s.statsMu.Lock()
	s.totalReleased += int64(n)
	s.lastSweep = now
	s.statsMu.Unlock()
	return n
}

// Stats returns the number of holds released since start and the time of
// the last sweep.
func (s *Sweeper) Stats() (released int64, lastSweep time.Time) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.totalReleased, s.lastSweep
}
