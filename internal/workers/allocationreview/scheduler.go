package allocationreview

import (
	"context"
	"errors"
	"sync"
	"time"

	goalsvc "pesaguru-backend/internal/application/goals"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSchedule = "0 2 * * *"
	sweepTimeout    = 10 * time.Minute
	stopTimeout     = 30 * time.Second
)

var (
	ErrAlreadyRunning = errors.New("allocation review scheduler is already running")
	ErrNotRunning     = errors.New("allocation review scheduler is not running")
)

// Sweeper reviews every goal whose allocation review is due.
type Sweeper interface {
	ReviewDueAllocations(ctx context.Context) (goalsvc.SweepResult, error)
}

// Scheduler runs the allocation review sweep on a cron schedule.
type Scheduler struct {
	sweeper  Sweeper
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	entry   cron.EntryID
	lastRun time.Time
	last    goalsvc.SweepResult
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func New(sweeper Sweeper, schedule string) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	logger := log.With().Str("worker", "allocation_review").Logger()
	cl := cronLogger{l: logger}
	return &Scheduler{
		sweeper:  sweeper,
		schedule: schedule,
		logger:   logger,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	if s.entry == 0 {
		id, err := s.cron.AddFunc(s.schedule, func() { _, _ = s.RunOnce(context.Background()) })
		if err != nil {
			return err
		}
		s.entry = id
	}
	s.cron.Start()
	s.running = true

	ev := s.logger.Info().Str("schedule", s.schedule)
	if entries := s.cron.Entries(); len(entries) > 0 {
		ev = ev.Time("next_run", entries[0].Next)
	}
	ev.Msg("allocation review scheduler started")
	return nil
}

// Stop waits for a running sweep to finish, up to stopTimeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("allocation review scheduler stopped")
	case <-time.After(stopTimeout):
		s.logger.Warn().Msg("allocation review scheduler stop timed out")
	}
	return nil
}

// RunOnce performs one sweep and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (goalsvc.SweepResult, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	started := time.Now()
	res, err := s.sweeper.ReviewDueAllocations(ctx)
	elapsed := time.Since(started)
	if err != nil {
		s.logger.Error().Err(err).Dur("elapsed", elapsed).Msg("allocation review sweep failed")
		return res, err
	}

	s.mu.Lock()
	s.lastRun = started
	s.last = res
	s.mu.Unlock()

	ev := s.logger.Info()
	if res.Failed > 0 {
		ev = s.logger.Warn()
	}
	ev.Int("candidates", res.Candidates).
		Int("adjusted", res.Adjusted).
		Int("failed", res.Failed).
		Dur("elapsed", elapsed).
		Msg("allocation review sweep finished")
	return res, nil
}

// LastRun reports when the last successful sweep started and what it did.
func (s *Scheduler) LastRun() (time.Time, goalsvc.SweepResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.last
}
