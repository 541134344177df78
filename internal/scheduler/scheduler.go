package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/pkg/logger"
)

const (
	defaultDispatchSpec = "@every 1m"
	defaultCleanupSpec  = "@hourly"
)

// Ticker runs one reminder dispatch cycle.
type Ticker interface {
	RunTick(ctx context.Context) error
}

// Scheduler owns the recurring background jobs: the reminder dispatch tick
// and the hourly expired-session sweep. All dependencies are injected; the
// scheduler holds no global state and can be started and stopped cleanly.
type Scheduler struct {
	db         *gorm.DB
	dispatcher Ticker
	cron       *cron.Cron
	now        func() time.Time
	log        *zap.Logger

	dispatchSchedule string
	cleanupSchedule  string
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDispatchSchedule overrides the cron specification for the dispatch tick.
func WithDispatchSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.dispatchSchedule = spec
		}
	}
}

// WithCleanupSchedule overrides the cron specification for session cleanup.
func WithCleanupSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.cleanupSchedule = spec
		}
	}
}

// New constructs a Scheduler. The dispatcher is required; a nil db skips the
// session cleanup job.
func New(dispatcher Ticker, db *gorm.DB, opts ...Option) (*Scheduler, error) {
	if dispatcher == nil {
		return nil, errors.New("scheduler: dispatcher is required")
	}

	s := &Scheduler{
		db:               db,
		dispatcher:       dispatcher,
		now:              time.Now,
		dispatchSchedule: defaultDispatchSpec,
		cleanupSchedule:  defaultCleanupSpec,
		log:              logger.WithModule("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s, nil
}

// Start registers the jobs and launches the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.dispatchSchedule, func() {
		if err := s.dispatcher.RunTick(context.Background()); err != nil {
			s.log.Warn("reminder dispatch tick failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if s.db != nil {
		if _, err := s.cron.AddFunc(s.cleanupSchedule, func() {
			if _, err := CleanupSessions(context.Background(), s.db, s.now()); err != nil {
				s.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("dispatch_schedule", s.dispatchSchedule),
		zap.String("cleanup_schedule", s.cleanupSchedule),
	)
	return nil
}

// Stop halts the underlying scheduler, returning a context that completes
// once running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every job a single time, sequentially. Used in tests and
// during graceful shutdown to flush pending work.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if err := s.dispatcher.RunTick(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if s.db != nil {
		if _, err := CleanupSessions(ctx, s.db, s.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
