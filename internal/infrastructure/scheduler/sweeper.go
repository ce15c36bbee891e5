package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

// MatchSweeper is the use case the sweeper drives.
type MatchSweeper interface {
	SweepFinished(ctx context.Context) (int, error)
}

// Sweeper periodically finishes pending matches whose scheduled time has passed.
type Sweeper struct {
	scheduler gocron.Scheduler
	matches   MatchSweeper
	interval  time.Duration
	timeout   time.Duration
	logger    *logging.Logger
}

func NewSweeper(matches MatchSweeper, interval time.Duration, logger *logging.Logger) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be > 0")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	timeout := interval
	if timeout > time.Minute {
		timeout = time.Minute
	}

	return &Sweeper{
		scheduler: s,
		matches:   matches,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Start registers the sweep job, runs it once immediately and then every
// interval. Overlapping runs are skipped. ctx bounds every run.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.RunOnce(ctx) }),
		gocron.WithName("match-status-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("register match sweep job: %w", err)
	}

	s.scheduler.Start()
	s.logger.Info("match sweeper started", "interval", s.interval.String())
	return nil
}

// RunOnce performs a single sweep and logs its outcome.
func (s *Sweeper) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	changed, err := s.matches.SweepFinished(runCtx)
	if err != nil {
		s.logger.ErrorContext(runCtx, "match sweep failed", "error", err)
		return
	}
	s.logger.DebugContext(runCtx, "match sweep done", "finished", changed)
}

func (s *Sweeper) Shutdown() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info("match sweeper stopped")
	return nil
}
