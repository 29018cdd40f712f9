package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Runner harvests and syncs a list of channels.
type Runner interface {
	Run(ctx context.Context, channelIDs []string) error
}

type Scheduler struct {
	runner   Runner
	channels []string
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(runner Runner, channels []string, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		channels: channels,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start runs one pass immediately and then one per interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"interval", s.interval,
		"channels", len(s.channels),
	)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.runner.Run(runCtx, s.channels); err != nil {
		s.logger.Error("harvest run failed", "error", err)
	}
}
