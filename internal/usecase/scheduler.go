package usecase

import (
	"context"
	"log/slog"
	"time"

	"PhotoDaily/internal/ports"
)

// Scheduler wires the ticker driver with the poster use case.
type Scheduler struct {
	driver ports.Scheduler
	poster *Poster
	req    PostRequest
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring posts. Each run posts for
// the date current at trigger time, so any Date on req is ignored.
func NewScheduler(driver ports.Scheduler, poster *Poster, req PostRequest, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	req.Date = time.Time{}
	return &Scheduler{driver: driver, poster: poster, req: req, logger: logger}
}

// Start registers the poster with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.poster == nil {
		return nil
	}

	job := func(trigger time.Time) {
		report, err := s.poster.Run(ctx, s.req)
		switch {
		case ctx.Err() != nil:
			s.logger.Debug("scheduled run interrupted by shutdown", "trigger", trigger, "date", report.PostDate, "error", err)
		case err == nil && report.Skipped:
			s.logger.Info("scheduled run skipped", "trigger", trigger, "date", report.PostDate)
		case err == nil:
			s.logger.Info("scheduled run complete", "trigger", trigger, "date", report.PostDate)
		default:
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
