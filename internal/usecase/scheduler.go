package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"NewsCatcher/internal/ports"
)

// Scheduler wires the wall-clock driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled run started", "trigger", trigger.Format(time.RFC3339))
		err := s.pipeline.ProcessDay(ctx, trigger)
		switch {
		case errors.Is(err, ErrNoData):
			s.logger.Warn("scheduled run produced no data")
		case err != nil:
			s.logger.Error("scheduled run failed", "error", err)
		default:
			s.logger.Info("scheduled run finished")
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
