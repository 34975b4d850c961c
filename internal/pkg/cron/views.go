package cron

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper evicts idle report views.
type Sweeper interface {
	Sweep() int
	Len() int
}

type ViewJobs struct {
	views    Sweeper
	interval time.Duration
}

func NewViewJobs(views Sweeper, interval time.Duration) *ViewJobs {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ViewJobs{
		views:    views,
		interval: interval,
	}
}

func (j *ViewJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("evict_idle_views", j.interval, j.EvictIdleViews)
}

func (j *ViewJobs) EvictIdleViews(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removed := j.views.Sweep()
	if removed > 0 {
		slog.Info("Cron: Evicted idle report views", "evicted", removed, "open", j.views.Len())
	}
	return nil
}
