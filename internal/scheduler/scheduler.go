package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Daily fires a job once per calendar day at a fixed local time. A single
// instance is assumed: running two schedulers would duplicate sends.
type Daily struct {
	logger *zap.Logger
	hour   int
	minute int
	job    Job
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDaily parses timeOfDay as "15:04" and prepares the trigger.
func NewDaily(logger *zap.Logger, timeOfDay string, job Job) (*Daily, error) {
	at, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("parse digest time %q: %w", timeOfDay, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daily{
		logger: logger,
		hour:   at.Hour(),
		minute: at.Minute(),
		job:    job,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}, nil
}

// Start begins the trigger loop.
func (d *Daily) Start() {
	go func() {
		defer close(d.done)
		for {
			wait := time.Until(d.nextRun(time.Now()))
			d.logger.Info("digest scheduled", zap.Duration("in", wait.Round(time.Second)))
			timer := time.NewTimer(wait)
			select {
			case <-d.ctx.Done():
				timer.Stop()
				d.logger.Info("scheduler stopped")
				return
			case <-timer.C:
				d.job(d.ctx)
			}
		}
	}()
}

// StopWithContext cancels the trigger and waits for a running job to finish or
// the context to expire.
func (d *Daily) StopWithContext(ctx context.Context) error {
	d.cancel()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Daily) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
