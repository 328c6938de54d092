// Package jobs runs the scheduled reload of the facturas session.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"estadocuenta/internal/logger"
)

// Loader is anything that can reload its records.
type Loader interface {
	Load(ctx context.Context) error
}

// Refresher reloads a Loader on a cron schedule.
type Refresher struct {
	cron     *cron.Cron
	loader   Loader
	schedule string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewRefresher parses the schedule (standard five-field cron spec or a
// descriptor such as "@every 5m") in the given location. An empty schedule
// returns a nil Refresher, which is safe to Start and Stop.
func NewRefresher(schedule string, loc *time.Location, loader Loader, timeout time.Duration) (*Refresher, error) {
	const op = "NewRefresher"

	if schedule == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	r := &Refresher{
		cron:     cron.New(cron.WithLocation(loc)),
		loader:   loader,
		schedule: schedule,
		timeout:  timeout,
		log:      logger.WithComponent("jobs"),
	}

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("%s: unable to schedule reload %q: %w", op, schedule, err)
	}
	return r, nil
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	r.log.Info().Msg("Starting scheduled reload")
	if err := r.loader.Load(ctx); err != nil {
		r.log.Error().Err(err).Msg("Scheduled reload failed")
		return
	}
	r.log.Info().Dur("duration", time.Since(start)).Msg("Scheduled reload completed")
}

// Start runs the scheduler in the background.
func (r *Refresher) Start() {
	if r == nil {
		return
	}
	r.cron.Start()
	r.log.Info().Str("schedule", r.schedule).Msg("Reload scheduler started")
}

// Stop halts the scheduler and waits for a running reload to finish.
func (r *Refresher) Stop() {
	if r == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// Next returns the next scheduled run, zero if the scheduler is not running.
func (r *Refresher) Next() time.Time {
	if r == nil {
		return time.Time{}
	}
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
