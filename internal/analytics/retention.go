package analytics

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alrehab/agriexport-go/internal/service"
	"github.com/alrehab/agriexport-go/internal/store"
)

// retentionSchedule runs the cleanup daily at 00:30.
const retentionSchedule = "30 0 * * *"

const retentionTimeout = 5 * time.Minute

// eventRetention is how long event log rows are kept, independent of
// the page view retention setting.
const eventRetention = 90 * 24 * time.Hour

// Retention prunes aged page views and event log rows on a daily
// schedule.
type Retention struct {
	queries       *store.Queries
	events        *service.EventService
	retentionDays int
	cron          *cron.Cron
}

// NewRetention creates a Retention job. retentionDays bounds how long
// raw page views are kept.
func NewRetention(db *sql.DB, retentionDays int) *Retention {
	return &Retention{
		queries:       store.New(db),
		events:        service.NewEventService(db),
		retentionDays: retentionDays,
	}
}

// Start schedules the daily cleanup. It returns immediately; call Stop
// during shutdown.
func (r *Retention) Start() error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(retentionSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), retentionTimeout)
		defer cancel()
		if err := r.Run(ctx); err != nil {
			slog.Error("analytics retention run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	slog.Debug("analytics retention job scheduled", "schedule", retentionSchedule)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (r *Retention) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// Run executes one cleanup pass immediately.
func (r *Retention) Run(ctx context.Context) error {
	cutoff := timeNow().AddDate(0, 0, -r.retentionDays)
	deleted, err := r.queries.DeletePageViewsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Info("pruned old page views", "deleted", deleted, "older_than", cutoff.Format("2006-01-02"))
	}

	if err := r.events.DeleteOldEvents(ctx, eventRetention); err != nil {
		slog.Warn("event log cleanup failed", "error", err)
	}
	return nil
}
