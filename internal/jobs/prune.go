package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"courier-dispatch/internal/logx"
)

// RejectionPruner deletes rejection records older than a cutoff.
type RejectionPruner interface {
	DeleteRejectionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneRejectionsJob periodically removes rejections that can no longer
// hide an offer because they are older than the cooldown window.
type PruneRejectionsJob struct {
	store    RejectionPruner
	window   time.Duration
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   logx.Logger
	now      func() time.Time
}

// NewPruneRejectionsJob creates the job. schedule is a standard cron spec
// or a descriptor such as "@every 1h".
func NewPruneRejectionsJob(store RejectionPruner, window time.Duration, schedule string, logger logx.Logger) *PruneRejectionsJob {
	if logger == nil {
		logger = logx.Nop()
	}
	return &PruneRejectionsJob{
		store:    store,
		window:   window,
		schedule: schedule,
		timeout:  30 * time.Second,
		cron:     cron.New(),
		logger:   logger.With(logx.String("component", "prune_rejections_job")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the job and starts the scheduler.
func (j *PruneRejectionsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { _, _ = j.RunOnce(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("prune rejections job started", logx.String("schedule", j.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running prune to finish.
func (j *PruneRejectionsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("prune rejections job stopped")
}

// RunOnce prunes once and returns the number of deleted records.
func (j *PruneRejectionsJob) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cutoff := j.now().Add(-j.window)
	n, err := j.store.DeleteRejectionsBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("prune rejections failed", logx.Err(err))
		return 0, err
	}
	if n > 0 {
		j.logger.Info("pruned rejections",
			logx.Int64("deleted", n),
			logx.Time("cutoff", cutoff),
		)
	}
	return n, nil
}
