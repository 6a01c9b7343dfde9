package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mediboard/mediboard/internal/activity"
	jobmetrics "github.com/mediboard/mediboard/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotRefreshJob keeps the activity snapshot warm so the first dashboard
// view after a quiet period does not pay the upstream fetch.
type SnapshotRefreshJob struct {
	Activity *activity.Service
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewSnapshotRefreshJob wires dependencies for the refresh handler.
func NewSnapshotRefreshJob(activitySvc *activity.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{
		Activity: activitySvc,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes snapshot refresh tasks.
func (j *SnapshotRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Activity == nil {
		return errors.New("snapshot refresh: handler not configured")
	}

	tracker := j.metrics().Track(TaskActivitySnapshotRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting activity snapshot refresh")

	refreshCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	start := j.now()
	snap, err := j.Activity.Refresh(refreshCtx)
	if err != nil {
		resultErr = err
		logger.Error("refresh activity snapshot", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed activity snapshot refresh",
		slog.Int("records", len(snap.Records)),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *SnapshotRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskActivitySnapshotRefresh))
	}
	return slog.Default().With(slog.String("job", TaskActivitySnapshotRefresh))
}

func (j *SnapshotRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SnapshotRefreshJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
