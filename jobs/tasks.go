// Package jobs hosts the background worker and its task definitions.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskActivitySnapshotRefresh refreshes the cached activity snapshot.
	TaskActivitySnapshotRefresh = "activity:snapshot:refresh"
)

// NewActivitySnapshotRefreshTask constructs the snapshot refresh task. The
// task carries no payload; the handler always refreshes the full snapshot.
func NewActivitySnapshotRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskActivitySnapshotRefresh, nil)
}
