package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarmup refreshes the cached purchase statistics.
	TaskStatsWarmup = "purchase:stats_warmup"
	// TaskStaleScan reports purchase requests stuck in PENDING.
	TaskStaleScan = "purchase:stale_scan"
)

// StatsWarmupPayload carries scheduling metadata.
type StatsWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewStatsWarmupTask constructs an Asynq task for cache warmup.
func NewStatsWarmupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(StatsWarmupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, body, asynq.Queue(QueueDefault)), nil
}

// StaleScanPayload carries scheduling metadata.
type StaleScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewStaleScanTask constructs an Asynq task for the stale PENDING scan.
func NewStaleScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(StaleScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStaleScan, body, asynq.Queue(QueueDefault)), nil
}
