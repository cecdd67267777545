package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/gudangku/gudangku/internal/observability"
)

// StatsRefresher recomputes cached purchase statistics.
type StatsRefresher interface {
	RefreshStats(ctx context.Context) error
}

// HandleStatsWarmup returns the handler for TaskStatsWarmup tasks.
func HandleStatsWarmup(refresher StatsRefresher, metrics *observability.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload StatsWarmupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := refresher.RefreshStats(ctx); err != nil {
			metrics.RecordJob(TaskStatsWarmup, "error")
			logger.Error("stats warmup", slog.Any("error", err))
			return err
		}
		metrics.RecordJob(TaskStatsWarmup, "ok")
		return nil
	}
}
