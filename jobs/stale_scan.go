package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gudangku/gudangku/internal/observability"
	"github.com/gudangku/gudangku/internal/purchase"
)

// StaleLister reports purchase requests still PENDING past a cutoff age.
type StaleLister interface {
	ListStalePending(ctx context.Context, olderThan time.Duration) ([]purchase.PurchaseRequest, error)
}

// HandleStaleScan returns the handler for TaskStaleScan tasks. Stuck
// requests are only logged; the vendor hub is never re-notified.
func HandleStaleScan(lister StaleLister, age time.Duration, metrics *observability.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload StaleScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		stale, err := lister.ListStalePending(ctx, age)
		if err != nil {
			metrics.RecordJob(TaskStaleScan, "error")
			logger.Error("stale scan", slog.Any("error", err))
			return err
		}
		for _, pr := range stale {
			logger.Warn("purchase request stuck in PENDING",
				slog.Int64("id", pr.ID),
				slog.String("reference", pr.Reference),
				slog.Time("created_at", pr.CreatedAt))
		}
		metrics.RecordJob(TaskStaleScan, "ok")
		return nil
	}
}
