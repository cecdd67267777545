package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gudangku/gudangku/internal/observability"
	"github.com/gudangku/gudangku/internal/purchase"
)

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) RefreshStats(context.Context) error {
	s.calls++
	return s.err
}

type stubStaleLister struct {
	stale []purchase.PurchaseRequest
}

func (s *stubStaleLister) ListStalePending(context.Context, time.Duration) ([]purchase.PurchaseRequest, error) {
	return s.stale, nil
}

func TestStatsWarmupRefreshes(t *testing.T) {
	refresher := &stubRefresher{}
	handler := HandleStatsWarmup(refresher, observability.NewMetrics(), slog.Default())

	task, err := NewStatsWarmupTask(time.Now())
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 1, refresher.calls)
}

func TestStatsWarmupPropagatesError(t *testing.T) {
	refresher := &stubRefresher{err: errors.New("redis down")}
	handler := HandleStatsWarmup(refresher, observability.NewMetrics(), slog.Default())

	task, err := NewStatsWarmupTask(time.Now())
	require.NoError(t, err)

	require.Error(t, handler(context.Background(), task))
}

func TestStaleScanLogsWithoutMutation(t *testing.T) {
	lister := &stubStaleLister{stale: []purchase.PurchaseRequest{
		{ID: 1, Reference: "PR-001", Status: purchase.StatusPending, CreatedAt: time.Now().Add(-96 * time.Hour)},
	}}
	handler := HandleStaleScan(lister, 72*time.Hour, observability.NewMetrics(), slog.Default())

	task, err := NewStaleScanTask(time.Now())
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, purchase.StatusPending, lister.stale[0].Status)
}
