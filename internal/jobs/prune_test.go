package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/repository/memory"
	testlog "courier-dispatch/internal/testutil"
)

type failingPruner struct{ err error }

func (f failingPruner) DeleteRejectionsBefore(context.Context, time.Time) (int64, error) {
	return 0, f.err
}

func TestPruneRejectionsJob_RunOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	require.NoError(t, store.UpsertRejection(ctx, domain.Rejection{OrderID: 1, CourierID: 1, RejectedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.UpsertRejection(ctx, domain.Rejection{OrderID: 2, CourierID: 1, RejectedAt: now.Add(-30 * time.Minute)}))

	rec := testlog.New()
	j := NewPruneRejectionsJob(store, time.Hour, "@every 1h", rec.Logger())
	j.now = func() time.Time { return now }

	n, err := j.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	left, err := store.ListRejections(ctx, 1)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, int64(2), left[0].OrderID)

	comp, ok := rec.Field("pruned rejections", "component")
	require.True(t, ok)
	require.Equal(t, "prune_rejections_job", comp)
}

func TestPruneRejectionsJob_RunOnceError(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	boom := errors.New("boom")
	j := NewPruneRejectionsJob(failingPruner{err: boom}, time.Hour, "@every 1h", rec.Logger())

	_, err := j.RunOnce(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"prune rejections failed"}, rec.Messages("error"))
}

func TestPruneRejectionsJob_StartRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	j := NewPruneRejectionsJob(memory.NewStore(), time.Hour, "not a schedule", nil)
	require.Error(t, j.Start())
}

func TestPruneRejectionsJob_StartStop(t *testing.T) {
	t.Parallel()

	j := NewPruneRejectionsJob(memory.NewStore(), time.Hour, "@every 1h", nil)
	require.NoError(t, j.Start())
	j.Stop()
}
