package retention

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakePruner) DeleteAnalysesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

func (f *fakePruner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestScheduler_SchedulePrune(t *testing.T) {
	t.Run("returns job id and runs immediately", func(t *testing.T) {
		p := &fakePruner{n: 2}
		s, err := NewScheduler(p)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		id, err := s.SchedulePrune(time.Hour, 24*time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		s.Start()
		require.Eventually(t, func() bool { return p.calls() >= 1 }, 5*time.Second, 10*time.Millisecond)
		require.Eventually(t, func() bool { return s.Pruned() >= 2 }, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("rejects non-positive values", func(t *testing.T) {
		s, err := NewScheduler(&fakePruner{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.SchedulePrune(0, time.Hour)
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

		_, err = s.SchedulePrune(time.Hour, 0)
		require.Error(t, err)
	})
}

func TestScheduler_PruneOnceCutoff(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	p := &fakePruner{n: 3}
	s, err := NewScheduler(p, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	n, err := s.PruneOnce(context.Background(), 48*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, int64(3), n)
	require.Len(t, p.cutoffs, 1)
	assert.Equal(t, now.Add(-48*time.Hour), p.cutoffs[0])
	assert.Equal(t, int64(3), s.Pruned())
}

func TestScheduler_PruneOnceError(t *testing.T) {
	s, err := NewScheduler(&fakePruner{err: stderrors.New("disk full")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, err = s.PruneOnce(context.Background(), time.Hour)
	require.Error(t, err)
	assert.Zero(t, s.Pruned())
}

func TestScheduler_PrunesSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now()
	require.NoError(t, db.SaveAnalysis(ctx, &store.Analysis{ID: "old", UserID: "u", CreatedAt: now.Add(-72 * time.Hour)}))
	require.NoError(t, db.SaveAnalysis(ctx, &store.Analysis{ID: "new", UserID: "u", CreatedAt: now}))

	s, err := NewScheduler(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	n, err := s.PruneOnce(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
