package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Users(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := &User{ID: "u1", Email: "ann@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := s.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", byID.Email)
}

func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateUser(ctx, &User{ID: "u1", Email: "a@example.com", PasswordHash: "x"}))
	err := s.CreateUser(ctx, &User{ID: "u2", Email: "a@example.com", PasswordHash: "y"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
}

func TestSQLiteStore_UserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestSQLiteStore_Analyses(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Unix(1_700_000_000, 0)

	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, s.SaveAnalysis(ctx, &Analysis{
			ID:             id,
			UserID:         "u1",
			Source:         "raw",
			Score:          0.2,
			CorrectedScore: 0.33,
			Diagnostics:    []string{"first", "second"},
			Encoding:       "utf-8",
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, s.SaveAnalysis(ctx, &Analysis{ID: "b1", UserID: "u2", Source: "page.html", Encoding: "utf-8"}))

	got, err := s.GetAnalysis(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, []string{"first", "second"}, got.Diagnostics)
	assert.InDelta(t, 0.33, got.CorrectedScore, 1e-9)
	assert.Equal(t, base.Add(time.Hour).Unix(), got.CreatedAt.Unix())

	list, err := s.ListAnalyses(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a3", list[0].ID)
	assert.Equal(t, "a2", list[1].ID)

	other, err := s.GetAnalysis(ctx, "b1")
	require.NoError(t, err)
	assert.NotNil(t, other.Diagnostics)
	assert.Empty(t, other.Diagnostics)
}

func TestSQLiteStore_AnalysisNotFound(t *testing.T) {
	_, err := newTestStore(t).GetAnalysis(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DeleteAnalysesBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	require.NoError(t, s.SaveAnalysis(ctx, &Analysis{ID: "old", UserID: "u1", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, s.SaveAnalysis(ctx, &Analysis{ID: "new", UserID: "u1", CreatedAt: now}))

	n, err := s.DeleteAnalysesBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetAnalysis(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetAnalysis(ctx, "new")
	assert.NoError(t, err)
}

func TestSQLiteStore_FileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/semcheck.db"

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(ctx, &User{ID: "u1", Email: "p@example.com", PasswordHash: "h"}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	u, err := reopened.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p@example.com", u.Email)
}

var _ Store = (*SQLiteStore)(nil)
