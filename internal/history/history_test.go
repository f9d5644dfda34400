package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "history.db")
	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	require.NoError(t, st.StartSession(ctx, "s1", "abc", 499))
	got, err := st.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Fingerprint)
	assert.Equal(t, 499, got.VocabSize)
	assert.Equal(t, StatusPlaying, got.Status)
	assert.False(t, got.StartedAt.IsZero())
	assert.True(t, got.FinishedAt.IsZero())

	require.NoError(t, st.RecordObservation(ctx, "s1", Observation{Row: 1, Guess: "slate", Pattern: "--^-^", Remaining: 12}))
	require.NoError(t, st.RecordObservation(ctx, "s1", Observation{Row: 2, Guess: "pride", Pattern: "*****", Remaining: 1}))

	obs, err := st.Observations(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "slate", obs[0].Guess)
	assert.Equal(t, "*****", obs[1].Pattern)
	assert.Equal(t, 1, obs[1].Remaining)

	require.NoError(t, st.FinishSession(ctx, "s1", StatusSolved))
	got, err = st.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, got.Status)
	assert.False(t, got.FinishedAt.IsZero())
}

func TestDuplicateRowRejected(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	require.NoError(t, st.StartSession(ctx, "s1", "abc", 10))
	require.NoError(t, st.RecordObservation(ctx, "s1", Observation{Row: 1, Guess: "slate", Pattern: "-----"}))
	assert.Error(t, st.RecordObservation(ctx, "s1", Observation{Row: 1, Guess: "crane", Pattern: "-----"}))
}

func TestObservationNeedsSession(t *testing.T) {
	st, _ := openTemp(t)
	err := st.RecordObservation(context.Background(), "ghost", Observation{Row: 1, Guess: "slate", Pattern: "-----"})
	assert.Error(t, err, "foreign key")
}

func TestResetSession(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	require.NoError(t, st.StartSession(ctx, "s1", "abc", 10))
	require.NoError(t, st.RecordObservation(ctx, "s1", Observation{Row: 1, Guess: "slate", Pattern: "-----"}))
	require.NoError(t, st.FinishSession(ctx, "s1", StatusFailed))

	require.NoError(t, st.ResetSession(ctx, "s1", "def", 20))
	obs, err := st.Observations(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, obs)

	got, err := st.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "def", got.Fingerprint)
	assert.Equal(t, 20, got.VocabSize)
	assert.Equal(t, StatusPlaying, got.Status)
	assert.True(t, got.FinishedAt.IsZero())

	assert.ErrorIs(t, st.ResetSession(ctx, "ghost", "x", 1), ErrNotFound)
}

func TestMissingSession(t *testing.T) {
	st, _ := openTemp(t)
	_, err := st.Session(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsDataAndSkipsMigrations(t *testing.T) {
	ctx := context.Background()
	st, path := openTemp(t)
	require.NoError(t, st.StartSession(ctx, "s1", "abc", 10))
	require.NoError(t, st.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	got, err := again.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Fingerprint)
}
