package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veryresto/pingmo/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.InitSchema())
	return db
}

// compile-time check that the archive satisfies the interfaces the CLI uses
var (
	_ models.Archive  = (*DB)(nil)
	_ models.Recorder = (*RunRecorder)(nil)
)

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.StartRun(models.Run{ID: "run-1", Target: "1.1.1.1", Interval: 0.5, StartedAt: start}))

	rec := db.Recorder("run-1")
	require.NoError(t, rec.Record(models.NewSuccess(start, "1.1.1.1", 12.25)))
	require.NoError(t, rec.Record(models.NewFailure(start.Add(500*time.Millisecond), "1.1.1.1")))
	require.NoError(t, rec.Record(models.NewSuccess(start.Add(time.Second), "1.1.1.1", 30)))

	obs, err := db.LoadObservations("run-1")
	require.NoError(t, err)
	require.Len(t, obs, 3)
	assert.Equal(t, 12.25, *obs[0].LatencyMS)
	assert.True(t, obs[0].Timestamp.Equal(start))
	assert.False(t, obs[1].Success)
	assert.Nil(t, obs[1].LatencyMS)
	assert.Equal(t, models.StatusTimeout, obs[1].Status)

	run, err := db.LoadRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, run.Observations)
	assert.Nil(t, run.EndedAt)
	assert.Equal(t, 0.5, run.Interval)

	summary := models.Summary{MonitoringStarted: start, MonitoringEnded: start.Add(2 * time.Second)}
	require.NoError(t, db.FinishRun("run-1", summary))

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].EndedAt)
	assert.True(t, runs[0].EndedAt.Equal(start.Add(2*time.Second)))
	require.NotNil(t, runs[0].SuccessRate)
	assert.InDelta(t, 66.67, *runs[0].SuccessRate, 0.01)
}

func TestRunNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LoadRun("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = db.FinishRun("nope", models.Summary{MonitoringEnded: time.Now()})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsOrder(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.StartRun(models.Run{ID: id, Target: "t", Interval: 1, StartedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	runs, err := db.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Nil(t, runs[0].SuccessRate)
}

func TestPrune(t *testing.T) {
	db := openTestDB(t)
	old := time.Now().Add(-72 * time.Hour)
	recent := time.Now().Add(-time.Hour)

	require.NoError(t, db.StartRun(models.Run{ID: "old", Target: "t", Interval: 1, StartedAt: old}))
	require.NoError(t, db.Recorder("old").Record(models.NewSuccess(old, "t", 5)))
	require.NoError(t, db.FinishRun("old", models.Summary{MonitoringEnded: old.Add(time.Minute)}))

	require.NoError(t, db.StartRun(models.Run{ID: "recent", Target: "t", Interval: 1, StartedAt: recent}))
	require.NoError(t, db.FinishRun("recent", models.Summary{MonitoringEnded: recent.Add(time.Minute)}))

	// unfinished runs survive regardless of age
	require.NoError(t, db.StartRun(models.Run{ID: "open", Target: "t", Interval: 1, StartedAt: old}))

	removed, err := db.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = db.LoadRun("old")
	assert.ErrorIs(t, err, ErrRunNotFound)
	obs, err := db.LoadObservations("old")
	require.NoError(t, err)
	assert.Empty(t, obs)

	_, err = db.LoadRun("recent")
	assert.NoError(t, err)
	_, err = db.LoadRun("open")
	assert.NoError(t, err)
}
