package series

import (
	"testing"
	"time"

	"github.com/huangsam/hubstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseDay = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

// day returns baseDay shifted by n days.
func day(n int) time.Time {
	return baseDay.AddDate(0, 0, n)
}

// snap builds a snapshot for the test metric.
func snap(n int, total, delta int64) schema.Snapshot {
	return schema.Snapshot{Metric: "pulls:acme/api", Date: day(n), CumulativeTotal: total, DailyDelta: delta}
}

// build folds totals into a history through Upsert so every delta is derived.
func build(t *testing.T, points map[int]int64) []schema.Snapshot {
	t.Helper()
	var history []schema.Snapshot
	for n, total := range points {
		var err error
		history, _, err = Upsert(history, schema.Snapshot{Metric: "pulls:acme/api", Date: day(n), CumulativeTotal: total})
		require.NoError(t, err)
	}
	return history
}

func TestComputeDelta(t *testing.T) {
	prior := int64(100)
	assert.Equal(t, int64(7), ComputeDelta(nil, 7))
	assert.Equal(t, int64(25), ComputeDelta(&prior, 125))
	assert.Equal(t, int64(0), ComputeDelta(&prior, 100))
	assert.Equal(t, int64(-4), ComputeDelta(&prior, 96), "negative deltas are not clamped")
}

func TestCheckHistory(t *testing.T) {
	assert.NoError(t, CheckHistory(nil))
	assert.NoError(t, CheckHistory([]schema.Snapshot{snap(0, 1, 1)}))
	assert.NoError(t, CheckHistory([]schema.Snapshot{snap(0, 1, 1), snap(3, 2, 1)}))

	err := CheckHistory([]schema.Snapshot{snap(1, 1, 1), snap(0, 2, 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInconsistentHistory)

	sameDay := snap(0, 2, 1)
	sameDay.Date = sameDay.Date.Add(5 * time.Hour)
	err = CheckHistory([]schema.Snapshot{snap(0, 1, 1), sameDay})
	assert.ErrorIs(t, err, ErrInconsistentHistory, "duplicate calendar days are rejected even with distinct timestamps")
}

func TestPriorTo(t *testing.T) {
	history := []schema.Snapshot{snap(0, 10, 10), snap(2, 15, 5), snap(5, 30, 15)}

	_, ok := PriorTo(history, day(0))
	assert.False(t, ok)

	prior, ok := PriorTo(history, day(2))
	require.True(t, ok)
	assert.Equal(t, int64(10), prior.CumulativeTotal)

	prior, ok = PriorTo(history, day(4))
	require.True(t, ok)
	assert.Equal(t, int64(15), prior.CumulativeTotal)

	prior, ok = PriorTo(history, day(9))
	require.True(t, ok)
	assert.Equal(t, int64(30), prior.CumulativeTotal)
}

func TestUpsertFirstSnapshot(t *testing.T) {
	updated, changed, err := Upsert(nil, schema.Snapshot{Metric: "m", Date: day(0).Add(13 * time.Hour), CumulativeTotal: 7})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, int64(7), updated[0].DailyDelta)
	assert.Equal(t, day(0), updated[0].Date, "dates are normalised to the UTC day")
	assert.Len(t, changed, 1)
}

func TestUpsertAppendAndReplace(t *testing.T) {
	history := []schema.Snapshot{snap(0, 100, 100), snap(1, 110, 10)}

	updated, changed, err := Upsert(history, schema.Snapshot{Metric: "pulls:acme/api", Date: day(2), CumulativeTotal: 125})
	require.NoError(t, err)
	require.Len(t, updated, 3)
	assert.Equal(t, int64(15), updated[2].DailyDelta)
	assert.Len(t, changed, 1)

	// Re-running for the same day replaces, it never duplicates.
	again, changed, err := Upsert(updated, schema.Snapshot{Metric: "pulls:acme/api", Date: day(2), CumulativeTotal: 130})
	require.NoError(t, err)
	require.Len(t, again, 3)
	assert.Equal(t, int64(130), again[2].CumulativeTotal)
	assert.Equal(t, int64(20), again[2].DailyDelta, "delta is taken against the predecessor, not the replaced value")
	assert.Len(t, changed, 1)

	// Inputs are untouched.
	assert.Equal(t, int64(125), updated[2].CumulativeTotal)
	assert.Len(t, history, 2)
}

func TestUpsertBackfillRecomputesSuccessor(t *testing.T) {
	history := []schema.Snapshot{snap(0, 10, 10), snap(4, 25, 15)}

	updated, changed, err := Upsert(history, schema.Snapshot{Metric: "pulls:acme/api", Date: day(2), CumulativeTotal: 18})
	require.NoError(t, err)
	require.Len(t, updated, 3)
	assert.Equal(t, int64(8), updated[1].DailyDelta)
	assert.Equal(t, int64(7), updated[2].DailyDelta)

	require.Len(t, changed, 2)
	assert.Equal(t, day(2), changed[0].Date)
	assert.Equal(t, day(4), changed[1].Date)
	assert.Equal(t, int64(15), history[1].DailyDelta, "caller's slice is not mutated")
}

func TestUpsertRejectsInconsistentHistory(t *testing.T) {
	_, _, err := Upsert([]schema.Snapshot{snap(2, 1, 1), snap(1, 2, 1)}, snap(3, 3, 0))
	assert.ErrorIs(t, err, ErrInconsistentHistory)
}

func TestDeltaCorrectnessAcrossAdjacentSnapshots(t *testing.T) {
	history := build(t, map[int]int64{0: 50, 1: 70, 3: 65, 4: 65, 8: 90})

	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i].CumulativeTotal-history[i-1].CumulativeTotal, history[i].DailyDelta,
			"delta of %s", schema.DayKey(history[i].Date))
	}
	assert.Equal(t, int64(-5), history[2].DailyDelta)
	assert.Equal(t, int64(50), history[0].DailyDelta)
}

func TestMergeLiveReplacesToday(t *testing.T) {
	history := []schema.Snapshot{snap(0, 90, 90), snap(1, 100, 10)}

	merged, err := MergeLive(history, 120, day(1))
	require.NoError(t, err)
	require.Len(t, merged, 2, "live override must not add a second entry for today")
	assert.Equal(t, int64(120), merged[1].CumulativeTotal)
	assert.Equal(t, int64(30), merged[1].DailyDelta)
	assert.Equal(t, int64(100), history[1].CumulativeTotal, "history is not mutated")
}

func TestMergeLiveAppendsToday(t *testing.T) {
	history := []schema.Snapshot{snap(0, 90, 90), snap(1, 100, 10)}

	merged, err := MergeLive(history, 104, day(2).Add(9*time.Hour))
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, day(2), merged[2].Date)
	assert.Equal(t, int64(4), merged[2].DailyDelta)
	assert.Equal(t, "pulls:acme/api", merged[2].Metric)
	assert.Len(t, history, 2)
}

func TestMergeLiveEmptyHistory(t *testing.T) {
	merged, err := MergeLive(nil, 42, day(0))
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, int64(42), merged[0].DailyDelta)
}

func TestMergeLiveIdempotent(t *testing.T) {
	history := []schema.Snapshot{snap(0, 90, 90), snap(3, 100, 10)}

	once, err := MergeLive(history, 111, day(5))
	require.NoError(t, err)
	twice, err := MergeLive(once, 111, day(5))
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	onceToday, err := MergeLive(history, 111, day(3))
	require.NoError(t, err)
	twiceToday, err := MergeLive(onceToday, 111, day(3))
	require.NoError(t, err)
	assert.Equal(t, onceToday, twiceToday)
}

func TestMergeLiveRejectsInconsistentHistory(t *testing.T) {
	_, err := MergeLive([]schema.Snapshot{snap(0, 1, 1), snap(0, 2, 1)}, 3, day(1))
	assert.ErrorIs(t, err, ErrInconsistentHistory)
}
