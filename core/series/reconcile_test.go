package series

import (
	"errors"
	"testing"

	"github.com/huangsam/hubstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileAll(t *testing.T) {
	histories := map[string][]schema.Snapshot{
		"pulls:acme/api": {snap(-2, 100, 100), snap(-1, 110, 10)},
		"pulls:acme/web": {
			{Metric: "pulls:acme/web", Date: day(-1), CumulativeTotal: 50, DailyDelta: 50},
		},
		"stars:acme/acme": {
			{Metric: "stars:acme/acme", Date: day(-2), CumulativeTotal: 9, DailyDelta: 9},
		},
	}
	load := func(metric string) ([]schema.Snapshot, error) {
		return histories[metric], nil
	}
	upstreamDown := errors.New("upstream unavailable")
	live := map[string]LiveTotal{
		"pulls:acme/api": {Total: 125},
		"pulls:acme/web": {Err: upstreamDown},
	}

	result, err := ReconcileAll([]string{"pulls:acme/api", "pulls:acme/web", "stars:acme/acme"}, load, live, 3, day(0))
	require.NoError(t, err)
	require.Len(t, result.Series, 3)

	api := result.Series["pulls:acme/api"]
	assert.True(t, api.Live)
	assert.Equal(t, int64(125), api.Total)
	assert.Equal(t, int64(15), api.Unique[schema.DayKey(day(0))])

	web := result.Series["pulls:acme/web"]
	assert.False(t, web.Live)
	assert.Equal(t, int64(50), web.Total, "degraded metric falls back to persisted history")
	assert.Equal(t, int64(0), web.Unique[schema.DayKey(day(0))])

	stars := result.Series["stars:acme/acme"]
	assert.False(t, stars.Live)
	assert.Equal(t, "stars:acme/acme", stars.Metric)

	require.Len(t, result.Degraded, 1)
	assert.ErrorIs(t, result.Degraded["pulls:acme/web"], upstreamDown)

	assert.Len(t, histories["pulls:acme/api"], 2, "persisted history is untouched")
}

func TestReconcileAllEmptyMetricGetsName(t *testing.T) {
	load := func(string) ([]schema.Snapshot, error) { return nil, nil }
	result, err := ReconcileAll([]string{"stars:new/repo"}, load, nil, 2, day(0))
	require.NoError(t, err)
	assert.Equal(t, "stars:new/repo", result.Series["stars:new/repo"].Metric)
	assert.Empty(t, result.Degraded)
}

func TestReconcileAllFailsFast(t *testing.T) {
	broken := func(metric string) ([]schema.Snapshot, error) {
		if metric == "bad" {
			return []schema.Snapshot{snap(1, 5, 5), snap(0, 6, 1)}, nil
		}
		return nil, nil
	}
	_, err := ReconcileAll([]string{"good", "bad"}, broken, nil, 3, day(1))
	assert.ErrorIs(t, err, ErrInconsistentHistory)

	loadErr := errors.New("db closed")
	failing := func(string) ([]schema.Snapshot, error) { return nil, loadErr }
	_, err = ReconcileAll([]string{"x"}, failing, nil, 3, day(1))
	assert.ErrorIs(t, err, loadErr)
	assert.Contains(t, err.Error(), "failed to load history for x")
}
