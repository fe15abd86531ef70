package series

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/hubstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWindowSizeAndKeys(t *testing.T) {
	history := build(t, map[int]int64{-40: 5, -3: 12, 0: 20})

	for _, n := range []int{1, 7, 30, 90} {
		rendered, err := RenderWindow(history, n, day(0))
		require.NoError(t, err)
		assert.Len(t, rendered.Accumulated, n)
		assert.Len(t, rendered.Unique, n)
		for i := range n {
			key := schema.DayKey(day(-i))
			assert.Contains(t, rendered.Accumulated, key)
			assert.Contains(t, rendered.Unique, key)
		}
	}
}

func TestRenderWindowGapCarryForward(t *testing.T) {
	// Snapshots on day 1 (10) and day 5 (25) in a five-day window.
	history := build(t, map[int]int64{1: 10, 5: 25})

	rendered, err := RenderWindow(history, 5, day(5))
	require.NoError(t, err)

	assert.Equal(t, int64(10), rendered.Accumulated[schema.DayKey(day(1))])
	assert.Equal(t, int64(10), rendered.Unique[schema.DayKey(day(1))])
	for n := 2; n <= 4; n++ {
		key := schema.DayKey(day(n))
		assert.Equal(t, int64(10), rendered.Accumulated[key], "accumulated on %s", key)
		assert.Equal(t, int64(0), rendered.Unique[key], "unique on %s", key)
	}
	assert.Equal(t, int64(25), rendered.Accumulated[schema.DayKey(day(5))])
	assert.Equal(t, int64(15), rendered.Unique[schema.DayKey(day(5))])
	assert.Equal(t, int64(25), rendered.Total)
}

func TestRenderWindowZeroBeforeFirstData(t *testing.T) {
	history := build(t, map[int]int64{3: 8})

	rendered, err := RenderWindow(history, 5, day(4))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rendered.Accumulated[schema.DayKey(day(0))])
	assert.Equal(t, int64(0), rendered.Accumulated[schema.DayKey(day(2))])
	assert.Equal(t, int64(8), rendered.Accumulated[schema.DayKey(day(3))])
	assert.Equal(t, int64(8), rendered.Accumulated[schema.DayKey(day(4))])
	assert.Equal(t, int64(8), rendered.Unique[schema.DayKey(day(3))])
}

func TestRenderWindowCarriesFromBeforeWindow(t *testing.T) {
	history := build(t, map[int]int64{-10: 300, 2: 330})

	rendered, err := RenderWindow(history, 3, day(2))
	require.NoError(t, err)
	assert.Equal(t, int64(300), rendered.Accumulated[schema.DayKey(day(0))])
	assert.Equal(t, int64(300), rendered.Accumulated[schema.DayKey(day(1))])
	assert.Equal(t, int64(0), rendered.Unique[schema.DayKey(day(0))])
	assert.Equal(t, int64(30), rendered.Unique[schema.DayKey(day(2))])
}

func TestRenderWindowIgnoresSnapshotsAfterAsOf(t *testing.T) {
	history := build(t, map[int]int64{0: 5, 1: 9, 6: 40})

	rendered, err := RenderWindow(history, 2, day(1))
	require.NoError(t, err)
	assert.Equal(t, int64(9), rendered.Total)
	assert.NotContains(t, rendered.Accumulated, schema.DayKey(day(6)))
}

func TestRenderWindowEmptyHistory(t *testing.T) {
	rendered, err := RenderWindow(nil, 3, day(0))
	require.NoError(t, err)
	assert.Len(t, rendered.Accumulated, 3)
	for _, v := range rendered.Accumulated {
		assert.Zero(t, v)
	}
	assert.Zero(t, rendered.Total)
	assert.Empty(t, rendered.Metric)
}

func TestRenderWindowDeterministic(t *testing.T) {
	history := build(t, map[int]int64{0: 1, 2: 4, 3: 9})
	a, err := RenderWindow(history, 10, day(3).Add(17*time.Hour))
	require.NoError(t, err)
	b, err := RenderWindow(history, 10, day(3))
	require.NoError(t, err)
	assert.Equal(t, a, b, "time of day of asOf does not change the rendering")
	assert.Equal(t, day(3), a.AsOf)
}

func TestRenderWindowErrors(t *testing.T) {
	_, err := RenderWindow(nil, 0, day(0))
	assert.True(t, errors.Is(err, ErrInvalidWindow))

	_, err = RenderWindow([]schema.Snapshot{snap(1, 2, 2), snap(1, 3, 1)}, 3, day(1))
	assert.ErrorIs(t, err, ErrInconsistentHistory)
}

func TestEndToEndMergeAndRender(t *testing.T) {
	history := []schema.Snapshot{snap(-2, 100, 100), snap(-1, 110, 10)}

	merged, err := MergeLive(history, 125, day(0))
	require.NoError(t, err)
	rendered, err := RenderWindow(merged, 3, day(0))
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		schema.DayKey(day(-2)): 100,
		schema.DayKey(day(-1)): 110,
		schema.DayKey(day(0)):  125,
	}, rendered.Accumulated)
	assert.Equal(t, map[string]int64{
		schema.DayKey(day(-2)): 100,
		schema.DayKey(day(-1)): 10,
		schema.DayKey(day(0)):  15,
	}, rendered.Unique)
	assert.Equal(t, int64(125), rendered.Total)
}

// FuzzRenderWindow checks that any valid history renders exactly windowDays contiguous days.
func FuzzRenderWindow(f *testing.F) {
	f.Add(uint8(30), uint8(3), int64(10), int64(5), uint8(2))
	f.Add(uint8(1), uint8(0), int64(0), int64(0), uint8(0))
	f.Add(uint8(90), uint8(40), int64(1_000_000), int64(-3), uint8(7))

	f.Fuzz(func(t *testing.T, window, count uint8, start, step int64, gap uint8) {
		n := int(window)%120 + 1
		var history []schema.Snapshot
		total := start
		offset := -int(count)
		for range int(count) % 60 {
			var err error
			history, _, err = Upsert(history, schema.Snapshot{Metric: "m", Date: day(offset), CumulativeTotal: total})
			if err != nil {
				t.Fatalf("upsert: %v", err)
			}
			offset += int(gap)%5 + 1
			total += step
		}

		rendered, err := RenderWindow(history, n, day(0))
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if len(rendered.Accumulated) != n || len(rendered.Unique) != n {
			t.Fatalf("expected %d days, got %d/%d", n, len(rendered.Accumulated), len(rendered.Unique))
		}
		for _, d := range schema.WindowDays(day(0), n) {
			if _, ok := rendered.Accumulated[schema.DayKey(d)]; !ok {
				t.Fatalf("missing day %s", schema.DayKey(d))
			}
		}
	})
}
