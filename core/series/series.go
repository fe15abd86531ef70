// Package series reconciles sparse daily counter snapshots into contiguous calendar windows.
//
// Every function in this package is pure: inputs are never mutated, no clock is read and
// no I/O happens. Histories must be sorted by ascending day with at most one snapshot per
// day; anything else is rejected with ErrInconsistentHistory.
package series

import (
	"errors"
	"fmt"

	"github.com/huangsam/hubstats/schema"
)

// ErrInconsistentHistory is returned when a history is unsorted or has duplicate days.
var ErrInconsistentHistory = errors.New("inconsistent history")

// ErrInvalidWindow is returned when a window of fewer than one day is requested.
var ErrInvalidWindow = errors.New("invalid window")

// CheckHistory verifies that history is strictly ascending by UTC calendar day.
func CheckHistory(history []schema.Snapshot) error {
	for i := 1; i < len(history); i++ {
		prev := schema.Day(history[i-1].Date)
		curr := schema.Day(history[i].Date)
		if !curr.After(prev) {
			return fmt.Errorf("%w: snapshot %d of %s dated %s does not follow %s",
				ErrInconsistentHistory, i, history[i].Metric, schema.DayKey(curr), schema.DayKey(prev))
		}
	}
	return nil
}

// metricOf returns the metric name carried by a history, or an empty string.
func metricOf(history []schema.Snapshot) string {
	if len(history) == 0 {
		return ""
	}
	return history[0].Metric
}
