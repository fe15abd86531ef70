package series

import (
	"time"

	"github.com/huangsam/hubstats/schema"
)

// Upsert places snap into history, replacing any snapshot on the same day.
// The delta of snap is recomputed against its predecessor, and the delta of its
// successor (if any) against snap, so out-of-order backfills keep every delta correct.
// It returns the new history and the snapshots whose stored values changed.
func Upsert(history []schema.Snapshot, snap schema.Snapshot) (updated, changed []schema.Snapshot, err error) {
	if err := CheckHistory(history); err != nil {
		return nil, nil, err
	}

	snap.Date = schema.Day(snap.Date)
	pos := searchDay(history, snap.Date)
	rest := history[pos:]
	if len(rest) > 0 && schema.SameDay(rest[0].Date, snap.Date) {
		rest = rest[1:]
	}

	var prior *int64
	if pos > 0 {
		total := history[pos-1].CumulativeTotal
		prior = &total
	}
	snap.DailyDelta = ComputeDelta(prior, snap.CumulativeTotal)

	updated = make([]schema.Snapshot, 0, pos+1+len(rest))
	updated = append(updated, history[:pos]...)
	updated = append(updated, snap)
	changed = append(changed, snap)

	if len(rest) > 0 {
		next := rest[0]
		total := snap.CumulativeTotal
		delta := ComputeDelta(&total, next.CumulativeTotal)
		if delta != next.DailyDelta {
			next.DailyDelta = delta
			changed = append(changed, next)
		}
		updated = append(updated, next)
		updated = append(updated, rest[1:]...)
	}
	return updated, changed, nil
}

// MergeLive overlays a render-time total for today onto a copy of history.
// An existing snapshot for today gets the live total and a delta recomputed against the
// snapshot before it; otherwise a synthetic snapshot for today is added.
func MergeLive(history []schema.Snapshot, liveTotal int64, today time.Time) ([]schema.Snapshot, error) {
	live := schema.Snapshot{
		Metric:          metricOf(history),
		Date:            today,
		CumulativeTotal: liveTotal,
	}
	merged, _, err := Upsert(history, live)
	if err != nil {
		return nil, err
	}
	return merged, nil
}
