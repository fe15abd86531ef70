package series

import (
	"fmt"
	"time"

	"github.com/huangsam/hubstats/schema"
)

// RenderWindow renders the windowDays calendar days ending at asOf.
//
// Unique holds each day's recorded delta, or 0 on gap days. Accumulated carries the last
// observed total forward, starting from the newest snapshot before the window, and is 0
// until any data exists. Snapshots after asOf are ignored.
func RenderWindow(history []schema.Snapshot, windowDays int, asOf time.Time) (schema.RenderedSeries, error) {
	if windowDays < 1 {
		return schema.RenderedSeries{}, fmt.Errorf("%w: %d days", ErrInvalidWindow, windowDays)
	}
	if err := CheckHistory(history); err != nil {
		return schema.RenderedSeries{}, err
	}

	days := schema.WindowDays(asOf, windowDays)
	accumulated := make(map[string]int64, windowDays)
	unique := make(map[string]int64, windowDays)

	var carried int64
	i := 0
	for i < len(history) && schema.Day(history[i].Date).Before(days[0]) {
		carried = history[i].CumulativeTotal
		i++
	}

	for _, day := range days {
		key := schema.DayKey(day)
		unique[key] = 0
		if i < len(history) && schema.SameDay(history[i].Date, day) {
			carried = history[i].CumulativeTotal
			unique[key] = history[i].DailyDelta
			i++
		}
		accumulated[key] = carried
	}

	return schema.RenderedSeries{
		Metric:      metricOf(history),
		AsOf:        days[len(days)-1],
		WindowDays:  windowDays,
		Accumulated: accumulated,
		Unique:      unique,
		Total:       carried,
	}, nil
}
