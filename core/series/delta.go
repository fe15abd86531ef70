package series

import (
	"sort"
	"time"

	"github.com/huangsam/hubstats/schema"
)

// ComputeDelta returns the growth between a prior total and the current one.
// With no prior total the whole current total counts as growth. Negative results are kept.
func ComputeDelta(prior *int64, current int64) int64 {
	if prior == nil {
		return current
	}
	return current - *prior
}

// PriorTo returns the last snapshot dated strictly before day.
func PriorTo(history []schema.Snapshot, day time.Time) (schema.Snapshot, bool) {
	pos := searchDay(history, day)
	if pos == 0 {
		return schema.Snapshot{}, false
	}
	return history[pos-1], true
}

// searchDay returns the index of the first snapshot not before day.
func searchDay(history []schema.Snapshot, day time.Time) int {
	d := schema.Day(day)
	return sort.Search(len(history), func(i int) bool {
		return !schema.Day(history[i].Date).Before(d)
	})
}
