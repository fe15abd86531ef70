package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/huangsam/hubstats/core/series"
	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/logger"
	"github.com/huangsam/hubstats/schema"
)

// BuildDashboard renders the window for every configured source.
// When live is set, each source is fetched once and its total overrides the as-of day;
// a failed fetch leaves that metric on stored history and lists it under Degraded.
func BuildDashboard(ctx context.Context, cfg *contract.Config, store contract.SnapshotStore, sources []contract.CounterSource, live bool) (schema.Dashboard, error) {
	if store == nil {
		return schema.Dashboard{}, fmt.Errorf("snapshot store is not initialized")
	}
	asOf := schema.Day(cfg.AsOf)

	metricIDs := make([]string, len(sources))
	for i, src := range sources {
		metricIDs[i] = src.Metric().ID
	}

	liveTotals := map[string]series.LiveTotal{}
	infos := map[string]*schema.RepositoryInfo{}
	if live {
		for _, fr := range fetchAll(ctx, sources, cfg.Workers, true) {
			liveTotals[fr.Metric.ID] = series.LiveTotal{Total: fr.Total, Err: fr.Err}
			if fr.Info != nil {
				infos[fr.Metric.ID] = fr.Info
			}
		}
	}

	stored := 0
	load := func(metric string) ([]schema.Snapshot, error) {
		history, err := store.ListSnapshots(ctx, metric)
		stored += len(history)
		return history, err
	}

	rec, err := series.ReconcileAll(metricIDs, load, liveTotals, cfg.WindowDays, asOf)
	if err != nil {
		return schema.Dashboard{}, err
	}

	d := schema.Dashboard{
		AsOf:     asOf,
		Degraded: make(map[string]string, len(rec.Degraded)),
	}
	for metric, err := range rec.Degraded {
		d.Degraded[metric] = err.Error()
		logger.Warn().Err(err).Str("metric", metric).Msg("rendering from stored history only")
	}

	today := schema.DayKey(asOf)
	var pullsWindow int64
	for _, src := range sources {
		m := src.Metric()
		rs := rec.Series[m.ID]
		d.Series = append(d.Series, rs)
		d.Cards = append(d.Cards, schema.RepositoryCard{Metric: m, Info: infos[m.ID], Total: rs.Total})

		switch m.Kind {
		case schema.PullsKind:
			d.Stats.TotalPulls += rs.Total
			d.Stats.PullsToday += rs.Unique[today]
			pullsWindow += rs.UniqueSum()
		case schema.StarsKind:
			d.Stats.TotalStars += rs.Total
			d.Stats.StarsToday += rs.Unique[today]
		}
	}

	d.Stats.TrackedMetrics = len(sources)
	d.Stats.DegradedMetrics = len(d.Degraded)
	d.Stats.WindowDays = cfg.WindowDays
	d.Stats.SnapshotsInStore = stored
	if cfg.WindowDays > 0 {
		d.Stats.AveragePullsDay = int64(math.Round(float64(pullsWindow) / float64(cfg.WindowDays)))
	}
	return d, nil
}

// BuildSeries renders the window of a single metric. The live override applies only when
// live is set and a configured source feeds the metric.
func BuildSeries(ctx context.Context, cfg *contract.Config, store contract.SnapshotStore, sources []contract.CounterSource, metricID string, live bool) (schema.RenderedSeries, error) {
	if store == nil {
		return schema.RenderedSeries{}, fmt.Errorf("snapshot store is not initialized")
	}
	m, err := schema.ParseMetricID(metricID)
	if err != nil {
		return schema.RenderedSeries{}, err
	}

	liveTotals := map[string]series.LiveTotal{}
	src, tracked := sourceFor(sources, m.ID)
	if live && tracked {
		fr := fetchOne(ctx, src, false)
		liveTotals[m.ID] = series.LiveTotal{Total: fr.Total, Err: fr.Err}
	}

	empty := false
	load := func(metric string) ([]schema.Snapshot, error) {
		history, err := store.ListSnapshots(ctx, metric)
		empty = len(history) == 0
		return history, err
	}

	rec, err := series.ReconcileAll([]string{m.ID}, load, liveTotals, cfg.WindowDays, schema.Day(cfg.AsOf))
	if err != nil {
		return schema.RenderedSeries{}, err
	}
	if empty && !tracked {
		return schema.RenderedSeries{}, fmt.Errorf("no snapshots found for metric %s", m.ID)
	}
	if err, degraded := rec.Degraded[m.ID]; degraded {
		logger.Warn().Err(err).Str("metric", m.ID).Msg("rendering from stored history only")
	}
	return rec.Series[m.ID], nil
}

// IsLiveDay reports whether the as-of day is the current UTC day, the only day a live total
// can describe.
func IsLiveDay(cfg *contract.Config, now time.Time) bool {
	return schema.SameDay(cfg.AsOf, now)
}
