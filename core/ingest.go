package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/hubstats/core/series"
	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/logger"
	"github.com/huangsam/hubstats/internal/metrics"
	"github.com/huangsam/hubstats/internal/notify"
	"github.com/huangsam/hubstats/schema"
)

// Ingester records one snapshot per metric for a calendar day.
type Ingester struct {
	Snapshots contract.SnapshotStore
	Runs      contract.RunStore // optional run bookkeeping
	Notifier  contract.Notifier // optional
	Recorder  *metrics.Recorder // optional
	Workers   int
	Now       func() time.Time // defaults to time.Now
}

func (ing *Ingester) now() time.Time {
	if ing.Now != nil {
		return ing.Now()
	}
	return time.Now()
}

// Run fetches every source and writes the snapshots dated snapshotDate.
//
// A source whose fetch fails is skipped and recorded as upstream_unavailable; the other
// metrics still proceed. A store write failure is recorded as store_failed. An inconsistent
// stored history aborts the run. The returned report covers every metric handled before
// any abort.
func (ing *Ingester) Run(ctx context.Context, sources []contract.CounterSource, snapshotDate time.Time) (schema.IngestReport, error) {
	if ing.Snapshots == nil {
		return schema.IngestReport{}, fmt.Errorf("snapshot store is not initialized")
	}
	snapshotDate = schema.Day(snapshotDate)
	report := schema.IngestReport{SnapshotDate: snapshotDate}

	runs := ing.Runs
	if runs != nil {
		runID, err := runs.BeginRun(ctx, ing.now(), snapshotDate)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to begin ingest run, continuing without run tracking")
			runs = nil
		} else {
			report.RunID = runID
		}
	}

	notifying := notifierEnabled(ing.Notifier)
	var fatal error
	var storeFailures, upstreamFailures int

	for _, fr := range fetchAll(ctx, sources, ing.Workers, false) {
		res := schema.MetricResult{Metric: fr.Metric.ID}
		if ing.Recorder != nil {
			ing.Recorder.ObserveFetch(fr.Elapsed)
		}

		if fr.Err != nil {
			res.Outcome = schema.OutcomeUpstreamUnavailable
			res.Error = fr.Err.Error()
			upstreamFailures++
		} else {
			snap, err := ing.persist(ctx, fr.Metric.ID, fr.Total, snapshotDate)
			switch {
			case errors.Is(err, series.ErrInconsistentHistory):
				fatal = fmt.Errorf("failed to ingest %s: %w", fr.Metric.ID, err)
			case err != nil:
				res.Outcome = schema.OutcomeStoreFailed
				res.Error = err.Error()
				storeFailures++
				logger.Error().Err(err).Str("metric", fr.Metric.ID).Msg("failed to store snapshot")
			default:
				res.Outcome = schema.OutcomeOK
				res.CumulativeTotal = snap.CumulativeTotal
				res.DailyDelta = snap.DailyDelta
				logger.Info().Str("metric", fr.Metric.ID).Str("date", schema.DayKey(snapshotDate)).
					Int64("total", snap.CumulativeTotal).Int64("delta", snap.DailyDelta).Msg("snapshot stored")
				if notifying && ing.notify(ctx, fr.Metric, snap) {
					report.Notified++
				}
			}
		}
		if fatal != nil {
			break
		}

		report.Results = append(report.Results, res)
		if ing.Recorder != nil {
			ing.Recorder.RecordResult(res)
		}
		if runs != nil && report.RunID != 0 {
			if err := runs.RecordOutcome(ctx, report.RunID, res); err != nil {
				logger.Warn().Err(err).Str("metric", res.Metric).Msg("failed to record run outcome")
			}
		}
	}

	finished := ing.now()
	if runs != nil && report.RunID != 0 {
		if err := runs.EndRun(ctx, report.RunID, finished, report.Written()); err != nil {
			logger.Warn().Err(err).Int64("run", report.RunID).Msg("failed to end ingest run")
		}
	}
	if ing.Recorder != nil {
		ing.Recorder.MarkFinished(finished)
	}

	switch {
	case fatal != nil:
		return report, fatal
	case storeFailures > 0:
		return report, fmt.Errorf("failed to store %d of %d snapshots", storeFailures, len(sources))
	case len(sources) > 0 && upstreamFailures == len(sources):
		return report, fmt.Errorf("every upstream fetch failed: %w", contract.ErrUpstreamUnavailable)
	}
	return report, nil
}

// persist upserts the day's total and the successor whose delta it changes, in one write.
func (ing *Ingester) persist(ctx context.Context, metric string, total int64, day time.Time) (schema.Snapshot, error) {
	history, err := ing.Snapshots.ListSnapshots(ctx, metric)
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("failed to load history: %w", err)
	}
	_, changed, err := series.Upsert(history, schema.Snapshot{
		Metric:          metric,
		Date:            day,
		CumulativeTotal: total,
	})
	if err != nil {
		return schema.Snapshot{}, err
	}
	if err := ing.Snapshots.UpsertSnapshots(ctx, changed...); err != nil {
		return schema.Snapshot{}, fmt.Errorf("failed to upsert snapshots: %w", err)
	}
	return changed[0], nil
}

// notify delivers one notification. Failures are logged and never propagated.
func (ing *Ingester) notify(ctx context.Context, m schema.Metric, snap schema.Snapshot) bool {
	err := ing.Notifier.Notify(ctx, schema.Notification{
		Metric:          m,
		Date:            snap.Date,
		DailyDelta:      snap.DailyDelta,
		CumulativeTotal: snap.CumulativeTotal,
	})
	if err != nil {
		logger.Warn().Err(err).Str("metric", m.ID).Msg("notification failed")
		return false
	}
	return true
}

func notifierEnabled(n contract.Notifier) bool {
	if n == nil {
		return false
	}
	_, noop := n.(notify.Noop)
	return !noop
}
