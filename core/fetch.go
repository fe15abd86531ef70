package core

import (
	"context"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/logger"
	"github.com/huangsam/hubstats/schema"
	"golang.org/x/sync/errgroup"
)

// fetchResult is the outcome of reading one counter from upstream.
type fetchResult struct {
	Metric  schema.Metric
	Total   int64
	Info    *schema.RepositoryInfo // set when the source described its repository
	Err     error
	Elapsed time.Duration
}

// fetchAll reads every source with at most workers requests in flight.
// Results keep the order of sources. A failing source never cancels the others.
func fetchAll(ctx context.Context, sources []contract.CounterSource, workers int, withInfo bool) []fetchResult {
	results := make([]fetchResult, len(sources))
	if workers <= 0 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = fetchOne(ctx, src, withInfo)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fetchOne reads a single source, preferring the repository description when asked for it.
func fetchOne(ctx context.Context, src contract.CounterSource, withInfo bool) fetchResult {
	start := time.Now()
	res := fetchResult{Metric: src.Metric()}

	if rs, ok := src.(contract.RepositorySource); ok && withInfo {
		info, err := rs.FetchRepository(ctx)
		if err == nil {
			res.Total = info.Count
			res.Info = &info
		}
		res.Err = err
	} else {
		res.Total, res.Err = src.FetchCurrentTotal(ctx)
	}
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		logger.Warn().Err(res.Err).Str("metric", res.Metric.ID).Dur("elapsed", res.Elapsed).Msg("upstream fetch failed")
	} else {
		logger.Debug().Str("metric", res.Metric.ID).Int64("total", res.Total).Dur("elapsed", res.Elapsed).Msg("upstream fetch")
	}
	return res
}

// sourceFor returns the configured source feeding metricID, if any.
func sourceFor(sources []contract.CounterSource, metricID string) (contract.CounterSource, bool) {
	for _, src := range sources {
		if src.Metric().ID == metricID {
			return src, true
		}
	}
	return nil, false
}
