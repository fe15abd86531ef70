// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

// OutWriter provides a unified interface for all output operations.
// It lets the core and the MCP server share one rendering surface.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteDashboard prints the dashboard using the configured output format.
func (ow *OutWriter) WriteDashboard(d schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	return PrintDashboard(d, cfg, duration)
}

// WriteSeries prints one rendered series using the configured output format.
func (ow *OutWriter) WriteSeries(rs schema.RenderedSeries, cfg *contract.Config) error {
	return PrintSeries(rs, cfg)
}

// WriteIngestReport prints the result of an ingestion run.
func (ow *OutWriter) WriteIngestReport(report schema.IngestReport, cfg *contract.Config, duration time.Duration) error {
	return PrintIngestReport(report, cfg, duration)
}

// WriteRuns prints stored ingestion runs.
func (ow *OutWriter) WriteRuns(runs []schema.IngestRun, cfg *contract.Config) error {
	return PrintRuns(runs, cfg)
}
