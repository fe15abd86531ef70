package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/parquet"
	"github.com/huangsam/hubstats/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintSeries outputs one metric's window, dispatching based on the output format configured.
func PrintSeries(rs schema.RenderedSeries, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rs)
		}, "Wrote JSON series"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesCSV(w, []schema.RenderedSeries{rs})
		}, "Wrote CSV series"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesHTML(w, rs)
		}, "Wrote HTML series"); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteSnapshots(w, renderedRecords([]schema.RenderedSeries{rs}))
		}, "Wrote Parquet series"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeSeriesTable(os.Stdout, rs, cfg); err != nil {
			return fmt.Errorf("error writing series table output: %w", err)
		}
	}
	return nil
}

// writeSeriesTable prints one row per window day.
func writeSeriesTable(w io.Writer, rs schema.RenderedSeries, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "Total", "Δ"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	days := rs.Days()
	data := make([][]string, 0, len(days))
	for _, d := range days {
		key := schema.DayKey(d)
		total := contract.FormatCount(rs.Accumulated[key])
		if rs.Live && d.Equal(schema.Day(rs.AsOf)) && cfg.UseColors {
			total = contract.LiveColor.Sprint(total)
		}
		data = append(data, []string{key, total, formatDelta(rs.Unique[key], cfg.UseColors)})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	source := "history"
	if rs.Live {
		source = "history + live"
	}
	_, _ = fmt.Fprintf(w, "%s: total %s over %d days ending %s (%s)\n",
		rs.Metric, contract.FormatCount(rs.Total), rs.WindowDays, schema.DayKey(rs.AsOf), source)
	return nil
}
