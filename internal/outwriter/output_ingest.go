package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/parquet"
	"github.com/huangsam/hubstats/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintIngestReport outputs the per-metric results of an ingestion run.
func PrintIngestReport(report schema.IngestReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON ingest report"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultsCSV(w, report.Results)
		}, "Wrote CSV ingest report"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		if err := writeResultsTable(os.Stdout, report.Results, cfg); err != nil {
			return fmt.Errorf("error writing ingest table output: %w", err)
		}
		_, _ = fmt.Printf("Ingestion run %d for %s wrote %d of %d snapshots in %v (%d notified). Store backend: %s\n",
			report.RunID, schema.DayKey(report.SnapshotDate), report.Written(), len(report.Results), duration, report.Notified, cfg.StoreBackend)
	}
	return nil
}

// PrintRuns outputs stored ingestion runs, newest first.
func PrintRuns(runs []schema.IngestRun, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON runs"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunsCSV(w, runs)
		}, "Wrote CSV runs"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		if err := parquet.WriteOutcomesParquet(parquet.ConvertRuns(runs), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet runs to %s\n", cfg.OutputFile)
	default:
		if err := writeRunsTable(os.Stdout, runs); err != nil {
			return fmt.Errorf("error writing runs table output: %w", err)
		}
	}
	return nil
}

func writeResultsCSV(w io.Writer, results []schema.MetricResult) error {
	header := []string{"metric", "outcome", "cumulative_total", "daily_delta", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			row := []string{
				r.Metric,
				string(r.Outcome),
				strconv.FormatInt(r.CumulativeTotal, 10),
				strconv.FormatInt(r.DailyDelta, 10),
				r.Error,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeResultsTable(w io.Writer, results []schema.MetricResult, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Outcome", "Total", "Δ", "Error"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxTableLabelWidth(cfg)
	data := make([][]string, 0, len(results))
	for _, r := range results {
		total, delta := "-", "-"
		if r.Outcome == schema.OutcomeOK {
			total = contract.FormatCount(r.CumulativeTotal)
			delta = formatDelta(r.DailyDelta, cfg.UseColors)
		}
		data = append(data, []string{
			r.Metric,
			string(r.Outcome),
			total,
			delta,
			contract.TruncateText(r.Error, maxWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeRunsCSV(w io.Writer, runs []schema.IngestRun) error {
	header := []string{"run_id", "start_time", "end_time", "snapshot_date", "snapshots_written", "failed"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, run := range runs {
			end := ""
			if run.EndTime != nil {
				end = run.EndTime.Format(contract.DateTimeFormat)
			}
			row := []string{
				strconv.FormatInt(run.ID, 10),
				run.StartTime.Format(contract.DateTimeFormat),
				end,
				schema.DayKey(run.SnapshotDate),
				strconv.Itoa(run.SnapshotsWritten),
				strconv.Itoa(failedOutcomes(run)),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRunsTable(w io.Writer, runs []schema.IngestRun) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Started", "Duration", "Snapshot Date", "Written", "Failed"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "running"
		if run.EndTime != nil {
			duration = run.EndTime.Sub(run.StartTime).String()
		}
		data = append(data, []string{
			strconv.FormatInt(run.ID, 10),
			formatTime(run.StartTime, contract.DateTimeFormat),
			duration,
			schema.DayKey(run.SnapshotDate),
			strconv.Itoa(run.SnapshotsWritten),
			strconv.Itoa(failedOutcomes(run)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// failedOutcomes counts recorded outcomes other than ok.
func failedOutcomes(run schema.IngestRun) int {
	n := 0
	for _, o := range run.Outcomes {
		if o.Outcome != schema.OutcomeOK {
			n++
		}
	}
	return n
}
