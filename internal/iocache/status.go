package iocache

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/huangsam/leaguerank/schema"
	"github.com/olekukonko/tablewriter"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus prints interval cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(w io.Writer, status schema.RunStatus) {
	_, _ = fmt.Fprintf(w, "Runs Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %s\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Total Team Predictions: %d\n", status.TotalPredictions)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// PrintRuns renders stored runs as a table, newest first.
func PrintRuns(w io.Writer, runs []schema.PredictionRunRecord) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run ID", "Year", "Started", "Duration", "Teams", "Failed", "Bootstrap", "R²"})
	data := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration, r2 := "-", "-"
		if run.RunDurationMs != nil {
			duration = strconv.FormatInt(*run.RunDurationMs, 10) + "ms"
		}
		if run.RSquared != nil {
			r2 = strconv.FormatFloat(*run.RSquared, 'f', 3, 64)
		}
		data = append(data, []string{
			run.RunID,
			strconv.Itoa(run.PredictionYear),
			run.StartTime.Local().Format(statusTimeLayout),
			duration,
			strconv.Itoa(run.TotalTeams),
			strconv.Itoa(run.FailedTeams),
			strconv.Itoa(run.Bootstrap),
			r2,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
