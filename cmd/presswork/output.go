package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"presswork/internal/history"
)

// summaryRow is one field of a rendered result.
type summaryRow struct {
	Field string
	Value string
}

// writeSummary renders rows as a table on terminals and as key=value lines
// otherwise, so scripts get stable output.
func writeSummary(w io.Writer, title string, rows []summaryRow) {
	if useTable(w) {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(title)
		t.AppendHeader(table.Row{"Field", "Value"})
		for _, row := range rows {
			t.AppendRow(table.Row{row.Field, row.Value})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s=%s\n", row.Field, row.Value)
	}
}

// writeHistory renders recorded runs newest first. The counts column is a
// compact per-kind breakdown since the three run kinds share no counters.
func writeHistory(w io.Writer, runs []history.Run) {
	if useTable(w) {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Started", "Kind", "Status", "Duration", "Counts"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				run.Kind,
				run.Status,
				run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
				historyCounts(run),
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s kind=%s status=%s %s\n",
			run.StartedAt.UTC().Format(time.RFC3339), run.Kind, run.Status, historyCounts(run))
	}
}

func historyCounts(run history.Run) string {
	switch run.Kind {
	case "reconcile":
		return fmt.Sprintf("inflight=%d intake=%d", run.MovedFromInFlight, run.MovedFromIntake)
	case "protect":
		return fmt.Sprintf("encrypted=%d copied=%d skipped=%d failed=%d",
			run.Encrypted, run.Copied, run.Skipped, run.Failed)
	default:
		return fmt.Sprintf("acquired=%d ok=%d failed=%d skipped=%d",
			run.Acquired, run.Successes, run.Failures, run.SkippedExisting)
	}
}

func useTable(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func itoa(v int) string {
	return fmt.Sprintf("%d", v)
}
