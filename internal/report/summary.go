package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

const skippedCell = "SKIPPED"

// RenderSummary writes the human-readable result table of a finalized
// [Report] to the given writer.
func RenderSummary(w io.Writer, report *Report) {
	fmt.Fprintf(w, "\nSUMMARY: %s\n", report.TestName)
	if report.Config.Mode == ModeNoGeneration {
		fmt.Fprintln(w, "(no-generation mode, real files used)")
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Upload", "Download"})

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetHeaderLine(true)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.Append([]string{
		"Large File Seq",
		formatRateCell(report.LargeFile.Upload),
		formatRateCell(report.LargeFile.Download),
	})
	table.Append([]string{
		"Small File Rand",
		formatBatchCell(report.SmallFiles.Upload),
		formatBatchCell(report.SmallFiles.Download),
	})

	table.Render()

	if report.Summary != nil {
		fmt.Fprintf(w, "\n(aggregated over %d runs, see report file for min/max/avg)\n", len(report.Runs))
	}
}

// formatRateCell renders throughput-centric metrics (the large file test).
func formatRateCell(m *Metrics) string {
	if m == nil || m.IsZero() {
		return skippedCell
	}

	return fmt.Sprintf("%.2f MB/s (%.2f Mbps)", m.MBPerSec, m.Mbps)
}

// formatBatchCell renders latency-centric metrics (the small files test).
func formatBatchCell(m *Metrics) string {
	if m == nil || m.IsZero() {
		return skippedCell
	}

	return fmt.Sprintf("%.1f files/s (%.2f MB/s)", m.FilesPerSec, m.MBPerSec)
}
