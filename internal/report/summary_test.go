package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRenderSummary_Success tests the console table for a full single run.
func TestRenderSummary_Success(t *testing.T) {
	t.Parallel()

	rpt := NewReport("nas01", Config{Mode: ModeSynthetic})
	rpt.AddRun(RunResult{
		LargeFile: PhaseMetrics{
			Upload:   &Metrics{Seconds: 2.0, Mbps: 400.0, MBPerSec: 50.0},
			Download: &Metrics{Seconds: 1.0, Mbps: 800.0, MBPerSec: 100.0},
		},
		SmallFiles: PhaseMetrics{
			Upload:   &Metrics{Seconds: 5.0, MBPerSec: 5.5, FilesPerSec: 100.0},
			Download: &Metrics{Seconds: 2.5, MBPerSec: 11.0, FilesPerSec: 200.0},
		},
	})
	rpt.Finalize()

	var buf bytes.Buffer
	RenderSummary(&buf, rpt)

	out := buf.String()

	assert.Contains(t, out, "SUMMARY: nas01")
	assert.Contains(t, out, "Large File Seq")
	assert.Contains(t, out, "Small File Rand")
	assert.Contains(t, out, "50.00 MB/s (400.00 Mbps)")
	assert.Contains(t, out, "100.00 MB/s (800.00 Mbps)")
	assert.Contains(t, out, "100.0 files/s (5.50 MB/s)")
	assert.Contains(t, out, "200.0 files/s (11.00 MB/s)")
	assert.NotContains(t, out, skippedCell)
	assert.NotContains(t, out, "no-generation")
}

// TestRenderSummary_SkippedPhases tests the rendering of skipped phases.
func TestRenderSummary_SkippedPhases(t *testing.T) {
	t.Parallel()

	rpt := NewReport("nas01", Config{Mode: ModeNoGeneration})
	rpt.AddRun(RunResult{
		LargeFile: PhaseMetrics{
			Upload: &Metrics{Seconds: 2.0, Mbps: 400.0, MBPerSec: 50.0},
		},
	})
	rpt.Finalize()

	var buf bytes.Buffer
	RenderSummary(&buf, rpt)

	out := buf.String()

	assert.Contains(t, out, skippedCell)
	assert.Contains(t, out, "(no-generation mode, real files used)")
}

// TestRenderSummary_MultiRun tests the aggregation footnote.
func TestRenderSummary_MultiRun(t *testing.T) {
	t.Parallel()

	rpt := NewReport("nas01", Config{Mode: ModeSynthetic})
	rpt.AddRun(RunResult{LargeFile: PhaseMetrics{Upload: &Metrics{Seconds: 2.0, MBPerSec: 50.0}}})
	rpt.AddRun(RunResult{LargeFile: PhaseMetrics{Upload: &Metrics{Seconds: 4.0, MBPerSec: 25.0}}})
	rpt.Finalize()

	var buf bytes.Buffer
	RenderSummary(&buf, rpt)

	assert.Contains(t, buf.String(), "aggregated over 2 runs")
}
