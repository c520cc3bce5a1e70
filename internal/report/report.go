// Package report implements the benchmark result model, the derived metric
// arithmetic, multi-run aggregation and the emission of the JSON report and
// console summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ModeSynthetic marks a report whose dataset was generated by the tool.
	ModeSynthetic = "SYNTHETIC (Generated)"

	// ModeNoGeneration marks a report measured against pre-existing real files.
	ModeNoGeneration = "NO-GENERATION (Real Files)"
)

type osProvider interface {
	Rename(oldpath, newpath string) error
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Config is the dataset configuration block of a [Report]. It reflects the
// dataset as measured on disk, which in no-generation mode can differ from
// the requested settings.
type Config struct {
	Mode              string  `json:"mode"`
	LargeFileMB       float64 `json:"large_file_mb"`
	SmallFilesCount   int     `json:"small_files_count"`
	SmallMinKB        float64 `json:"small_min_kb"`
	SmallMaxKB        float64 `json:"small_max_kb"`
	TotalSmallFilesMB float64 `json:"total_small_files_mb"`
}

// PhaseMetrics pairs the upload and download [Metrics] of one test. A nil
// direction means the phase was skipped.
type PhaseMetrics struct {
	Upload   *Metrics `json:"upload,omitempty"`
	Download *Metrics `json:"download,omitempty"`
}

// RunResult holds the measurements of one complete benchmark run.
type RunResult struct {
	LargeFile  PhaseMetrics `json:"large_file"`
	SmallFiles PhaseMetrics `json:"small_files"`
}

// Report is the principal structure serialized into the JSON report file.
// The embedded [RunResult] carries the first run, keeping single-run reports
// flat; multi-run reports additionally carry all runs and a [Summary].
type Report struct {
	TestName  string `json:"test_name"`
	Timestamp string `json:"timestamp"`
	Config    Config `json:"config"`

	RunResult

	Runs    []RunResult `json:"runs,omitempty"`
	Summary *Summary    `json:"summary,omitempty"`
}

// NewReport returns a pointer to a new [Report], stamped with the current
// time.
func NewReport(testName string, config Config) *Report {
	return &Report{
		TestName:  testName,
		Timestamp: time.Now().Format(time.RFC3339),
		Config:    config,
	}
}

// AddRun appends the measurements of one completed run to the [Report].
func (r *Report) AddRun(run RunResult) {
	r.Runs = append(r.Runs, run)
}

// Finalize folds the collected runs into their final report shape: the first
// run populates the flat result fields, and reports of more than one run get
// the per-metric min/max/avg [Summary]. Single-run reports drop the runs
// array, matching the flat single-run layout.
func (r *Report) Finalize() {
	if len(r.Runs) == 0 {
		return
	}

	r.RunResult = r.Runs[0]

	if len(r.Runs) == 1 {
		r.Runs = nil

		return
	}

	r.Summary = newSummary(r.Runs)
}

// Handler is the principal implementation of the report emission layer.
type Handler struct {
	osHandler osProvider
}

// NewHandler returns a pointer to a new report [Handler].
func NewHandler(osHandler osProvider) *Handler {
	return &Handler{
		osHandler: osHandler,
	}
}

// Write serializes a [Report] into an indented JSON file inside reportDir and
// returns the path of the written file. The file is written under a temporary
// name and renamed into place, so a report is never readable half-written.
func (h *Handler) Write(reportDir string, report *Report) (string, error) {
	path := filepath.Join(reportDir, fmt.Sprintf("SMB_Report_%s_%d.json", report.TestName, time.Now().Unix()))

	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return "", fmt.Errorf("(report) failed to marshal: %w", err)
	}

	tmpPath := path + ".tmp"

	if err := h.osHandler.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("(report) failed to write: %w", err)
	}

	if err := h.osHandler.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("(report) failed to move into place: %w", err)
	}

	return path, nil
}
