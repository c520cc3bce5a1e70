package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter is a fake implementation of osProvider. It captures the last
// written file and rename instead of touching the filesystem.
type fakeWriter struct {
	name      string
	data      []byte
	renamedTo string
	err       error
}

func (fw *fakeWriter) WriteFile(name string, data []byte, perm os.FileMode) error {
	fw.name = name
	fw.data = data

	return fw.err
}

func (fw *fakeWriter) Rename(oldpath, newpath string) error {
	if oldpath == fw.name {
		fw.name = newpath
	}
	fw.renamedTo = newpath

	return nil
}

// TestFinalize_SingleRun tests that a single-run report stays flat.
func TestFinalize_SingleRun(t *testing.T) {
	t.Parallel()

	rpt := NewReport("nas01", Config{Mode: ModeSynthetic})
	rpt.AddRun(RunResult{
		LargeFile: PhaseMetrics{Upload: &Metrics{Seconds: 2.0, MBPerSec: 50.0}},
	})

	rpt.Finalize()

	require.NotNil(t, rpt.LargeFile.Upload)
	assert.InDelta(t, 50.0, rpt.LargeFile.Upload.MBPerSec, 0.0001)
	assert.Nil(t, rpt.Runs)
	assert.Nil(t, rpt.Summary)
}

// TestFinalize_MultiRun tests that multi-run reports keep all runs and get an
// aggregation summary.
func TestFinalize_MultiRun(t *testing.T) {
	t.Parallel()

	rpt := NewReport("nas01", Config{Mode: ModeSynthetic})
	rpt.AddRun(RunResult{LargeFile: PhaseMetrics{Upload: &Metrics{Seconds: 2.0}}})
	rpt.AddRun(RunResult{LargeFile: PhaseMetrics{Upload: &Metrics{Seconds: 4.0}}})

	rpt.Finalize()

	require.NotNil(t, rpt.LargeFile.Upload)
	assert.InDelta(t, 2.0, rpt.LargeFile.Upload.Seconds, 0.0001)

	assert.Len(t, rpt.Runs, 2)

	require.NotNil(t, rpt.Summary)
	require.NotNil(t, rpt.Summary.LargeFile.Upload)
	assert.InDelta(t, 3.0, rpt.Summary.LargeFile.Upload.Avg.Seconds, 0.0001)
}

// TestFinalize_NoRuns tests that an empty report survives finalization.
func TestFinalize_NoRuns(t *testing.T) {
	t.Parallel()

	rpt := NewReport("nas01", Config{Mode: ModeSynthetic})
	rpt.Finalize()

	assert.Nil(t, rpt.LargeFile.Upload)
	assert.Nil(t, rpt.Runs)
	assert.Nil(t, rpt.Summary)
}

// TestWrite_Success tests the serialization into the report file format.
func TestWrite_Success(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	handler := NewHandler(fw)

	rpt := NewReport("nas01", Config{
		Mode:            ModeSynthetic,
		LargeFileMB:     1000,
		SmallFilesCount: 500,
		SmallMinKB:      10,
		SmallMaxKB:      100,
	})
	rpt.AddRun(RunResult{
		LargeFile:  PhaseMetrics{Upload: &Metrics{Seconds: 2.0, Mbps: 400.0, MBPerSec: 50.0, MiBPerSec: 47.68, FilesPerSec: 0.5}},
		SmallFiles: PhaseMetrics{Download: &Metrics{Seconds: 1.0, FilesPerSec: 500.0}},
	})
	rpt.Finalize()

	path, err := handler.Write("/reports", rpt)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/reports/SMB_Report_nas01_"))
	assert.True(t, strings.HasSuffix(path, ".json"))
	assert.Equal(t, path, fw.renamedTo, "report should be renamed into place")
	assert.Equal(t, path, fw.name)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fw.data, &decoded))

	assert.Equal(t, "nas01", decoded["test_name"])
	assert.Contains(t, decoded, "timestamp")
	assert.Contains(t, decoded, "config")
	assert.Contains(t, decoded, "large_file")
	assert.Contains(t, decoded, "small_files")
	assert.NotContains(t, decoded, "runs")
	assert.NotContains(t, decoded, "summary")

	config, ok := decoded["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ModeSynthetic, config["mode"])
	assert.InDelta(t, 1000.0, config["large_file_mb"], 0.0001)

	largeFile, ok := decoded["large_file"].(map[string]any)
	require.True(t, ok)

	upload, ok := largeFile["upload"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 50.0, upload["MB_s"], 0.0001)
	assert.InDelta(t, 47.68, upload["MiB_s"], 0.0001)
	assert.InDelta(t, 400.0, upload["mbps"], 0.0001)
	assert.NotContains(t, largeFile, "download")
}

// TestWrite_MultiRunKeys tests that multi-run reports carry the runs array and
// summary block.
func TestWrite_MultiRunKeys(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	handler := NewHandler(fw)

	rpt := NewReport("nas01", Config{Mode: ModeNoGeneration})
	rpt.AddRun(RunResult{LargeFile: PhaseMetrics{Upload: &Metrics{Seconds: 2.0}}})
	rpt.AddRun(RunResult{LargeFile: PhaseMetrics{Upload: &Metrics{Seconds: 4.0}}})
	rpt.Finalize()

	_, err := handler.Write("/reports", rpt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fw.data, &decoded))

	assert.Contains(t, decoded, "runs")
	assert.Contains(t, decoded, "summary")

	runs, ok := decoded["runs"].([]any)
	require.True(t, ok)
	assert.Len(t, runs, 2)
}
