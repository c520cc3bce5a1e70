package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertwitch/sharebench/internal/cleanup"
	"github.com/desertwitch/sharebench/internal/configuration"
	"github.com/desertwitch/sharebench/internal/filesystem"
	"github.com/desertwitch/sharebench/internal/generation"
	"github.com/desertwitch/sharebench/internal/report"
	"github.com/desertwitch/sharebench/internal/transfer"
	"github.com/desertwitch/sharebench/internal/ui"
	"github.com/desertwitch/sharebench/internal/validation"
	"github.com/lmittmann/tint"
)

const (
	remoteSmallDirName = "small_files_remote"
	localTempDirName   = "small_files_temp_down"
)

type osProvider interface {
	RemoveAll(path string) error
}

type App struct {
	settings *configuration.Settings

	osHandler         osProvider
	validationHandler *validation.Handler
	fsHandler         *filesystem.Handler
	genHandler        *generation.Handler
	transferHandler   *transfer.Handler
	cleanupRegistry   *cleanup.Registry
	reportHandler     *report.Handler
	uiHandler         *ui.Handler

	mu     sync.Mutex
	report *report.Report
}

func NewApp(settings *configuration.Settings,
	osHandler osProvider,
	validationHandler *validation.Handler,
	fsHandler *filesystem.Handler,
	genHandler *generation.Handler,
	transferHandler *transfer.Handler,
	cleanupRegistry *cleanup.Registry,
	reportHandler *report.Handler,
	uiHandler *ui.Handler,
) *App {
	return &App{
		settings:          settings,
		osHandler:         osHandler,
		validationHandler: validationHandler,
		fsHandler:         fsHandler,
		genHandler:        genHandler,
		transferHandler:   transferHandler,
		cleanupRegistry:   cleanupRegistry,
		reportHandler:     reportHandler,
		uiHandler:         uiHandler,
	}
}

// Report returns the finalized benchmark report, or nil when the benchmark
// did not get far enough to produce one.
func (app *App) Report() *report.Report {
	app.mu.Lock()
	defer app.mu.Unlock()

	return app.report
}

// Launch runs the complete benchmark workflow: path validation, dataset
// setup, the timed copy phases (once per configured run) and the emission of
// the report. Remote artifacts are cleaned up best-effort in all cases.
func (app *App) Launch(ctx context.Context) error {
	defer func() {
		slog.Info("Cleaning up remote artifacts...")
		if err := app.cleanupRegistry.Run(); err != nil {
			slog.Warn("Cleanup finished with errors.", "err", err)
		}
	}()

	if err := app.prepare(); err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	large, smallSet, err := app.setupDataset(ctx)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	var requiredBytes uint64
	if large != nil {
		requiredBytes += large.Size
	}
	if smallSet != nil {
		requiredBytes += smallSet.TotalSize
	}

	enoughSpace, err := app.fsHandler.HasEnoughFreeSpace(app.settings.TargetPath, requiredBytes)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}
	if !enoughSpace {
		return fmt.Errorf("(app) %w", filesystem.ErrNotEnoughSpace)
	}

	remoteDir := app.settings.RemotePath()

	if err := app.fsHandler.EnsureDirectory(remoteDir); err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	if empty, err := app.fsHandler.IsEmptyFolder(remoteDir); err == nil && !empty {
		slog.Warn("Remote staging directory is not empty, leftovers of a previous run?",
			"path", remoteDir,
		)
	}

	app.cleanupRegistry.Add("remote staging directory", func() error {
		return app.osHandler.RemoveAll(remoteDir)
	})

	rpt := report.NewReport(app.settings.TestName, app.buildConfig(large, smallSet))

	for run := 1; run <= app.settings.Runs; run++ {
		if app.settings.Runs > 1 {
			slog.Info("Starting benchmark run.", "run", run, "of", app.settings.Runs)
		}

		result, err := app.benchmarkRun(ctx, run, remoteDir, large, smallSet)
		if err != nil {
			return fmt.Errorf("(app) %w", err)
		}

		rpt.AddRun(result)
	}

	rpt.Finalize()

	path, err := app.reportHandler.Write(app.settings.ReportPath(), rpt)
	if err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	slog.Info("Detailed report saved.", "path", path)

	app.mu.Lock()
	app.report = rpt
	app.mu.Unlock()

	return nil
}

// LaunchUI starts the user interface, with all logging redirected into it for
// the duration of its lifetime.
func (app *App) LaunchUI(restoreLogging func()) error {
	defer restoreLogging()

	slog.SetDefault(slog.New(
		tint.NewHandler(app.uiHandler.LogWriter, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	if err := app.uiHandler.Launch(); err != nil {
		return fmt.Errorf("(app-ui) %w", err)
	}

	return nil
}

// prepare validates the benchmark paths and creates the local working
// directories, before any data is generated or copied.
func (app *App) prepare() error {
	if err := app.validationHandler.EnsureDirectory(app.settings.SourcePath); err != nil {
		return err
	}

	if err := app.fsHandler.EnsureDirectory(app.settings.StagingPath()); err != nil {
		return err
	}

	if err := app.fsHandler.EnsureDirectory(app.settings.ReportPath()); err != nil {
		return err
	}

	if err := app.validationHandler.EnsureWritableDirectory(app.settings.TargetPath); err != nil {
		return err
	}

	return nil
}

// setupDataset makes sure the large file and the small file batch exist in
// the staging directory, per the configured generation mode. In no-generation
// mode a missing artifact does not fail the benchmark; the affected test is
// skipped (nil) and the remaining tests still run and report.
func (app *App) setupDataset(ctx context.Context) (*generation.LargeFile, *generation.SmallSet, error) {
	stagingDir := app.settings.StagingPath()

	large, err := app.genHandler.EnsureLargeFile(ctx, stagingDir,
		app.settings.LargeFileBytes(), app.settings.NoGeneration)
	if err != nil {
		if !errors.Is(err, generation.ErrLargeFileMissing) {
			return nil, nil, err
		}

		slog.Warn("Skipping large file test.", "err", err)
		large = nil
	}

	smallSet, err := app.genHandler.EnsureSmallFiles(ctx, stagingDir,
		app.settings.SmallFileCount, app.settings.SmallMinBytes(),
		app.settings.SmallMaxBytes(), app.settings.NoGeneration)
	if err != nil {
		if !errors.Is(err, generation.ErrNoSmallFiles) {
			return nil, nil, err
		}

		slog.Warn("Skipping small file test.", "err", err)
		smallSet = nil
	}

	return large, smallSet, nil
}

// buildConfig derives the report configuration block from the dataset as it
// is actually present on disk. Skipped (nil) dataset parts stay zero-valued.
func (app *App) buildConfig(large *generation.LargeFile, smallSet *generation.SmallSet) report.Config {
	mode := report.ModeSynthetic
	if app.settings.NoGeneration {
		mode = report.ModeNoGeneration
	}

	config := report.Config{
		Mode: mode,
	}

	if large != nil {
		config.LargeFileMB = report.BytesToMB(large.Size)
	}

	if smallSet != nil {
		config.SmallFilesCount = len(smallSet.Files)
		config.SmallMinKB = report.BytesToKB(smallSet.MinSize)
		config.SmallMaxKB = report.BytesToKB(smallSet.MaxSize)
		config.TotalSmallFilesMB = report.BytesToMB(smallSet.TotalSize)
	}

	return config
}

// benchmarkRun executes the timed phases of one benchmark run and returns the
// derived per-phase metrics. Tests without a dataset part are left nil, which
// renders them as skipped in the report and summary.
func (app *App) benchmarkRun(ctx context.Context, run int, remoteDir string, large *generation.LargeFile, smallSet *generation.SmallSet) (report.RunResult, error) {
	var result report.RunResult

	if large != nil {
		largeUp, largeDown, err := app.largeFileTest(ctx, run, remoteDir, large)
		if err != nil {
			return result, err
		}

		result.LargeFile.Upload = largeUp
		result.LargeFile.Download = largeDown
	}

	if smallSet != nil {
		smallUp, smallDown, err := app.smallFilesTest(ctx, run, remoteDir, smallSet)
		if err != nil {
			return result, err
		}

		result.SmallFiles.Upload = smallUp
		result.SmallFiles.Download = smallDown
	}

	return result, nil
}

// largeFileTest measures sequential throughput: the large file is uploaded to
// the remote staging directory and downloaded back to a unique local name,
// both copies timed. The per-run artifacts are removed again afterwards.
func (app *App) largeFileTest(ctx context.Context, run int, remoteDir string, large *generation.LargeFile) (*report.Metrics, *report.Metrics, error) {
	slog.Info("Starting large file test (throughput)...")

	remoteLarge := filepath.Join(remoteDir, filepath.Base(large.Path))
	localTemp := filepath.Join(app.settings.StagingPath(), transfer.TempDownloadName())

	app.cleanupRegistry.Add(fmt.Sprintf("local temp download (run %d)", run), func() error {
		return app.osHandler.RemoveAll(localTemp)
	})

	upResult, err := app.transferHandler.CopyFileTimed(ctx, transfer.PhaseLargeUpload, large.Path, remoteLarge, large.Size)
	if err != nil {
		return nil, nil, err
	}

	upMetrics := report.Calculate(upResult.Bytes, upResult.Elapsed, upResult.Files)
	logPhaseMetrics("Large upload:", upMetrics)

	app.fsHandler.FlushWriteback()

	downResult, err := app.transferHandler.CopyFileTimed(ctx, transfer.PhaseLargeDownload, remoteLarge, localTemp, large.Size)
	if err != nil {
		return nil, nil, err
	}

	downMetrics := report.Calculate(downResult.Bytes, downResult.Elapsed, downResult.Files)
	logPhaseMetrics("Large download:", downMetrics)

	if err := app.osHandler.RemoveAll(localTemp); err != nil {
		slog.Warn("Could not remove local temp download.", "path", localTemp, "err", err)
	}
	if err := app.osHandler.RemoveAll(remoteLarge); err != nil {
		slog.Warn("Could not remove remote large file.", "path", remoteLarge, "err", err)
	}

	return &upMetrics, &downMetrics, nil
}

// smallFilesTest measures latency-bound metadata throughput: the batch of
// small files is uploaded to the remote staging directory and downloaded back
// into a local scratch directory, both loops timed. The per-run artifacts are
// removed again afterwards.
func (app *App) smallFilesTest(ctx context.Context, run int, remoteDir string, smallSet *generation.SmallSet) (*report.Metrics, *report.Metrics, error) {
	slog.Info("Starting small file test (latency/metadata)...", "count", len(smallSet.Files))

	remoteSmall := filepath.Join(remoteDir, remoteSmallDirName)
	localTempDir := filepath.Join(app.settings.StagingPath(), localTempDirName)

	if err := app.fsHandler.EnsureDirectory(remoteSmall); err != nil {
		return nil, nil, err
	}

	if err := app.fsHandler.EnsureDirectory(localTempDir); err != nil {
		return nil, nil, err
	}

	app.cleanupRegistry.Add(fmt.Sprintf("local temp directory (run %d)", run), func() error {
		return app.osHandler.RemoveAll(localTempDir)
	})

	localFiles := make([]transfer.FileEntry, 0, len(smallSet.Files))
	remoteFiles := make([]transfer.FileEntry, 0, len(smallSet.Files))

	for _, f := range smallSet.Files {
		localFiles = append(localFiles, transfer.FileEntry{Path: f.Path, Size: f.Size})
		remoteFiles = append(remoteFiles, transfer.FileEntry{
			Path: filepath.Join(remoteSmall, filepath.Base(f.Path)),
			Size: f.Size,
		})
	}

	upResult, err := app.transferHandler.CopyBatchTimed(ctx, transfer.PhaseSmallUpload, localFiles, remoteSmall)
	if err != nil {
		return nil, nil, err
	}

	upMetrics := report.Calculate(upResult.Bytes, upResult.Elapsed, upResult.Files)
	logPhaseMetrics("Small upload:", upMetrics)

	app.fsHandler.FlushWriteback()

	downResult, err := app.transferHandler.CopyBatchTimed(ctx, transfer.PhaseSmallDownload, remoteFiles, localTempDir)
	if err != nil {
		return nil, nil, err
	}

	downMetrics := report.Calculate(downResult.Bytes, downResult.Elapsed, downResult.Files)
	logPhaseMetrics("Small download:", downMetrics)

	if err := app.osHandler.RemoveAll(localTempDir); err != nil {
		slog.Warn("Could not remove local temp directory.", "path", localTempDir, "err", err)
	}
	if err := app.osHandler.RemoveAll(remoteSmall); err != nil {
		slog.Warn("Could not remove remote small files.", "path", remoteSmall, "err", err)
	}

	return &upMetrics, &downMetrics, nil
}

func logPhaseMetrics(msg string, m report.Metrics) {
	slog.Info(msg,
		"seconds", m.Seconds,
		"MB_s", m.MBPerSec,
		"mbps", m.Mbps,
		"files_sec", m.FilesPerSec,
	)
}
