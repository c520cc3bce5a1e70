package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/desertwitch/sharebench/internal/cleanup"
	"github.com/desertwitch/sharebench/internal/configuration"
	"github.com/desertwitch/sharebench/internal/filesystem"
	"github.com/desertwitch/sharebench/internal/generation"
	"github.com/desertwitch/sharebench/internal/report"
	"github.com/desertwitch/sharebench/internal/schema"
	"github.com/desertwitch/sharebench/internal/transfer"
	"github.com/desertwitch/sharebench/internal/ui"
	"github.com/desertwitch/sharebench/internal/validation"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

const (
	stackTraceBufMax = 1 << 24
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	uiEnabled  = flag.Bool("ui", true, "enable the UI")
	configFile = flag.String("config", "", "read settings from an env-style file")

	largeMB    = flag.Int("large-mb", configuration.DefaultLargeFileMB, "large file size (MB)")
	smallCount = flag.Int("small-count", configuration.DefaultSmallFileCount, "small file count")
	smallMinKB = flag.Int("small-min-kb", configuration.DefaultSmallMinKB, "min small file size (KB)")
	smallMaxKB = flag.Int("small-max-kb", configuration.DefaultSmallMaxKB, "max small file size (KB)")
	runs       = flag.Int("runs", configuration.DefaultRuns, "amount of benchmark runs to aggregate")
	seed       = flag.String("seed", "", "dataset seed (random when empty)")
	noGen      = flag.Bool("no-gen", false, "safe mode: do not generate or delete local source files, use existing only")

	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func setupLogging() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}),
	))
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()

	sigChan3 := make(chan os.Signal, 1)
	signal.Notify(sigChan3, syscall.SIGUSR2)
	go func() {
		for range sigChan3 {
			runtime.GC()
		}
	}()
}

// establishSettings merges the configuration layers: built-in defaults, then
// an optional settings file, then any explicitly set command-line flags.
func establishSettings(configHandler *configuration.Handler) (*configuration.Settings, error) {
	settings := configHandler.DefaultSettings()

	if *configFile != "" {
		if err := configHandler.ApplyFile(settings, *configFile); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "large-mb":
			settings.LargeFileMB = *largeMB
		case "small-count":
			settings.SmallFileCount = *smallCount
		case "small-min-kb":
			settings.SmallMinKB = *smallMinKB
		case "small-max-kb":
			settings.SmallMaxKB = *smallMaxKB
		case "runs":
			settings.Runs = *runs
		case "seed":
			settings.Seed = *seed
		case "no-gen":
			settings.NoGeneration = *noGen
		}
	})

	settings.TargetPath = flag.Arg(0)
	settings.SourcePath = flag.Arg(1)
	settings.TestName = flag.Arg(2)

	if settings.Seed == "" {
		settings.Seed = uuid.NewString()
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

func startApp(ctx context.Context, wg *sync.WaitGroup, app *App) {
	defer wg.Done()

	if app.uiHandler != nil {
		slog.Info("Waiting for UI...")
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if app.uiHandler.Initialized.Load() || app.uiHandler.Failed.Load() {
				break
			}
		}
	}

	if err := app.Launch(ctx); err != nil {
		slog.Error("Benchmark failure.", "err", err)
		ExitCode = 1
	}
}

func startUI(wg *sync.WaitGroup, app *App) {
	defer wg.Done()

	if app.uiHandler != nil {
		if err := app.LaunchUI(setupLogging); err != nil {
			slog.Error("UI failure: falling back to terminal.", "err", err)
		}
	}
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <target> <source> <name>\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Measures file copy throughput against a mounted (SMB) target path.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	setupLogging()
	setupSignalHandlers(cancel)

	if flag.NArg() != 3 {
		flag.Usage()
		ExitCode = 2

		return
	}

	memObserver := newMemoryObserver(ctx)
	defer memObserver.Stop()

	cpuProfiler := newCPUProfiler(ctx, cpuprofile)
	defer cpuProfiler.Stop()

	allocProfiler := newAllocProfiler(ctx, memprofile)
	defer allocProfiler.Stop()

	osProvider := &schema.OS{}
	unixProvider := &schema.Unix{}
	configProvider := &configuration.GodotenvProvider{}

	configHandler := configuration.NewHandler(configProvider)

	settings, err := establishSettings(configHandler)
	if err != nil {
		slog.Error("Failed to establish benchmark settings.",
			"err", err,
		)
		ExitCode = 2

		return
	}

	slog.Info("Initializing benchmark.",
		"name", settings.TestName,
		"target", settings.TargetPath,
		"source", settings.SourcePath,
	)
	if settings.NoGeneration {
		slog.Info("No-generation mode: using existing files only.")
	}

	genHandler, err := generation.NewHandler(osProvider, settings.Seed)
	if err != nil {
		slog.Error("Failed to establish dataset generator.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	validationHandler := validation.NewHandler(osProvider)
	fsHandler := filesystem.NewHandler(osProvider, unixProvider)
	tracker := transfer.NewTracker()
	transferHandler := transfer.NewHandler(osProvider, tracker)
	cleanupRegistry := cleanup.NewRegistry()
	reportHandler := report.NewHandler(osProvider)

	var uiHandler *ui.Handler
	if uiEnabled != nil && *uiEnabled {
		uiHandler = ui.NewHandler(ctx, cancel, tracker)
	}

	var wg sync.WaitGroup
	app := NewApp(settings, osProvider, validationHandler, fsHandler, genHandler,
		transferHandler, cleanupRegistry, reportHandler, uiHandler)

	wg.Add(1)
	go startUI(&wg, app)

	wg.Add(1)
	go startApp(ctx, &wg, app)

	wg.Wait()

	if rpt := app.Report(); rpt != nil {
		report.RenderSummary(os.Stdout, rpt)
	}
}
