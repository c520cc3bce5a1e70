// Package configuration implements the application settings, their defaults
// and the reading of optional configuration files.
package configuration

import (
	"fmt"
	"path/filepath"
	"strconv"
)

const (
	// DefaultLargeFileMB is the default size of the large test file in MB.
	DefaultLargeFileMB = 1000

	// DefaultSmallFileCount is the default amount of small test files.
	DefaultSmallFileCount = 500

	// DefaultSmallMinKB is the default lower size bound of a small test file in KB.
	DefaultSmallMinKB = 10

	// DefaultSmallMaxKB is the default upper size bound of a small test file in KB.
	DefaultSmallMaxKB = 100

	// DefaultRuns is the default amount of benchmark runs.
	DefaultRuns = 1

	stagingDirName = "smb_bench_staging"
	reportDirName  = "smb_bench_reports"
	remoteDirBase  = "smb_bench_target_"

	kib = 1024
	mib = 1024 * 1024
)

type envProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Settings is the principal structure holding the benchmark configuration.
type Settings struct {
	TargetPath string
	SourcePath string
	TestName   string

	LargeFileMB    int
	SmallFileCount int
	SmallMinKB     int
	SmallMaxKB     int

	NoGeneration bool
	Runs         int
	Seed         string
}

// Handler is the principal implementation of the configuration layer.
type Handler struct {
	envHandler envProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(envHandler envProvider) *Handler {
	return &Handler{
		envHandler: envHandler,
	}
}

// DefaultSettings returns a pointer to a new [Settings] with all tunables at
// their default values.
func (c *Handler) DefaultSettings() *Settings {
	return &Settings{
		LargeFileMB:    DefaultLargeFileMB,
		SmallFileCount: DefaultSmallFileCount,
		SmallMinKB:     DefaultSmallMinKB,
		SmallMaxKB:     DefaultSmallMaxKB,
		Runs:           DefaultRuns,
	}
}

// ApplyFile reads a Unix-type configuration file and applies any recognized
// keys onto the given [Settings]. Keys that are absent leave the respective
// setting untouched, so files need only carry overrides.
func (c *Handler) ApplyFile(settings *Settings, path string) error {
	envMap, err := c.envHandler.Read(path)
	if err != nil {
		return fmt.Errorf("(config) failed to read settings file: %w", err)
	}

	settings.LargeFileMB = mapKeyToInt(envMap, "SHAREBENCH_LARGE_MB", settings.LargeFileMB)
	settings.SmallFileCount = mapKeyToInt(envMap, "SHAREBENCH_SMALL_COUNT", settings.SmallFileCount)
	settings.SmallMinKB = mapKeyToInt(envMap, "SHAREBENCH_SMALL_MIN_KB", settings.SmallMinKB)
	settings.SmallMaxKB = mapKeyToInt(envMap, "SHAREBENCH_SMALL_MAX_KB", settings.SmallMaxKB)
	settings.Runs = mapKeyToInt(envMap, "SHAREBENCH_RUNS", settings.Runs)
	settings.Seed = mapKeyToString(envMap, "SHAREBENCH_SEED", settings.Seed)
	settings.NoGeneration = mapKeyToBool(envMap, "SHAREBENCH_NO_GEN", settings.NoGeneration)

	return nil
}

// Validate ensures the [Settings] describe a runnable benchmark.
func (s *Settings) Validate() error {
	if s.TestName == "" {
		return fmt.Errorf("(config) %w", ErrNoTestName)
	}

	if s.TargetPath == "" {
		return fmt.Errorf("(config) %w", ErrNoTargetPath)
	}

	if s.SourcePath == "" {
		return fmt.Errorf("(config) %w", ErrNoSourcePath)
	}

	if s.LargeFileMB <= 0 {
		return fmt.Errorf("(config) %w: %d", ErrInvalidLargeSize, s.LargeFileMB)
	}

	if s.SmallFileCount <= 0 {
		return fmt.Errorf("(config) %w: %d", ErrInvalidSmallCount, s.SmallFileCount)
	}

	if s.SmallMinKB <= 0 || s.SmallMaxKB < s.SmallMinKB {
		return fmt.Errorf("(config) %w: %d-%d", ErrInvalidSmallRange, s.SmallMinKB, s.SmallMaxKB)
	}

	if s.Runs < 1 {
		return fmt.Errorf("(config) %w: %d", ErrInvalidRuns, s.Runs)
	}

	return nil
}

// StagingPath returns the local staging directory below the source path.
func (s *Settings) StagingPath() string {
	return filepath.Join(s.SourcePath, stagingDirName)
}

// ReportPath returns the report directory below the source path.
func (s *Settings) ReportPath() string {
	return filepath.Join(s.SourcePath, reportDirName)
}

// RemotePath returns the per-run staging directory below the target path.
func (s *Settings) RemotePath() string {
	return filepath.Join(s.TargetPath, remoteDirBase+s.TestName)
}

// LargeFileBytes returns the configured large file size in bytes.
func (s *Settings) LargeFileBytes() uint64 {
	return uint64(s.LargeFileMB) * mib
}

// SmallMinBytes returns the configured lower small file size bound in bytes.
func (s *Settings) SmallMinBytes() uint64 {
	return uint64(s.SmallMinKB) * kib
}

// SmallMaxBytes returns the configured upper small file size bound in bytes.
func (s *Settings) SmallMaxBytes() uint64 {
	return uint64(s.SmallMaxKB) * kib
}

func mapKeyToString(envMap map[string]string, key string, fallback string) string {
	if value, exists := envMap[key]; exists && value != "" {
		return value
	}

	return fallback
}

func mapKeyToInt(envMap map[string]string, key string, fallback int) int {
	value, exists := envMap[key]
	if !exists || value == "" {
		return fallback
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return intValue
}

func mapKeyToBool(envMap map[string]string, key string, fallback bool) bool {
	value, exists := envMap[key]
	if !exists || value == "" {
		return fallback
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}

	return boolValue
}
