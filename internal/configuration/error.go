package configuration

import "errors"

var (
	// ErrNoTestName is an error that occurs when no benchmark run name was given.
	ErrNoTestName = errors.New("no test name given")

	// ErrNoTargetPath is an error that occurs when no target path was given.
	ErrNoTargetPath = errors.New("no target path given")

	// ErrNoSourcePath is an error that occurs when no source path was given.
	ErrNoSourcePath = errors.New("no source path given")

	// ErrInvalidLargeSize is an error that occurs when the large file size is
	// zero or negative.
	ErrInvalidLargeSize = errors.New("large file size must be positive")

	// ErrInvalidSmallCount is an error that occurs when the small file count is
	// zero or negative.
	ErrInvalidSmallCount = errors.New("small file count must be positive")

	// ErrInvalidSmallRange is an error that occurs when the small file size
	// range is empty or inverted.
	ErrInvalidSmallRange = errors.New("small file size range is invalid")

	// ErrInvalidRuns is an error that occurs when less than one benchmark run
	// was requested.
	ErrInvalidRuns = errors.New("at least one run is required")
)
