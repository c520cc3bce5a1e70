package generation

import "errors"

var (
	// ErrLargeFileMissing is an error that occurs when no-generation mode is
	// active, but the expected large test file does not exist on disk.
	ErrLargeFileMissing = errors.New("no-gen mode active, but large test file not found")

	// ErrNoSmallFiles is an error that occurs when no-generation mode is
	// active, but no small test files exist on disk.
	ErrNoSmallFiles = errors.New("no-gen mode active, but no small test files found")
)
