package filesystem

import "errors"

var (
	// ErrInvalidDiskStats is an error that occurs when the reported filesystem
	// statistics are implausible (zero total size or negative free space).
	ErrInvalidDiskStats = errors.New("invalid filesystem statistics")

	// ErrNotEnoughSpace is an error that occurs when the target filesystem
	// cannot hold the benchmark dataset.
	ErrNotEnoughSpace = errors.New("not enough free space on target")
)
