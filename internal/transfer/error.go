package transfer

import "errors"

var (
	// ErrEmptyBatch is an error that occurs when a timed batch phase is
	// started without any files to transfer.
	ErrEmptyBatch = errors.New("no files to transfer")
)
