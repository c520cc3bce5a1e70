package validation

import "errors"

var (
	// ErrPathMissing is an error that occurs when a given path does not exist
	// on the filesystem.
	ErrPathMissing = errors.New("path does not exist")

	// ErrNotADirectory is an error that occurs when a given path exists, but
	// does not point to a directory.
	ErrNotADirectory = errors.New("path is not a directory")

	// ErrNotWritable is an error that occurs when the write probe on a given
	// path fails, this usually means a read-only or unmounted share.
	ErrNotWritable = errors.New("path is not writable")
)
