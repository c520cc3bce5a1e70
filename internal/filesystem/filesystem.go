// Package filesystem implements filesystem-level support functions for the
// benchmark: disk usage statistics, free space checking, directory handling
// and the flushing of pending writeback before timed reads.
package filesystem

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

type osProvider interface {
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
	RemoveAll(path string) error
	Stat(name string) (os.FileInfo, error)
}

type unixProvider interface {
	Statfs(path string, buf *unix.Statfs_t) error
	Sync()
}

// DiskStats holds the usage statistics of a mounted filesystem.
type DiskStats struct {
	TotalSize uint64
	FreeSpace uint64
}

// Handler is the principal implementation of the filesystem layer.
type Handler struct {
	osHandler   osProvider
	unixHandler unixProvider
}

// NewHandler returns a pointer to a new filesystem [Handler].
func NewHandler(osHandler osProvider, unixHandler unixProvider) *Handler {
	return &Handler{
		osHandler:   osHandler,
		unixHandler: unixHandler,
	}
}

// GetDiskUsage returns the [DiskStats] for the filesystem holding a path.
func (f *Handler) GetDiskUsage(path string) (DiskStats, error) {
	var stat unix.Statfs_t

	if err := f.unixHandler.Statfs(path, &stat); err != nil {
		return DiskStats{}, fmt.Errorf("(fs) failed to statfs: %w", err)
	}

	stats := DiskStats{
		TotalSize: stat.Blocks * uint64(stat.Bsize),
		FreeSpace: stat.Bavail * uint64(stat.Bsize),
	}

	return stats, nil
}

// HasEnoughFreeSpace checks if the filesystem holding a path can take the
// given amount of additional bytes.
func (f *Handler) HasEnoughFreeSpace(path string, requiredBytes uint64) (bool, error) {
	stats, err := f.GetDiskUsage(path)
	if err != nil {
		return false, fmt.Errorf("(fs) failed to get usage: %w", err)
	}

	if stats.TotalSize == 0 {
		return false, fmt.Errorf("(fs) %w (TotalSize: %d, FreeSpace: %d)", ErrInvalidDiskStats, stats.TotalSize, stats.FreeSpace)
	}

	slog.Debug("Free space evaluation",
		"path", path,
		"free", humanize.Bytes(stats.FreeSpace),
		"required", humanize.Bytes(requiredBytes),
	)

	return stats.FreeSpace > requiredBytes, nil
}

// EnsureDirectory creates a directory including any missing parents.
func (f *Handler) EnsureDirectory(path string) error {
	if err := f.osHandler.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("(fs) failed to make directory: %w", err)
	}

	return nil
}

// IsEmptyFolder checks a given path for any contained directory entries.
func (f *Handler) IsEmptyFolder(path string) (bool, error) {
	entries, err := f.osHandler.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("(fs) failed to readdir: %w", err)
	}

	return len(entries) == 0, nil
}

// FlushWriteback commits any pending page-cache writeback to the underlying
// filesystems, so that earlier (timed) writes do not leak into later reads.
func (f *Handler) FlushWriteback() {
	f.unixHandler.Sync()
}
