// Package generation implements the building of the benchmark dataset: one
// large test file for sequential throughput and a batch of randomly sized
// small test files for latency-bound metadata workloads. Existing datasets
// are reused where possible, or taken as-is in no-generation mode.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// LargeFileName is the on-disk name of the large test file.
	LargeFileName = "large_test_file.bin"

	// SmallFilesDirName is the staging subdirectory holding the small test files.
	SmallFilesDirName = "small_files"

	smallFileSuffix = ".bin"
)

type osProvider interface {
	MkdirAll(path string, perm os.FileMode) error
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	ReadDir(name string) ([]os.DirEntry, error)
	RemoveAll(path string) error
	Stat(name string) (os.FileInfo, error)
}

// LargeFile describes the large test file as present on disk.
type LargeFile struct {
	Path string
	Size uint64
}

// SmallFile describes a single small test file as present on disk.
type SmallFile struct {
	Path string
	Size uint64
}

// SmallSet describes the batch of small test files as present on disk.
type SmallSet struct {
	Dir       string
	Files     []SmallFile
	TotalSize uint64
	MinSize   uint64
	MaxSize   uint64
}

// Handler is the principal implementation of the dataset generation layer.
type Handler struct {
	osHandler osProvider
	rng       *rand.Rand
	chunk     []byte
}

// NewHandler returns a pointer to a new generation [Handler], with the payload
// chunk and size randomizer derived from the given seed.
func NewHandler(osHandler osProvider, seed string) (*Handler, error) {
	chunk, err := newChunk(seed)
	if err != nil {
		return nil, err
	}

	return &Handler{
		osHandler: osHandler,
		rng:       newRand(seed),
		chunk:     chunk,
	}, nil
}

// EnsureLargeFile makes sure the large test file exists in the staging
// directory. An existing file of the exact expected size is reused, any other
// is regenerated. In no-generation mode the file is taken as-is, whatever its
// size, and its absence is an error.
func (g *Handler) EnsureLargeFile(ctx context.Context, stagingDir string, sizeBytes uint64, noGen bool) (*LargeFile, error) {
	path := filepath.Join(stagingDir, LargeFileName)

	info, err := g.osHandler.Stat(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("(gen) failed to stat large file: %w", err)
	}

	if noGen {
		if err != nil {
			return nil, fmt.Errorf("(gen) %w: %s", ErrLargeFileMissing, path)
		}

		slog.Info("No-gen mode: using existing large file.",
			"path", path,
			"size", humanize.Bytes(uint64(info.Size())),
		)

		return &LargeFile{Path: path, Size: uint64(info.Size())}, nil
	}

	if err == nil && uint64(info.Size()) == sizeBytes {
		slog.Info("Using existing large file.", "path", path)

		return &LargeFile{Path: path, Size: sizeBytes}, nil
	}

	slog.Info("Generating large file...",
		"path", path,
		"size", humanize.Bytes(sizeBytes),
	)

	if err := g.writeFile(ctx, path, sizeBytes); err != nil {
		return nil, err
	}

	return &LargeFile{Path: path, Size: sizeBytes}, nil
}

// EnsureSmallFiles makes sure the batch of small test files exists in the
// staging directory. An existing batch of the exact expected count is reused,
// any other is wiped and regenerated with sizes uniformly random within the
// given bounds. In no-generation mode the files are taken as-is, and their
// absence is an error.
func (g *Handler) EnsureSmallFiles(ctx context.Context, stagingDir string, count int, minBytes, maxBytes uint64, noGen bool) (*SmallSet, error) {
	dir := filepath.Join(stagingDir, SmallFilesDirName)

	existing, err := g.listSmallFiles(dir)
	if err != nil {
		return nil, err
	}

	if noGen {
		if len(existing) == 0 {
			return nil, fmt.Errorf("(gen) %w: %s", ErrNoSmallFiles, dir)
		}

		set := newSmallSet(dir, existing)

		slog.Info("No-gen mode: using existing small files.",
			"count", len(set.Files),
			"totalSize", humanize.Bytes(set.TotalSize),
		)

		return set, nil
	}

	if len(existing) == count {
		set := newSmallSet(dir, existing)

		slog.Info("Using existing small files.",
			"count", len(set.Files),
			"totalSize", humanize.Bytes(set.TotalSize),
		)

		return set, nil
	}

	slog.Info("Generating small files...",
		"count", count,
		"minSize", humanize.Bytes(minBytes),
		"maxSize", humanize.Bytes(maxBytes),
	)

	if err := g.osHandler.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("(gen) failed to wipe small files dir: %w", err)
	}

	if err := g.osHandler.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("(gen) failed to make small files dir: %w", err)
	}

	files := make([]SmallFile, 0, count)

	for i := range count {
		size := minBytes + g.rng.Uint64N(maxBytes-minBytes+1)
		path := filepath.Join(dir, fmt.Sprintf("small_%d%s", i, smallFileSuffix))

		if err := g.writeFile(ctx, path, size); err != nil {
			return nil, err
		}

		files = append(files, SmallFile{Path: path, Size: size})
	}

	set := newSmallSet(dir, files)

	slog.Info("Generated small files.",
		"count", len(set.Files),
		"totalSize", humanize.Bytes(set.TotalSize),
	)

	return set, nil
}

// listSmallFiles collects the small test files present in a directory. A
// missing directory yields an empty result, not an error.
func (g *Handler) listSmallFiles(dir string) ([]SmallFile, error) {
	entries, err := g.osHandler.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("(gen) failed to readdir: %w", err)
	}

	var files []SmallFile

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), smallFileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("(gen) failed to stat small file: %w", err)
		}

		files = append(files, SmallFile{
			Path: filepath.Join(dir, entry.Name()),
			Size: uint64(info.Size()),
		})
	}

	return files, nil
}

func newSmallSet(dir string, files []SmallFile) *SmallSet {
	set := &SmallSet{
		Dir:   dir,
		Files: files,
	}

	for _, f := range files {
		set.TotalSize += f.Size

		if set.MinSize == 0 || f.Size < set.MinSize {
			set.MinSize = f.Size
		}
		if f.Size > set.MaxSize {
			set.MaxSize = f.Size
		}
	}

	return set
}
