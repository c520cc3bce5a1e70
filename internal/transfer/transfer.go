// Package transfer implements the timed copy engine of the benchmark. Copies
// go through the operating system's regular file read/write primitives with
// source modification times carried over, mirroring what a user-level file
// copy against a mounted share does. Phases are strictly sequential and
// measured with wall-clock time around the copy loop only.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type osProvider interface {
	Chtimes(name string, atime time.Time, mtime time.Time) error
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	Stat(name string) (os.FileInfo, error)
}

// FileEntry describes a single source file of a timed phase.
type FileEntry struct {
	Path string
	Size uint64
}

// PhaseResult holds the measurement of one completed timed phase.
type PhaseResult struct {
	Bytes   uint64
	Files   int
	Elapsed time.Duration
}

// Handler is the principal implementation of the timed copy engine.
type Handler struct {
	osHandler osProvider
	tracker   *Tracker
}

// NewHandler returns a pointer to a new transfer [Handler].
func NewHandler(osHandler osProvider, tracker *Tracker) *Handler {
	return &Handler{
		osHandler: osHandler,
		tracker:   tracker,
	}
}

// Tracker returns the [Tracker] fed by this [Handler].
func (t *Handler) Tracker() *Tracker {
	return t.tracker
}

// TempDownloadName returns a unique filename for a downloaded file, so that a
// download can never overwrite its own source dataset.
func TempDownloadName() string {
	return fmt.Sprintf("download_temp_%s.bin", uuid.NewString())
}

//nolint:containedctx
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err() //nolint:wrapcheck
	default:
		return cr.reader.Read(p)
	}
}

// countingWriter feeds written byte counts into a phase while copying.
type countingWriter struct {
	writer io.Writer
	info   *phaseInfo
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.writer.Write(p)
	if n > 0 {
		cw.info.addBytes(uint64(n))
	}

	return n, err //nolint:wrapcheck
}

// CopyFileTimed runs a single-file timed phase, copying src to dst and
// returning the measured [PhaseResult].
func (t *Handler) CopyFileTimed(ctx context.Context, phase Phase, src string, dst string, size uint64) (PhaseResult, error) {
	info := t.tracker.phases[phase]
	info.start(size, 1)

	start := time.Now()

	if err := t.copyFile(ctx, info, src, dst); err != nil {
		return PhaseResult{}, err
	}

	elapsed := time.Since(start)

	info.addItem()
	info.end()

	return PhaseResult{
		Bytes:   size,
		Files:   1,
		Elapsed: elapsed,
	}, nil
}

// CopyBatchTimed runs a multi-file timed phase, copying every given file into
// destDir under its base name and returning the measured [PhaseResult].
func (t *Handler) CopyBatchTimed(ctx context.Context, phase Phase, files []FileEntry, destDir string) (PhaseResult, error) {
	if len(files) == 0 {
		return PhaseResult{}, fmt.Errorf("(transfer) %w", ErrEmptyBatch)
	}

	var bytesTotal uint64
	for _, f := range files {
		bytesTotal += f.Size
	}

	info := t.tracker.phases[phase]
	info.start(bytesTotal, len(files))

	start := time.Now()

	for _, f := range files {
		dst := filepath.Join(destDir, filepath.Base(f.Path))

		if err := t.copyFile(ctx, info, f.Path, dst); err != nil {
			return PhaseResult{}, err
		}

		info.addItem()
	}

	elapsed := time.Since(start)

	info.end()

	return PhaseResult{
		Bytes:   bytesTotal,
		Files:   len(files),
		Elapsed: elapsed,
	}, nil
}

// copyFile copies a single file, carrying the source modification time over
// to the destination.
func (t *Handler) copyFile(ctx context.Context, info *phaseInfo, src string, dst string) error {
	srcInfo, err := t.osHandler.Stat(src)
	if err != nil {
		return fmt.Errorf("(transfer) failed to stat src: %w", err)
	}

	srcFile, err := t.osHandler.Open(src)
	if err != nil {
		return fmt.Errorf("(transfer) failed to open src: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := t.osHandler.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("(transfer) failed to open dst: %w", err)
	}

	ctxReader := &contextReader{
		ctx:    ctx,
		reader: srcFile,
	}
	cntWriter := &countingWriter{
		writer: dstFile,
		info:   info,
	}

	if _, err := io.Copy(cntWriter, ctxReader); err != nil {
		dstFile.Close()

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("(transfer) canceled: %w", err)
		}

		return fmt.Errorf("(transfer) failed to copy: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("(transfer) failed to close dst: %w", err)
	}

	mtime := srcInfo.ModTime()
	if err := t.osHandler.Chtimes(dst, mtime, mtime); err != nil {
		return fmt.Errorf("(transfer) failed to carry over timestamps: %w", err)
	}

	return nil
}
