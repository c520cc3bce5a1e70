// Package validation implements pre-flight checks for the benchmark paths,
// so that misconfiguration surfaces before any timing has started.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type osProvider interface {
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
}

// Handler is the principal implementation of the validation layer.
type Handler struct {
	osHandler osProvider
}

// NewHandler returns a pointer to a new validation [Handler].
func NewHandler(osHandler osProvider) *Handler {
	return &Handler{
		osHandler: osHandler,
	}
}

// EnsureDirectory validates that a given path exists and is a directory.
func (v *Handler) EnsureDirectory(path string) error {
	info, err := v.osHandler.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("(validation) %w: %s", ErrPathMissing, path)
		}

		return fmt.Errorf("(validation) failed to stat: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("(validation) %w: %s", ErrNotADirectory, path)
	}

	return nil
}

// EnsureWritableDirectory validates that a given path exists, is a directory
// and accepts a write probe. The probe file is removed again on success.
func (v *Handler) EnsureWritableDirectory(path string) error {
	if err := v.EnsureDirectory(path); err != nil {
		return err
	}

	// No O_EXCL, a probe left behind by an earlier crashed run is overwritten.
	probePath := filepath.Join(path, ".sharebench_probe")

	probe, err := v.osHandler.OpenFile(probePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("(validation) %w: %s: %w", ErrNotWritable, path, err)
	}
	probe.Close()

	if err := v.osHandler.Remove(probePath); err != nil {
		return fmt.Errorf("(validation) failed to remove write probe: %w", err)
	}

	return nil
}
