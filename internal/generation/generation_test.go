package generation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/sharebench/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewChunk_Deterministic tests that the payload chunk is reproducible for
// a seed and differs between seeds.
func TestNewChunk_Deterministic(t *testing.T) {
	t.Parallel()

	chunk1, err := newChunk("seed-a")
	require.NoError(t, err)
	require.Len(t, chunk1, chunkSize)

	chunk2, err := newChunk("seed-a")
	require.NoError(t, err)
	assert.Equal(t, chunk1, chunk2)

	chunk3, err := newChunk("seed-b")
	require.NoError(t, err)
	assert.NotEqual(t, chunk1, chunk3)
}

// TestNewRand_Deterministic tests that the size randomizer is reproducible
// for a seed.
func TestNewRand_Deterministic(t *testing.T) {
	t.Parallel()

	rng1 := newRand("seed-a")
	rng2 := newRand("seed-a")

	for range 10 {
		assert.Equal(t, rng1.Uint64(), rng2.Uint64())
	}
}

// TestEnsureLargeFile_Generates tests the generation of a missing large file.
func TestEnsureLargeFile_Generates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	large, err := handler.EnsureLargeFile(t.Context(), dir, 4096, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, LargeFileName), large.Path)
	assert.EqualValues(t, 4096, large.Size)

	info, err := os.Stat(large.Path)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, info.Size())
}

// TestEnsureLargeFile_ReusesExactSize tests that an existing file of the
// exact size is not rewritten.
func TestEnsureLargeFile_ReusesExactSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, LargeFileName)

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = 0xAB
	}
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	large, err := handler.EnsureLargeFile(t.Context(), dir, 4096, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, large.Size)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data, "existing file of exact size was rewritten")
}

// TestEnsureLargeFile_RegeneratesWrongSize tests that a wrong-sized file is
// regenerated to the expected size.
func TestEnsureLargeFile_RegeneratesWrongSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, LargeFileName)
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o644))

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	large, err := handler.EnsureLargeFile(t.Context(), dir, 4096, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, large.Size)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, info.Size())
}

// TestEnsureLargeFile_NoGen tests no-generation mode with and without an
// existing file.
func TestEnsureLargeFile_NoGen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	_, err = handler.EnsureLargeFile(t.Context(), dir, 4096, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLargeFileMissing)

	path := filepath.Join(dir, LargeFileName)
	require.NoError(t, os.WriteFile(path, []byte("whatever size"), 0o644))

	large, err := handler.EnsureLargeFile(t.Context(), dir, 4096, true)
	require.NoError(t, err)
	assert.EqualValues(t, len("whatever size"), large.Size, "file should be taken as-is in no-gen mode")
}

// TestEnsureSmallFiles_Generates tests the generation of the small file batch
// within the configured size bounds.
func TestEnsureSmallFiles_Generates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	set, err := handler.EnsureSmallFiles(t.Context(), dir, 20, 64, 256, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, SmallFilesDirName), set.Dir)
	assert.Len(t, set.Files, 20)
	assert.GreaterOrEqual(t, set.MinSize, uint64(64))
	assert.LessOrEqual(t, set.MaxSize, uint64(256))

	var total uint64
	for _, f := range set.Files {
		info, err := os.Stat(f.Path)
		require.NoError(t, err)
		assert.EqualValues(t, f.Size, info.Size())
		total += f.Size
	}
	assert.Equal(t, total, set.TotalSize)
}

// TestEnsureSmallFiles_Deterministic tests that the batch sizes are
// reproducible for a seed.
func TestEnsureSmallFiles_Deterministic(t *testing.T) {
	t.Parallel()

	handler1, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	handler2, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	set1, err := handler1.EnsureSmallFiles(t.Context(), t.TempDir(), 10, 64, 256, false)
	require.NoError(t, err)

	set2, err := handler2.EnsureSmallFiles(t.Context(), t.TempDir(), 10, 64, 256, false)
	require.NoError(t, err)

	assert.Equal(t, set1.TotalSize, set2.TotalSize)
}

// TestEnsureSmallFiles_ReusesExactCount tests that an existing batch of the
// exact count is reused as-is.
func TestEnsureSmallFiles_ReusesExactCount(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	smallDir := filepath.Join(dir, SmallFilesDirName)
	require.NoError(t, os.MkdirAll(smallDir, 0o755))

	for i := range 3 {
		path := filepath.Join(smallDir, "small_"+string(rune('0'+i))+".bin")
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	}

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	set, err := handler.EnsureSmallFiles(t.Context(), dir, 3, 64, 256, false)
	require.NoError(t, err)

	assert.Len(t, set.Files, 3)
	assert.EqualValues(t, 12, set.TotalSize, "existing files should be used as-is")
}

// TestEnsureSmallFiles_NoGen tests no-generation mode with an empty staging
// directory.
func TestEnsureSmallFiles_NoGen(t *testing.T) {
	t.Parallel()

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	_, err = handler.EnsureSmallFiles(t.Context(), t.TempDir(), 10, 64, 256, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSmallFiles)
}

// TestWriteFile_Canceled tests that generation aborts on a canceled context.
func TestWriteFile_Canceled(t *testing.T) {
	t.Parallel()

	handler, err := NewHandler(&schema.OS{}, "seed-a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err = handler.writeFile(ctx, filepath.Join(t.TempDir(), "file.bin"), 4096)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
