package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		TargetPath:     "/mnt/share",
		SourcePath:     "/home/user",
		TestName:       "nas01",
		LargeFileMB:    DefaultLargeFileMB,
		SmallFileCount: DefaultSmallFileCount,
		SmallMinKB:     DefaultSmallMinKB,
		SmallMaxKB:     DefaultSmallMaxKB,
		Runs:           DefaultRuns,
	}
}

// TestDefaultSettings_Success tests the built-in setting defaults.
func TestDefaultSettings_Success(t *testing.T) {
	t.Parallel()

	handler := NewHandler(&GodotenvProvider{})
	settings := handler.DefaultSettings()

	assert.Equal(t, 1000, settings.LargeFileMB)
	assert.Equal(t, 500, settings.SmallFileCount)
	assert.Equal(t, 10, settings.SmallMinKB)
	assert.Equal(t, 100, settings.SmallMaxKB)
	assert.Equal(t, 1, settings.Runs)
	assert.False(t, settings.NoGeneration)
}

// TestValidate_Table tests the validation of various setting combinations.
func TestValidate_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr error
	}{
		{"Success_Defaults", func(s *Settings) {}, nil},
		{"Error_NoTestName", func(s *Settings) { s.TestName = "" }, ErrNoTestName},
		{"Error_NoTargetPath", func(s *Settings) { s.TargetPath = "" }, ErrNoTargetPath},
		{"Error_NoSourcePath", func(s *Settings) { s.SourcePath = "" }, ErrNoSourcePath},
		{"Error_ZeroLargeSize", func(s *Settings) { s.LargeFileMB = 0 }, ErrInvalidLargeSize},
		{"Error_NegativeLargeSize", func(s *Settings) { s.LargeFileMB = -5 }, ErrInvalidLargeSize},
		{"Error_ZeroSmallCount", func(s *Settings) { s.SmallFileCount = 0 }, ErrInvalidSmallCount},
		{"Error_ZeroSmallMin", func(s *Settings) { s.SmallMinKB = 0 }, ErrInvalidSmallRange},
		{"Error_InvertedSmallRange", func(s *Settings) { s.SmallMinKB = 100; s.SmallMaxKB = 10 }, ErrInvalidSmallRange},
		{"Error_ZeroRuns", func(s *Settings) { s.Runs = 0 }, ErrInvalidRuns},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			settings := validSettings()
			tc.mutate(settings)

			err := settings.Validate()

			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

// TestApplyFile_Success tests the application of a settings file onto
// defaults, with absent keys left untouched.
func TestApplyFile_Success(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sharebench.conf")
	require.NoError(t, os.WriteFile(path, []byte(
		"SHAREBENCH_LARGE_MB=250\n"+
			"SHAREBENCH_SMALL_COUNT=100\n"+
			"SHAREBENCH_NO_GEN=true\n"+
			"SHAREBENCH_SEED=fixed-seed\n",
	), 0o644))

	handler := NewHandler(&GodotenvProvider{})
	settings := handler.DefaultSettings()

	require.NoError(t, handler.ApplyFile(settings, path))

	assert.Equal(t, 250, settings.LargeFileMB)
	assert.Equal(t, 100, settings.SmallFileCount)
	assert.True(t, settings.NoGeneration)
	assert.Equal(t, "fixed-seed", settings.Seed)

	assert.Equal(t, DefaultSmallMinKB, settings.SmallMinKB)
	assert.Equal(t, DefaultSmallMaxKB, settings.SmallMaxKB)
	assert.Equal(t, DefaultRuns, settings.Runs)
}

// TestApplyFile_UnparseableValues tests that unparseable values fall back to
// the previous setting.
func TestApplyFile_UnparseableValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sharebench.conf")
	require.NoError(t, os.WriteFile(path, []byte(
		"SHAREBENCH_LARGE_MB=notanumber\n"+
			"SHAREBENCH_NO_GEN=notabool\n",
	), 0o644))

	handler := NewHandler(&GodotenvProvider{})
	settings := handler.DefaultSettings()

	require.NoError(t, handler.ApplyFile(settings, path))

	assert.Equal(t, DefaultLargeFileMB, settings.LargeFileMB)
	assert.False(t, settings.NoGeneration)
}

// TestApplyFile_MissingFile tests the error path for a missing settings file.
func TestApplyFile_MissingFile(t *testing.T) {
	t.Parallel()

	handler := NewHandler(&GodotenvProvider{})
	settings := handler.DefaultSettings()

	err := handler.ApplyFile(settings, filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
}

// TestPaths_Success tests the derived benchmark paths.
func TestPaths_Success(t *testing.T) {
	t.Parallel()

	settings := validSettings()

	assert.Equal(t, "/home/user/smb_bench_staging", settings.StagingPath())
	assert.Equal(t, "/home/user/smb_bench_reports", settings.ReportPath())
	assert.Equal(t, "/mnt/share/smb_bench_target_nas01", settings.RemotePath())
}

// TestByteSizes_Success tests the byte conversions of the size settings.
func TestByteSizes_Success(t *testing.T) {
	t.Parallel()

	settings := validSettings()

	assert.EqualValues(t, 1000*1024*1024, settings.LargeFileBytes())
	assert.EqualValues(t, 10*1024, settings.SmallMinBytes())
	assert.EqualValues(t, 100*1024, settings.SmallMaxBytes())
}
