package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/binrec/pkg/codec"
	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/paramlist"
)

func demoStructure() *paramlist.Structure {
	return paramlist.New().
		AddInt("integer", 0).
		AddList("array", "first element", "second", "and so", "forth").
		AddBytes("bynary blob", []byte("some raw data")).
		AddString("string blob", "some less raw data")
}

func TestSaveLoadStructure(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "structure_file_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	m := metrics.New()
	path := filepath.Join(tmpDir, "nested", "demo.bin")
	want := demoStructure()

	require.NoError(t, SaveStructure(path, want, FileOptions{Metrics: m}))
	assert.FileExists(t, path)

	got, err := LoadStructure(path, FileOptions{Metrics: m})
	require.NoError(t, err)
	assert.Equal(t, want.Params(), got.Params())
	assert.Equal(t, 2.0, counterSum(t, m, "binrec_records_total"))

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveStructure_Overwrites(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "structure_file_overwrite_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "s.bin")
	require.NoError(t, SaveStructure(path, demoStructure(), FileOptions{}))
	require.NoError(t, SaveStructure(path, paramlist.New().AddInt("n", 1), FileOptions{}))

	got, err := LoadStructure(path, FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, []paramlist.Parameter{{Key: "n", Value: paramlist.Int(1)}}, got.Params())
}

func TestSaveStructure_FailureKeepsOldFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "structure_file_fail_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "s.bin")
	require.NoError(t, SaveStructure(path, demoStructure(), FileOptions{}))

	err = SaveStructure(path, paramlist.New().AddInt("big", 1<<40), FileOptions{})
	assert.True(t, errors.Is(err, codec.ErrValueOutOfRange), "got %v", err)

	got, err := LoadStructure(path, FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, demoStructure().Params(), got.Params())

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")
}

func TestLoadStructure_Errors(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "structure_file_errors_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	_, err = LoadStructure(filepath.Join(tmpDir, "missing.bin"), FileOptions{})
	assert.Error(t, err)

	data, err := demoStructure().MarshalBinary()
	require.NoError(t, err)

	trailing := filepath.Join(tmpDir, "trailing.bin")
	require.NoError(t, os.WriteFile(trailing, append(data, 0x00), 0600))
	_, err = LoadStructure(trailing, FileOptions{})
	assert.True(t, errors.Is(err, paramlist.ErrTrailingData), "got %v", err)

	truncated := filepath.Join(tmpDir, "truncated.bin")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)-3], 0600))
	_, err = LoadStructure(truncated, FileOptions{})
	assert.True(t, errors.Is(err, codec.ErrTruncatedInput), "got %v", err)

	limited := filepath.Join(tmpDir, "limited.bin")
	require.NoError(t, os.WriteFile(limited, data, 0600))
	_, err = LoadStructure(limited, FileOptions{MaxPayload: 4})
	assert.True(t, errors.Is(err, codec.ErrInvalidLength), "got %v", err)
}
