package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/binrec/pkg/codec"
	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/schema"
)

var entrySchema = schema.MustCompile("Entry",
	schema.Prim("id", codec.Uint32BE),
	schema.Prim("size", codec.Int32BE),
	schema.Prim("name", codec.StringBE),
)

func entry(t *testing.T, id uint32, name string) *schema.Record {
	t.Helper()
	rec, err := schema.FromMap(entrySchema, map[string]any{"id": id, "name": name})
	require.NoError(t, err)
	return rec
}

// entryLen is the encoded size of an Entry record
func entryLen(name string) int64 {
	return int64(4 + 4 + len(name))
}

// counterSum adds up every series of the named counter
func counterSum(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			sum += metric.GetCounter().GetValue()
		}
	}
	return sum
}

func newTestWriter(t *testing.T, filePath string, interval time.Duration) *RecordWriter {
	t.Helper()
	writer, err := NewRecordWriter(RecordWriterConfig{
		FilePath:      filePath,
		Schema:        entrySchema,
		FsyncInterval: interval,
		BufferSize:    4096,
	})
	require.NoError(t, err)
	return writer
}

func TestNewRecordWriter(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "test.rec")
	writer := newTestWriter(t, filePath, 0)

	assert.FileExists(t, filePath)
	assert.Equal(t, int64(0), writer.Size())
	assert.Equal(t, filePath, writer.Path())

	assert.NoError(t, writer.Close())
}

func TestNewRecordWriter_DirectoryCreation(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_dir_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	nestedDir := filepath.Join(tmpDir, "nested", "deep", "path")
	writer := newTestWriter(t, filepath.Join(nestedDir, "test.rec"), 0)

	assert.DirExists(t, nestedDir)
	assert.NoError(t, writer.Close())
}

func TestNewRecordWriter_InvalidConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_invalid_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// a regular file where a directory is needed
	blocker := filepath.Join(tmpDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	writer, err := NewRecordWriter(RecordWriterConfig{
		FilePath: filepath.Join(blocker, "sub", "test.rec"),
		Schema:   entrySchema,
	})
	assert.Error(t, err)
	assert.Nil(t, writer)

	writer, err = NewRecordWriter(RecordWriterConfig{FilePath: "x.rec"})
	assert.True(t, errors.Is(err, ErrNoSchema))
	assert.Nil(t, writer)
}

func TestRecordWriter_Append(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_append_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	writer := newTestWriter(t, filepath.Join(tmpDir, "test.rec"), 0)
	defer writer.Close()

	offset, err := writer.Append(entry(t, 1, "alpha"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)

	offset, err = writer.Append(entry(t, 2, "be"))
	require.NoError(t, err)
	assert.Equal(t, entryLen("alpha"), offset)

	assert.Equal(t, entryLen("alpha")+entryLen("be"), writer.Size())
}

func TestRecordWriter_AppendWireFormat(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_wire_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "test.rec")
	writer := newTestWriter(t, filePath, 0)
	_, err = writer.Append(entry(t, 0x0102, "hi"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1, 2, 0, 0, 0, 2, 'h', 'i'}, data)
}

func TestRecordWriter_RejectedRecordLeavesFileUntouched(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_reject_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	m := metrics.New()
	filePath := filepath.Join(tmpDir, "test.rec")
	writer, err := NewRecordWriter(RecordWriterConfig{FilePath: filePath, Schema: entrySchema, Metrics: m})
	require.NoError(t, err)

	_, err = writer.Append(entry(t, 1, "ok"))
	require.NoError(t, err)

	bad, err := schema.FromMap(entrySchema, map[string]any{"id": -1, "name": "neg"})
	require.NoError(t, err)
	_, err = writer.Append(bad)
	assert.True(t, errors.Is(err, codec.ErrValueOutOfRange), "got %v", err)

	other := schema.MustCompile("Other", schema.Prim("n", codec.Int8BE))
	_, err = writer.Append(schema.NewRecord(other))
	assert.True(t, errors.Is(err, codec.ErrTypeMismatch), "got %v", err)

	assert.Equal(t, entryLen("ok"), writer.Size())
	require.NoError(t, writer.Close())

	stat, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.Equal(t, entryLen("ok"), stat.Size())

	assert.Equal(t, 1.0, counterSum(t, m, "binrec_records_total"))
	assert.Equal(t, 2.0, counterSum(t, m, "binrec_errors_total"))
}

func TestRecordWriter_ReopenAppends(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_reopen_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "test.rec")
	writer := newTestWriter(t, filePath, 0)
	_, err = writer.Append(entry(t, 1, "one"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	writer = newTestWriter(t, filePath, 0)
	defer writer.Close()
	assert.Equal(t, entryLen("one"), writer.Size())

	offset, err := writer.Append(entry(t, 2, "two"))
	require.NoError(t, err)
	assert.Equal(t, entryLen("one"), offset)
}

func TestRecordWriter_FsyncInterval(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_fsync_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "test.rec")
	writer := newTestWriter(t, filePath, 20*time.Millisecond)
	defer writer.Close()

	_, err = writer.Append(entry(t, 1, "buffered"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		stat, err := os.Stat(filePath)
		return err == nil && stat.Size() == entryLen("buffered")
	}, time.Second, 10*time.Millisecond)
}

func TestRecordWriter_Sync(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_sync_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "test.rec")
	writer := newTestWriter(t, filePath, time.Hour)
	defer writer.Close()

	_, err = writer.Append(entry(t, 1, "x"))
	require.NoError(t, err)
	require.NoError(t, writer.Sync())

	stat, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.Equal(t, entryLen("x"), stat.Size())
}

func TestRecordWriter_Closed(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "record_writer_closed_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	writer := newTestWriter(t, filepath.Join(tmpDir, "test.rec"), 0)
	require.NoError(t, writer.Close())
	assert.NoError(t, writer.Close(), "second close is a no-op")

	_, err = writer.Append(entry(t, 1, "late"))
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(writer.Sync(), ErrClosed))
}
