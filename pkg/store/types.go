package store

import (
	"time"

	"go.uber.org/zap"

	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/schema"
)

// defaultBufferSize is used when a config leaves BufferSize unset
const defaultBufferSize = 4096

// RecordWriterConfig holds configuration for the record writer
type RecordWriterConfig struct {
	FilePath      string         // Path to the record file
	Schema        *schema.Schema // Schema every appended record must have
	FsyncInterval time.Duration  // How often to fsync (0 = every write)
	BufferSize    int            // Write buffer size
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// RecordReaderConfig holds configuration for the record reader
type RecordReaderConfig struct {
	FilePath    string         // Path to the record file
	Schema      *schema.Schema // Schema of the records in the file
	StartOffset int64          // Offset to start reading from
	MaxPayload  int64          // Largest accepted length prefix (0 = codec default)
	BufferSize  int            // Read buffer size
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// FileOptions controls structure file I/O
type FileOptions struct {
	MaxPayload int64 // Largest accepted length prefix (0 = codec default)
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *schema.Record
	Err() error
	Close() error
}

// Errors
var (
	ErrCorruption = &StoreError{"data corruption detected"}
	ErrClosed     = &StoreError{"file already closed"}
	ErrNoSchema   = &StoreError{"no schema configured"}
)

// StoreError represents a record file error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
