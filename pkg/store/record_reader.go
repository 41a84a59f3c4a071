package store

import (
	"bufio"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ssargent/binrec/pkg/codec"
	"github.com/ssargent/binrec/pkg/logging"
	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/schema"
)

// RecordReader provides sequential access to the records of a file
type RecordReader struct {
	file   *os.File
	reader *codec.Reader
	base   int64 // file offset the reader started at
	config RecordReaderConfig
	logger *zap.Logger
}

// NewRecordReader opens the file at config.FilePath for reading
func NewRecordReader(config RecordReaderConfig) (*RecordReader, error) {
	if config.Schema == nil {
		return nil, ErrNoSchema
	}

	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", config.FilePath)
	}

	r := &RecordReader{
		file:   file,
		config: config,
		logger: logging.OrNop(config.Logger).With(zap.String("file", config.FilePath), zap.String("schema", config.Schema.Name())),
	}
	if err := r.Seek(config.StartOffset); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

// ReadNext decodes the record at the current offset. It returns io.EOF when
// the file ends exactly on a record boundary and an error matching
// ErrCorruption when it ends inside a record. After any other error the
// offset is undefined until the next Seek.
func (r *RecordReader) ReadNext() (*schema.Record, error) {
	start := r.Offset()
	rec, err := decodeRecord(r.config.Schema, r.reader)
	if err != nil {
		if r.Offset() == start && errors.Is(err, codec.ErrTruncatedInput) {
			return nil, io.EOF
		}
		r.config.Metrics.Error(metrics.OpRead)
		r.logger.Warn("failed to decode record", zap.Int64("offset", start), zap.Error(err))
		return nil, errors.Wrapf(err, "record at offset %d", start)
	}

	r.config.Metrics.Record(r.config.Schema.Name(), metrics.OpRead, r.Offset()-start)
	return rec, nil
}

// ReadAt decodes the record starting at offset without moving the
// sequential cursor
func (r *RecordReader) ReadAt(offset int64) (*schema.Record, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", r.config.FilePath)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "failed to seek to %d", offset)
	}

	cr := codec.NewReader(bufio.NewReader(file))
	cr.SetMaxPayload(r.config.MaxPayload)
	rec, err := decodeRecord(r.config.Schema, cr)
	if err != nil {
		r.config.Metrics.Error(metrics.OpRead)
		return nil, errors.Wrapf(err, "record at offset %d", offset)
	}

	r.config.Metrics.Record(r.config.Schema.Name(), metrics.OpRead, cr.Offset())
	return rec, nil
}

// decodeRecord reads one record, marking decode failures that can only come
// from damaged data as corruption
func decodeRecord(s *schema.Schema, cr *codec.Reader) (*schema.Record, error) {
	rec, err := schema.ReadAll(s, cr)
	if err != nil {
		if errors.Is(err, codec.ErrTruncatedInput) || errors.Is(err, codec.ErrInvalidLength) {
			return nil, errors.Mark(err, ErrCorruption)
		}
		return nil, err
	}
	return rec, nil
}

// Seek sets the read offset
func (r *RecordReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "failed to seek to %d", offset)
	}

	// Recreate the reader to drop buffered bytes
	size := r.config.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	r.reader = codec.NewReader(bufio.NewReaderSize(r.file, size))
	r.reader.SetMaxPayload(r.config.MaxPayload)
	r.base = offset
	return nil
}

// Offset returns the current read offset
func (r *RecordReader) Offset() int64 {
	return r.base + r.reader.Offset()
}

// Iterator returns a streaming iterator for records
func (r *RecordReader) Iterator() RecordIterator {
	return &recordIterator{reader: r}
}

// Close closes the record reader
func (r *RecordReader) Close() error {
	return r.file.Close()
}

// recordIterator implements RecordIterator for streaming access
type recordIterator struct {
	reader *RecordReader
	record *schema.Record
	err    error
}

func (it *recordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.record, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *recordIterator) Record() *schema.Record {
	return it.record
}

// Err returns the error that stopped iteration, or nil at a clean end of file
func (it *recordIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *recordIterator) Close() error {
	// The underlying reader is owned by the caller
	return nil
}
