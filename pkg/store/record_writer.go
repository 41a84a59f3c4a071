package store

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ssargent/binrec/pkg/logging"
	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/schema"
)

// RecordWriter appends records of a single schema to a file
type RecordWriter struct {
	file       *os.File
	writer     *bufio.Writer
	encoded    bytes.Buffer
	fsyncTimer *time.Timer
	config     RecordWriterConfig
	logger     *zap.Logger
	mutex      sync.Mutex
	offset     int64 // Current write offset
	closed     bool
}

// NewRecordWriter opens (or creates) the file at config.FilePath for appending
func NewRecordWriter(config RecordWriterConfig) (*RecordWriter, error) {
	if config.Schema == nil {
		return nil, ErrNoSchema
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", config.FilePath)
	}

	// Seek to end for append behavior
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "failed to seek to end of file")
	}

	w := &RecordWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
		config: config,
		logger: logging.OrNop(config.Logger).With(zap.String("file", config.FilePath), zap.String("schema", config.Schema.Name())),
		offset: end,
	}

	if config.FsyncInterval > 0 {
		w.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			w.mutex.Lock()
			defer w.mutex.Unlock()
			if w.closed {
				return
			}
			if err := w.sync(); err != nil {
				w.logger.Warn("background fsync failed", zap.Error(err))
			}
		})
	}

	w.logger.Debug("record writer opened", zap.Int64("offset", end))
	return w, nil
}

// Append encodes rec at the end of the file and returns the offset it starts
// at. A record that fails to encode leaves the file untouched.
func (w *RecordWriter) Append(rec *schema.Record) (int64, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return 0, ErrClosed
	}

	w.encoded.Reset()
	if err := schema.WriteAll(w.config.Schema, rec, &w.encoded); err != nil {
		w.config.Metrics.Error(metrics.OpWrite)
		return 0, errors.Wrapf(err, "failed to encode record at offset %d", w.offset)
	}

	n, err := w.writer.Write(w.encoded.Bytes())
	if err != nil {
		w.config.Metrics.Error(metrics.OpWrite)
		return 0, errors.Wrap(err, "failed to write record")
	}

	recordOffset := w.offset
	w.offset += int64(n)

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return 0, err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	w.config.Metrics.Record(w.config.Schema.Name(), metrics.OpWrite, int64(n))
	w.logger.Debug("record appended", zap.Int64("offset", recordOffset), zap.Int("bytes", n))
	return recordOffset, nil
}

// Sync forces a fsync to disk
func (w *RecordWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrClosed
	}
	return w.sync()
}

func (w *RecordWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush record buffer")
	}
	return errors.Wrap(w.file.Sync(), "failed to fsync record file")
}

// Close syncs outstanding records and closes the file
func (w *RecordWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if err := w.sync(); err != nil {
		_ = w.file.Close()
		return err
	}

	w.logger.Debug("record writer closed", zap.Int64("size", w.offset))
	return w.file.Close()
}

// Size returns the current size of the record file
func (w *RecordWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path
func (w *RecordWriter) Path() string {
	return w.config.FilePath
}
