package store

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ssargent/binrec/pkg/codec"
	"github.com/ssargent/binrec/pkg/logging"
	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/paramlist"
)

// structureLabel is the schema label structure I/O is counted under
const structureLabel = "Structure"

// SaveStructure writes s to path. The file is written under a temporary
// name and renamed into place, so a reader never sees a partial structure.
func SaveStructure(path string, s *paramlist.Structure, opts FileOptions) error {
	logger := logging.OrNop(opts.Logger)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmp.Name()

	n, err := writeStructure(tmp, s)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		opts.Metrics.Error(metrics.OpStore)
		return errors.Wrapf(err, "failed to save structure to %s", path)
	}

	opts.Metrics.Record(structureLabel, metrics.OpStore, n)
	logger.Debug("structure saved", zap.String("path", path), zap.Int("params", s.Len()), zap.Int64("bytes", n))
	return nil
}

func writeStructure(f *os.File, s *paramlist.Structure) (int64, error) {
	bw := bufio.NewWriter(f)
	n, err := s.WriteTo(bw)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, err
	}
	return n, f.Sync()
}

// LoadStructure reads the structure stored at path. The file must hold
// exactly one structure; bytes after the sentinel fail with
// paramlist.ErrTrailingData.
func LoadStructure(path string, opts FileOptions) (*paramlist.Structure, error) {
	logger := logging.OrNop(opts.Logger)
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	cr := codec.NewReader(br)
	cr.SetMaxPayload(opts.MaxPayload)

	s, err := paramlist.Read(cr)
	if err != nil {
		opts.Metrics.Error(metrics.OpLoad)
		return nil, errors.Wrapf(err, "failed to load structure from %s", path)
	}
	if _, err := br.ReadByte(); err != io.EOF {
		opts.Metrics.Error(metrics.OpLoad)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		return nil, errors.Wrapf(paramlist.ErrTrailingData, "%s after offset %d", path, cr.Offset())
	}

	opts.Metrics.Record(structureLabel, metrics.OpLoad, cr.Offset())
	logger.Debug("structure loaded", zap.String("path", path), zap.Int("params", s.Len()), zap.Int64("bytes", cr.Offset()))
	return s, nil
}
