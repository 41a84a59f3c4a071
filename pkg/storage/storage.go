// Package storage keeps parameter-list structures in an embedded pebble
// database, keyed by KSUID so that ids sort by creation time.
package storage

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/binrec/pkg/codec"
	"github.com/ssargent/binrec/pkg/logging"
	"github.com/ssargent/binrec/pkg/metrics"
	"github.com/ssargent/binrec/pkg/paramlist"
)

// structureLabel is the schema label stored structures are counted under
const structureLabel = "Structure"

var (
	keyPrefix = []byte("structure:")
	keyLimit  = []byte("structure;") // first key past the prefix

	// ErrNotFound is returned for an id with no stored structure
	ErrNotFound = errors.New("structure not found")
)

// Config holds configuration for the structure store
type Config struct {
	Path       string // Directory of the pebble database
	Sync       bool   // fsync every write
	MaxPayload int64  // Largest accepted length prefix (0 = codec default)
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// StructureStore persists structures in their wire encoding
type StructureStore struct {
	db      *pebble.DB
	config  Config
	logger  *zap.Logger
	writeOp *pebble.WriteOptions
}

// Open opens (or creates) the store at config.Path
func Open(config Config) (*StructureStore, error) {
	logger := logging.OrNop(config.Logger).With(zap.String("store", config.Path))

	db, err := pebble.Open(config.Path, &pebble.Options{
		Logger: logger.Sugar(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open structure store at %s", config.Path)
	}

	writeOp := pebble.NoSync
	if config.Sync {
		writeOp = pebble.Sync
	}

	logger.Debug("structure store opened")
	return &StructureStore{db: db, config: config, logger: logger, writeOp: writeOp}, nil
}

func structureKey(id ksuid.KSUID) []byte {
	return append(append([]byte{}, keyPrefix...), id.Bytes()...)
}

// Create stores s under a new id
func (s *StructureStore) Create(st *paramlist.Structure) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.put(id, st); err != nil {
		return ksuid.Nil, err
	}
	s.logger.Debug("structure created", zap.Stringer("id", id), zap.Int("params", st.Len()))
	return id, nil
}

// Read decodes the structure stored under id
func (s *StructureStore) Read(id ksuid.KSUID) (*paramlist.Structure, error) {
	data, closer, err := s.db.Get(structureKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "%s", id)
		}
		s.config.Metrics.Error(metrics.OpLoad)
		return nil, errors.Wrapf(err, "failed to read structure %s", id)
	}
	defer closer.Close()

	// data is only valid until closer.Close; decoding copies what it keeps
	st, err := s.decode(data)
	if err != nil {
		s.config.Metrics.Error(metrics.OpLoad)
		return nil, errors.Wrapf(err, "structure %s", id)
	}

	s.config.Metrics.Record(structureLabel, metrics.OpLoad, int64(len(data)))
	return st, nil
}

func (s *StructureStore) decode(data []byte) (*paramlist.Structure, error) {
	r := bytes.NewReader(data)
	cr := codec.NewReader(r)
	cr.SetMaxPayload(s.config.MaxPayload)

	st, err := paramlist.Read(cr)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, errors.Wrapf(paramlist.ErrTrailingData, "%d bytes", r.Len())
	}
	return st, nil
}

// Update replaces the structure stored under id
func (s *StructureStore) Update(id ksuid.KSUID, st *paramlist.Structure) error {
	if err := s.exists(id); err != nil {
		return err
	}
	return s.put(id, st)
}

// Delete removes the structure stored under id
func (s *StructureStore) Delete(id ksuid.KSUID) error {
	if err := s.exists(id); err != nil {
		return err
	}
	if err := s.db.Delete(structureKey(id), s.writeOp); err != nil {
		s.config.Metrics.Error(metrics.OpStore)
		return errors.Wrapf(err, "failed to delete structure %s", id)
	}
	s.logger.Debug("structure deleted", zap.Stringer("id", id))
	return nil
}

// List returns every stored id, oldest first
func (s *StructureStore) List() ([]ksuid.KSUID, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: keyLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to iterate structures")
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(keyPrefix):])
		if err != nil {
			return nil, errors.Wrapf(err, "malformed key %x", iter.Key())
		}
		ids = append(ids, id)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate structures")
	}
	return ids, nil
}

// Close closes the underlying database
func (s *StructureStore) Close() error {
	return s.db.Close()
}

func (s *StructureStore) put(id ksuid.KSUID, st *paramlist.Structure) error {
	data, err := st.MarshalBinary()
	if err != nil {
		s.config.Metrics.Error(metrics.OpStore)
		return errors.Wrap(err, "failed to encode structure")
	}
	if err := s.db.Set(structureKey(id), data, s.writeOp); err != nil {
		s.config.Metrics.Error(metrics.OpStore)
		return errors.Wrapf(err, "failed to store structure %s", id)
	}
	s.config.Metrics.Record(structureLabel, metrics.OpStore, int64(len(data)))
	return nil
}

func (s *StructureStore) exists(id ksuid.KSUID) error {
	_, closer, err := s.db.Get(structureKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return errors.Wrapf(ErrNotFound, "%s", id)
		}
		return errors.Wrapf(err, "failed to look up structure %s", id)
	}
	return closer.Close()
}
