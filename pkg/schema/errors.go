package schema

import (
	"github.com/cockroachdb/errors"

	"github.com/ssargent/binrec/pkg/codec"
)

var (
	// ErrSchema reports a bad declaration. It is only returned by Compile.
	ErrSchema = errors.New("invalid schema")

	// ErrNoField reports a field name the schema does not declare
	ErrNoField = errors.New("no such field")

	// ErrLengthMismatch reports a size field that disagrees with its payload.
	// It matches codec.ErrTypeMismatch as well.
	ErrLengthMismatch = errors.Wrap(codec.ErrTypeMismatch, "length prefix does not match payload")

	// ErrMidRecord reports a whole-record call on a cursor that is part way
	// through a record
	ErrMidRecord = errors.New("cursor is in the middle of a record")
)
