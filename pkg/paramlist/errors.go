package paramlist

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownTag reports a field header whose tag has no value shape
	ErrUnknownTag = errors.New("unknown tag")

	// ErrBadHeader reports a field header with a wrong start marker or separator
	ErrBadHeader = errors.New("malformed field header")

	// ErrTrailingData reports bytes left over after the sentinel
	ErrTrailingData = errors.New("trailing data after structure")
)
