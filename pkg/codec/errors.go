package codec

import "github.com/cockroachdb/errors"

// Errors returned by the primitive codecs. They are wrapped with field
// context as they propagate, so match them with errors.Is.
var (
	ErrTruncatedInput  = errors.New("truncated input")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrUnprimedLength  = errors.New("length-prefixed value decoded without a length")
	ErrInvalidLength   = errors.New("invalid length prefix")
	ErrUnknownType     = errors.New("unknown primitive type")
)

// truncated maps the io package's end-of-input errors onto ErrTruncatedInput
func truncated(err error) error {
	if err == nil {
		return nil
	}
	if isEOF(err) {
		return ErrTruncatedInput
	}
	return err
}
