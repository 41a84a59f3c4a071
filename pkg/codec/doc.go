// Package codec provides the primitive type registry for binrec.
//
// Every field of a binrec schema is ultimately encoded by one of the
// primitive codecs registered here. A primitive Type is a Kind (the value
// shape) plus a byte order, so Int32BE and Int32LE are distinct types with
// the same width.
//
// # Primitive Types
//
//	Kind      Go value   Width
//	Char      string     1      (exactly one byte, not NUL-terminated)
//	Int8      int8       1
//	Uint8     uint8      1
//	Bool      bool       1
//	Int16     int16      2
//	Uint16    uint16     2
//	Int32     int32      4
//	Uint32    uint32     4
//	Int64     int64      8
//	Uint64    uint64     8
//	Float32   float32    4      (IEEE-754)
//	Float64   float64    8      (IEEE-754)
//	String    string     var
//	Bytes     []byte     var
//
// Each kind is registered as both <Kind>BE and <Kind>LE.
//
// # Length-Prefixed Kinds
//
// String and Bytes have no fixed width. Their byte length is carried by a
// separate integer field that precedes them in the enclosing schema, so the
// codecs here only move the payload:
//
//	size, _ := codec.Decode(codec.Int32BE, r)                           // the size field
//	text, _ := codec.DecodePayload(codec.StringBE, r, int64(size.(int32))) // the payload
//
// Calling Decode on a length-prefixed type fails with ErrUnprimedLength.
// The schema package wires the two calls together and passes the length as
// an argument; nothing in this package remembers a length between calls.
//
// # Error Handling
//
//   - ErrTruncatedInput: the stream ended before the value was complete
//   - ErrValueOutOfRange: the value does not fit the declared width
//   - ErrTypeMismatch: the Go value has the wrong type for the field
//   - ErrInvalidLength: a length prefix is negative or above the payload limit
//   - ErrUnprimedLength: a payload decode was attempted without a length
//   - ErrUnknownType: the type is not in the registry
//
// Errors are wrapped with context as they propagate; match them with
// errors.Is.
//
// # Thread Safety
//
// The registry is immutable after package initialization and safe for
// concurrent use. Reader and Writer are not; each one belongs to the single
// caller that owns its stream.
package codec
