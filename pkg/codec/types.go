package codec

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Kind is the value shape of a primitive type, independent of byte order
type Kind uint8

const (
	KindInvalid Kind = iota
	KindChar
	KindInt8
	KindUint8
	KindBool
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
)

var kindNames = [...]string{
	KindInvalid: "Invalid",
	KindChar:    "Char",
	KindInt8:    "Int8",
	KindUint8:   "Uint8",
	KindBool:    "Bool",
	KindInt16:   "Int16",
	KindUint16:  "Uint16",
	KindInt32:   "Int32",
	KindUint32:  "Uint32",
	KindInt64:   "Int64",
	KindUint64:  "Uint64",
	KindFloat32: "Float32",
	KindFloat64: "Float64",
	KindString:  "String",
	KindBytes:   "Bytes",
}

var kindWidths = [...]int{
	KindChar:    1,
	KindInt8:    1,
	KindUint8:   1,
	KindBool:    1,
	KindInt16:   2,
	KindUint16:  2,
	KindInt32:   4,
	KindUint32:  4,
	KindInt64:   8,
	KindUint64:  8,
	KindFloat32: 4,
	KindFloat64: 8,
	KindString:  0,
	KindBytes:   0,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Invalid"
}

// Integer reports whether values of this kind are integers
func (k Kind) Integer() bool {
	switch k {
	case KindInt8, KindUint8, KindInt16, KindUint16, KindInt32, KindUint32, KindInt64, KindUint64:
		return true
	}
	return false
}

// Endian is the byte order of a primitive type
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

func (e Endian) String() string {
	if e == LittleEndian {
		return "LE"
	}
	return "BE"
}

// ByteOrder returns the encoding/binary order for e
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Type is a primitive type tag: a Kind plus a byte order.
// The low bit carries the byte order, the remaining bits the kind.
type Type uint8

func makeType(k Kind, e Endian) Type {
	return Type(uint8(k)<<1 | uint8(e))
}

const (
	Invalid Type = 0

	CharBE    = Type(uint8(KindChar) << 1)
	Int8BE    = Type(uint8(KindInt8) << 1)
	Uint8BE   = Type(uint8(KindUint8) << 1)
	BoolBE    = Type(uint8(KindBool) << 1)
	Int16BE   = Type(uint8(KindInt16) << 1)
	Uint16BE  = Type(uint8(KindUint16) << 1)
	Int32BE   = Type(uint8(KindInt32) << 1)
	Uint32BE  = Type(uint8(KindUint32) << 1)
	Int64BE   = Type(uint8(KindInt64) << 1)
	Uint64BE  = Type(uint8(KindUint64) << 1)
	Float32BE = Type(uint8(KindFloat32) << 1)
	Float64BE = Type(uint8(KindFloat64) << 1)
	StringBE  = Type(uint8(KindString) << 1)
	BytesBE   = Type(uint8(KindBytes) << 1)

	CharLE    = Type(uint8(KindChar)<<1 | 1)
	Int8LE    = Type(uint8(KindInt8)<<1 | 1)
	Uint8LE   = Type(uint8(KindUint8)<<1 | 1)
	BoolLE    = Type(uint8(KindBool)<<1 | 1)
	Int16LE   = Type(uint8(KindInt16)<<1 | 1)
	Uint16LE  = Type(uint8(KindUint16)<<1 | 1)
	Int32LE   = Type(uint8(KindInt32)<<1 | 1)
	Uint32LE  = Type(uint8(KindUint32)<<1 | 1)
	Int64LE   = Type(uint8(KindInt64)<<1 | 1)
	Uint64LE  = Type(uint8(KindUint64)<<1 | 1)
	Float32LE = Type(uint8(KindFloat32)<<1 | 1)
	Float64LE = Type(uint8(KindFloat64)<<1 | 1)
	StringLE  = Type(uint8(KindString)<<1 | 1)
	BytesLE   = Type(uint8(KindBytes)<<1 | 1)
)

// Kind returns the value shape of t
func (t Type) Kind() Kind {
	return Kind(uint8(t) >> 1)
}

// Endian returns the declared byte order of t
func (t Type) Endian() Endian {
	return Endian(uint8(t) & 1)
}

// Width returns the fixed encoded width in bytes, or 0 for variable-length kinds
func (t Type) Width() int {
	k := t.Kind()
	if int(k) >= len(kindWidths) {
		return 0
	}
	return kindWidths[k]
}

// Variable reports whether t is a length-prefixed kind
func (t Type) Variable() bool {
	k := t.Kind()
	return k == KindString || k == KindBytes
}

// Valid reports whether t belongs to the registry
func (t Type) Valid() bool {
	k := t.Kind()
	return k > KindInvalid && k <= KindBytes
}

func (t Type) String() string {
	if !t.Valid() {
		return "Invalid"
	}
	return t.Kind().String() + t.Endian().String()
}

// Types returns every registered primitive type
func Types() []Type {
	types := make([]Type, 0, 2*int(KindBytes))
	for k := KindChar; k <= KindBytes; k++ {
		types = append(types, makeType(k, BigEndian), makeType(k, LittleEndian))
	}
	return types
}

// ParseType looks up a type by its String form, e.g. "Int32BE"
func ParseType(name string) (Type, error) {
	for _, t := range Types() {
		if t.String() == name {
			return t, nil
		}
	}
	return Invalid, errors.Wrapf(ErrUnknownType, "%q", name)
}
