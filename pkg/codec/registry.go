package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cockroachdb/errors"
)

// Codec is the registered encode/decode rule for one primitive type
type Codec struct {
	Type  Type
	Width int // 0 for length-prefixed kinds

	put func(order binary.ByteOrder, buf []byte, v any) error
	get func(order binary.ByteOrder, buf []byte) any
}

// Variable reports whether the codec reads a length-prefixed payload
func (c Codec) Variable() bool {
	return c.Width == 0
}

type kindCodec struct {
	put func(order binary.ByteOrder, buf []byte, v any) error
	get func(order binary.ByteOrder, buf []byte) any
}

var kindCodecs = map[Kind]kindCodec{
	KindChar:    {put: putChar, get: getChar},
	KindInt8:    {put: putInt(8), get: func(_ binary.ByteOrder, b []byte) any { return int8(b[0]) }},
	KindUint8:   {put: putUint(8), get: func(_ binary.ByteOrder, b []byte) any { return b[0] }},
	KindBool:    {put: putBool, get: func(_ binary.ByteOrder, b []byte) any { return b[0] != 0 }},
	KindInt16:   {put: putInt(16), get: func(o binary.ByteOrder, b []byte) any { return int16(o.Uint16(b)) }},
	KindUint16:  {put: putUint(16), get: func(o binary.ByteOrder, b []byte) any { return o.Uint16(b) }},
	KindInt32:   {put: putInt(32), get: func(o binary.ByteOrder, b []byte) any { return int32(o.Uint32(b)) }},
	KindUint32:  {put: putUint(32), get: func(o binary.ByteOrder, b []byte) any { return o.Uint32(b) }},
	KindInt64:   {put: putInt(64), get: func(o binary.ByteOrder, b []byte) any { return int64(o.Uint64(b)) }},
	KindUint64:  {put: putUint(64), get: func(o binary.ByteOrder, b []byte) any { return o.Uint64(b) }},
	KindFloat32: {put: putFloat32, get: func(o binary.ByteOrder, b []byte) any { return math.Float32frombits(o.Uint32(b)) }},
	KindFloat64: {put: putFloat64, get: func(o binary.ByteOrder, b []byte) any { return math.Float64frombits(o.Uint64(b)) }},
	KindString:  {get: func(_ binary.ByteOrder, b []byte) any { return string(b) }},
	KindBytes:   {get: func(_ binary.ByteOrder, b []byte) any { return b }},
}

var registry = func() map[Type]Codec {
	m := make(map[Type]Codec)
	for _, t := range Types() {
		kc := kindCodecs[t.Kind()]
		m[t] = Codec{Type: t, Width: t.Width(), put: kc.put, get: kc.get}
	}
	return m
}()

// Lookup returns the registered codec for t
func Lookup(t Type) (Codec, error) {
	c, ok := registry[t]
	if !ok {
		return Codec{}, errors.Wrapf(ErrUnknownType, "type %d", uint8(t))
	}
	return c, nil
}

// Encode returns the wire bytes of v as type t. For length-prefixed kinds the
// result is the payload only; the length travels in a separate size field.
func Encode(t Type, v any) ([]byte, error) {
	c, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	if c.Variable() {
		return payloadBytes(t, v)
	}
	buf := make([]byte, c.Width)
	if err := c.put(t.Endian().ByteOrder(), buf, v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Decode reads one fixed-width value of type t from r. Length-prefixed kinds
// fail with ErrUnprimedLength; use DecodePayload for those.
func Decode(t Type, r io.Reader) (any, error) {
	return AsReader(r).ReadType(t)
}

// DecodePayload reads a length-prefixed value of type t whose byte length n
// was decoded from the preceding size field.
func DecodePayload(t Type, r io.Reader, n int64) (any, error) {
	return AsReader(r).ReadPayload(t, n)
}

// PayloadLen returns the number of payload bytes v occupies as type t
func PayloadLen(t Type, v any) (int, error) {
	b, err := payloadBytes(t, v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func payloadBytes(t Type, v any) ([]byte, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	}
	return nil, mismatch(t, v)
}

func mismatch(t fmt.Stringer, v any) error {
	return errors.Wrapf(ErrTypeMismatch, "%s cannot hold %T", t, v)
}

func putChar(_ binary.ByteOrder, buf []byte, v any) error {
	switch x := v.(type) {
	case string:
		if len(x) != 1 {
			return errors.Wrapf(ErrValueOutOfRange, "char needs exactly one byte, got %d", len(x))
		}
		buf[0] = x[0]
	case byte:
		buf[0] = x
	case rune:
		if x < 0 || x > 0x7f {
			return errors.Wrapf(ErrValueOutOfRange, "char %U is not a single byte", x)
		}
		buf[0] = byte(x)
	default:
		return mismatch(KindChar, v)
	}
	return nil
}

func getChar(_ binary.ByteOrder, buf []byte) any {
	return string(buf[:1])
}

func putBool(_ binary.ByteOrder, buf []byte, v any) error {
	b, ok := v.(bool)
	if !ok {
		return mismatch(KindBool, v)
	}
	buf[0] = 0
	if b {
		buf[0] = 1
	}
	return nil
}

func putFloat32(order binary.ByteOrder, buf []byte, v any) error {
	var f float32
	switch x := v.(type) {
	case float32:
		f = x
	case float64:
		if !math.IsInf(x, 0) && !math.IsNaN(x) && math.Abs(x) > math.MaxFloat32 {
			return errors.Wrapf(ErrValueOutOfRange, "%g overflows float32", x)
		}
		f = float32(x)
	default:
		return mismatch(KindFloat32, v)
	}
	order.PutUint32(buf, math.Float32bits(f))
	return nil
}

func putFloat64(order binary.ByteOrder, buf []byte, v any) error {
	var f float64
	switch x := v.(type) {
	case float32:
		f = float64(x)
	case float64:
		f = x
	default:
		return mismatch(KindFloat64, v)
	}
	order.PutUint64(buf, math.Float64bits(f))
	return nil
}

// integer splits any Go integer into sign and magnitude
func integer(v any) (neg bool, mag uint64, ok bool) {
	var i int64
	switch x := v.(type) {
	case int:
		i = int64(x)
	case int8:
		i = int64(x)
	case int16:
		i = int64(x)
	case int32:
		i = int64(x)
	case int64:
		i = x
	case uint:
		return false, uint64(x), true
	case uint8:
		return false, uint64(x), true
	case uint16:
		return false, uint64(x), true
	case uint32:
		return false, uint64(x), true
	case uint64:
		return false, x, true
	case uintptr:
		return false, uint64(x), true
	default:
		return false, 0, false
	}
	if i < 0 {
		return true, uint64(-(i + 1)) + 1, true
	}
	return false, uint64(i), true
}

func putInt(bits uint) func(binary.ByteOrder, []byte, any) error {
	return func(order binary.ByteOrder, buf []byte, v any) error {
		neg, mag, ok := integer(v)
		if !ok {
			return errors.Wrapf(ErrTypeMismatch, "int%d cannot hold %T", bits, v)
		}
		limit := uint64(1) << (bits - 1)
		if (neg && mag > limit) || (!neg && mag >= limit) {
			return errors.Wrapf(ErrValueOutOfRange, "%v does not fit in int%d", v, bits)
		}
		raw := mag
		if neg {
			raw = ^mag + 1
		}
		putBits(order, buf, bits, raw)
		return nil
	}
}

func putUint(bits uint) func(binary.ByteOrder, []byte, any) error {
	return func(order binary.ByteOrder, buf []byte, v any) error {
		neg, mag, ok := integer(v)
		if !ok {
			return errors.Wrapf(ErrTypeMismatch, "uint%d cannot hold %T", bits, v)
		}
		if neg || (bits < 64 && mag >= uint64(1)<<bits) {
			return errors.Wrapf(ErrValueOutOfRange, "%v does not fit in uint%d", v, bits)
		}
		putBits(order, buf, bits, mag)
		return nil
	}
}

func putBits(order binary.ByteOrder, buf []byte, bits uint, raw uint64) {
	switch bits {
	case 8:
		buf[0] = byte(raw)
	case 16:
		order.PutUint16(buf, uint16(raw))
	case 32:
		order.PutUint32(buf, uint32(raw))
	case 64:
		order.PutUint64(buf, raw)
	}
}
