package schema

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/binrec/pkg/codec"
)

// Reader is a schema-bound read cursor over a stream. Every stream read is an
// explicit ReadField or ReadAll call. The length decoded from a size field
// lives on the cursor only until the following payload field consumes it.
type Reader struct {
	schema *Schema
	r      *codec.Reader
	next   int
	length int64
	primed bool
}

// NewReader binds s to r. If r is a *codec.Reader it is used directly so
// nested cursors share its offset and payload limit.
func NewReader(s *Schema, r io.Reader) *Reader {
	return &Reader{schema: s, r: codec.AsReader(r)}
}

// Next returns the field the next ReadField call will decode, or the zero
// Field when the schema has no fields
func (c *Reader) Next() Field {
	if len(c.schema.fields) == 0 {
		return Field{}
	}
	return c.schema.fields[c.next]
}

// ReadField decodes the next field in declaration order. After the last
// field the cursor wraps around to the start of the next record.
func (c *Reader) ReadField() (Field, any, error) {
	if len(c.schema.fields) == 0 {
		return Field{}, nil, errors.Wrapf(ErrSchema, "%s has no fields", c.schema.name)
	}
	f := c.schema.fields[c.next]
	v, err := c.schema.reads[c.next](c.r, c.length, c.primed)
	c.length, c.primed = 0, false
	if err != nil {
		return f, nil, errors.Wrapf(err, "%s.%s", c.schema.name, f.Name)
	}
	if f.sizes >= 0 {
		n, err := lengthOf(v)
		if err != nil {
			return f, nil, errors.Wrapf(err, "%s.%s", c.schema.name, f.Name)
		}
		c.length, c.primed = n, true
	}
	c.next = (c.next + 1) % len(c.schema.fields)
	return f, v, nil
}

// ReadAll decodes one whole record. It leaves the stream exactly past the
// record's last byte.
func (c *Reader) ReadAll() (*Record, error) {
	if c.next != 0 {
		return nil, errors.Wrapf(ErrMidRecord, "%s at field %d", c.schema.name, c.next)
	}
	rec := NewRecord(c.schema)
	for i := range c.schema.fields {
		_, v, err := c.ReadField()
		if err != nil {
			c.next = 0
			return nil, err
		}
		rec.values[i] = v
	}
	return rec, nil
}

// Writer is a schema-bound write cursor over a stream
type Writer struct {
	schema *Schema
	w      *codec.Writer
	next   int
	length int64
	primed bool
}

// NewWriter binds s to w
func NewWriter(s *Schema, w io.Writer) *Writer {
	return &Writer{schema: s, w: codec.AsWriter(w)}
}

// Next returns the field the next WriteField call will encode, or the zero
// Field when the schema has no fields
func (c *Writer) Next() Field {
	if len(c.schema.fields) == 0 {
		return Field{}
	}
	return c.schema.fields[c.next]
}

// WriteField encodes v as the next field in declaration order. A payload
// field must match the length written by its size field.
func (c *Writer) WriteField(v any) error {
	if len(c.schema.fields) == 0 {
		return errors.Wrapf(ErrSchema, "%s has no fields", c.schema.name)
	}
	f := c.schema.fields[c.next]
	var n int64
	if f.sizes >= 0 {
		var err error
		if n, err = lengthOf(v); err != nil {
			return errors.Wrapf(err, "%s.%s", c.schema.name, f.Name)
		}
	}
	if err := c.schema.writes[c.next](c.w, v, c.length, c.primed); err != nil {
		return errors.Wrapf(err, "%s.%s", c.schema.name, f.Name)
	}
	c.length, c.primed = n, f.sizes >= 0
	c.next = (c.next + 1) % len(c.schema.fields)
	return nil
}

// WriteAll encodes a whole record. Size fields left nil are derived from
// their payload; a size that disagrees with its payload fails before the
// size field is written.
func (c *Writer) WriteAll(rec *Record) error {
	if c.next != 0 {
		return errors.Wrapf(ErrMidRecord, "%s at field %d", c.schema.name, c.next)
	}
	if rec == nil {
		return errors.Wrapf(codec.ErrTypeMismatch, "nil record written as %s", c.schema.name)
	}
	if rec.schema != c.schema {
		return errors.Wrapf(codec.ErrTypeMismatch, "record of %s written as %s", rec.schema.name, c.schema.name)
	}
	for i, f := range c.schema.fields {
		v := rec.values[i]
		if f.sizes >= 0 {
			var err error
			if v, err = c.sizeFor(f, v, rec.values[f.sizes]); err != nil {
				c.reset()
				return err
			}
		}
		if err := c.WriteField(v); err != nil {
			c.reset()
			return err
		}
	}
	return nil
}

func (c *Writer) sizeFor(f Field, size, payload any) (any, error) {
	pf := c.schema.fields[f.sizes]
	n, err := codec.PayloadLen(pf.Type, payload)
	if err != nil {
		return nil, errors.Wrapf(err, "%s.%s", c.schema.name, pf.Name)
	}
	if size == nil {
		return n, nil
	}
	have, err := lengthOf(size)
	if err != nil {
		return nil, errors.Wrapf(err, "%s.%s", c.schema.name, f.Name)
	}
	if have != int64(n) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%s.%s is %d, %s has %d bytes", c.schema.name, f.Name, have, pf.Name, n)
	}
	return size, nil
}

func (c *Writer) reset() {
	c.next, c.length, c.primed = 0, 0, false
}

// ReadAll decodes one record of s from r
func ReadAll(s *Schema, r io.Reader) (*Record, error) {
	return NewReader(s, r).ReadAll()
}

// WriteAll encodes rec as s onto w
func WriteAll(s *Schema, rec *Record, w io.Writer) error {
	return NewWriter(s, w).WriteAll(rec)
}
