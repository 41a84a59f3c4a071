package paramlist

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/binrec/pkg/codec"
	"github.com/ssargent/binrec/pkg/schema"
)

const (
	startMarker = ":"
	separator   = " "

	// sentinelKey is written as the key of the terminating field. Readers
	// discard whatever key the sentinel carries.
	sentinelKey = "\x00"
)

// Wire layouts of the parameter list, all big-endian
var (
	IntegerSchema = schema.MustCompile("Integer",
		schema.Prim("N", codec.Int32BE),
	)

	BlobSchema = schema.MustCompile("Blob",
		schema.Prim("size", codec.Int32BE),
		schema.Prim("text", codec.BytesBE),
	)

	StringBlobSchema = schema.MustCompile("SBlob",
		schema.Prim("size", codec.Int32BE),
		schema.Prim("text", codec.StringBE),
	)

	HeaderSchema = schema.MustCompile("Field",
		schema.Prim("start", codec.CharBE),
		schema.Prim("case", codec.CharBE),
		schema.Prim("space", codec.CharBE),
		schema.Embed("key", StringBlobSchema),
	)
)

// Structure is an ordered list of parameters. Insertion order is wire order.
type Structure struct {
	params []Parameter
}

// New returns an empty structure
func New() *Structure {
	return &Structure{}
}

// Add appends a parameter and returns s for chaining
func (s *Structure) Add(key string, v Value) *Structure {
	s.params = append(s.params, Parameter{Key: key, Value: normalize(v)})
	return s
}

// AddInt appends an integer parameter
func (s *Structure) AddInt(key string, n int64) *Structure {
	return s.Add(key, Int(n))
}

// AddBytes appends a raw byte parameter
func (s *Structure) AddBytes(key string, b []byte) *Structure {
	return s.Add(key, Bytes(b))
}

// AddString appends a text parameter
func (s *Structure) AddString(key, str string) *Structure {
	return s.Add(key, String(str))
}

// AddList appends a string list parameter
func (s *Structure) AddList(key string, items ...string) *Structure {
	return s.Add(key, List(append([]string{}, items...)))
}

// Get returns the first parameter with the given key
func (s *Structure) Get(key string) (Parameter, bool) {
	for _, p := range s.params {
		if p.Key == key {
			return p, true
		}
	}
	return Parameter{}, false
}

// Params returns the parameters in wire order
func (s *Structure) Params() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Len returns the number of parameters
func (s *Structure) Len() int {
	return len(s.params)
}

// Read decodes one structure from r, consuming its sentinel. A stream that
// ends before the sentinel fails with codec.ErrTruncatedInput and no
// partial structure is returned.
func Read(r io.Reader) (*Structure, error) {
	cr := codec.AsReader(r)
	s := New()
	for {
		tag, key, err := readHeader(cr)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d", len(s.params))
		}
		if tag == TagEnd {
			return s, nil
		}
		v, err := readValue(cr, tag)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d (%q)", len(s.params), key)
		}
		s.params = append(s.params, Parameter{Key: key, Value: v})
	}
}

func readHeader(r *codec.Reader) (Tag, string, error) {
	rec, err := schema.ReadAll(HeaderSchema, r)
	if err != nil {
		return 0, "", err
	}
	if start := rec.Get("start").(string); start != startMarker {
		return 0, "", errors.Wrapf(ErrBadHeader, "start marker %q", start)
	}
	if space := rec.Get("space").(string); space != separator {
		return 0, "", errors.Wrapf(ErrBadHeader, "separator %q", space)
	}
	tag := Tag(rec.Get("case").(string)[0])
	key := rec.Get("key").(*schema.Record).Get("text").(string)
	return tag, key, nil
}

func readValue(r *codec.Reader, tag Tag) (Value, error) {
	switch tag {
	case TagInt:
		rec, err := schema.ReadAll(IntegerSchema, r)
		if err != nil {
			return nil, err
		}
		return Int(rec.Get("N").(int32)), nil
	case TagBytes:
		rec, err := schema.ReadAll(BlobSchema, r)
		if err != nil {
			return nil, err
		}
		return Bytes(rec.Get("text").([]byte)), nil
	case TagString:
		str, err := readString(r)
		if err != nil {
			return nil, err
		}
		return String(str), nil
	case TagList:
		rec, err := schema.ReadAll(IntegerSchema, r)
		if err != nil {
			return nil, err
		}
		n := rec.Get("N").(int32)
		if n < 0 {
			return nil, errors.Wrapf(codec.ErrInvalidLength, "list count %d", n)
		}
		// the count is not trusted for preallocation
		items := make([]string, 0, min(int(n), 64))
		for i := int32(0); i < n; i++ {
			str, err := readString(r)
			if err != nil {
				return nil, errors.Wrapf(err, "list item %d", i)
			}
			items = append(items, str)
		}
		return List(items), nil
	}
	return nil, errors.Wrapf(ErrUnknownTag, "%q", byte(tag))
}

func readString(r *codec.Reader) (string, error) {
	rec, err := schema.ReadAll(StringBlobSchema, r)
	if err != nil {
		return "", err
	}
	str := rec.Get("text").(string)
	if !utf8.ValidString(str) {
		return "", errors.Wrap(codec.ErrTypeMismatch, "string blob is not valid UTF-8")
	}
	return str, nil
}

// WriteTo encodes the parameters followed by the sentinel. Each parameter is
// encoded completely before any of its bytes reach w, so a rejected value
// leaves no partial parameter behind; earlier parameters may already be
// written.
func (s *Structure) WriteTo(w io.Writer) (int64, error) {
	cw := codec.NewWriter(w)
	var buf bytes.Buffer
	for i, p := range s.params {
		buf.Reset()
		if err := encodeParameter(&buf, p); err != nil {
			return cw.Offset(), errors.Wrapf(err, "parameter %d (%q)", i, p.Key)
		}
		if _, err := cw.Write(buf.Bytes()); err != nil {
			return cw.Offset(), err
		}
	}
	if err := writeHeader(cw, TagEnd, sentinelKey); err != nil {
		return cw.Offset(), errors.Wrap(err, "sentinel")
	}
	return cw.Offset(), nil
}

func encodeParameter(w io.Writer, p Parameter) error {
	if p.Value == nil {
		return errors.Wrap(codec.ErrTypeMismatch, "nil value")
	}
	if err := writeHeader(w, p.Value.Tag(), p.Key); err != nil {
		return err
	}
	switch v := p.Value.(type) {
	case Int:
		return writeInt(w, int64(v))
	case Bytes:
		return schema.WriteAll(BlobSchema, blob(BlobSchema, []byte(v)), w)
	case String:
		return writeString(w, string(v))
	case List:
		if err := writeInt(w, int64(len(v))); err != nil {
			return err
		}
		for i, item := range v {
			if err := writeString(w, item); err != nil {
				return errors.Wrapf(err, "list item %d", i)
			}
		}
		return nil
	}
	return errors.Wrapf(codec.ErrTypeMismatch, "%T", p.Value)
}

func writeHeader(w io.Writer, tag Tag, key string) error {
	hdr := schema.NewRecord(HeaderSchema)
	_ = hdr.Set("start", startMarker)
	_ = hdr.Set("case", string([]byte{byte(tag)}))
	_ = hdr.Set("space", separator)
	_ = hdr.Set("key", blob(StringBlobSchema, key))
	return schema.WriteAll(HeaderSchema, hdr, w)
}

func writeInt(w io.Writer, n int64) error {
	rec := schema.NewRecord(IntegerSchema)
	_ = rec.Set("N", n)
	return schema.WriteAll(IntegerSchema, rec, w)
}

func writeString(w io.Writer, str string) error {
	if !utf8.ValidString(str) {
		return errors.Wrap(codec.ErrTypeMismatch, "string blob is not valid UTF-8")
	}
	return schema.WriteAll(StringBlobSchema, blob(StringBlobSchema, str), w)
}

// blob builds a size+text record; the size is derived on write
func blob(s *schema.Schema, text any) *schema.Record {
	rec := schema.NewRecord(s)
	_ = rec.Set("text", text)
	return rec
}

// MarshalBinary returns the wire encoding of s
func (s *Structure) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces s with the structure encoded in data. data must
// hold exactly one structure.
func (s *Structure) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	decoded, err := Read(r)
	if err != nil {
		return err
	}
	if r.Len() > 0 {
		return errors.Wrapf(ErrTrailingData, "%d bytes", r.Len())
	}
	s.params = decoded.params
	return nil
}
