package schema

import (
	"github.com/cockroachdb/errors"

	"github.com/ssargent/binrec/pkg/codec"
)

// Decl declares one field of a schema: a primitive type or a nested schema
type Decl struct {
	Name   string
	Type   codec.Type
	Schema *Schema
}

// Prim declares a primitive field
func Prim(name string, t codec.Type) Decl {
	return Decl{Name: name, Type: t}
}

// Embed declares a field holding a nested record of s
func Embed(name string, s *Schema) Decl {
	return Decl{Name: name, Schema: s}
}

// Field is a compiled field of a schema
type Field struct {
	Name   string
	Type   codec.Type // Invalid for nested fields
	Schema *Schema    // nil for primitive fields
	Index  int

	sizes int // index of the payload field this field sizes, or -1
}

// Nested reports whether the field holds a sub-record
func (f Field) Nested() bool {
	return f.Schema != nil
}

// SizeField reports whether the field carries the length of the next field
func (f Field) SizeField() bool {
	return f.sizes >= 0
}

// Width returns the field's fixed width, or 0 when it is variable
func (f Field) Width() int {
	if f.Schema != nil {
		return f.Schema.FixedSize()
	}
	return f.Type.Width()
}

// fixedWidth reports whether the field always encodes to Width bytes. A
// nested schema without fields is fixed at zero bytes.
func (f Field) fixedWidth() bool {
	if f.Schema != nil {
		return f.Schema.fixed
	}
	return !f.Type.Variable()
}

// readStep decodes one field. length is the value of the preceding size
// field and is only meaningful when primed is set.
type readStep func(r *codec.Reader, length int64, primed bool) (any, error)

// writeStep encodes one field. length is the value written by the preceding
// size field and is only meaningful when primed is set.
type writeStep func(w *codec.Writer, v any, length int64, primed bool) error

// Schema is a compiled, immutable record layout. Field order is wire order.
type Schema struct {
	name   string
	fields []Field
	byName map[string]int
	size   int
	fixed  bool
	reads  []readStep
	writes []writeStep
}

// Compile builds a schema from an ordered list of declarations. A
// length-prefixed field must be immediately preceded by an integer field,
// which carries its byte length on the wire.
func Compile(name string, decls ...Decl) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(decls)),
		byName: make(map[string]int, len(decls)),
		fixed:  true,
	}

	for i, d := range decls {
		if d.Name == "" {
			return nil, errors.Wrapf(ErrSchema, "%s: field %d has no name", name, i)
		}
		if _, dup := s.byName[d.Name]; dup {
			return nil, errors.Wrapf(ErrSchema, "%s: duplicate field %q", name, d.Name)
		}

		f := Field{Name: d.Name, Type: d.Type, Schema: d.Schema, Index: i, sizes: -1}
		switch {
		case d.Schema != nil:
			if d.Type != codec.Invalid {
				return nil, errors.Wrapf(ErrSchema, "%s.%s: declares both a type and a schema", name, d.Name)
			}
			s.reads = append(s.reads, readNested(d.Schema))
			s.writes = append(s.writes, writeNested(d.Schema))
		default:
			if _, err := codec.Lookup(d.Type); err != nil {
				return nil, errors.Wrapf(ErrSchema, "%s.%s: %v", name, d.Name, err)
			}
			if d.Type.Variable() {
				if i == 0 || !decls[i-1].Type.Kind().Integer() || decls[i-1].Schema != nil {
					return nil, errors.Wrapf(ErrSchema, "%s.%s: %s must follow an integer size field", name, d.Name, d.Type)
				}
				s.fields[i-1].sizes = i
				s.reads = append(s.reads, readPayload(d.Type))
				s.writes = append(s.writes, writePayload(d.Type))
			} else {
				s.reads = append(s.reads, readFixed(d.Type))
				s.writes = append(s.writes, writeFixed(d.Type))
			}
		}

		if s.fixed {
			if f.fixedWidth() {
				s.size += f.Width()
			} else {
				s.fixed = false
				s.size = 0
			}
		}

		s.byName[d.Name] = i
		s.fields = append(s.fields, f)
	}

	return s, nil
}

// MustCompile is like Compile but panics on error. It is meant for schemas
// declared as package-level variables.
func MustCompile(name string, decls ...Decl) *Schema {
	s, err := Compile(name, decls...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema's name
func (s *Schema) Name() string {
	return s.name
}

// Len returns the number of fields
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns the compiled fields in wire order
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Size returns the encoded size and whether it is fixed. Schemas with a
// length-prefixed field, directly or through a nested schema, are variable.
func (s *Schema) Size() (n int, fixed bool) {
	return s.size, s.fixed
}

// FixedSize returns the encoded size, or 0 for variable schemas
func (s *Schema) FixedSize() int {
	if !s.fixed {
		return 0
	}
	return s.size
}

// BinaryLength returns the fixed encoded size of s, or 0 when s is variable
func BinaryLength(s *Schema) int {
	return s.FixedSize()
}

func readFixed(t codec.Type) readStep {
	return func(r *codec.Reader, _ int64, _ bool) (any, error) {
		return r.ReadType(t)
	}
}

func readPayload(t codec.Type) readStep {
	return func(r *codec.Reader, length int64, primed bool) (any, error) {
		if !primed {
			return nil, errors.Wrapf(codec.ErrUnprimedLength, "decoding %s", t)
		}
		return r.ReadPayload(t, length)
	}
}

func readNested(s *Schema) readStep {
	return func(r *codec.Reader, _ int64, _ bool) (any, error) {
		return NewReader(s, r).ReadAll()
	}
}

func writeFixed(t codec.Type) writeStep {
	return func(w *codec.Writer, v any, _ int64, _ bool) error {
		return w.WriteType(t, v)
	}
}

func writePayload(t codec.Type) writeStep {
	return func(w *codec.Writer, v any, length int64, primed bool) error {
		if !primed {
			return errors.Wrapf(codec.ErrUnprimedLength, "encoding %s", t)
		}
		n, err := codec.PayloadLen(t, v)
		if err != nil {
			return err
		}
		if int64(n) != length {
			return errors.Wrapf(ErrLengthMismatch, "size field says %d, payload has %d bytes", length, n)
		}
		return w.WriteType(t, v)
	}
}

func writeNested(s *Schema) writeStep {
	return func(w *codec.Writer, v any, _ int64, _ bool) error {
		rec, err := asRecord(s, v)
		if err != nil {
			return err
		}
		return NewWriter(s, w).WriteAll(rec)
	}
}
