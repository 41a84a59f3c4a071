package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/binrec/pkg/codec"
)

// Record binds a schema to field values. Nested fields hold *Record values
// of the nested schema.
type Record struct {
	schema *Schema
	values []any
}

// NewRecord returns an empty record of s
func NewRecord(s *Schema) *Record {
	return &Record{schema: s, values: make([]any, len(s.fields))}
}

// FromMap builds a record of s from a loosely typed mapping. Nested fields
// accept either a *Record or a nested map. Absent names stay nil; size
// fields left nil are filled in from their payload on write.
func FromMap(s *Schema, m map[string]any) (*Record, error) {
	rec := NewRecord(s)
	for k, v := range m {
		if err := rec.Set(k, v); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Schema returns the record's schema
func (r *Record) Schema() *Schema {
	return r.schema
}

// Get returns the value of the named field, or nil if there is none
func (r *Record) Get(name string) any {
	i, ok := r.schema.byName[name]
	if !ok {
		return nil
	}
	return r.values[i]
}

// Value returns the value of the i-th field
func (r *Record) Value(i int) any {
	return r.values[i]
}

// Set assigns the named field. Nested fields accept a *Record of the nested
// schema or a map that FromMap can convert.
func (r *Record) Set(name string, v any) error {
	i, ok := r.schema.byName[name]
	if !ok {
		return errors.Wrapf(ErrNoField, "%s.%s", r.schema.name, name)
	}
	if f := r.schema.fields[i]; f.Schema != nil && v != nil {
		sub, err := asRecord(f.Schema, v)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", r.schema.name, name)
		}
		v = sub
	}
	r.values[i] = v
	return nil
}

// Values returns the field values in wire order. Nested records appear as
// their own ordered value slice.
func (r *Record) Values() []any {
	out := make([]any, len(r.values))
	for i, v := range r.values {
		if sub, ok := v.(*Record); ok {
			out[i] = sub.Values()
			continue
		}
		out[i] = v
	}
	return out
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.schema.name)
	sb.WriteByte('{')
	for i, f := range r.schema.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", f.Name, r.values[i])
	}
	sb.WriteByte('}')
	return sb.String()
}

func asRecord(s *Schema, v any) (*Record, error) {
	switch x := v.(type) {
	case *Record:
		if x.schema != s {
			return nil, errors.Wrapf(codec.ErrTypeMismatch, "record of %s where %s expected", x.schema.name, s.name)
		}
		return x, nil
	case map[string]any:
		return FromMap(s, x)
	}
	return nil, errors.Wrapf(codec.ErrTypeMismatch, "%T where a %s record expected", v, s.name)
}

// lengthOf converts a decoded or supplied size field value to a byte count
func lengthOf(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return clampUint(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return clampUint(x)
	}
	return 0, errors.Wrapf(codec.ErrTypeMismatch, "size field holds %T", v)
}

func clampUint(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, errors.Wrapf(codec.ErrInvalidLength, "length %d", u)
	}
	return int64(u), nil
}
