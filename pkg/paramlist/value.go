package paramlist

import "fmt"

// Tag is the one-character type code carried by every field header
type Tag byte

const (
	TagInt    Tag = 'i'
	TagBytes  Tag = 'b'
	TagString Tag = 'B'
	TagList   Tag = 'l'

	// TagEnd marks the sentinel field that terminates a structure
	TagEnd Tag = 'E'
)

func (t Tag) String() string {
	return string([]byte{byte(t)})
}

// Value is a parameter value. The set of implementations is closed: Int,
// Bytes, String and List.
type Value interface {
	Tag() Tag
	isValue()
}

// Int is a signed integer parameter, encoded as a big-endian int32
type Int int64

// Bytes is a raw byte parameter
type Bytes []byte

// String is a UTF-8 text parameter
type String string

// List is an ordered list of strings
type List []string

func (Int) Tag() Tag    { return TagInt }
func (Bytes) Tag() Tag  { return TagBytes }
func (String) Tag() Tag { return TagString }
func (List) Tag() Tag   { return TagList }

func (Int) isValue()    {}
func (Bytes) isValue()  {}
func (String) isValue() {}
func (List) isValue()   {}

// Parameter is one keyed value of a structure
type Parameter struct {
	Key   string
	Value Value
}

// Tag returns the wire tag of the parameter's value
func (p Parameter) Tag() Tag {
	if p.Value == nil {
		return 0
	}
	return p.Value.Tag()
}

func (p Parameter) String() string {
	return fmt.Sprintf("parameter(%s, %q, %v)", p.Tag(), p.Key, p.Value)
}

// normalize gives empty byte and list values a non-nil backing so that
// written and read-back structures compare equal
func normalize(v Value) Value {
	switch x := v.(type) {
	case Bytes:
		if x == nil {
			return Bytes{}
		}
	case List:
		if x == nil {
			return List{}
		}
	}
	return v
}
