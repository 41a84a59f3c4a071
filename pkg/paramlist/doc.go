// Package paramlist implements a self-describing, appendable parameter list
// on top of the schema package.
//
// A structure is a sequence of fields, each a header followed by a value:
//
//	':' tag ' ' [size(4) key]   value
//
// The tag selects the value shape: 'i' int32, 'b' sized bytes, 'B' sized
// string, 'l' int32 count followed by that many sized strings. A field with
// tag 'E' and no value terminates the structure. All integers are big-endian.
package paramlist
