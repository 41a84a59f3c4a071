// Package schema compiles ordered field declarations into record layouts and
// reads or writes records of those layouts against a byte stream.
//
// A schema is declared once, usually as a package-level variable:
//
//	var Blob = schema.MustCompile("Blob",
//		schema.Prim("size", codec.Int32BE),
//		schema.Prim("text", codec.BytesBE),
//	)
//
// Declaration order is wire order. A String or Bytes field must directly
// follow the integer field that holds its length. Nested schemas are declared
// with Embed and decode to a *Record of the nested schema.
//
// Reader and Writer are cursors: each ReadField or WriteField call moves
// exactly one field across the stream, and ReadAll/WriteAll move a whole
// record.
package schema
