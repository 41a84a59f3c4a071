package output

import (
	"encoding/hex"
	"unicode"
	"unicode/utf8"

	"github.com/ssargent/binrec/pkg/paramlist"
)

// Param is the display form of one structure parameter
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Tag   string `json:"tag" yaml:"tag"`
	Value any    `json:"value" yaml:"value"`
}

// Params converts structure parameters for display. Byte values that are
// printable text are shown as text, anything else as 0x-prefixed hex.
func Params(params []paramlist.Parameter) []Param {
	rows := make([]Param, 0, len(params))
	for _, p := range params {
		rows = append(rows, Param{Key: p.Key, Tag: p.Tag().String(), Value: displayValue(p.Value)})
	}
	return rows
}

func displayValue(v paramlist.Value) any {
	switch x := v.(type) {
	case paramlist.Int:
		return int64(x)
	case paramlist.String:
		return string(x)
	case paramlist.List:
		return []string(x)
	case paramlist.Bytes:
		if printable(x) {
			return string(x)
		}
		return "0x" + hex.EncodeToString(x)
	}
	return nil
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
