package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/binrec/pkg/paramlist"
)

func demoParams() []paramlist.Parameter {
	return paramlist.New().
		AddInt("integer", 0).
		AddList("array", "first element", "second").
		AddBytes("bynary blob", []byte("some raw data")).
		AddBytes("binary", []byte{0x00, 0xff}).
		AddString("string blob", "some less raw data").
		Params()
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &TableFormatter{}, NewFormatter("table"))
	assert.IsType(t, &TableFormatter{}, NewFormatter(""))
	assert.IsType(t, &JSONFormatter{}, NewFormatter("JSON"))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter("yaml"))

	assert.True(t, ValidFormat("Yaml"))
	assert.False(t, ValidFormat("xml"))
}

func TestParams(t *testing.T) {
	rows := Params(demoParams())
	require.Len(t, rows, 5)

	assert.Equal(t, Param{Key: "integer", Tag: "i", Value: int64(0)}, rows[0])
	assert.Equal(t, Param{Key: "array", Tag: "l", Value: []string{"first element", "second"}}, rows[1])
	assert.Equal(t, Param{Key: "bynary blob", Tag: "b", Value: "some raw data"}, rows[2])
	assert.Equal(t, Param{Key: "binary", Tag: "b", Value: "0x00ff"}, rows[3])
	assert.Equal(t, Param{Key: "string blob", Tag: "B", Value: "some less raw data"}, rows[4])
}

func TestTableFormatter(t *testing.T) {
	out := NewFormatter("table").Format(Params(demoParams()))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)

	assert.Contains(t, lines[0], "KEY")
	assert.Contains(t, lines[0], "VALUE")
	assert.Contains(t, lines[2], "[first element second]")
	assert.Contains(t, lines[5], "some less raw data")

	// columns are aligned
	assert.Equal(t, strings.Index(lines[2], "l  "), strings.Index(lines[5], "B  "))

	assert.Equal(t, "No results.\n", NewFormatter("table").Format([]Param{}))
}

func TestTableFormatter_Struct(t *testing.T) {
	out := NewFormatter("table").Format(struct {
		Path   string
		Params int
	}{"demo.bin", 4})
	assert.Contains(t, out, "Path:")
	assert.Contains(t, out, "demo.bin")
	assert.Contains(t, out, "Params:")
}

func TestTableFormatter_Labels(t *testing.T) {
	type row struct {
		ID    string `json:"id,omitempty"`
		Count int
	}

	out := NewFormatter("table").Format(&row{ID: "abc", Count: 2})
	assert.Contains(t, out, "id:")
	assert.Contains(t, out, "Count:")

	out = NewFormatter("table").Format([]row{{ID: "abc", Count: 2}})
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "COUNT")
	assert.Contains(t, out, "abc")

	assert.Equal(t, "plain\n", NewFormatter("table").Format("plain"))
}

func TestJSONFormatter(t *testing.T) {
	out := NewFormatter("json").Format(Params(demoParams()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 5)
	assert.Equal(t, "integer", decoded[0]["key"])
	assert.Equal(t, 0.0, decoded[0]["value"])
	assert.Equal(t, "B", decoded[4]["tag"])
}

func TestYAMLFormatter(t *testing.T) {
	out := NewFormatter("yaml").Format(Params(demoParams()))

	var decoded []Param
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 5)
	assert.Equal(t, "array", decoded[1].Key)
	assert.Equal(t, []any{"first element", "second"}, decoded[1].Value)
}

func TestTitle(t *testing.T) {
	assert.Contains(t, Title("demo.bin"), "demo.bin")
}
