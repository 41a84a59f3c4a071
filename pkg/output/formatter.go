// Package output renders command results as tables, JSON or YAML.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	// headerStyle is used for table column headers
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	// titleStyle is used for section titles above a table
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(data any) string
}

// Formats lists the accepted --output values
var Formats = []string{"table", "json", "yaml"}

// NewFormatter returns a Formatter for the given format string.
// Supported formats: "table" (default), "json", "yaml".
func NewFormatter(format string) Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &JSONFormatter{}
	case "yaml":
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// ValidFormat reports whether format is one of Formats
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// Title renders a section title
func Title(s string) string {
	return titleStyle.Render(s) + "\n"
}

// TableFormatter formats data as aligned text tables. A slice of structs
// gets one column per field and a single struct is printed as label/value
// lines. Labels come from the json tag when a field has one.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any) string {
	v := reflect.Indirect(reflect.ValueOf(data))
	switch {
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Struct:
		if v.Len() == 0 {
			return "No results.\n"
		}
		return rowsTable(v)
	case v.Kind() == reflect.Struct:
		return recordTable(v)
	}
	return fmt.Sprintln(data)
}

func rowsTable(rows reflect.Value) string {
	labels := labels(rows.Type().Elem())
	for i := range labels {
		labels[i] = strings.ToUpper(labels[i])
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(labels, "\t"))
	for i := 0; i < rows.Len(); i++ {
		fmt.Fprintln(w, strings.Join(cells(rows.Index(i)), "\t"))
	}
	w.Flush()

	// styled after alignment so escape codes do not skew the columns
	header, body, _ := strings.Cut(buf.String(), "\n")
	return headerStyle.Render(header) + "\n" + body
}

func recordTable(v reflect.Value) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	values := cells(v)
	for i, label := range labels(v.Type()) {
		fmt.Fprintf(w, "%s:\t%s\n", label, values[i])
	}
	w.Flush()
	return buf.String()
}

func labels(t reflect.Type) []string {
	out := make([]string, t.NumField())
	for i := range out {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			name = f.Name
		}
		out[i] = name
	}
	return out
}

func cells(v reflect.Value) []string {
	out := make([]string, v.NumField())
	for i := range out {
		out[i] = fmt.Sprint(v.Field(i).Interface())
	}
	return out
}

// JSONFormatter formats data as indented JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("error formatting JSON: %v\n", err)
	}
	return string(b) + "\n"
}

// YAMLFormatter formats data as YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) string {
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error formatting YAML: %v\n", err)
	}
	return string(b)
}
