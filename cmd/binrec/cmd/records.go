package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/binrec/pkg/codec"
	"github.com/ssargent/binrec/pkg/schema"
	"github.com/ssargent/binrec/pkg/store"
)

// noteSchema is the layout of the records kept by the records commands
var noteSchema = schema.MustCompile("Note",
	schema.Prim("time", codec.Int64BE),
	schema.Prim("size", codec.Uint16BE),
	schema.Prim("text", codec.StringBE),
)

type noteRow struct {
	Offset int64  `json:"offset" yaml:"offset"`
	Time   string `json:"time" yaml:"time"`
	Text   string `json:"text" yaml:"text"`
}

// recordsCmd groups the record file commands
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Append to and read record files of timestamped notes",
}

var recordsAppendCmd = &cobra.Command{
	Use:   "append <path> <text>...",
	Short: "Append one note record per argument",
	Long: `Append one note record per text argument to a record file, creating it
if needed. The offset of each new record is printed.

Example:
  binrec records append notes.rec "first note" "second note"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := store.NewRecordWriter(container.RecordWriterConfig(args[0], noteSchema))
		if err != nil {
			return err
		}

		rows := make([]noteRow, 0, len(args)-1)
		for _, text := range args[1:] {
			now := time.Now().UTC()
			rec, err := schema.FromMap(noteSchema, map[string]any{"time": now.UnixNano(), "text": text})
			if err != nil {
				_ = writer.Close()
				return err
			}
			offset, err := writer.Append(rec)
			if err != nil {
				_ = writer.Close()
				return err
			}
			rows = append(rows, noteRow{Offset: offset, Time: now.Format(time.RFC3339Nano), Text: text})
		}
		if err := writer.Close(); err != nil {
			return err
		}

		render(cmd, rows)
		return nil
	},
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print every note record of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := store.NewRecordReader(container.RecordReaderConfig(args[0], noteSchema))
		if err != nil {
			return err
		}
		defer reader.Close()

		var rows []noteRow
		iter := reader.Iterator()
		defer iter.Close()
		for offset := reader.Offset(); iter.Next(); offset = reader.Offset() {
			rec := iter.Record()
			rows = append(rows, noteRow{
				Offset: offset,
				Time:   time.Unix(0, rec.Get("time").(int64)).UTC().Format(time.RFC3339Nano),
				Text:   rec.Get("text").(string),
			})
		}
		if err := iter.Err(); err != nil {
			return err
		}

		render(cmd, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsAppendCmd)
	recordsCmd.AddCommand(recordsShowCmd)
}
