package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/binrec/pkg/paramlist"
	"github.com/ssargent/binrec/pkg/store"
)

// demoKeys are the parameters of the demo structure, in write order
var demoKeys = []string{"integer", "array", "bynary blob", "string blob"}

func demoStructure() *paramlist.Structure {
	return paramlist.New().
		AddInt("integer", 0).
		AddList("array", "first element", "second", "and so", "forth").
		AddBytes("bynary blob", []byte("some raw data")).
		AddString("string blob", "some less raw data")
}

type fileResult struct {
	Path   string `json:"path" yaml:"path"`
	Params int    `json:"params" yaml:"params"`
}

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Write the demo structure to a file",
	Long: `Write a demo structure with one parameter of each kind to a file.

Example:
  binrec save demo.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := demoStructure()
		if err := store.SaveStructure(args[0], s, container.FileOptions()); err != nil {
			return err
		}
		render(cmd, fileResult{Path: args[0], Params: s.Len()})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}
