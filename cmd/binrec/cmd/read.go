package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/binrec/pkg/output"
	"github.com/ssargent/binrec/pkg/paramlist"
	"github.com/ssargent/binrec/pkg/store"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <path> [key...]",
	Short: "Print selected parameters of a structure file",
	Long: `Load the structure stored in a file and print the named parameters.
Without keys, the parameters of the demo structure are printed.

Example:
  binrec read demo.bin integer "string blob"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.LoadStructure(args[0], container.FileOptions())
		if err != nil {
			return err
		}

		keys := args[1:]
		if len(keys) == 0 {
			keys = demoKeys
		}

		selected := make([]paramlist.Parameter, 0, len(keys))
		for _, key := range keys {
			p, ok := s.Get(key)
			if !ok {
				return errors.Newf("no parameter %q in %s", key, args[0])
			}
			selected = append(selected, p)
		}

		render(cmd, output.Params(selected))
		return nil
	},
}

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <path>",
	Short: "Print every parameter of a structure file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.LoadStructure(args[0], container.FileOptions())
		if err != nil {
			return err
		}

		if _, ok := formatter.(*output.TableFormatter); ok {
			fmt.Fprint(cmd.OutOrStdout(), output.Title(args[0]))
		}
		render(cmd, output.Params(s.Params()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(dumpCmd)
}
