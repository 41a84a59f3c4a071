package cmd

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/binrec/pkg/store"
)

type storedResult struct {
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Params int    `json:"params" yaml:"params"`
}

type listRow struct {
	ID      string `json:"id" yaml:"id"`
	Created string `json:"created" yaml:"created"`
	Params  int    `json:"params" yaml:"params"`
}

func parseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, errors.Wrapf(err, "invalid id %q", s)
	}
	return id, nil
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Copy a structure file into the store",
	Long: `Load the structure stored in a file and add it to the structure store
under the data directory. The new id is printed.

Example:
  binrec import demo.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.LoadStructure(args[0], container.FileOptions())
		if err != nil {
			return err
		}

		st, err := container.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.Create(s)
		if err != nil {
			return err
		}

		container.GetLogger().Info("structure imported", zap.String("path", args[0]), zap.Stringer("id", id))
		render(cmd, storedResult{ID: id.String(), Path: args[0], Params: s.Len()})
		return nil
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <id> <path>",
	Short: "Write a stored structure to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		st, err := container.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := st.Read(id)
		if err != nil {
			return err
		}
		if err := store.SaveStructure(args[1], s, container.FileOptions()); err != nil {
			return err
		}

		render(cmd, storedResult{ID: id.String(), Path: args[1], Params: s.Len()})
		return nil
	},
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored structures, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := container.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ids, err := st.List()
		if err != nil {
			return err
		}

		rows := make([]listRow, 0, len(ids))
		for _, id := range ids {
			s, err := st.Read(id)
			if err != nil {
				return err
			}
			rows = append(rows, listRow{
				ID:      id.String(),
				Created: id.Time().UTC().Format(time.RFC3339),
				Params:  s.Len(),
			})
		}

		render(cmd, rows)
		return nil
	},
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a stored structure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		st, err := container.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(id); err != nil {
			return err
		}

		container.GetLogger().Info("structure deleted", zap.Stringer("id", id))
		render(cmd, storedResult{ID: id.String()})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}
