/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/binrec/pkg/config"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file and create the data directory.

Examples:
  binrec init
  binrec init --config ./binrec.yaml --data-dir ./data --force`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.GetDefaultConfigPath()
		}

		out := cmd.OutOrStdout()
		if config.ConfigExists(path) && !initForce {
			fmt.Fprintf(out, "Config already exists at %s. Use --force to overwrite.\n", path)
			return nil
		}

		cfg, err := initializeConfig(path, dataDir)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Config written to %s\n", path)
		fmt.Fprintf(out, "Data directory: %s\n", cfg.DataDir)
		return nil
	},
}

// initializeConfig writes a default config at path and creates its data directory
func initializeConfig(path, dataDir string) (*config.Config, error) {
	cfg, err := config.BootstrapConfig(path, dataDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
