/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/binrec/pkg/config"
	"github.com/ssargent/binrec/pkg/di"
	"github.com/ssargent/binrec/pkg/output"
)

// skipConfig marks commands that run before any configuration exists
const skipConfig = "skip-config"

var (
	// Global flags
	cfgFile      string
	dataDir      string
	logLevel     string
	outputFormat string

	// Shared state set during PersistentPreRunE
	container *di.Container
	formatter output.Formatter
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "binrec",
	Short: "binrec - schema-driven binary records",
	Long: `binrec reads and writes binary records described by declarative schemas,
and self-describing parameter-list structures built on top of them.

Structures can be saved to and loaded from standalone files, or kept in an
embedded store under the data directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !output.ValidFormat(outputFormat) {
			return errors.Newf("unsupported output format %q (want one of %s)",
				outputFormat, strings.Join(output.Formats, ", "))
		}
		formatter = output.NewFormatter(outputFormat)

		if cmd.Annotations[skipConfig] != "" || container != nil {
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		container, err = di.NewContainer(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to initialize")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		return container.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetContainer injects a prepared container, bypassing config loading
func SetContainer(c *di.Container) {
	container = c
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	switch {
	case config.ConfigExists(path):
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	case cfgFile != "":
		return nil, errors.Newf("config file does not exist: %s", cfgFile)
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// render writes data to the command's output in the selected format
func render(cmd *cobra.Command, data any) {
	fmt.Fprint(cmd.OutOrStdout(), formatter.Format(data))
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ~/.config/binrec/config.yaml)")
	flags.StringVarP(&dataDir, "data-dir", "d", "", "Data directory for the structure store")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
}
