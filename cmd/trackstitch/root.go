package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/trackstitch/internal/config"
	"github.com/banshee-data/trackstitch/internal/monitoring"
	"github.com/banshee-data/trackstitch/internal/version"
)

// cliOptions holds the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
	debug      bool
}

// loadConfig returns the configured StitchConfig, or the defaults when no
// --config flag was given.
func (o *cliOptions) loadConfig() (*config.StitchConfig, error) {
	if o.configPath == "" {
		return config.DefaultStitchConfig(), nil
	}
	cfg, err := config.LoadStitchConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "trackstitch",
		Short:         "Bad-frame detection and track stitching",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			monitoring.SetDebug(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Stitch configuration file (JSON)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log every probe of the backward search")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newEventsCommand())

	return rootCmd
}
