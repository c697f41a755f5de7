package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trackstitch/internal/config"
	"github.com/banshee-data/trackstitch/internal/stitch"
)

func newConfigCommand(opts *cliOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigCheckCommand(opts))
	configCmd.AddCommand(newConfigShowCommand(opts))

	return configCmd
}

func newConfigCheckCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := stitch.CheckConfig(cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			out := cmd.OutOrStdout()
			if opts.configPath == "" {
				fmt.Fprintln(out, "No config file given; defaults were used")
			} else {
				fmt.Fprintf(out, "Config path: %s\n", opts.configPath)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(opts *cliOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration with option descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := stitch.CheckConfig(cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			out := cmd.OutOrStdout()
			values := resolvedValues(cfg)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(values)
			}

			tw := newTable(table.Row{"Option", "Value", "Description"}, table.ColumnConfig{
				Number:           3,
				WidthMax:         64,
				WidthMaxEnforcer: text.WrapSoft,
			})
			for _, doc := range config.StitchOptionDocs {
				tw.AppendRow(table.Row{doc.Key, values[doc.Key], doc.Description})
			}
			fmt.Fprintln(out, tw.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print resolved values as JSON")
	return cmd
}

// resolvedValues maps each documented option key to its effective value.
func resolvedValues(cfg *config.StitchConfig) map[string]string {
	m := cfg.GetFeatureMatcher()
	return map[string]string{
		"bf_detection_enabled":           strconv.FormatBool(cfg.GetEnabled()),
		"bf_detection_percent_match_req": strconv.FormatFloat(cfg.GetPercentMatchReq(), 'g', -1, 64),
		"bf_detection_new_shot_length":   strconv.FormatUint(uint64(cfg.GetNewShotLength()), 10),
		"bf_detection_max_search_length": strconv.FormatUint(uint64(cfg.GetMaxSearchLength()), 10),
		"search_workers":                 strconv.Itoa(cfg.GetSearchWorkers()),
		"feature_matcher.type":           m.GetType(),
		"feature_matcher.max_distance":   strconv.FormatFloat(m.GetMaxDistance(), 'g', -1, 64),
		"feature_matcher.ratio":          strconv.FormatFloat(m.GetRatio(), 'g', -1, 64),
		"feature_matcher.cross_check":    strconv.FormatBool(m.GetCrossCheck()),
	}
}
