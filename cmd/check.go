package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/energy-gdp/internal/pipeline"
)

var checkStrictKeys bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the inputs and print the run report as YAML",
	Long:  "Loads, cleans and joins the three inputs without rendering charts, then prints row counts, filled GDP nulls, duplicate keys and countries without a region.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("strict-keys") {
			cfg.Pipeline.StrictKeys = checkStrictKeys
		}

		res, err := pipeline.New(cfg).Check(cmd.Context())
		if res != nil {
			if writeErr := res.Report.WriteYAML(cmd.OutOrStdout()); writeErr != nil {
				return writeErr
			}
		}
		return eris.Wrap(err, "check")
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrictKeys, "strict-keys", false, "fail when an input repeats a join key")
	rootCmd.AddCommand(checkCmd)
}
