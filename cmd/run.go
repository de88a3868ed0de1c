package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/energy-gdp/internal/config"
	"github.com/sells-group/energy-gdp/internal/model"
	"github.com/sells-group/energy-gdp/internal/pipeline"
)

var (
	runOutDir     string
	runXLSX       string
	runSQLite     string
	runParquet    string
	runStrictKeys bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load, clean and join the inputs, then write the five charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd, cfg)

		res, err := pipeline.Run(cmd.Context(), cfg)
		if res != nil {
			formatPhases(cmd.OutOrStdout(), res.Report.Phases)
		}
		if err != nil {
			return eris.Wrap(err, "run")
		}

		for _, path := range res.Artifacts {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "directory for Graph_1.jpg..Graph_5.jpg (overrides chart.out_dir)")
	runCmd.Flags().StringVar(&runXLSX, "xlsx", "", "also write the tables to this XLSX workbook")
	runCmd.Flags().StringVar(&runSQLite, "sqlite", "", "also append the joined table to this SQLite database")
	runCmd.Flags().StringVar(&runParquet, "parquet", "", "also write the joined table to this Parquet file")
	runCmd.Flags().BoolVar(&runStrictKeys, "strict-keys", false, "fail when an input repeats a join key")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out-dir") {
		c.Chart.OutDir = runOutDir
	}
	if flags.Changed("xlsx") {
		c.Export.XLSX = runXLSX
	}
	if flags.Changed("sqlite") {
		c.Export.SQLite = runSQLite
	}
	if flags.Changed("parquet") {
		c.Export.Parquet = runParquet
	}
	if flags.Changed("strict-keys") {
		c.Pipeline.StrictKeys = runStrictKeys
	}
}

// formatPhases writes a tabular summary of pipeline stages to out.
func formatPhases(out io.Writer, phases []model.PhaseResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PHASE\tSTATUS\tDURATION\tERROR")
	_, _ = fmt.Fprintln(w, "-----\t------\t--------\t-----")

	for _, ph := range phases {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n",
			ph.Name,
			ph.Status,
			ph.Duration,
			truncate(ph.Error, 60),
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
