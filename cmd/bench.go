package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/runner"
	"github.com/ridoystarlord/etlforge/tableio"
)

var (
	benchRows   []int
	benchOutput string
	benchSeed   uint64
)

func init() {
	addSchemaFlags(benchCmd)
	benchCmd.Flags().IntSliceVarP(&benchRows, "rows", "r", runner.DefaultRowCounts, "Row counts to measure")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "benchmark_results.csv", "Results file (.csv, .xlsx)")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 0, "Random seed for reproducible data")
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time generation and validation at several table sizes",
	Long: `Generate and validate a table for each row count and record how long
each step took.

Examples:
  etlforge bench -s schema.yaml
  etlforge bench -s schema.yaml --rows 1000,10000,100000 -o results.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema()
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}
		opts, err := generatorOptions(cmd, benchSeed)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "🖥  System:")
		for _, kv := range runner.SystemInfo() {
			fmt.Fprintf(out, "  • %s: %s\n", kv[0], kv[1])
		}
		fmt.Fprintln(out)

		results, err := runner.Run(cmd.Context(), s, benchRows, runner.Options{
			Generator: opts,
			Logger:    logger,
			Progress: func(m runner.Measurement) {
				if m.Err != nil {
					fmt.Fprintf(out, "  ❌ %8d rows: %v\n", m.Rows, m.Err)
					return
				}
				fmt.Fprintf(out, "  ⏱  %8d rows: generate %.3fs, validate %.3fs, valid=%t\n",
					m.Rows, m.GenerateDuration.Seconds(), m.ValidateDuration.Seconds(), m.Valid)
			},
		})
		if len(results) > 0 {
			if werr := tableio.WriteFile(benchOutput, runner.Table(results)); werr != nil {
				return fmt.Errorf("saving results: %w", werr)
			}
			fmt.Fprintf(out, "\n✅ Results saved to: %s\n", benchOutput)
		}
		return err
	},
}
