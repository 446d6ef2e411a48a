package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ridoystarlord/etlforge/config"
	"github.com/ridoystarlord/etlforge/utils"
)

var (
	verbose    bool
	configPath string

	cfg    = &config.Config{DefaultRows: 100, MaxErrors: 10, LogLevel: "warn"}
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "etlforge",
	Short: "Generate synthetic tabular data and validate data files against a schema",
	Long: `etlforge reads one schema and uses it both to generate synthetic test data
and to validate real data files against the same rules.

Examples:

  etlforge init
  etlforge generate -s schema.yaml -r 1000 -o customers.csv
  etlforge check -i customers.csv -s schema.yaml
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := utils.LoadEnv(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		l, err := c.Logger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file (optional)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(generateStructsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(benchCmd)
}
