package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/database"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	Long: `Check that the database named by DATABASE_URL is accessible. Only
needed for the --table options of generate, check, diff and init.

Examples:
  etlforge health                    # Check default database connection
  etlforge health --timeout 10s      # Set custom timeout
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := checkDatabaseHealth(cmd.Context())
		if err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Database is healthy and accessible")
		fmt.Fprintf(cmd.OutOrStdout(), "📊 %s\n", version)
		return nil
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

// checkDatabaseHealth connects, pings and returns the server version.
func checkDatabaseHealth(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	pool, err := database.GetPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return "", err
	}
	defer pool.Close()

	var version string
	if err := pool.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", fmt.Errorf("reading server version: %w", err)
	}
	return "PostgreSQL " + version, nil
}
