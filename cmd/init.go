package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/database"
	"github.com/ridoystarlord/etlforge/introspect"
	"github.com/ridoystarlord/etlforge/loader"
)

const sampleSchema = `# Column rules for a customer extract.
# Supported types: int, float, string, date, category.
fields:
  - name: customer_id
    type: int
    unique: true
    range:
      min: 1
      max: 100000
  - name: name
    type: string
    faker_template: name
  - name: email
    type: string
    unique: true
    nullable: true
    null_rate: 0.05
    faker_template: email
  - name: purchase_amount
    type: float
    precision: 2
    range:
      min: 10.0
      max: 5000.0
  - name: customer_tier
    type: category
    values: [Bronze, Silver, Gold, Platinum]
  - name: registration_date
    type: date
    format: "%Y-%m-%d"
    range:
      start: "2020-01-01"
      end: "2024-12-31"
`

var (
	initOutput    string
	initFromTable string
	initForce     bool
	initTimeout   time.Duration
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter schema file",
	Long: `Create a schema file to start from.

Without flags a commented sample schema is written. With --from-table the
columns of an existing PostgreSQL table are turned into a schema, which
can then be tightened by hand.

Examples:
  etlforge init                              # Write schema.yaml
  etlforge init -o customers.yaml
  etlforge init --from-table customers -o customers.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !initForce {
			if _, err := os.Stat(initOutput); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
			}
		}

		content := []byte(sampleSchema)
		if initFromTable != "" {
			var err error
			if content, err = schemaFromTable(cmd.Context(), initFromTable); err != nil {
				return err
			}
		}

		if err := os.WriteFile(initOutput, content, 0644); err != nil {
			return fmt.Errorf("creating %s: %w", initOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Created %s\n", initOutput)
		fmt.Fprintf(cmd.OutOrStdout(), "   Next: etlforge generate -s %s -r 100\n", initOutput)
		return nil
	},
}

func schemaFromTable(ctx context.Context, tableName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	var content []byte
	err := withPool(ctx, func(db database.DB) error {
		columns, err := introspect.GetColumns(ctx, db, tableName)
		if err != nil {
			return err
		}
		s, err := introspect.InferSchema(columns)
		if err != nil {
			return err
		}
		content, err = loader.MarshalYAML(s)
		return err
	})
	return content, err
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "schema.yaml", "Schema file to create")
	initCmd.Flags().StringVar(&initFromTable, "from-table", "", "Build the schema from the columns of this PostgreSQL table")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	initCmd.Flags().DurationVarP(&initTimeout, "timeout", "t", 10*time.Second, "Timeout for --from-table")
}
