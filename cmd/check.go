package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/database"
	"github.com/ridoystarlord/etlforge/introspect"
	"github.com/ridoystarlord/etlforge/table"
	"github.com/ridoystarlord/etlforge/tableio"
	"github.com/ridoystarlord/etlforge/validator"
)

// errValidationFailed makes the process exit non-zero after the report
// has been printed.
var errValidationFailed = errors.New("validation failed")

var (
	checkInput       string
	checkReport      string
	checkInvalidRows string
	checkFormat      string
	checkTable       string
	checkLimit       int
	checkMaxErrors   int
	checkTimeout     time.Duration
)

func init() {
	addSchemaFlags(checkCmd)
	checkCmd.Flags().StringVarP(&checkInput, "input", "i", "", "Data file to validate (.csv, .xlsx)")
	checkCmd.Flags().StringVar(&checkTable, "table", "", "Validate this PostgreSQL table instead of a file")
	checkCmd.Flags().IntVar(&checkLimit, "limit", 0, "Read at most this many rows from --table (0 reads all)")
	checkCmd.Flags().StringVar(&checkReport, "report", "", "Write every error to this file (.csv or .json)")
	checkCmd.Flags().StringVar(&checkInvalidRows, "invalid-rows", "", "Write the failing rows with their errors to this file (.csv or .xlsx)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text, json)")
	checkCmd.Flags().IntVar(&checkMaxErrors, "max-errors", -1, "Errors to list in text output (default ETLFORGE_MAX_ERRORS)")
	checkCmd.Flags().DurationVarP(&checkTimeout, "timeout", "t", time.Minute, "Timeout for reading --table")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a data file or table against a schema",
	Long: `Validate every row of a data file or PostgreSQL table against a schema.

All violations are reported, not just the first one. The command exits
with status 1 when the data is invalid.

Examples:
  etlforge check -i customers.csv -s schema.yaml
  etlforge check -i customers.xlsx -s schema.yaml --report errors.csv
  etlforge check -i customers.csv -s schema.yaml --invalid-rows bad_rows.csv
  etlforge check --table customers -s schema.yaml --format json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (checkInput == "") == (checkTable == "") {
			return errors.New("exactly one of --input or --table is required")
		}
		if checkFormat != "text" && checkFormat != "json" {
			return fmt.Errorf("unsupported format: %s (supported: text, json)", checkFormat)
		}

		s, err := loadSchema()
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}
		t, err := readCheckInput(cmd.Context())
		if err != nil {
			return err
		}

		result := validator.NewTableValidator(validator.WithLogger(logger)).Validate(s, t)

		if checkReport != "" {
			if err := tableio.WriteReport(checkReport, result); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}
		if checkInvalidRows != "" {
			written, err := tableio.WriteInvalidRows(checkInvalidRows, t, result)
			if err != nil {
				return fmt.Errorf("writing invalid rows: %w", err)
			}
			if written && checkFormat == "text" {
				fmt.Fprintf(cmd.OutOrStdout(), "📄 Invalid rows saved to: %s\n", checkInvalidRows)
			}
		}

		out := cmd.OutOrStdout()
		if checkFormat == "json" {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
		} else {
			maxErrors := checkMaxErrors
			if !cmd.Flags().Changed("max-errors") {
				maxErrors = cfg.MaxErrors
			}
			result.Print(out, maxErrors)
		}

		if !result.Valid {
			return errValidationFailed
		}
		return nil
	},
}

func readCheckInput(ctx context.Context) (*table.Table, error) {
	if checkInput != "" {
		return tableio.ReadFile(checkInput)
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	var t *table.Table
	err := withPool(ctx, func(db database.DB) error {
		var err error
		t, err = introspect.ReadTable(ctx, db, strings.TrimSpace(checkTable), checkLimit)
		return err
	})
	return t, err
}
