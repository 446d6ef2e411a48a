package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/database"
	"github.com/ridoystarlord/etlforge/diff"
	"github.com/ridoystarlord/etlforge/introspect"
	"github.com/ridoystarlord/etlforge/schema"
	"github.com/ridoystarlord/etlforge/tableio"
)

var (
	diffInput   string
	diffTable   string
	diffVisual  bool
	diffTimeout time.Duration
)

func init() {
	addSchemaFlags(diffCmd)
	diffCmd.Flags().StringVarP(&diffInput, "input", "i", "", "Data file whose header is compared (.csv, .xlsx)")
	diffCmd.Flags().StringVar(&diffTable, "table", "", "Compare against the columns of this PostgreSQL table")
	diffCmd.Flags().BoolVar(&diffVisual, "visual", false, "Show differences in colored tree format")
	diffCmd.Flags().DurationVarP(&diffTimeout, "timeout", "t", 10*time.Second, "Timeout for reading --table")
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show column differences between a schema and a data source",
	Long: `Compare the columns a schema expects with the columns a data file or
table provides. Only the structure is compared; rows are not read.

Examples:
  etlforge diff -i customers.csv -s schema.yaml
  etlforge diff -i customers.csv -s schema.yaml --visual
  etlforge diff --table customers -s schema.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (diffInput == "") == (diffTable == "") {
			return errors.New("exactly one of --input or --table is required")
		}
		s, err := loadSchema()
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}

		var columns []string
		var typeChanges []string
		if diffInput != "" {
			t, err := tableio.ReadFile(diffInput)
			if err != nil {
				return err
			}
			columns = t.Columns
		} else {
			existing, err := readTableColumns(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range existing {
				columns = append(columns, c.ColumnName)
			}
			typeChanges = compareTypes(s, existing)
		}

		out := cmd.OutOrStdout()
		operations := diff.Columns(s.Names(), columns)
		if len(operations) == 0 && len(typeChanges) == 0 {
			fmt.Fprintln(out, "✅ No differences found between schema and data")
			return nil
		}

		if diffVisual {
			showVisualDiff(out, operations, typeChanges)
		} else {
			showTextDiff(out, operations, typeChanges)
		}
		return nil
	},
}

func readTableColumns(ctx context.Context) ([]introspect.ExistingColumn, error) {
	ctx, cancel := context.WithTimeout(ctx, diffTimeout)
	defer cancel()
	var columns []introspect.ExistingColumn
	err := withPool(ctx, func(db database.DB) error {
		var err error
		columns, err = introspect.GetColumns(ctx, db, diffTable)
		return err
	})
	return columns, err
}

// compareTypes lists columns whose PostgreSQL type differs from the one
// CreateTableSQL would choose for the field.
func compareTypes(s *schema.Schema, existing []introspect.ExistingColumn) []string {
	var changes []string
	for _, c := range existing {
		f, ok := s.Field(c.ColumnName)
		if !ok {
			continue
		}
		want := database.ColumnType(f)
		if !strings.EqualFold(want, c.DataType) && !(want == "TEXT" && strings.Contains(c.DataType, "char")) {
			changes = append(changes, fmt.Sprintf("%s: %s → %s", c.ColumnName, c.DataType, strings.ToLower(want)))
		}
	}
	return changes
}

func showTextDiff(w io.Writer, operations []diff.Operation, typeChanges []string) {
	fmt.Fprintln(w, "📋 Column differences:")
	for _, op := range operations {
		fmt.Fprintf(w, "  %s\n", op)
	}
	for _, change := range typeChanges {
		fmt.Fprintf(w, "  ~ %s\n", change)
	}
}

func showVisualDiff(w io.Writer, operations []diff.Operation, typeChanges []string) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)

	fmt.Fprintln(w, "🌳 Column Differences (Visual Diff)")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if missing := diff.Filter(operations, diff.MissingColumn); len(missing) > 0 {
		fmt.Fprintln(w, "\n❌ Missing from data:")
		for _, op := range missing {
			red.Fprintf(w, "  - %s\n", op.ColumnName)
		}
	}
	if extra := diff.Filter(operations, diff.UnexpectedColumn); len(extra) > 0 {
		fmt.Fprintln(w, "\n➕ Not in schema:")
		for _, op := range extra {
			green.Fprintf(w, "  + %s (position %d)\n", op.ColumnName, op.Position)
		}
	}
	if dups := diff.Filter(operations, diff.DuplicateColumn); len(dups) > 0 {
		fmt.Fprintln(w, "\n⚠️  Repeated:")
		for _, op := range dups {
			yellow.Fprintf(w, "  ! %s (position %d)\n", op.ColumnName, op.Position)
		}
	}
	if len(typeChanges) > 0 {
		fmt.Fprintln(w, "\n🔄 Type differences:")
		for _, change := range typeChanges {
			blue.Fprintf(w, "  ~ %s\n", change)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 50))
}
