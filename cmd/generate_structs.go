package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/loader"
)

var (
	structsOutput  string
	structsPackage string
	structsType    string
)

func init() {
	addSchemaFlags(generateStructsCmd)
	generateStructsCmd.Flags().StringVarP(&structsOutput, "output", "o", "", "Output .go file (default: models/<type>.go)")
	generateStructsCmd.Flags().StringVarP(&structsPackage, "package", "p", "models", "Package name for the generated file")
	generateStructsCmd.Flags().StringVar(&structsType, "type", "Record", "Name of the generated struct")
}

var generateStructsCmd = &cobra.Command{
	Use:   "generate-structs",
	Short: "Generate a Go struct from a schema",
	Long: `Generate a Go struct whose etl tags carry every rule of the schema. The
struct can be used as a schema again with --struct.

Examples:
  etlforge generate-structs -s schema.yaml --type Customer
  etlforge generate-structs -s schema.yaml --type Customer -p entities -o internal/entities/customer.go
  etlforge generate -s internal/entities --struct Customer -r 100
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema()
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}

		src, err := loader.StructSource(structsPackage, structsType, s)
		if err != nil {
			return fmt.Errorf("generating struct: %w", err)
		}

		output := structsOutput
		if output == "" {
			output = filepath.Join("models", strings.ToLower(structsType)+".go")
		}
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(output, src, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Generated %s in %s\n", structsType, output)
		return nil
	},
}
