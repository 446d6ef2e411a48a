package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/database"
	"github.com/ridoystarlord/etlforge/generator"
	"github.com/ridoystarlord/etlforge/schema"
)

var (
	docsFormat string
	docsOutput string
	docsName   string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate documentation from a schema",
	Long: `Generate a data dictionary or an entity diagram from a schema.

Supported formats:
  - markdown: data dictionary with every rule and the value space of each field
  - mermaid: Mermaid ER diagram
  - plantuml: PlantUML entity diagram
  - all: every format, written into the --output directory

Examples:
  etlforge docs -s schema.yaml --format markdown --output dictionary.md
  etlforge docs -s schema.yaml --format mermaid --name customers
  etlforge docs -s schema.yaml --format all --output docs/
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema()
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}
		name := docsName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(schemaFile), filepath.Ext(schemaFile))
		}

		out := cmd.OutOrStdout()
		switch docsFormat {
		case "markdown", "mermaid", "plantuml":
			output := docsOutput
			if output == "" {
				output = defaultDocsFile(docsFormat)
			}
			if err := os.WriteFile(output, []byte(docsContent(docsFormat, name, s)), 0644); err != nil {
				return fmt.Errorf("writing %s docs: %w", docsFormat, err)
			}
			fmt.Fprintf(out, "✅ %s documentation saved to: %s\n", docsFormat, output)
		case "all":
			dir := docsOutput
			if dir == "" {
				dir = "docs"
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			fmt.Fprintf(out, "✅ All documentation generated in: %s/\n", dir)
			for _, format := range []string{"markdown", "mermaid", "plantuml"} {
				path := filepath.Join(dir, defaultDocsFile(format))
				if err := os.WriteFile(path, []byte(docsContent(format, name, s)), 0644); err != nil {
					return fmt.Errorf("writing %s docs: %w", format, err)
				}
				fmt.Fprintf(out, "  - %s: %s\n", format, path)
			}
		default:
			return fmt.Errorf("unsupported format: %s (supported: markdown, mermaid, plantuml, all)", docsFormat)
		}
		return nil
	},
}

func init() {
	addSchemaFlags(docsCmd)
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "markdown", "Output format (markdown, mermaid, plantuml, all)")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file, or directory for --format all")
	docsCmd.Flags().StringVar(&docsName, "name", "", "Dataset name used as the title (default: schema file name)")
}

func defaultDocsFile(format string) string {
	switch format {
	case "mermaid":
		return "erd.md"
	case "plantuml":
		return "erd.puml"
	}
	return "dictionary.md"
}

func docsContent(format, name string, s *schema.Schema) string {
	switch format {
	case "mermaid":
		return generateMermaidContent(name, s)
	case "plantuml":
		return generatePlantUMLContent(name, s)
	}
	return generateMarkdownContent(name, s)
}

func generateMarkdownContent(name string, s *schema.Schema) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("# %s\n\n", name))
	content.WriteString(fmt.Sprintf("%d fields, in column order.\n\n", s.Len()))
	content.WriteString("| Column | Type | SQL type | Nullable | Unique | Rules | Distinct values |\n")
	content.WriteString("|---|---|---|---|---|---|---|\n")

	for _, f := range s.Fields() {
		nullable := "no"
		if f.Nullable {
			nullable = fmt.Sprintf("yes (%.0f%% when generated)", f.NullRate*100)
		}
		unique := ""
		if f.Unique {
			unique = "yes"
		}
		space := "unbounded"
		if n, ok := generator.ValueSpace(f); ok {
			space = strconv.FormatInt(n, 10)
		}
		content.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s | %s | %s | %s |\n",
			f.Name, f.Type, database.ColumnType(f), nullable, unique, strings.Join(fieldRules(f), "<br>"), space))
	}
	return content.String()
}

// fieldRules describes the constraints of a field in reading order.
func fieldRules(f schema.FieldSpec) []string {
	var rules []string
	switch f.Type {
	case schema.Int, schema.Float:
		if f.Range != nil {
			rules = append(rules, fmt.Sprintf("between %s and %s", formatBound(f.Range.Min), formatBound(f.Range.Max)))
		}
		if f.Type == schema.Float {
			rules = append(rules, fmt.Sprintf("%d decimal places", f.Decimals()))
		}
	case schema.String:
		if f.Length != nil {
			rules = append(rules, fmt.Sprintf("%d to %d characters", f.Length.Min, f.Length.Max))
		}
		if f.FakerTemplate != "" {
			rules = append(rules, "generated as "+f.FakerTemplate)
		}
	case schema.Date:
		if f.Dates != nil {
			rules = append(rules, fmt.Sprintf("from %s to %s", f.Dates.Start, f.Dates.End))
		}
		rules = append(rules, "format "+f.DateFormat())
	case schema.Category:
		rules = append(rules, "one of "+strings.Join(f.Values, ", "))
	}
	return rules
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func generateMermaidContent(name string, s *schema.Schema) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("# %s\n\n", name))
	content.WriteString("```mermaid\nerDiagram\n")
	content.WriteString(fmt.Sprintf("    %s {\n", mermaidName(name)))
	for _, f := range s.Fields() {
		line := fmt.Sprintf("        %s %s", f.Type, f.Name)
		if f.Unique {
			line += " UK"
		}
		if !f.Nullable {
			line += ` "not null"`
		}
		content.WriteString(line + "\n")
	}
	content.WriteString("    }\n")
	content.WriteString("```\n")
	return content.String()
}

// mermaidName replaces characters Mermaid does not accept in entity names.
func mermaidName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}

func generatePlantUMLContent(name string, s *schema.Schema) string {
	var content strings.Builder

	content.WriteString("@startuml\n")
	content.WriteString("!theme plain\n")
	content.WriteString("skinparam linetype ortho\n\n")
	content.WriteString(fmt.Sprintf("entity \"%s\" {\n", name))
	for _, f := range s.Fields() {
		line := fmt.Sprintf("  %s : %s", f.Name, database.ColumnType(f))
		if f.Unique {
			line += " <<UQ>>"
		}
		if !f.Nullable {
			line += " <<NN>>"
		}
		content.WriteString(line + "\n")
	}
	content.WriteString("}\n")
	content.WriteString("@enduml\n")
	return content.String()
}
