package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/etlforge/database"
	"github.com/ridoystarlord/etlforge/generator"
	"github.com/ridoystarlord/etlforge/loader"
	"github.com/ridoystarlord/etlforge/schema"
)

// Flags shared by every command that reads a schema.
var (
	schemaFile   string
	schemaFormat string
	structType   string
)

func addSchemaFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&schemaFile, "schema", "s", "schema.yaml", "Schema file, or a .go file/directory with --struct")
	cmd.Flags().StringVar(&schemaFormat, "schema-format", "", "Schema dialect: yaml, json, toml, jsonschema, frictionless (default from extension)")
	cmd.Flags().StringVar(&structType, "struct", "", "Read the schema from the etl tags of this Go struct")
}

// loadSchema resolves the schema named by the shared flags.
func loadSchema() (*schema.Schema, error) {
	if structType != "" || strings.EqualFold(filepath.Ext(schemaFile), ".go") {
		if structType == "" {
			return nil, fmt.Errorf("--struct is required when reading a Go source schema")
		}
		return loader.LoadStructSchema(schemaFile, structType)
	}
	if schemaFormat == "" {
		return loader.LoadSchemaFile(schemaFile)
	}

	data, err := os.ReadFile(schemaFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", loader.ErrSchemaNotFound, schemaFile)
		}
		return nil, err
	}
	return loader.LoadSchemaBytes(data, loader.Format(strings.ToLower(schemaFormat)))
}

// generatorOptions builds generator options from the config and an
// explicit --seed flag, which wins over ETLFORGE_SEED.
func generatorOptions(cmd *cobra.Command, seed uint64) ([]generator.Option, error) {
	opts := []generator.Option{generator.WithLogger(logger)}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, generator.WithSeed(seed))
	} else if s, ok, err := cfg.SeedValue(); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, generator.WithSeed(s))
	}
	if cfg.RetryBudget > 0 {
		opts = append(opts, generator.WithRetryBudget(cfg.RetryBudget))
	}
	return opts, nil
}

// withPool opens the configured database for the duration of fn.
func withPool(ctx context.Context, fn func(db database.DB) error) error {
	pool, err := database.GetPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(pool)
}
