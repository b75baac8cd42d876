package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/pkg/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schema for the configuration file",
	Long: `Print a JSON schema describing the configuration file format, for
IDE autocompletion and validation.`,
	RunE: runConfigSchema,
}

func runConfigSchema(cmd *cobra.Command, args []string) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	fmt.Println(string(schema))
	return nil
}
