// Package config implements the accessreqd "config" subcommand group.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand group.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect the engine's configuration.

Use "accessreqd init" to create a new configuration file.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
}
