// Package context implements server-context management commands for accessreqctl.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for context management.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage saved server connection contexts.

A context bundles a server URL, username, and bearer token under a name,
so you can switch between engines without logging in each time.

Examples:
  # List all contexts
  accessreqctl context list

  # Show the current context
  accessreqctl context current

  # Switch to another context
  accessreqctl context use staging

  # Rename a context
  accessreqctl context rename default production

  # Delete a context
  accessreqctl context delete staging`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(deleteCmd)
}
