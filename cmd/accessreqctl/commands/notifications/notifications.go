// Package notifications implements admin-notification triage commands for
// accessreqctl.
package notifications

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for admin-notification triage.
var Cmd = &cobra.Command{
	Use:   "notifications",
	Short: "Triage admin notifications",
	Long: `List and resolve outstanding admin notifications.

Each notification is deduplicated by a fingerprint of (error type,
service name, message) so repeated failures of the same kind collapse
into one row with a running count.

Examples:
  # List unresolved notifications
  accessreqctl notifications list

  # Resolve one by fingerprint
  accessreqctl notifications resolve a1b2c3d4`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(resolveCmd)
}
