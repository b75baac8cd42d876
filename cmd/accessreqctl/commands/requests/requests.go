// Package requests implements permission-request lifecycle commands for
// accessreqctl.
package requests

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for permission-request management.
var Cmd = &cobra.Command{
	Use:   "requests",
	Short: "Manage permission requests",
	Long: `Submit, inspect, and decide permission requests.

Examples:
  # List pending requests
  accessreqctl requests list

  # Submit a new request
  accessreqctl requests submit --requester alice --folder f-123 --mode write --need "quarterly audit"

  # Approve a request
  accessreqctl requests approve req-1 --actor admin

  # Show a request's task plan
  accessreqctl requests tasks req-1`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(submitCmd)
	Cmd.AddCommand(approveCmd)
	Cmd.AddCommand(rejectCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(revokeCmd)
	Cmd.AddCommand(tasksCmd)
}
