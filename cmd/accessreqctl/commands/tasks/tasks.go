// Package tasks implements task-pipeline inspection commands for
// accessreqctl.
package tasks

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for task inspection.
var Cmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect the task pipeline",
	Long: `Inspect and cancel individual tasks in the orchestrator's pipeline.

Tasks are otherwise driven entirely by the orchestrator; this surface
only supports reading state and cancelling not-yet-dispatched tasks.

Examples:
  # Get task details
  accessreqctl tasks get task-1

  # Cancel a pending task
  accessreqctl tasks cancel task-1`,
}

func init() {
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(cancelCmd)
}
