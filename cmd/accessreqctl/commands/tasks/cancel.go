package tasks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
)

var cancelForce bool

var cancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a pending or retry-scheduled task",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	cancelCmd.Flags().BoolVarP(&cancelForce, "force", "f", false, "Skip confirmation")
}

func runCancel(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunActionWithConfirmation(fmt.Sprintf("Cancel task '%s'?", id), cancelForce, func() error {
		task, err := client.CancelTask(id)
		if err != nil {
			return fmt.Errorf("failed to cancel task: %w", err)
		}
		return cmdutil.PrintResourceWithSuccess(os.Stdout, task, fmt.Sprintf("Task '%s' cancelled successfully", id))
	})
}
