package notifications

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <fingerprint>",
	Short: "Mark a notification resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	n, err := client.ResolveNotification(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve notification: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, n, fmt.Sprintf("Notification '%s' resolved successfully", args[0]))
}
