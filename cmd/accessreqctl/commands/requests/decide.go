package requests

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/pkg/apiclient"
)

var (
	decideActor   string
	decideComment string
)

func addDecisionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&decideActor, "actor", "", "Acting user ID (required)")
	cmd.Flags().StringVar(&decideComment, "comment", "", "Decision comment")
	_ = cmd.MarkFlagRequired("actor")
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecision(args[0], "approved", func(c *apiclient.Client, id string, in apiclient.DecisionInput) (any, error) {
			return c.ApproveRequest(id, in)
		})
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecision(args[0], "rejected", func(c *apiclient.Client, id string, in apiclient.DecisionInput) (any, error) {
			return c.RejectRequest(id, in)
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a pending request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecision(args[0], "canceled", func(c *apiclient.Client, id string, in apiclient.DecisionInput) (any, error) {
			return c.CancelRequest(id, in)
		})
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Revoke a previously approved request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecision(args[0], "revoked", func(c *apiclient.Client, id string, in apiclient.DecisionInput) (any, error) {
			return c.RevokeRequest(id, in)
		})
	},
}

func init() {
	addDecisionFlags(approveCmd)
	addDecisionFlags(rejectCmd)
	addDecisionFlags(cancelCmd)
	addDecisionFlags(revokeCmd)
}

func runDecision(id, verb string, call func(*apiclient.Client, string, apiclient.DecisionInput) (any, error)) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	result, err := call(client, id, apiclient.DecisionInput{ActorID: decideActor, Comment: decideComment})
	if err != nil {
		return fmt.Errorf("failed to %s request: %w", verb, err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, result, fmt.Sprintf("Request '%s' %s successfully", id, verb))
}
