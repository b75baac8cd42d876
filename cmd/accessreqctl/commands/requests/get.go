package requests

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/pkg/catalogue/models"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get request details",
	Long: `Get detailed information about a single permission request.

Examples:
  # Get request details as table
  accessreqctl requests get req-1

  # Get as JSON
  accessreqctl requests get req-1 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleRequestList wraps a single request for key-value table rendering.
type SingleRequestList []models.PermissionRequest

func (sl SingleRequestList) Headers() []string { return []string{"FIELD", "VALUE"} }

func (sl SingleRequestList) Rows() [][]string {
	if len(sl) == 0 {
		return nil
	}
	r := sl[0]
	return [][]string{
		{"ID", r.ID},
		{"Requester", r.RequesterID},
		{"Folder", r.FolderID},
		{"Validator", cmdutil.EmptyOr(r.ValidatorID, "-")},
		{"Mode", string(r.Mode)},
		{"Status", string(r.Status)},
		{"Business Need", cmdutil.EmptyOr(r.BusinessNeed, "-")},
		{"Assigned Group", cmdutil.EmptyOr(r.AssignedGroupID, "-")},
		{"Decision Comment", cmdutil.EmptyOr(r.DecisionComment, "-")},
		{"Created", r.CreatedAt.Format("2006-01-02 15:04")},
		{"Updated", r.UpdatedAt.Format("2006-01-02 15:04")},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	req, err := client.GetRequest(args[0])
	if err != nil {
		return fmt.Errorf("failed to get request: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, req, SingleRequestList{*req})
}
