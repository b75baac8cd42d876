package requests

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/pkg/catalogue/models"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List permission requests",
	Long: `List permission requests, optionally filtered by status.

Examples:
  # List pending requests (the default)
  accessreqctl requests list

  # List approved requests
  accessreqctl requests list --status approved

  # List as JSON
  accessreqctl requests list --status approved -o json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (pending|approved|rejected|canceled|revoked|failed)")
}

// RequestList is a list of permission requests for table rendering.
type RequestList []models.PermissionRequest

func (rl RequestList) Headers() []string {
	return []string{"ID", "REQUESTER", "FOLDER", "MODE", "STATUS", "CREATED"}
}

func (rl RequestList) Rows() [][]string {
	rows := make([][]string, 0, len(rl))
	for _, r := range rl {
		rows = append(rows, []string{
			r.ID, r.RequesterID, r.FolderID, string(r.Mode), string(r.Status),
			r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	list, err := client.ListRequestsByStatus(models.RequestStatus(listStatus))
	if err != nil {
		return fmt.Errorf("failed to list requests: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No requests found.", RequestList(list))
}
