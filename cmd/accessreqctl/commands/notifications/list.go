package notifications

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/pkg/catalogue/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List unresolved admin notifications",
	RunE:  runList,
}

// NotificationList is a list of admin notifications for table rendering.
type NotificationList []models.AdminNotification

func (nl NotificationList) Headers() []string {
	return []string{"FINGERPRINT", "TYPE", "SERVICE", "COUNT", "LAST SEEN"}
}

func (nl NotificationList) Rows() [][]string {
	rows := make([][]string, 0, len(nl))
	for _, n := range nl {
		rows = append(rows, []string{
			n.Fingerprint, n.ErrorType, n.ServiceName,
			fmt.Sprintf("%d", n.Count), n.LastOccurrence.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	list, err := client.ListUnresolvedNotifications()
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No unresolved notifications.", NotificationList(list))
}
