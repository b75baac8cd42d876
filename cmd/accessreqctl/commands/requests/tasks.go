package requests

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/pkg/catalogue/models"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks <request-id>",
	Short: "Show the task plan installed for a request",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasks,
}

// RequestTaskList is a list of tasks for table rendering.
type RequestTaskList []models.Task

func (tl RequestTaskList) Headers() []string {
	return []string{"ID", "NAME", "KIND", "STATUS", "ATTEMPTS"}
}

func (tl RequestTaskList) Rows() [][]string {
	rows := make([][]string, 0, len(tl))
	for _, t := range tl {
		rows = append(rows, []string{
			t.ID, t.Name, string(t.Kind), string(t.Status),
			fmt.Sprintf("%d/%d", t.AttemptCount, t.MaxAttempts),
		})
	}
	return rows
}

func runTasks(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	list, err := client.ListRequestTasks(args[0])
	if err != nil {
		return fmt.Errorf("failed to list request tasks: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No tasks found.", RequestTaskList(list))
}
