package tasks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/pkg/catalogue/models"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

// SingleTaskList wraps a single task for key-value table rendering.
type SingleTaskList []models.Task

func (sl SingleTaskList) Headers() []string { return []string{"FIELD", "VALUE"} }

func (sl SingleTaskList) Rows() [][]string {
	if len(sl) == 0 {
		return nil
	}
	t := sl[0]
	return [][]string{
		{"ID", t.ID},
		{"Name", t.Name},
		{"Kind", string(t.Kind)},
		{"Status", string(t.Status)},
		{"Attempts", fmt.Sprintf("%d/%d", t.AttemptCount, t.MaxAttempts)},
		{"Depends On", cmdutil.EmptyOr(derefStr(t.DependsOnTaskID), "-")},
		{"Request", cmdutil.EmptyOr(derefStr(t.PermissionRequestID), "-")},
		{"Error", cmdutil.EmptyOr(t.ErrorMessage, "-")},
	}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	task, err := client.GetTask(args[0])
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, task, SingleTaskList{*task})
}
