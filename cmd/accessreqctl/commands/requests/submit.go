package requests

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/pkg/apiclient"
	"github.com/permflow/engine/pkg/catalogue/models"
)

var (
	submitRequester string
	submitFolder    string
	submitMode      string
	submitNeed      string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new permission request",
	Long: `Submit a new read or write permission request for a folder.

Examples:
  accessreqctl requests submit --requester u-1 --folder f-1 --mode write --need "quarterly audit"`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitRequester, "requester", "", "Requester user ID (required)")
	submitCmd.Flags().StringVar(&submitFolder, "folder", "", "Folder ID (required)")
	submitCmd.Flags().StringVar(&submitMode, "mode", "", "Permission mode: read|write (required)")
	submitCmd.Flags().StringVar(&submitNeed, "need", "", "Business justification")
	_ = submitCmd.MarkFlagRequired("requester")
	_ = submitCmd.MarkFlagRequired("folder")
	_ = submitCmd.MarkFlagRequired("mode")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	mode := models.PermissionMode(submitMode)
	if !mode.IsValid() {
		return fmt.Errorf("invalid mode %q: must be read or write", submitMode)
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	created, err := client.SubmitRequest(apiclient.SubmitRequestInput{
		RequesterID:  submitRequester,
		FolderID:     submitFolder,
		Mode:         mode,
		BusinessNeed: submitNeed,
	})
	if err != nil {
		return fmt.Errorf("failed to submit request: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, created, fmt.Sprintf("Request '%s' submitted successfully", created.ID))
}
