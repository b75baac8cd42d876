// Package commands implements accessreqctl: the operator CLI for the
// access-request engine's HTTP API.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/cmd/accessreqctl/cmdutil"
	"github.com/permflow/engine/cmd/accessreqctl/commands/context"
	"github.com/permflow/engine/cmd/accessreqctl/commands/notifications"
	"github.com/permflow/engine/cmd/accessreqctl/commands/requests"
	"github.com/permflow/engine/cmd/accessreqctl/commands/tasks"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "accessreqctl",
	Short: "Operator CLI for the access-request engine",
	Long: `accessreqctl talks to a running accessreqd server over its HTTP API:
submit and decide permission requests, inspect the task pipeline, and
triage admin notifications.

Use "accessreqctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("accessreqctl %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.ServerURL, "server", "", "Server URL (overrides stored context)")
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.Token, "token", "", "Bearer token (overrides stored context)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&cmdutil.Flags.Verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(context.Cmd)
	rootCmd.AddCommand(requests.Cmd)
	rootCmd.AddCommand(tasks.Cmd)
	rootCmd.AddCommand(notifications.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
	os.Exit(1)
}
