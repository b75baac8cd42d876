package main

import (
	"fmt"
	"os"

	"github.com/permflow/engine/cmd/accessreqd/commands"

	// Registers the prometheus implementations of pkg/metrics' facades via
	// their init() functions.
	_ "github.com/permflow/engine/pkg/metrics/prometheus"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
