package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for actionscope
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actionscope",
		Short: "Action discovery test harness",
		Long: `Actionscope runs action-discovery scenarios against a set of
entities and reports what each actor can do.

It parses scenario files (YAML or Markdown), evaluates action
prerequisites and target scopes for every test case, and prints a
diagnostics summary covering the trace log, operator evaluations,
and scope resolutions.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewReportCommand())

	return cmd
}
