package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calder/actionscope/internal/fixture"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-directory>...",
		Short: "Validate one or more scenario files",
		Long: `Parse and validate scenario files without running them, checking for:
  - Entity, scope, and action validity (namespaced ids, sources, rules)
  - Duplicate entity, scope, and action ids
  - Actions referencing scopes defined in the scenario
  - Test cases referencing defined actors and actions

Supports multiple input modes:
  - Single file: actionscope validate garden.yaml
  - Single directory: actionscope validate scenarios/
  - Multiple files: actionscope validate garden.yaml tavern.md

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenarios(args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateScenarios validates every scenario file under the given paths.
func validateScenarios(paths []string, output io.Writer) error {
	files, err := fixture.FindScenarioFiles(paths)
	if err != nil {
		return err
	}

	var errors []string
	for _, file := range files {
		scn, err := fixture.ParseFile(file)
		if err != nil {
			errors = append(errors, err.Error())
			fmt.Fprintf(output, "✗ %s: %v\n", filepath.Base(file), err)
			continue
		}
		fmt.Fprintf(output, "✓ %s: %d entities, %d scopes, %d actions, %d test cases\n",
			filepath.Base(file), len(scn.Entities), len(scn.Scopes), len(scn.Actions), len(scn.Tests))
	}

	if len(errors) == 0 {
		fmt.Fprintf(output, "\n✓ All scenarios valid!\n")
		return nil
	}

	fmt.Fprintf(output, "\n✗ Validation failed\n")
	fmt.Fprintf(output, "\nFound %d validation error(s)!\n", len(errors))
	return fmt.Errorf("validation failed with %d error(s)", len(errors))
}
