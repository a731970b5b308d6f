package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calder/actionscope/internal/config"
	"github.com/calder/actionscope/internal/reportfile"
)

// NewReportCommand creates and returns the report subcommand
func NewReportCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Show the diagnostics report of a past run",
		Long: `Print the stored diagnostics report for a run recorded in the
history database.

With --output the report is exported to a file instead of printed.
A relative output path resolves into the configured report directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showReport(cmd.Context(), args[0], outputPath, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "export the report to this file")

	return cmd
}

// showReport fetches a run record and prints or exports its report.
func showReport(ctx context.Context, runID, outputPath string, output io.Writer) error {
	store, dbPath, err := openHistoryStore()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no run history found at %s", dbPath)
	}
	defer store.Close()

	rec, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Fprintf(output, "Run %s: %s (%s)\n\n", rec.ID, rec.ScenarioName, rec.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprint(output, rec.Report)
		return nil
	}

	path := outputPath
	if !filepath.IsAbs(path) {
		cfg, err := config.LoadConfigFromHome()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path, err = cfg.ReportPath(outputPath)
		if err != nil {
			return fmt.Errorf("resolve report path: %w", err)
		}
	}
	if err := reportfile.Export(path, rec.Report); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	fmt.Fprintf(output, "Report for run %s saved to %s\n", rec.ID, path)
	return nil
}
