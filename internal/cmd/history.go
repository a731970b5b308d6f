package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/calder/actionscope/internal/config"
	"github.com/calder/actionscope/internal/history"
)

// NewHistoryCommand creates the 'actionscope history' parent command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Run history commands",
		Long: `Commands for viewing and managing the run history database.

Every harness run records its diagnostics counts and rendered report,
so past runs can be listed, aggregated, and re-rendered without
re-running scenarios.`,
	}

	// Add subcommands
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryStatsCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

// openHistoryStore resolves the configured database path and opens it.
// Returns a nil store without error when the database does not exist yet.
func openHistoryStore() (*history.Store, string, error) {
	cfg, err := config.LoadConfigFromHome()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, "", fmt.Errorf("resolve history database path: %w", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, dbPath, nil
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, dbPath, fmt.Errorf("open history store: %w", err)
	}
	return store, dbPath, nil
}

// newHistoryListCommand creates the 'actionscope history list' command
func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(cmd.Context(), cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}

// listRuns prints recent runs in a compact one-line-per-run table.
func listRuns(ctx context.Context, output io.Writer, limit int) error {
	store, dbPath, err := openHistoryStore()
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(output, "No run history found\nDatabase path: %s\n", dbPath)
		return nil
	}
	defer store.Close()

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No runs recorded yet\n")
		return nil
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for i := range runs {
		run := &runs[i]
		outcome := "pass"
		if !run.Passed() {
			outcome = "fail"
		}
		fmt.Fprintf(output, "%s  %s  ", run.ID, run.StartedAt.Format("2006-01-02 15:04:05"))
		if run.Passed() {
			green.Fprint(output, outcome)
		} else {
			red.Fprint(output, outcome)
		}
		fmt.Fprintf(output, "  %s (%d discovered, %d expectation failures)\n",
			run.ScenarioName, run.ActionsDiscovered, run.ExpectationFailures)
	}
	return nil
}

// newHistoryStatsCommand creates the 'actionscope history stats' command
func newHistoryStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pass/fail statistics per scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStats(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// showStats prints per-scenario aggregates.
func showStats(ctx context.Context, output io.Writer) error {
	store, dbPath, err := openHistoryStore()
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(output, "No run history found\nDatabase path: %s\n", dbPath)
		return nil
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintf(output, "No runs recorded yet\n")
		return nil
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	cyan.Fprintf(output, "\n=== Run Statistics ===\n\n")
	for _, st := range stats {
		rate := float64(st.Passed) / float64(st.Runs) * 100
		fmt.Fprintf(output, "  %s:\n", st.ScenarioFile)
		fmt.Fprintf(output, "    Runs: %d\n", st.Runs)
		fmt.Fprintf(output, "    Pass rate: ")
		if rate >= 70 {
			green.Fprintf(output, "%.1f%%", rate)
		} else if rate >= 40 {
			yellow.Fprintf(output, "%.1f%%", rate)
		} else {
			red.Fprintf(output, "%.1f%%", rate)
		}
		fmt.Fprintf(output, " (%d/%d)\n", st.Passed, st.Runs)
		fmt.Fprintf(output, "    Last run: %s\n", st.LastRun.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(output, "\n")
	return nil
}

// newHistoryClearCommand creates the 'actionscope history clear' command
func newHistoryClearCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete runs older than the retention window",
		Long: `Delete old runs from the history database.

By default runs older than the configured retention window
(history.retention_days) are deleted. With --all every run is deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearRuns(cmd.Context(), cmd.OutOrStdout(), all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete all runs regardless of age")

	return cmd
}

// clearRuns applies the retention policy to the history database.
func clearRuns(ctx context.Context, output io.Writer, all bool) error {
	cfg, err := config.LoadConfigFromHome()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, dbPath, err := openHistoryStore()
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(output, "No run history found\nDatabase path: %s\n", dbPath)
		return nil
	}
	defer store.Close()

	retention := cfg.History.RetentionDays
	if all {
		retention = 0
	}
	deleted, err := store.Clear(ctx, retention)
	if err != nil {
		return err
	}

	if retention <= 0 {
		fmt.Fprintf(output, "Deleted %d run(s)\n", deleted)
	} else {
		fmt.Fprintf(output, "Deleted %d run(s) older than %d days\n", deleted, retention)
	}
	return nil
}
