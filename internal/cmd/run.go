package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/calder/actionscope/internal/config"
	"github.com/calder/actionscope/internal/fixture"
	"github.com/calder/actionscope/internal/harness"
	"github.com/calder/actionscope/internal/history"
	"github.com/calder/actionscope/internal/logger"
	"github.com/calder/actionscope/internal/reportfile"
)

// runOptions holds the flag values for the run command
type runOptions struct {
	logLevel   string
	colorMode  string
	noHistory  bool
	saveReport bool
}

// NewRunCommand creates and returns the run subcommand
func NewRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario-file-or-directory>...",
		Short: "Run one or more discovery scenarios",
		Long: `Execute discovery scenarios and print a diagnostics summary per run.

For each scenario the harness builds the entity registry, evaluates every
test case's discovery expectations, and reports:
  - Trace log entry and error counts
  - Per-operator evaluation outcomes
  - Per-scope candidate resolution counts

Supports multiple input modes:
  - Single file: actionscope run garden.yaml
  - Single directory: actionscope run scenarios/
  - Multiple files: actionscope run garden.yaml tavern.md

Exit code: 0 if all scenarios pass, 1 if any fail`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), args, opts, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "console log level (trace, debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.colorMode, "color", "", "colorize output (auto, always, never)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "skip recording runs in the history database")
	cmd.Flags().BoolVar(&opts.saveReport, "save-report", false, "export each report to the report directory")

	return cmd
}

// runScenarios executes every scenario file under the given paths.
func runScenarios(ctx context.Context, paths []string, opts *runOptions, output io.Writer) error {
	cfg, err := config.LoadConfigFromHome()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Flags override the config file
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.colorMode != "" {
		cfg.Color = opts.colorMode
	}
	if opts.noHistory {
		cfg.History.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// fatih/color disables itself globally off a TTY; forced color has to
	// override that or Render(true) still emits plain text
	if cfg.Color == "always" {
		color.NoColor = false
	}

	files, err := fixture.FindScenarioFiles(resolveScenarioPaths(cfg, paths))
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.History.Enabled {
		dbPath, err := cfg.HistoryDBPath()
		if err != nil {
			return fmt.Errorf("resolve history database path: %w", err)
		}
		store, err = history.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
	}

	log := logger.NewConsoleLogger(output, cfg.LogLevel)
	h := harness.New(log)

	failed := 0
	for _, file := range files {
		passed, err := runOneScenario(ctx, h, log, cfg, store, opts, file, output)
		if err != nil {
			log.LogError("%s: %v", filepath.Base(file), err)
			failed++
			continue
		}
		if !passed {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenario(s) failed", failed, len(files))
	}
	return nil
}

// runOneScenario parses, runs, reports, and records a single scenario.
// The error covers parse and wiring problems; a failing run returns
// (false, nil) after its report is printed.
func runOneScenario(ctx context.Context, h *harness.Harness, log harness.Logger, cfg *config.Config, store *history.Store, opts *runOptions, file string, output io.Writer) (bool, error) {
	scn, err := fixture.ParseFile(file)
	if err != nil {
		return false, err
	}

	outcome, err := h.RunScenario(scn, file)
	if err != nil {
		return false, err
	}

	fmt.Fprintf(output, "\n%s", outcome.Summary.Render(colorEnabled(cfg.Color, output)))
	for _, failure := range outcome.Result.ExpectationFailures {
		fmt.Fprintf(output, "%s %s\n", failGlyph(colorEnabled(cfg.Color, output)), failure)
	}
	fmt.Fprintln(output)

	// History and export always store the plain rendering
	report := outcome.Summary.Render(false)

	if store != nil {
		if err := store.RecordRun(ctx, outcome.RunRecord(scn.Name, report)); err != nil {
			log.LogWarn("record run in history: %v", err)
		}
	}

	if opts.saveReport {
		path, err := cfg.ReportPath(reportFileName(file, outcome.Result.RunID))
		if err != nil {
			return false, fmt.Errorf("resolve report path: %w", err)
		}
		if err := reportfile.Export(path, report); err != nil {
			return false, fmt.Errorf("export report: %w", err)
		}
		log.LogInfo("report saved to %s", path)
	}

	return outcome.Passed(), nil
}

// resolveScenarioPaths maps relative paths that do not exist on their own
// into the configured fixtures directory.
func resolveScenarioPaths(cfg *config.Config, paths []string) []string {
	if cfg.FixturesDir == "" {
		return paths
	}
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = path
		if filepath.IsAbs(path) {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			continue
		}
		candidate := filepath.Join(cfg.FixturesDir, path)
		if _, err := os.Stat(candidate); err == nil {
			out[i] = candidate
		}
	}
	return out
}

// reportFileName builds "<scenario-stem>-<short-run-id>.txt".
func reportFileName(scenarioFile, runID string) string {
	stem := strings.TrimSuffix(filepath.Base(scenarioFile), filepath.Ext(scenarioFile))
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s.txt", stem, short)
}

// colorEnabled resolves the color mode against the output writer.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// failGlyph returns the failure marker for expectation failure lines.
func failGlyph(colorOutput bool) string {
	if colorOutput {
		return color.New(color.FgRed).Sprint("✗")
	}
	return "✗"
}
