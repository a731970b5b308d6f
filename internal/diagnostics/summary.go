// Package diagnostics renders the end-of-run summary for an action
// discovery test: trace log counts, per-operator pass/fail outcomes, and
// per-scope candidate resolution counts, in one human-readable block.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/calder/actionscope/internal/models"
	"github.com/calder/actionscope/internal/operator"
	"github.com/calder/actionscope/internal/scope"
	"github.com/calder/actionscope/internal/trace"
)

// Summary aggregates the three diagnostic categories of one run.
// It is a plain snapshot; collecting it does not mutate the sources.
type Summary struct {
	TraceEntries int
	TraceErrors  int
	Operators    []models.OperatorResult
	Scopes       []models.ScopeResult
}

// Collect snapshots the trace collector and the operator and scope
// recorders into a Summary. Nil sources contribute empty categories.
func Collect(tracer *trace.Collector, operators *operator.Recorder, scopes *scope.Recorder) Summary {
	s := Summary{}
	if tracer != nil {
		s.TraceEntries = tracer.Len()
		s.TraceErrors = tracer.ErrorCount()
	}
	if operators != nil {
		s.Operators = operators.Results()
	}
	if scopes != nil {
		s.Scopes = scopes.Results()
	}
	return s
}

// HasFailures reports whether any operator failed or any scope errored.
func (s Summary) HasFailures() bool {
	if s.TraceErrors > 0 {
		return true
	}
	for _, op := range s.Operators {
		if !op.Passed() {
			return true
		}
	}
	for _, sc := range s.Scopes {
		if sc.Err != "" {
			return true
		}
	}
	return false
}

// Render formats the summary block. With colorOutput, pass glyphs render
// green and failure glyphs red; otherwise plain text is produced.
//
// Format:
//
//	=== Action Discovery Diagnostics ===
//	Trace log: 15 entries, 0 errors
//	Operators:
//	  ✓ ==   (4 evaluations)
//	  ✗ !=   (2 evaluations, 1 failure: ...)
//	Scopes:
//	  affection:close_actors_facing_each_other: 4 candidates, 2 resolved, 2 filtered out
func (s Summary) Render(colorOutput bool) string {
	var b strings.Builder

	title := "=== Action Discovery Diagnostics ==="
	if colorOutput {
		title = color.New(color.Bold).Sprint(title)
	}
	b.WriteString(title)
	b.WriteString("\n")

	s.renderTraceLine(&b, colorOutput)
	s.renderOperators(&b, colorOutput)
	s.renderScopes(&b, colorOutput)

	return b.String()
}

// renderTraceLine writes the trace log counts line.
func (s Summary) renderTraceLine(b *strings.Builder, colorOutput bool) {
	errorsPart := fmt.Sprintf("%d errors", s.TraceErrors)
	if colorOutput && s.TraceErrors > 0 {
		errorsPart = color.New(color.FgRed).Sprint(errorsPart)
	}
	fmt.Fprintf(b, "Trace log: %d entries, %s\n", s.TraceEntries, errorsPart)
}

// renderOperators writes one pass/fail line per evaluated operator.
func (s Summary) renderOperators(b *strings.Builder, colorOutput bool) {
	if len(s.Operators) == 0 {
		b.WriteString("Operators: none evaluated\n")
		return
	}

	b.WriteString("Operators:\n")
	width := 0
	for _, op := range s.Operators {
		if len(op.Operator) > width {
			width = len(op.Operator)
		}
	}
	for _, op := range s.Operators {
		glyph := passGlyph(op.Passed(), colorOutput)
		detail := fmt.Sprintf("%d evaluations", op.Evaluations)
		if op.Evaluations == 1 {
			detail = "1 evaluation"
		}
		if !op.Passed() {
			detail += fmt.Sprintf(", %d failed", op.Failures)
			if op.FirstFailure != "" {
				detail += ": " + op.FirstFailure
			}
		}
		fmt.Fprintf(b, "  %s %-*s (%s)\n", glyph, width, op.Operator, detail)
	}
}

// renderScopes writes one candidate/resolved/filtered line per scope.
func (s Summary) renderScopes(b *strings.Builder, colorOutput bool) {
	if len(s.Scopes) == 0 {
		b.WriteString("Scopes: none evaluated\n")
		return
	}

	b.WriteString("Scopes:\n")
	for _, sc := range s.Scopes {
		if sc.Err != "" {
			glyph := passGlyph(false, colorOutput)
			fmt.Fprintf(b, "  %s %s: %s\n", glyph, sc.ScopeID, sc.Err)
			continue
		}
		fmt.Fprintf(b, "  %s: %d candidates, %d resolved, %d filtered out\n",
			sc.ScopeID, sc.Candidates, sc.Resolved, sc.Filtered)
	}
}

// passGlyph returns the ✓/✗ glyph, colorized when requested.
func passGlyph(passed, colorOutput bool) string {
	if passed {
		if colorOutput {
			return color.New(color.FgGreen).Sprint("✓")
		}
		return "✓"
	}
	if colorOutput {
		return color.New(color.FgRed).Sprint("✗")
	}
	return "✗"
}

// Display renders the summary to the writer, enabling color when the
// writer is a terminal.
func (s Summary) Display(w io.Writer) {
	fmt.Fprint(w, s.Render(isTerminal(w)))
}

// isTerminal reports whether the writer is a color-capable TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
