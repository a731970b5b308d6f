package diagnostics

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/calder/actionscope/internal/models"
	"github.com/calder/actionscope/internal/operator"
	"github.com/calder/actionscope/internal/scope"
	"github.com/calder/actionscope/internal/trace"
)

// TestRenderFullSummary verifies the full report block with all three
// categories populated, matching the documented format
func TestRenderFullSummary(t *testing.T) {
	s := Summary{
		TraceEntries: 15,
		TraceErrors:  0,
		Operators: []models.OperatorResult{
			{Operator: "==", Evaluations: 4},
			{Operator: "var", Evaluations: 9},
			{Operator: "!=", Evaluations: 2, Failures: 1, FirstFailure: "left operand is not numeric"},
		},
		Scopes: []models.ScopeResult{
			{ScopeID: "affection:close_actors_facing_each_other", Candidates: 4, Resolved: 2, Filtered: 2},
		},
	}

	out := s.Render(false)

	wantLines := []string{
		"=== Action Discovery Diagnostics ===",
		"Trace log: 15 entries, 0 errors",
		"Operators:",
		"✓ ==",
		"✓ var",
		"✗ !=",
		"Scopes:",
		"affection:close_actors_facing_each_other: 4 candidates, 2 resolved, 2 filtered out",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
}

// TestRenderTotalsMatchCollections verifies the formatting contract: the
// displayed totals equal the sizes of the underlying collections
func TestRenderTotalsMatchCollections(t *testing.T) {
	tracer := trace.NewCollector()
	for i := 0; i < 15; i++ {
		tracer.Debug("discovery", "entry %d", i)
	}

	opRec := operator.NewRecorder()
	eval := operator.NewEvaluator(opRec)
	for i := 0; i < 3; i++ {
		if _, err := eval.Eval(map[string]interface{}{"==": []interface{}{1, 1}}, nil); err != nil {
			t.Fatalf("Eval() error = %v", err)
		}
	}

	scopeRec := scope.NewRecorder()

	s := Collect(tracer, opRec, scopeRec)
	if s.TraceEntries != tracer.Len() {
		t.Errorf("TraceEntries = %d, want %d", s.TraceEntries, tracer.Len())
	}
	if s.TraceErrors != tracer.ErrorCount() {
		t.Errorf("TraceErrors = %d, want %d", s.TraceErrors, tracer.ErrorCount())
	}
	if len(s.Operators) != opRec.Len() {
		t.Errorf("len(Operators) = %d, want %d", len(s.Operators), opRec.Len())
	}

	out := s.Render(false)
	wantTrace := fmt.Sprintf("Trace log: %d entries, %d errors", tracer.Len(), tracer.ErrorCount())
	if !strings.Contains(out, wantTrace) {
		t.Errorf("Render() missing %q in:\n%s", wantTrace, out)
	}
	if !strings.Contains(out, "3 evaluations") {
		t.Errorf("Render() missing operator evaluation count in:\n%s", out)
	}
}

// TestRenderEmptyCategories verifies every category renders even when empty
func TestRenderEmptyCategories(t *testing.T) {
	s := Collect(nil, nil, nil)
	out := s.Render(false)

	for _, want := range []string{
		"Trace log: 0 entries, 0 errors",
		"Operators: none evaluated",
		"Scopes: none evaluated",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
}

// TestRenderScopeError verifies errored scopes render with a failure glyph
func TestRenderScopeError(t *testing.T) {
	s := Summary{
		Scopes: []models.ScopeResult{
			{ScopeID: "bad:scope", Err: `unknown scope "bad:scope"`},
		},
	}
	out := s.Render(false)
	if !strings.Contains(out, `✗ bad:scope: unknown scope "bad:scope"`) {
		t.Errorf("Render() missing errored scope line in:\n%s", out)
	}
}

// TestHasFailures verifies failure detection across categories
func TestHasFailures(t *testing.T) {
	tests := []struct {
		name string
		s    Summary
		want bool
	}{
		{"clean", Summary{TraceEntries: 5}, false},
		{"trace errors", Summary{TraceErrors: 1}, true},
		{"operator failure", Summary{Operators: []models.OperatorResult{{Operator: ">", Evaluations: 1, Failures: 1}}}, true},
		{"scope error", Summary{Scopes: []models.ScopeResult{{ScopeID: "a:b", Err: "boom"}}}, true},
		{"passing operator", Summary{Operators: []models.OperatorResult{{Operator: "==", Evaluations: 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.HasFailures(); got != tt.want {
				t.Errorf("HasFailures() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDisplayNonTTY verifies Display writes plain text to a buffer
func TestDisplayNonTTY(t *testing.T) {
	s := Summary{
		TraceEntries: 2,
		Operators:    []models.OperatorResult{{Operator: "==", Evaluations: 1}},
	}

	var buf bytes.Buffer
	s.Display(&buf)

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Display() to non-TTY produced ANSI escapes:\n%q", out)
	}
	if !strings.Contains(out, "Trace log: 2 entries") {
		t.Errorf("Display() missing trace line in:\n%s", out)
	}
}

// TestRenderSingularEvaluation verifies the singular form for one evaluation
func TestRenderSingularEvaluation(t *testing.T) {
	s := Summary{Operators: []models.OperatorResult{{Operator: "var", Evaluations: 1}}}
	if out := s.Render(false); !strings.Contains(out, "(1 evaluation)") {
		t.Errorf("Render() missing singular evaluation count in:\n%s", out)
	}
}
