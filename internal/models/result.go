package models

import "time"

// OperatorResult is the per-operator outcome accumulated over a run.
// An operator passes only if every application of it succeeded.
type OperatorResult struct {
	// Operator is the operator name, e.g. "==", "var", "!="
	Operator string

	// Evaluations is the number of times the operator was applied
	Evaluations int

	// Failures is the number of applications that errored or produced
	// an unusable result
	Failures int

	// FirstFailure keeps the detail of the first failure for the report
	FirstFailure string
}

// Passed reports whether every application of the operator succeeded.
func (r OperatorResult) Passed() bool {
	return r.Failures == 0
}

// ScopeResult is the per-scope outcome of target resolution.
// Candidates is always Resolved + Filtered.
type ScopeResult struct {
	// ScopeID is the namespaced scope id, e.g.
	// "affection:close_actors_facing_each_other"
	ScopeID string

	// Candidates is the number of entities considered by the scope source
	Candidates int

	// Resolved is the number of candidates that survived the filter
	Resolved int

	// Filtered is the number of candidates rejected by the filter
	Filtered int

	// Err holds the resolution error message, if resolution failed
	Err string
}

// DiscoveredAction is one action found available for an actor, with the
// targets its scope resolved to.
type DiscoveredAction struct {
	ActionID string
	Name     string
	Targets  []string
}

// DiscoveryResult is the outcome of running discovery for a single actor.
type DiscoveryResult struct {
	ActorID    string
	Discovered []DiscoveredAction
	// Rejected maps action id to the reason it was not discovered
	Rejected map[string]string
}

// RunResult aggregates everything a scenario run produced, for the
// diagnostics summary and the history store.
type RunResult struct {
	RunID        string
	ScenarioFile string
	StartedAt    time.Time
	FinishedAt   time.Time

	Discoveries []DiscoveryResult

	// ExpectationFailures lists test-case expectations that did not hold
	ExpectationFailures []string
}

// Duration returns the wall-clock duration of the run.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// DiscoveredCount returns the total number of discovered actions across
// all actors in the run.
func (r *RunResult) DiscoveredCount() int {
	n := 0
	for _, d := range r.Discoveries {
		n += len(d.Discovered)
	}
	return n
}
