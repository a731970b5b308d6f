// Package operator evaluates the JSON-Logic-shaped prerequisite and filter
// rules used by action definitions and scopes. Every operator application
// is observed by a Recorder so the diagnostics summary can report a
// pass/fail outcome per operator.
package operator

import (
	"sync"

	"github.com/calder/actionscope/internal/models"
)

// Recorder accumulates per-operator evaluation outcomes over a run.
// Operators are reported in first-use order.
type Recorder struct {
	mu      sync.Mutex
	order   []string
	results map[string]*models.OperatorResult
}

// NewRecorder creates an empty operator recorder.
func NewRecorder() *Recorder {
	return &Recorder{results: make(map[string]*models.OperatorResult)}
}

// observe folds one operator application into the per-operator result.
func (r *Recorder) observe(op string, failed bool, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.results[op]
	if !ok {
		res = &models.OperatorResult{Operator: op}
		r.results[op] = res
		r.order = append(r.order, op)
	}

	res.Evaluations++
	if failed {
		res.Failures++
		if res.FirstFailure == "" {
			res.FirstFailure = detail
		}
	}
}

// Results returns the accumulated per-operator results in first-use order.
func (r *Recorder) Results() []models.OperatorResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.OperatorResult, 0, len(r.order))
	for _, op := range r.order {
		out = append(out, *r.results[op])
	}
	return out
}

// Len returns the number of distinct operators observed.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
