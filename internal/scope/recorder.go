package scope

import (
	"sync"

	"github.com/calder/actionscope/internal/models"
)

// Recorder accumulates per-scope resolution counts over a run. A scope
// resolved for several actors accumulates into a single result. Scopes
// are reported in first-use order.
type Recorder struct {
	mu      sync.Mutex
	order   []string
	results map[string]*models.ScopeResult
}

// NewRecorder creates an empty scope recorder.
func NewRecorder() *Recorder {
	return &Recorder{results: make(map[string]*models.ScopeResult)}
}

// observe folds one resolution into the per-scope result.
func (r *Recorder) observe(scopeID string, candidates, resolved, filtered int, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.results[scopeID]
	if !ok {
		res = &models.ScopeResult{ScopeID: scopeID}
		r.results[scopeID] = res
		r.order = append(r.order, scopeID)
	}

	res.Candidates += candidates
	res.Resolved += resolved
	res.Filtered += filtered
	if errMsg != "" && res.Err == "" {
		res.Err = errMsg
	}
}

// Results returns the accumulated per-scope results in first-use order.
func (r *Recorder) Results() []models.ScopeResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ScopeResult, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.results[id])
	}
	return out
}

// Len returns the number of distinct scopes observed.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
