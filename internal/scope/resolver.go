package scope

import (
	"fmt"

	"github.com/calder/actionscope/internal/models"
	"github.com/calder/actionscope/internal/operator"
	"github.com/calder/actionscope/internal/registry"
)

// Resolver resolves scope ids against an entity registry. Resolutions are
// observed by the attached Recorder; filter rules run through the shared
// operator evaluator so their operator applications land in the operator
// results as well.
type Resolver struct {
	registry *registry.Registry
	defs     map[string]*Definition
	eval     *operator.Evaluator
	recorder *Recorder
}

// NewResolver creates a resolver over the given registry and scope
// definitions. recorder may be nil when no diagnostics are wanted.
func NewResolver(reg *registry.Registry, defs []Definition, eval *operator.Evaluator, recorder *Recorder) (*Resolver, error) {
	byID := make(map[string]*Definition, len(defs))
	for i := range defs {
		d := &defs[i]
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byID[d.ID]; exists {
			return nil, fmt.Errorf("duplicate scope id %q", d.ID)
		}
		byID[d.ID] = d
	}
	return &Resolver{registry: reg, defs: byID, eval: eval, recorder: recorder}, nil
}

// Has reports whether the resolver knows the given scope id, counting the
// special scopes "none" and "self".
func (r *Resolver) Has(scopeID string) bool {
	if scopeID == models.ScopeNone || scopeID == models.ScopeSelf {
		return true
	}
	_, ok := r.defs[scopeID]
	return ok
}

// Resolve resolves a scope for the given actor and returns the resolved
// target entity ids. The special scope "none" resolves to no targets and
// "self" to the actor; neither is recorded, since no candidate evaluation
// happens for them.
func (r *Resolver) Resolve(scopeID string, actor *models.Entity) ([]string, error) {
	switch scopeID {
	case models.ScopeNone:
		return nil, nil
	case models.ScopeSelf:
		return []string{actor.ID}, nil
	}

	def, ok := r.defs[scopeID]
	if !ok {
		err := fmt.Errorf("unknown scope %q", scopeID)
		r.record(scopeID, 0, 0, 0, err.Error())
		return nil, err
	}

	candidates, err := r.candidates(def, actor)
	if err != nil {
		r.record(scopeID, 0, 0, 0, err.Error())
		return nil, err
	}

	resolved := make([]string, 0, len(candidates))
	filtered := 0
	for _, candidate := range candidates {
		keep, err := r.keepCandidate(def, actor, candidate)
		if err != nil {
			r.record(scopeID, len(candidates), len(resolved), filtered, err.Error())
			return nil, fmt.Errorf("scope %s: filter on %s: %w", scopeID, candidate.ID, err)
		}
		if keep {
			resolved = append(resolved, candidate.ID)
		} else {
			filtered++
		}
	}

	r.record(scopeID, len(candidates), len(resolved), filtered, "")
	return resolved, nil
}

// candidates gathers the candidate set for a definition's source.
func (r *Resolver) candidates(def *Definition, actor *models.Entity) ([]*models.Entity, error) {
	switch {
	case def.Source == SourceActor:
		return []*models.Entity{actor}, nil
	case def.Source == SourceLocation:
		return r.registry.CoLocated(actor.ID), nil
	default:
		compID := componentSource(def.Source)
		if compID == "" {
			return nil, fmt.Errorf("scope %s: unknown source %q", def.ID, def.Source)
		}
		var out []*models.Entity
		for _, e := range r.registry.ListWithComponent(compID) {
			if e.ID == actor.ID {
				continue
			}
			out = append(out, e)
		}
		return out, nil
	}
}

// keepCandidate applies the definition's filter to one candidate.
func (r *Resolver) keepCandidate(def *Definition, actor, candidate *models.Entity) (bool, error) {
	if def.Filter == nil {
		return true, nil
	}
	ctx := operator.Context{
		"actor":  operator.EntityContext(actor),
		"entity": operator.EntityContext(candidate),
	}
	return r.eval.EvalBool(def.Filter, ctx)
}

// record observes a resolution if a recorder is attached.
func (r *Resolver) record(scopeID string, candidates, resolved, filtered int, errMsg string) {
	if r.recorder == nil {
		return
	}
	r.recorder.observe(scopeID, candidates, resolved, filtered, errMsg)
}
