// Package discovery runs the action-discovery pipeline: for an acting
// entity, evaluate every action definition's prerequisites and resolve its
// target scope, emitting trace entries at each stage. Failures reject the
// action and the pipeline continues; nothing in here panics on bad rules.
package discovery

import (
	"fmt"

	"github.com/calder/actionscope/internal/models"
	"github.com/calder/actionscope/internal/operator"
	"github.com/calder/actionscope/internal/registry"
	"github.com/calder/actionscope/internal/scope"
	"github.com/calder/actionscope/internal/trace"
)

// Pipeline evaluates which actions are available to an actor.
type Pipeline struct {
	registry *registry.Registry
	actions  []models.ActionDefinition
	eval     *operator.Evaluator
	scopes   *scope.Resolver
	tracer   *trace.Collector
}

// NewPipeline creates a pipeline over validated action definitions.
func NewPipeline(reg *registry.Registry, actions []models.ActionDefinition, eval *operator.Evaluator, scopes *scope.Resolver, tracer *trace.Collector) (*Pipeline, error) {
	seen := make(map[string]bool, len(actions))
	for i := range actions {
		if err := actions[i].Validate(); err != nil {
			return nil, err
		}
		if seen[actions[i].ID] {
			return nil, fmt.Errorf("duplicate action id %q", actions[i].ID)
		}
		seen[actions[i].ID] = true
	}
	return &Pipeline{
		registry: reg,
		actions:  actions,
		eval:     eval,
		scopes:   scopes,
		tracer:   tracer,
	}, nil
}

// DiscoverFor runs discovery for one actor. An unknown actor id is the
// only hard error; per-action failures are traced and recorded as
// rejections so a broken action never hides the rest.
func (p *Pipeline) DiscoverFor(actorID string) (models.DiscoveryResult, error) {
	actor, ok := p.registry.Get(actorID)
	if !ok {
		return models.DiscoveryResult{}, fmt.Errorf("unknown actor %q", actorID)
	}

	result := models.DiscoveryResult{
		ActorID:  actorID,
		Rejected: make(map[string]string),
	}

	p.tracer.Info("discovery", "starting discovery for %s (%d actions)", actorID, len(p.actions))

	for i := range p.actions {
		action := &p.actions[i]
		p.evaluateAction(actor, action, &result)
	}

	p.tracer.Info("discovery", "finished discovery for %s: %d discovered, %d rejected",
		actorID, len(result.Discovered), len(result.Rejected))

	return result, nil
}

// evaluateAction runs prerequisites and scope resolution for one action.
func (p *Pipeline) evaluateAction(actor *models.Entity, action *models.ActionDefinition, result *models.DiscoveryResult) {
	p.tracer.Debug("prerequisites", "evaluating %s for %s", action.ID, actor.ID)

	ctx := operator.Context{"actor": operator.EntityContext(actor)}
	for _, rule := range action.Prerequisites {
		passed, err := p.eval.EvalBool(rule, ctx)
		if err != nil {
			p.tracer.Error("prerequisites", "%s: rule evaluation failed: %v", action.ID, err)
			result.Rejected[action.ID] = fmt.Sprintf("prerequisite evaluation failed: %v", err)
			return
		}
		if !passed {
			p.tracer.Debug("prerequisites", "%s: prerequisite not met for %s", action.ID, actor.ID)
			result.Rejected[action.ID] = "prerequisite not met"
			return
		}
	}

	targets, err := p.scopes.Resolve(action.TargetScope, actor)
	if err != nil {
		p.tracer.Error("scope", "%s: resolving %s failed: %v", action.ID, action.TargetScope, err)
		result.Rejected[action.ID] = fmt.Sprintf("scope resolution failed: %v", err)
		return
	}
	p.tracer.Debug("scope", "%s: scope %s resolved %d targets", action.ID, action.TargetScope, len(targets))

	// Targetless actions are discoverable with an empty target list;
	// targeted actions need at least one resolved target.
	if action.TargetScope != models.ScopeNone && len(targets) == 0 {
		result.Rejected[action.ID] = "no targets in scope"
		return
	}

	result.Discovered = append(result.Discovered, models.DiscoveredAction{
		ActionID: action.ID,
		Name:     action.Name,
		Targets:  targets,
	})
	p.tracer.Info("discovery", "%s available for %s", action.ID, actor.ID)
}
