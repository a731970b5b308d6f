// Package fixture loads scenario files: the entities, scope definitions,
// action definitions, and test cases one harness run executes. Scenarios
// are YAML documents, either standalone or embedded in markdown fences.
package fixture

import (
	"fmt"
	"strings"

	"github.com/calder/actionscope/internal/models"
	"github.com/calder/actionscope/internal/scope"
)

// TestCase is one discovery expectation: run discovery for the actor and
// expect exactly these action ids to be discovered.
type TestCase struct {
	// Actor is the entity id discovery runs for
	Actor string `yaml:"actor"`

	// Expect lists the action ids that must be discovered, in pipeline
	// order
	Expect []string `yaml:"expect"`
}

// Scenario is a complete fixture for one harness run.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Entities []models.Entity           `yaml:"entities"`
	Scopes   []scope.Definition        `yaml:"scopes"`
	Actions  []models.ActionDefinition `yaml:"actions"`
	Tests    []TestCase                `yaml:"tests"`
}

// Validate checks the scenario's internal consistency: entity, scope, and
// action validity, id uniqueness, scope references, and test case actors.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}
	if len(s.Entities) == 0 {
		return fmt.Errorf("scenario %q has no entities", s.Name)
	}
	if len(s.Actions) == 0 {
		return fmt.Errorf("scenario %q has no actions", s.Name)
	}

	entityIDs := make(map[string]bool, len(s.Entities))
	for i := range s.Entities {
		e := &s.Entities[i]
		if err := e.Validate(); err != nil {
			return err
		}
		if entityIDs[e.ID] {
			return fmt.Errorf("duplicate entity id %q", e.ID)
		}
		entityIDs[e.ID] = true
	}

	scopeIDs := make(map[string]bool, len(s.Scopes))
	for i := range s.Scopes {
		d := &s.Scopes[i]
		if err := d.Validate(); err != nil {
			return err
		}
		if scopeIDs[d.ID] {
			return fmt.Errorf("duplicate scope id %q", d.ID)
		}
		scopeIDs[d.ID] = true
	}

	actionIDs := make(map[string]bool, len(s.Actions))
	for i := range s.Actions {
		a := &s.Actions[i]
		if err := a.Validate(); err != nil {
			return err
		}
		if actionIDs[a.ID] {
			return fmt.Errorf("duplicate action id %q", a.ID)
		}
		actionIDs[a.ID] = true

		if a.TargetScope != models.ScopeNone && a.TargetScope != models.ScopeSelf && !scopeIDs[a.TargetScope] {
			return fmt.Errorf("action %s: target_scope %q is not defined in the scenario", a.ID, a.TargetScope)
		}
	}

	for i, tc := range s.Tests {
		if tc.Actor == "" {
			return fmt.Errorf("test case %d: actor cannot be empty", i+1)
		}
		if !entityIDs[tc.Actor] {
			return fmt.Errorf("test case %d: actor %q is not defined in the scenario", i+1, tc.Actor)
		}
		for _, actionID := range tc.Expect {
			if !actionIDs[actionID] {
				return fmt.Errorf("test case %d: expected action %q is not defined in the scenario", i+1, actionID)
			}
		}
	}

	return nil
}

// merge folds another partial scenario into this one. Scalars keep the
// first non-empty value; lists append. Markdown scenarios with several
// yaml fences merge through this.
func (s *Scenario) merge(other *Scenario) {
	if s.Name == "" {
		s.Name = other.Name
	}
	if s.Description == "" {
		s.Description = other.Description
	}
	s.Entities = append(s.Entities, other.Entities...)
	s.Scopes = append(s.Scopes, other.Scopes...)
	s.Actions = append(s.Actions, other.Actions...)
	s.Tests = append(s.Tests, other.Tests...)
}
