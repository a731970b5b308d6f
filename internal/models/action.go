package models

import (
	"fmt"
	"strings"
)

// Rule is a JSON-Logic-shaped expression tree as decoded from YAML:
// a map of operator name to arguments, or a literal value.
// Example: {"==": [{"var": "core:stats.mood"}, "happy"]}
type Rule interface{}

// ActionDefinition describes one discoverable action: the prerequisites an
// actor must satisfy and the scope that supplies candidate targets.
type ActionDefinition struct {
	// ID is the namespaced action id, e.g. "affection:hold_hands"
	ID string `yaml:"id"`

	// Name is the human-readable action name shown in reports
	Name string `yaml:"name"`

	// Prerequisites are operator rules evaluated against the actor.
	// All rules must pass for the action to be discoverable.
	Prerequisites []Rule `yaml:"prerequisites"`

	// TargetScope names the scope that resolves candidate targets.
	// The special scopes "none" and "self" need no scope definition.
	TargetScope string `yaml:"target_scope"`
}

// Validate checks structural requirements on the action definition.
func (a *ActionDefinition) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("action id cannot be empty")
	}
	if !IsNamespacedID(a.ID) {
		return fmt.Errorf("action id %q is not namespaced (want \"namespace:name\")", a.ID)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("action %s: name cannot be empty", a.ID)
	}
	if strings.TrimSpace(a.TargetScope) == "" {
		return fmt.Errorf("action %s: target_scope cannot be empty", a.ID)
	}
	if a.TargetScope != ScopeNone && a.TargetScope != ScopeSelf && !IsNamespacedID(a.TargetScope) {
		return fmt.Errorf("action %s: target_scope %q is not namespaced (want \"namespace:name\", \"none\" or \"self\")", a.ID, a.TargetScope)
	}
	return nil
}

// Special target scopes that resolve without a scope definition.
const (
	// ScopeNone marks an action that takes no target.
	ScopeNone = "none"

	// ScopeSelf marks an action targeting the acting entity.
	ScopeSelf = "self"
)
