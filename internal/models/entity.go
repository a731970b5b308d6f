// Package models defines the core domain types shared across the harness:
// entities with namespaced components, action definitions, and the result
// types produced by a discovery run.
package models

import (
	"fmt"
	"strings"
)

// Component holds the data attached to an entity under a namespaced
// component id (e.g. "core:position"). Values come from YAML fixtures,
// so they are the usual map/slice/scalar shapes.
type Component map[string]interface{}

// Entity is a participant in a scenario: an actor, an item, a location.
// Components are keyed by namespaced id.
type Entity struct {
	ID         string               `yaml:"id"`
	Components map[string]Component `yaml:"components"`
}

// Validate checks that the entity has an id and that every component id
// is namespaced.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("entity id cannot be empty")
	}
	for compID := range e.Components {
		if !IsNamespacedID(compID) {
			return fmt.Errorf("entity %s: component id %q is not namespaced (want \"namespace:name\")", e.ID, compID)
		}
	}
	return nil
}

// Component returns the named component and whether it exists.
func (e *Entity) Component(id string) (Component, bool) {
	c, ok := e.Components[id]
	return c, ok
}

// HasComponent reports whether the entity carries the named component.
func (e *Entity) HasComponent(id string) bool {
	_, ok := e.Components[id]
	return ok
}

// IsNamespacedID reports whether id has the "namespace:name" form with
// non-empty halves. Scope, action, and component ids all use this form.
func IsNamespacedID(id string) bool {
	idx := strings.Index(id, ":")
	if idx <= 0 || idx == len(id)-1 {
		return false
	}
	// Exactly one separator
	return strings.Count(id, ":") == 1
}
