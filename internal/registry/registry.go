// Package registry provides the in-memory entity store a scenario runs
// against. Scope resolution queries it for candidates by component and by
// location co-presence.
package registry

import (
	"fmt"
	"sort"

	"github.com/calder/actionscope/internal/models"
)

// PositionComponent is the component consulted for location co-presence.
const PositionComponent = "core:position"

// Registry holds the entities of one scenario, keyed by id.
// It is populated once from fixtures and read-only afterwards.
type Registry struct {
	entities map[string]*models.Entity
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entities: make(map[string]*models.Entity)}
}

// Add registers an entity. Duplicate ids are an error so that fixture
// mistakes surface at load time rather than as silent overwrites.
func (r *Registry) Add(e *models.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, exists := r.entities[e.ID]; exists {
		return fmt.Errorf("duplicate entity id %q", e.ID)
	}
	r.entities[e.ID] = e
	return nil
}

// Get returns the entity with the given id.
func (r *Registry) Get(id string) (*models.Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// IDs returns all entity ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListWithComponent returns the entities carrying the named component,
// sorted by id for deterministic resolution order.
func (r *Registry) ListWithComponent(componentID string) []*models.Entity {
	var out []*models.Entity
	for _, e := range r.entities {
		if e.HasComponent(componentID) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LocationOf returns the location recorded in the entity's position
// component, or "" when the entity has no position.
func (r *Registry) LocationOf(entityID string) string {
	e, ok := r.entities[entityID]
	if !ok {
		return ""
	}
	pos, ok := e.Component(PositionComponent)
	if !ok {
		return ""
	}
	loc, _ := pos["location"].(string)
	return loc
}

// CoLocated returns the entities sharing a location with the given entity,
// excluding the entity itself. Entities without a position never co-locate.
func (r *Registry) CoLocated(entityID string) []*models.Entity {
	loc := r.LocationOf(entityID)
	if loc == "" {
		return nil
	}
	var out []*models.Entity
	for _, e := range r.entities {
		if e.ID == entityID {
			continue
		}
		if r.LocationOf(e.ID) == loc {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
