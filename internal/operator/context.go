package operator

import "github.com/calder/actionscope/internal/models"

// EntityContext exposes an entity to rules: its component maps keyed by
// component id, plus its own id under "id". Bind the result under a
// top-level name ("actor", "entity") in the evaluation Context.
func EntityContext(e *models.Entity) map[string]interface{} {
	ctx := make(map[string]interface{}, len(e.Components)+1)
	ctx["id"] = e.ID
	for compID, comp := range e.Components {
		ctx[compID] = map[string]interface{}(comp)
	}
	return ctx
}
