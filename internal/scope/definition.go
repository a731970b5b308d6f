// Package scope resolves namespaced scope expressions into candidate
// target sets. A scope names a candidate source and an optional filter
// rule; resolution counts candidates considered, resolved, and filtered
// out, which the diagnostics summary reports per scope.
package scope

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calder/actionscope/internal/models"
)

// Candidate source forms understood by the resolver.
const (
	// SourceActor yields the acting entity itself.
	SourceActor = "actor"

	// SourceLocation yields entities co-located with the actor.
	SourceLocation = "location"
)

// entitiesSourceRe matches the "entities(<component>)" source form.
var entitiesSourceRe = regexp.MustCompile(`^entities\(([^)]+)\)$`)

// Definition describes one resolvable scope.
type Definition struct {
	// ID is the namespaced scope id, e.g.
	// "affection:close_actors_facing_each_other"
	ID string `yaml:"id"`

	// Source selects the candidate set: "actor", "location", or
	// "entities(<component>)"
	Source string `yaml:"source"`

	// Filter is an optional operator rule applied per candidate with
	// "entity" and "actor" bound in the context
	Filter models.Rule `yaml:"filter"`
}

// Validate checks the definition's id and source form.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("scope id cannot be empty")
	}
	if !models.IsNamespacedID(d.ID) {
		return fmt.Errorf("scope id %q is not namespaced (want \"namespace:name\")", d.ID)
	}
	if d.Source != SourceActor && d.Source != SourceLocation && !entitiesSourceRe.MatchString(d.Source) {
		return fmt.Errorf("scope %s: unknown source %q (want \"actor\", \"location\" or \"entities(<component>)\")", d.ID, d.Source)
	}
	if m := entitiesSourceRe.FindStringSubmatch(d.Source); m != nil {
		if !models.IsNamespacedID(strings.TrimSpace(m[1])) {
			return fmt.Errorf("scope %s: entities source component %q is not namespaced", d.ID, m[1])
		}
	}
	return nil
}

// componentSource returns the component id of an "entities(...)" source,
// or "" when the source has a different form.
func componentSource(source string) string {
	m := entitiesSourceRe.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
