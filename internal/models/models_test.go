package models

import (
	"testing"
)

// TestEntityValidate verifies entity structural validation
func TestEntityValidate(t *testing.T) {
	tests := []struct {
		name    string
		entity  Entity
		wantErr bool
	}{
		{
			name: "valid entity with namespaced components",
			entity: Entity{
				ID: "test:alice",
				Components: map[string]Component{
					"core:position": {"location": "test:garden"},
				},
			},
			wantErr: false,
		},
		{
			name:    "empty id",
			entity:  Entity{ID: "  "},
			wantErr: true,
		},
		{
			name: "non-namespaced component id",
			entity: Entity{
				ID: "test:alice",
				Components: map[string]Component{
					"position": {},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestActionDefinitionValidate verifies action structural validation
func TestActionDefinitionValidate(t *testing.T) {
	valid := ActionDefinition{
		ID:          "affection:hold_hands",
		Name:        "Hold Hands",
		TargetScope: "affection:close_actors_facing_each_other",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	selfTarget := ActionDefinition{ID: "core:wait", Name: "Wait", TargetScope: "none"}
	if err := selfTarget.Validate(); err != nil {
		t.Errorf("Validate() with scope %q error = %v, want nil", "none", err)
	}

	tests := []struct {
		name   string
		action ActionDefinition
	}{
		{"empty id", ActionDefinition{Name: "X", TargetScope: "none"}},
		{"non-namespaced id", ActionDefinition{ID: "hold_hands", Name: "X", TargetScope: "none"}},
		{"empty name", ActionDefinition{ID: "a:b", TargetScope: "none"}},
		{"empty target scope", ActionDefinition{ID: "a:b", Name: "X"}},
		{"non-namespaced target scope", ActionDefinition{ID: "a:b", Name: "X", TargetScope: "everyone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.action.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

// TestIsNamespacedID verifies the namespaced id form check
func TestIsNamespacedID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"core:position", true},
		{"affection:close_actors_facing_each_other", true},
		{"position", false},
		{":position", false},
		{"core:", false},
		{"a:b:c", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsNamespacedID(tt.id); got != tt.want {
			t.Errorf("IsNamespacedID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

// TestOperatorResultPassed verifies pass/fail semantics
func TestOperatorResultPassed(t *testing.T) {
	if !(OperatorResult{Operator: "==", Evaluations: 5}).Passed() {
		t.Error("Passed() = false for result with no failures, want true")
	}
	if (OperatorResult{Operator: "!=", Evaluations: 3, Failures: 1}).Passed() {
		t.Error("Passed() = true for result with failures, want false")
	}
}

// TestRunResultDiscoveredCount verifies discovered count aggregation
func TestRunResultDiscoveredCount(t *testing.T) {
	run := RunResult{
		Discoveries: []DiscoveryResult{
			{ActorID: "test:alice", Discovered: []DiscoveredAction{{ActionID: "a:b"}, {ActionID: "a:c"}}},
			{ActorID: "test:bob", Discovered: []DiscoveredAction{{ActionID: "a:b"}}},
		},
	}
	if got := run.DiscoveredCount(); got != 3 {
		t.Errorf("DiscoveredCount() = %d, want 3", got)
	}
}
