package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder/actionscope/internal/fixture"
	"github.com/calder/actionscope/internal/logger"
	"github.com/calder/actionscope/internal/models"
	"github.com/calder/actionscope/internal/scope"
)

// gardenScenario builds the garden scene in memory: alice and bob face
// each other, carol faces the bench and is grumpy.
func gardenScenario() *fixture.Scenario {
	return &fixture.Scenario{
		Name: "Garden affection",
		Entities: []models.Entity{
			{
				ID: "test:alice",
				Components: map[string]models.Component{
					"core:position": {"location": "test:garden"},
					"core:facing":   {"towards": "test:bob"},
					"core:mood":     {"value": "happy"},
				},
			},
			{
				ID: "test:bob",
				Components: map[string]models.Component{
					"core:position": {"location": "test:garden"},
					"core:facing":   {"towards": "test:alice"},
					"core:mood":     {"value": "happy"},
				},
			},
			{
				ID: "test:carol",
				Components: map[string]models.Component{
					"core:position": {"location": "test:garden"},
					"core:facing":   {"towards": "test:bench"},
					"core:mood":     {"value": "grumpy"},
				},
			},
		},
		Scopes: []scope.Definition{{
			ID:     "affection:close_actors_facing_each_other",
			Source: scope.SourceLocation,
			Filter: map[string]interface{}{
				"==": []interface{}{
					map[string]interface{}{"var": []interface{}{"entity.core:facing.towards"}},
					map[string]interface{}{"var": []interface{}{"actor.id"}},
				},
			},
		}},
		Actions: []models.ActionDefinition{
			{
				ID:   "affection:hold_hands",
				Name: "Hold Hands",
				Prerequisites: []models.Rule{
					map[string]interface{}{"==": []interface{}{
						map[string]interface{}{"var": []interface{}{"actor.core:mood.value"}},
						"happy",
					}},
				},
				TargetScope: "affection:close_actors_facing_each_other",
			},
			{ID: "core:wait", Name: "Wait", TargetScope: models.ScopeNone},
		},
		Tests: []fixture.TestCase{
			{Actor: "test:alice", Expect: []string{"affection:hold_hands", "core:wait"}},
			{Actor: "test:carol", Expect: []string{"core:wait"}},
		},
	}
}

func TestRunScenarioPasses(t *testing.T) {
	scn := gardenScenario()
	require.NoError(t, scn.Validate())

	h := New(logger.NewNoOpLogger())
	outcome, err := h.RunScenario(scn, "garden.yaml")
	require.NoError(t, err)

	assert.True(t, outcome.Passed())
	assert.Empty(t, outcome.Result.ExpectationFailures)
	assert.Len(t, outcome.Result.Discoveries, 2)
	assert.Equal(t, 3, outcome.Result.DiscoveredCount())
	assert.NotEmpty(t, outcome.Result.RunID)
	assert.Equal(t, "garden.yaml", outcome.Result.ScenarioFile)
}

func TestRunScenarioCollectsDiagnostics(t *testing.T) {
	h := New(logger.NewNoOpLogger())
	outcome, err := h.RunScenario(gardenScenario(), "garden.yaml")
	require.NoError(t, err)

	assert.Greater(t, outcome.Summary.TraceEntries, 0)
	assert.Equal(t, 0, outcome.Summary.TraceErrors)
	assert.NotEmpty(t, outcome.Summary.Operators)

	require.Len(t, outcome.Summary.Scopes, 1)
	sc := outcome.Summary.Scopes[0]
	assert.Equal(t, "affection:close_actors_facing_each_other", sc.ScopeID)
	// Only alice's resolution is recorded; carol's prerequisite fails
	// before hold_hands reaches scope resolution
	assert.Equal(t, sc.Candidates, sc.Resolved+sc.Filtered)
	assert.Equal(t, 2, sc.Candidates)
	assert.Equal(t, 1, sc.Resolved)
}

func TestRunScenarioExpectationFailure(t *testing.T) {
	scn := gardenScenario()
	// carol cannot hold hands, so this expectation must fail
	scn.Tests = []fixture.TestCase{
		{Actor: "test:carol", Expect: []string{"affection:hold_hands"}},
	}

	h := New(logger.NewNoOpLogger())
	outcome, err := h.RunScenario(scn, "garden.yaml")
	require.NoError(t, err)

	assert.False(t, outcome.Passed())
	require.Len(t, outcome.Result.ExpectationFailures, 1)
	assert.Contains(t, outcome.Result.ExpectationFailures[0], "test:carol")
	assert.Contains(t, outcome.Result.ExpectationFailures[0], "affection:hold_hands rejected")
}

func TestRunScenarioSmokeMode(t *testing.T) {
	scn := gardenScenario()
	scn.Tests = nil

	h := New(logger.NewNoOpLogger())
	outcome, err := h.RunScenario(scn, "garden.yaml")
	require.NoError(t, err)

	// Without test cases, discovery runs for every entity
	assert.Len(t, outcome.Result.Discoveries, 3)
	assert.Empty(t, outcome.Result.ExpectationFailures)
}

func TestRunScenarioDuplicateEntity(t *testing.T) {
	scn := gardenScenario()
	scn.Entities = append(scn.Entities, scn.Entities[0])

	h := New(logger.NewNoOpLogger())
	_, err := h.RunScenario(scn, "garden.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build registry")
}

func TestRunRecordConversion(t *testing.T) {
	h := New(logger.NewNoOpLogger())
	outcome, err := h.RunScenario(gardenScenario(), "garden.yaml")
	require.NoError(t, err)

	rec := outcome.RunRecord("Garden affection", "report text")
	assert.Equal(t, outcome.Result.RunID, rec.ID)
	assert.Equal(t, "garden.yaml", rec.ScenarioFile)
	assert.Equal(t, "Garden affection", rec.ScenarioName)
	assert.Equal(t, outcome.Summary.TraceEntries, rec.TraceEntries)
	assert.Equal(t, len(outcome.Summary.Operators), rec.OperatorsPassed+rec.OperatorsFailed)
	assert.Equal(t, 1, rec.ScopesEvaluated)
	assert.Equal(t, 3, rec.ActionsDiscovered)
	assert.Equal(t, 0, rec.ExpectationFailures)
	assert.Equal(t, "report text", rec.Report)
	assert.True(t, rec.Passed())
}
