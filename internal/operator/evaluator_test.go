package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(op string, args ...interface{}) map[string]interface{} {
	return map[string]interface{}{op: args}
}

func testContext() Context {
	return Context{
		"actor": map[string]interface{}{
			"core:mood":  map[string]interface{}{"value": "happy", "intensity": 7},
			"core:stats": map[string]interface{}{"energy": 42},
		},
	}
}

func TestEvalVar(t *testing.T) {
	e := NewEvaluator(nil)

	v, err := e.Eval(rule("var", "actor.core:mood.value"), testContext())
	require.NoError(t, err)
	assert.Equal(t, "happy", v)

	// Missing path resolves to nil
	v, err = e.Eval(rule("var", "actor.core:missing"), testContext())
	require.NoError(t, err)
	assert.Nil(t, v)

	// Missing path with default
	v, err = e.Eval(rule("var", "actor.core:missing", "fallback"), testContext())
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	// Non-string path is an evaluation error
	_, err = e.Eval(rule("var", 42), testContext())
	assert.Error(t, err)
}

func TestEvalEquality(t *testing.T) {
	e := NewEvaluator(nil)
	ctx := testContext()

	v, err := e.Eval(rule("==", rule("var", "actor.core:mood.value"), "happy"), ctx)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = e.Eval(rule("!=", rule("var", "actor.core:mood.value"), "sad"), ctx)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	// Numeric coercion: int vs float
	v, err = e.Eval(rule("==", 7, 7.0), ctx)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestEvalComparisons(t *testing.T) {
	e := NewEvaluator(nil)
	ctx := testContext()

	tests := []struct {
		op   string
		a, b interface{}
		want bool
	}{
		{">", 7, 3, true},
		{"<", 7, 3, false},
		{">=", 42, 42, true},
		{"<=", 41, 42, true},
	}
	for _, tt := range tests {
		v, err := e.Eval(rule(tt.op, tt.a, tt.b), ctx)
		require.NoError(t, err, "op %s", tt.op)
		assert.Equal(t, tt.want, v, "op %s", tt.op)
	}

	// Non-numeric operand is an evaluation error
	_, err := e.Eval(rule(">", "seven", 3), ctx)
	assert.Error(t, err)
}

func TestEvalLogical(t *testing.T) {
	e := NewEvaluator(nil)
	ctx := testContext()

	v, err := e.Eval(rule("and", true, rule("==", 1, 1)), ctx)
	require.NoError(t, err)
	assert.True(t, Truthy(v))

	v, err = e.Eval(rule("and", true, false), ctx)
	require.NoError(t, err)
	assert.False(t, Truthy(v))

	v, err = e.Eval(rule("or", false, "something"), ctx)
	require.NoError(t, err)
	assert.True(t, Truthy(v))

	v, err = e.Eval(rule("not", false), ctx)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = e.Eval(rule("!", true), ctx)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestEvalIn(t *testing.T) {
	e := NewEvaluator(nil)
	ctx := Context{
		"entity": map[string]interface{}{
			"affection:closeness": map[string]interface{}{
				"partners": []interface{}{"test:alice", "test:bob"},
			},
		},
	}

	v, err := e.Eval(rule("in", "test:alice", rule("var", "entity.affection:closeness.partners")), ctx)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = e.Eval(rule("in", "test:carol", rule("var", "entity.affection:closeness.partners")), ctx)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	// Substring membership
	v, err = e.Eval(rule("in", "gard", "test:garden"), ctx)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestEvalMissing(t *testing.T) {
	e := NewEvaluator(nil)
	v, err := e.Eval(rule("missing", "actor.core:mood", "actor.core:absent"), testContext())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"actor.core:absent"}, v)
}

func TestEvalUnknownOperator(t *testing.T) {
	e := NewEvaluator(nil)
	_, err := e.Eval(rule("merge", 1, 2), testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operator")
}

func TestEvalBoolNilRule(t *testing.T) {
	e := NewEvaluator(nil)
	ok, err := e.EvalBool(nil, testContext())
	require.NoError(t, err)
	assert.True(t, ok, "nil rule should be vacuously true")
}

func TestRecorderObservesEvaluations(t *testing.T) {
	rec := NewRecorder()
	e := NewEvaluator(rec)
	ctx := testContext()

	_, err := e.Eval(rule("==", rule("var", "actor.core:mood.value"), "happy"), ctx)
	require.NoError(t, err)
	_, err = e.Eval(rule("!=", rule("var", "actor.core:mood.value"), "happy"), ctx)
	require.NoError(t, err)
	_, _ = e.Eval(rule(">", "bad", 1), ctx)

	results := rec.Results()
	require.Len(t, results, 4)

	// Arguments evaluate before the enclosing operator applies, so the
	// first-use order is: var, ==, !=, >
	assert.Equal(t, "var", results[0].Operator)
	assert.Equal(t, "==", results[1].Operator)
	assert.Equal(t, "!=", results[2].Operator)
	assert.Equal(t, ">", results[3].Operator)

	assert.True(t, results[0].Passed())
	assert.Equal(t, 2, results[0].Evaluations)
	assert.True(t, results[1].Passed())
	assert.True(t, results[2].Passed())
	assert.False(t, results[3].Passed())
	assert.NotEmpty(t, results[3].FirstFailure)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    interface{}
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{0.0, false},
		{3, true},
		{"", false},
		{"x", true},
		{[]interface{}{}, false},
		{[]interface{}{1}, true},
		{map[string]interface{}{}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truthy(tt.v), "Truthy(%v)", tt.v)
	}
}
