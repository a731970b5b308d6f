package operator

import (
	"fmt"
	"strings"

	"github.com/calder/actionscope/internal/models"
)

// Context is the variable environment a rule evaluates against. Keys are
// top-level names ("actor", "entity"); `var` paths descend through nested
// maps with dot separators, e.g. "actor.core:mood.value".
type Context map[string]interface{}

// Evaluator walks rule trees and applies operators. When a Recorder is
// attached, every operator application is observed for diagnostics.
type Evaluator struct {
	recorder *Recorder
}

// NewEvaluator creates an evaluator. recorder may be nil when no
// diagnostics are wanted.
func NewEvaluator(recorder *Recorder) *Evaluator {
	return &Evaluator{recorder: recorder}
}

// EvalBool evaluates a rule and reduces the result to a boolean via
// truthiness. A nil rule is vacuously true so that actions without
// prerequisites are always discoverable.
func (e *Evaluator) EvalBool(rule models.Rule, ctx Context) (bool, error) {
	if rule == nil {
		return true, nil
	}
	v, err := e.Eval(rule, ctx)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Eval evaluates a rule tree to a value. Non-map nodes are literals.
func (e *Evaluator) Eval(rule models.Rule, ctx Context) (interface{}, error) {
	node, ok := rule.(map[string]interface{})
	if !ok {
		return rule, nil
	}
	if len(node) != 1 {
		return nil, fmt.Errorf("rule node must have exactly one operator key, got %d", len(node))
	}

	var op string
	var rawArgs interface{}
	for k, v := range node {
		op, rawArgs = k, v
	}

	result, err := e.apply(op, rawArgs, ctx)
	e.record(op, err)
	return result, err
}

// record observes an operator application if a recorder is attached.
func (e *Evaluator) record(op string, err error) {
	if e.recorder == nil {
		return
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	e.recorder.observe(op, err != nil, detail)
}

// apply dispatches one operator over its (still unevaluated) arguments.
func (e *Evaluator) apply(op string, rawArgs interface{}, ctx Context) (interface{}, error) {
	switch op {
	case "var":
		return e.applyVar(rawArgs, ctx)
	case "missing":
		return e.applyMissing(rawArgs, ctx)
	case "and":
		return e.applyAnd(rawArgs, ctx)
	case "or":
		return e.applyOr(rawArgs, ctx)
	case "not", "!":
		return e.applyNot(rawArgs, ctx)
	case "==", "!=", ">", "<", ">=", "<=", "in":
		return e.applyBinary(op, rawArgs, ctx)
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}

// applyVar resolves a dotted path in the context. A missing path yields
// the default argument when given, nil otherwise.
func (e *Evaluator) applyVar(rawArgs interface{}, ctx Context) (interface{}, error) {
	args := argList(rawArgs)
	if len(args) == 0 {
		return nil, fmt.Errorf("var: missing path argument")
	}
	path, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("var: path must be a string, got %T", args[0])
	}

	v, found := lookup(ctx, path)
	if !found {
		if len(args) > 1 {
			return args[1], nil
		}
		return nil, nil
	}
	return v, nil
}

// applyMissing returns the subset of the given paths that do not resolve.
func (e *Evaluator) applyMissing(rawArgs interface{}, ctx Context) (interface{}, error) {
	missing := []interface{}{}
	for _, arg := range argList(rawArgs) {
		path, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("missing: path must be a string, got %T", arg)
		}
		if _, found := lookup(ctx, path); !found {
			missing = append(missing, path)
		}
	}
	return missing, nil
}

// applyAnd evaluates arguments left to right, short-circuiting on the
// first falsy value. Returns the last evaluated value, JSON-Logic style.
func (e *Evaluator) applyAnd(rawArgs interface{}, ctx Context) (interface{}, error) {
	var last interface{} = true
	for _, arg := range argList(rawArgs) {
		v, err := e.Eval(arg, ctx)
		if err != nil {
			return nil, err
		}
		if !Truthy(v) {
			return v, nil
		}
		last = v
	}
	return last, nil
}

// applyOr evaluates arguments left to right, short-circuiting on the
// first truthy value.
func (e *Evaluator) applyOr(rawArgs interface{}, ctx Context) (interface{}, error) {
	var last interface{}
	for _, arg := range argList(rawArgs) {
		v, err := e.Eval(arg, ctx)
		if err != nil {
			return nil, err
		}
		if Truthy(v) {
			return v, nil
		}
		last = v
	}
	return last, nil
}

// applyNot negates the truthiness of its single argument.
func (e *Evaluator) applyNot(rawArgs interface{}, ctx Context) (interface{}, error) {
	args := argList(rawArgs)
	if len(args) != 1 {
		return nil, fmt.Errorf("not: want 1 argument, got %d", len(args))
	}
	v, err := e.Eval(args[0], ctx)
	if err != nil {
		return nil, err
	}
	return !Truthy(v), nil
}

// applyBinary handles the two-argument comparison and membership operators.
func (e *Evaluator) applyBinary(op string, rawArgs interface{}, ctx Context) (interface{}, error) {
	args := argList(rawArgs)
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: want 2 arguments, got %d", op, len(args))
	}

	left, err := e.Eval(args[0], ctx)
	if err != nil {
		return nil, err
	}
	right, err := e.Eval(args[1], ctx)
	if err != nil {
		return nil, err
	}

	switch op {
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "in":
		return contains(left, right)
	default:
		return compareNumeric(op, left, right)
	}
}

// argList normalizes operator arguments: a single non-list argument is
// treated as a one-element list, matching JSON-Logic shorthand.
func argList(rawArgs interface{}) []interface{} {
	if list, ok := rawArgs.([]interface{}); ok {
		return list
	}
	return []interface{}{rawArgs}
}

// lookup resolves a dotted path through nested maps.
func lookup(ctx Context, path string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(ctx)
	for _, part := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]interface{}:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		case models.Component:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// looseEqual compares values with numeric coercion, so YAML ints compare
// equal to floats of the same value.
func looseEqual(a, b interface{}) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return a == b
}

// compareNumeric applies an ordering operator to two numeric operands.
func compareNumeric(op string, a, b interface{}) (interface{}, error) {
	fa, ok := toFloat(a)
	if !ok {
		return nil, fmt.Errorf("%s: left operand %v (%T) is not numeric", op, a, a)
	}
	fb, ok := toFloat(b)
	if !ok {
		return nil, fmt.Errorf("%s: right operand %v (%T) is not numeric", op, b, b)
	}

	switch op {
	case ">":
		return fa > fb, nil
	case "<":
		return fa < fb, nil
	case ">=":
		return fa >= fb, nil
	case "<=":
		return fa <= fb, nil
	}
	return nil, fmt.Errorf("unknown numeric operator %q", op)
}

// contains reports membership of needle in a slice or substring of a string.
func contains(needle, haystack interface{}) (interface{}, error) {
	switch h := haystack.(type) {
	case []interface{}:
		for _, item := range h {
			if looseEqual(needle, item) {
				return true, nil
			}
		}
		return false, nil
	case string:
		s, ok := needle.(string)
		if !ok {
			return nil, fmt.Errorf("in: needle for string haystack must be a string, got %T", needle)
		}
		return strings.Contains(h, s), nil
	default:
		return nil, fmt.Errorf("in: haystack must be a list or string, got %T", haystack)
	}
}

// toFloat coerces the numeric types YAML decoding produces.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Truthy reduces a value to a boolean, JSON-Logic style: nil, false, zero,
// empty string, and empty list are falsy; everything else is truthy.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return true
	}
}
