package criteria

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// jsonPathPredicate matches JSON bodies against a set of JSONPath
// conditions. Every condition must hold. A nil expected value is an
// existence check.
type jsonPathPredicate struct {
	conditions map[string]jsonPathCondition
}

type jsonPathCondition struct {
	path     jp.Expr
	expected any
	exists   bool // expected is nil: match when the path yields any value
}

// JSONPath builds a body predicate from JSONPath conditions, e.g.
// {"$.user.name": "alice", "$.items[0].id": 42}. A nil expected value
// asserts that the path exists.
func JSONPath(conditions map[string]any) (Body, error) {
	if len(conditions) == 0 {
		return nil, fmt.Errorf("jsonpath criteria requires at least one condition")
	}

	compiled := make(map[string]jsonPathCondition, len(conditions))
	for path, expected := range conditions {
		ex, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath %q: %w", path, err)
		}
		compiled[path] = jsonPathCondition{
			path:     ex,
			expected: normalizeJSONValue(expected),
			exists:   expected == nil,
		}
	}
	return jsonPathPredicate{conditions: compiled}, nil
}

func (p jsonPathPredicate) MatchBody(text string, binary []byte) bool {
	raw := binary
	if raw == nil {
		raw = []byte(text)
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		// Not valid JSON: no match, not an error.
		return false
	}

	for _, cond := range p.conditions {
		results := cond.path.Get(data)
		if len(results) == 0 {
			return false
		}
		if cond.exists {
			continue
		}
		if !reflect.DeepEqual(normalizeJSONValue(results[0]), cond.expected) {
			return false
		}
	}
	return true
}

func (p jsonPathPredicate) String() string {
	paths := make([]string, 0, len(p.conditions))
	for path := range p.conditions {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return fmt.Sprintf("$jsonpath(%s)", strings.Join(paths, ", "))
}

// normalizeJSONValue round-trips a value through encoding/json so that
// expected values written as Go ints compare equal to decoded float64s.
func normalizeJSONValue(v any) any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
