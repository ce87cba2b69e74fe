package criteria

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		input string
		want  bool
	}{
		{"bare string is exact match", `"GET"`, "GET", true},
		{"bare string mismatch", `"GET"`, "POST", false},
		{"explicit eq", `{"$eq": "/users"}`, "/users", true},
		{"matches", `{"$matches": "^/users/\\d+$"}`, "/users/7", true},
		{"contains", `{"$contains": "user"}`, "/api/users", true},
		{"startsWith", `{"$startsWith": "/api"}`, "/api/x", true},
		{"endsWith", `{"$endsWith": ".json"}`, "/a.json", true},
		{"like", `{"$like": "/api/*/x"}`, "/api/v1/x", true},
		{"expr", `{"$expr": "value startsWith \"/api\""}`, "/api/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := DecodeString(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.MatchString(tt.input))
		})
	}
}

func TestDecodeStringErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown kind", `{"$fuzzy": "x"}`},
		{"bad regex", `{"$matches": "["}`},
		{"non-string operand", `{"$eq": 42}`},
		{"mixed object", `{"$eq": "x", "plain": "y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeString(json.RawMessage(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeMap(t *testing.T) {
	m := map[string]string{"Content-Type": "application/json", "X-Id": "1"}

	subset, err := DecodeMap(json.RawMessage(`{"Content-Type": "application/json"}`))
	require.NoError(t, err)
	assert.True(t, subset.MatchMap(m))

	exact, err := DecodeMap(json.RawMessage(`{"$eq": {"X-Id": "1"}}`))
	require.NoError(t, err)
	assert.False(t, exact.MatchMap(m))
	assert.True(t, exact.MatchMap(map[string]string{"X-Id": "1"}))

	_, err = DecodeMap(json.RawMessage(`{"$contains": {"a": "b"}}`))
	assert.Error(t, err)
}

func TestDecodeBody(t *testing.T) {
	eq, err := DecodeBody(json.RawMessage(`"hello"`))
	require.NoError(t, err)
	assert.True(t, eq.MatchBody("hello", nil))

	jsonpath, err := DecodeBody(json.RawMessage(`{"$jsonpath": {"$.a": 1}}`))
	require.NoError(t, err)
	assert.True(t, jsonpath.MatchBody(`{"a": 1}`, nil))
	assert.False(t, jsonpath.MatchBody(`{"a": 2}`, nil))
}

func TestDecodeCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		n    int
		want bool
	}{
		{"bare number is exact", `3`, 3, true},
		{"bare number mismatch", `3`, 2, false},
		{"gte", `{"$gte": 2}`, 2, true},
		{"gt boundary", `{"$gt": 2}`, 2, false},
		{"lte", `{"$lte": 2}`, 1, true},
		{"lt", `{"$lt": 2}`, 1, true},
		{"between", `{"$between": [2, 4]}`, 3, true},
		{"between outside", `{"$between": [2, 4]}`, 1, false},
		{"expr", `{"$expr": "value % 2 == 0"}`, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := DecodeCount(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.MatchCount(tt.n))
		})
	}

	_, err := DecodeCount(json.RawMessage(`{"$between": [1]}`))
	assert.Error(t, err)

	_, err = DecodeCount(json.RawMessage(`"three"`))
	assert.Error(t, err)
}
