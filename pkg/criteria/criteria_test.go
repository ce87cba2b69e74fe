package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPredicates(t *testing.T) {
	tests := []struct {
		name  string
		pred  Text
		input string
		want  bool
	}{
		{"equals match", Equals("GET"), "GET", true},
		{"equals mismatch", Equals("GET"), "POST", false},
		{"equals is case sensitive", Equals("get"), "GET", false},
		{"contains match", Contains("users"), "/api/users/1", true},
		{"contains mismatch", Contains("orders"), "/api/users/1", false},
		{"prefix match", Prefix("/api"), "/api/users", true},
		{"prefix mismatch", Prefix("/api"), "/v2/api", false},
		{"suffix match", Suffix(".json"), "/data.json", true},
		{"suffix mismatch", Suffix(".json"), "/data.xml", false},
		{"wildcard single star", Wildcard("/api/*/items"), "/api/v1/items", true},
		{"wildcard star matches empty", Wildcard("/api*"), "/api", true},
		{"wildcard mismatch", Wildcard("/api/*/items"), "/api/v1/orders", false},
		{"wildcard multiple stars", Wildcard("*users*"), "/api/users/1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.MatchString(tt.input))
		})
	}
}

func TestRegex(t *testing.T) {
	re, err := Regex(`^/users/\d+$`)
	require.NoError(t, err)

	assert.True(t, re.MatchString("/users/42"))
	assert.False(t, re.MatchString("/users/abc"))
	assert.False(t, re.MatchString("/api/users/42"))

	_, err = Regex(`[invalid`)
	assert.Error(t, err)
}

func TestTextPredicatesNeverMatchBinaryBodies(t *testing.T) {
	binary := []byte{0xff, 0xfe, 0x00}

	assert.False(t, Equals("x").MatchBody("", binary))
	assert.False(t, Contains("x").MatchBody("", binary))
	assert.False(t, Wildcard("*").MatchBody("", binary))
}

func TestHasKeyValues(t *testing.T) {
	headers := map[string]string{
		"Content-Type": "application/json",
		"X-Request-Id": "abc-123",
	}

	tests := []struct {
		name string
		want map[string]string
		m    map[string]string
		ok   bool
	}{
		{"subset matches", map[string]string{"Content-Type": "application/json"}, headers, true},
		{"full set matches", headers, headers, true},
		{"missing key fails", map[string]string{"Authorization": "Bearer x"}, headers, false},
		{"wrong value fails", map[string]string{"Content-Type": "text/html"}, headers, false},
		{"case-insensitive key lookup", map[string]string{"content-type": "application/json"}, headers, true},
		{"wildcard value", map[string]string{"X-Request-Id": "abc-*"}, headers, true},
		{"empty wanted always matches", map[string]string{}, headers, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, HasKeyValues(tt.want).MatchMap(tt.m))
		})
	}
}

func TestMapEquals(t *testing.T) {
	pred := MapEquals(map[string]string{"a": "1", "b": "2"})

	assert.True(t, pred.MatchMap(map[string]string{"a": "1", "b": "2"}))
	assert.False(t, pred.MatchMap(map[string]string{"a": "1"}))
	assert.False(t, pred.MatchMap(map[string]string{"a": "1", "b": "2", "c": "3"}))
}

func TestCountPredicates(t *testing.T) {
	tests := []struct {
		name string
		pred Count
		n    int
		want bool
	}{
		{"equals pass", CountEquals(3), 3, true},
		{"equals fail", CountEquals(3), 2, false},
		{"at least pass", AtLeast(2), 5, true},
		{"at least boundary", AtLeast(2), 2, true},
		{"at least fail", AtLeast(2), 1, false},
		{"at most pass", AtMost(2), 1, true},
		{"at most fail", AtMost(2), 3, false},
		{"greater than fail on boundary", GreaterThan(2), 2, false},
		{"less than pass", LessThan(2), 1, true},
		{"between inclusive lower", Between(2, 4), 2, true},
		{"between inclusive upper", Between(2, 4), 4, true},
		{"between fail", Between(2, 4), 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.MatchCount(tt.n))
		})
	}
}

func TestPredicateDescriptions(t *testing.T) {
	assert.Equal(t, `$eq("/test")`, Equals("/test").String())
	assert.Equal(t, `$contains("user")`, Contains("user").String())
	assert.Equal(t, "$gte(2)", AtLeast(2).String())
}
