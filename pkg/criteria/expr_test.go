package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprAgainstStrings(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		input string
		want  bool
	}{
		{"startsWith", `value startsWith "/api"`, "/api/users", true},
		{"startsWith mismatch", `value startsWith "/api"`, "/v2/users", false},
		{"contains and length", `"user" in value && len(value) > 5`, "/api/users", true},
		{"non-empty", `value != ""`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Expr(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.MatchString(tt.input))
		})
	}
}

func TestExprAgainstCounts(t *testing.T) {
	even, err := Expr("value % 2 == 0")
	require.NoError(t, err)

	assert.True(t, even.MatchCount(4))
	assert.False(t, even.MatchCount(3))
	assert.True(t, even.MatchCount(0))
}

func TestExprRejectsInvalidSource(t *testing.T) {
	_, err := Expr("value ==")
	assert.Error(t, err)
}

func TestExprNeverMatchesBinaryBodies(t *testing.T) {
	pred, err := Expr(`value != ""`)
	require.NoError(t, err)

	assert.False(t, pred.MatchBody("", []byte{0xff, 0x00}))
	assert.True(t, pred.MatchBody("data", nil))
}
