package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, BuildQuery(""))
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, BuildQuery("   "))
	assert.Equal(t, map[string]any{
		"query_string": map[string]any{"query": "status:HALTED"},
	}, BuildQuery("status:HALTED"))
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		field string
		order string
	}{
		{"default", "", DefaultSortKey, "asc"},
		{"ascending", "_workflow.created", "_workflow.created", "asc"},
		{"descending", "_workflow.created_desc", "_workflow.created", "desc"},
		{"bare desc", "_desc", DefaultSortKey, "desc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSort(tt.key)
			assert.Equal(t, []any{map[string]any{tt.field: map[string]any{"order": tt.order}}}, got)
		})
	}
}

func TestJoinTags(t *testing.T) {
	assert.Equal(t, "a AND b", JoinTags([]string{"a", "b"}, ""))
	assert.Equal(t, "a OR b", JoinTags([]string{"a", " ", "b"}, "or"))
	assert.Equal(t, "a AND b", JoinTags([]string{"a", "b"}, "XOR"))
	assert.Equal(t, "", JoinTags(nil, "AND"))
}
