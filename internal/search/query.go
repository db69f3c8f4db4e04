package search

import "strings"

const (
	// DefaultSortKey orders results by last modification.
	DefaultSortKey = "_workflow.modified"
	// MaxPageSize caps a single page.
	MaxPageSize = 10000

	descSuffix = "_desc"
)

// BuildQuery returns match_all for an empty query string and a
// query_string query otherwise.
func BuildQuery(q string) map[string]any {
	q = strings.TrimSpace(q)
	if q == "" {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"query_string": map[string]any{
			"query": q,
		},
	}
}

// JoinTags joins tag expressions with a boolean operator (AND by default).
func JoinTags(tags []string, operator string) string {
	op := strings.ToUpper(strings.TrimSpace(operator))
	if op != "OR" {
		op = "AND"
	}
	var parts []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "+op+" ")
}

// BuildSort turns "key" or "key_desc" into a sort clause. An empty key
// sorts by DefaultSortKey ascending.
func BuildSort(key string) []any {
	order := "asc"
	if strings.HasSuffix(key, descSuffix) {
		order = "desc"
		key = strings.TrimSuffix(key, descSuffix)
	}
	if key == "" {
		key = DefaultSortKey
	}
	return []any{
		map[string]any{key: map[string]any{"order": order}},
	}
}
