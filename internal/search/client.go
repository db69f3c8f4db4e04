// Package search indexes workflow records and queries them back for the
// holding pen list views.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrIndexNotFound is returned by Delete when the document (or index) does not exist.
var ErrIndexNotFound = errors.New("search: document not found")

// TransportError wraps a failed call to the search backend.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("search: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("search: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Hit is one search result.
type Hit struct {
	ID     string         `json:"_id"`
	Index  string         `json:"_index"`
	Source map[string]any `json:"_source"`
}

// Result is a page of hits plus the total match count.
type Result struct {
	Total int64 `json:"total"`
	Hits  []Hit `json:"hits"`
}

// IDs returns hit ids in result order.
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

// IndexClient is the search backend used by the record adapter and searcher.
type IndexClient interface {
	Index(ctx context.Context, index, docType string, id int64, doc map[string]any) error
	// Delete removes a document. It returns ErrIndexNotFound on a 404.
	Delete(ctx context.Context, index, docType string, id int64) error
	Search(ctx context.Context, indices []string, body map[string]any) (*Result, error)
}

// Route names the index and document type a data type is written to.
type Route struct {
	Index   string
	DocType string
}

// Routes maps data types to their index routes.
type Routes map[string]Route

// Lookup returns the route for dataType.
func (r Routes) Lookup(dataType string) (Route, bool) {
	route, ok := r[dataType]
	return route, ok && route.Index != "" && route.DocType != ""
}

// DataTypes returns the routed data type names, sorted.
func (r Routes) DataTypes() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Indices returns the distinct index names, sorted.
func (r Routes) Indices() []string {
	seen := make(map[string]bool, len(r))
	var out []string
	for _, route := range r {
		if route.Index != "" && !seen[route.Index] {
			seen[route.Index] = true
			out = append(out, route.Index)
		}
	}
	sort.Strings(out)
	return out
}
