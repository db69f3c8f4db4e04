// Package verifier checks that the search index agrees with the workflow
// store and recommends a reindex when it does not.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/store"
)

// Recommendation is the outcome of a consistency check.
type Recommendation string

const (
	RecommendNone    Recommendation = "none"
	RecommendReindex Recommendation = "reindex"
)

// DefaultPageSize is the index scan page size.
const DefaultPageSize = 500

// Projector decides whether an object belongs in the index and projects it.
type Projector interface {
	Indexable(obj *domain.WorkflowObject) error
	Project(obj *domain.WorkflowObject) *record.Record
}

// Report describes how one data type's index differs from the store.
type Report struct {
	DataType string `json:"data_type"`
	Index    string `json:"index"`
	Checked  int    `json:"checked"`
	// Missing objects are indexable but have no document.
	Missing []int64 `json:"missing"`
	// Stale documents disagree with the object's status or modified time.
	Stale []int64 `json:"stale"`
	// Orphans are documents without an indexable object.
	Orphans []int64 `json:"orphans"`
	// Truncated is set when the scan stopped at the result window.
	Truncated      bool           `json:"truncated"`
	Recommendation Recommendation `json:"recommendation"`
}

// Consistent reports whether no differences were found.
func (r Report) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Stale) == 0 && len(r.Orphans) == 0
}

// Checker compares store objects with their index documents.
type Checker struct {
	store     store.WorkflowStore
	index     search.IndexClient
	routes    search.Routes
	records   Projector
	pageSize  int
	maxWindow int
}

// NewChecker creates a Checker. maxWindow bounds how deep the index scan
// may page; zero means unbounded.
func NewChecker(st store.WorkflowStore, idx search.IndexClient, routes search.Routes, records Projector, maxWindow int) *Checker {
	return &Checker{
		store:     st,
		index:     idx,
		routes:    routes,
		records:   records,
		pageSize:  DefaultPageSize,
		maxWindow: maxWindow,
	}
}

// Check verifies one data type.
func (c *Checker) Check(ctx context.Context, dataType string) (Report, error) {
	route, ok := c.routes.Lookup(dataType)
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", search.ErrUnknownDataType, dataType)
	}
	rep := Report{DataType: dataType, Index: route.Index}

	docs, truncated, err := c.scan(ctx, route.Index)
	if err != nil {
		return Report{}, err
	}
	rep.Truncated = truncated

	ids, err := c.store.IDsByDataType(ctx, []string{dataType})
	if err != nil {
		return Report{}, fmt.Errorf("verifier: list ids: %w", err)
	}

	for _, id := range ids {
		obj, err := c.store.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return Report{}, fmt.Errorf("verifier: load %d: %w", id, err)
		}
		rep.Checked++

		doc, indexed := docs[id]
		delete(docs, id)
		if c.records.Indexable(obj) != nil {
			if indexed {
				rep.Orphans = append(rep.Orphans, id)
			}
			continue
		}
		switch {
		case !indexed:
			if !truncated {
				rep.Missing = append(rep.Missing, id)
			}
		case stale(c.records.Project(obj), doc):
			rep.Stale = append(rep.Stale, id)
		}
	}
	for id := range docs {
		rep.Orphans = append(rep.Orphans, id)
	}
	slices.Sort(rep.Orphans)

	rep.Recommendation = RecommendNone
	if !rep.Consistent() {
		rep.Recommendation = RecommendReindex
	}
	return rep, nil
}

// scan pages through every document of index.
func (c *Checker) scan(ctx context.Context, index string) (map[int64]map[string]any, bool, error) {
	docs := make(map[int64]map[string]any)
	for from := 0; ; from += c.pageSize {
		if c.maxWindow > 0 && from+c.pageSize > c.maxWindow {
			return docs, true, nil
		}
		res, err := c.index.Search(ctx, []string{index}, map[string]any{
			"query": search.BuildQuery(""),
			"sort":  search.BuildSort("id"),
			"from":  from,
			"size":  c.pageSize,
		})
		if err != nil {
			return nil, false, fmt.Errorf("verifier: scan %s: %w", index, err)
		}
		for _, h := range res.Hits {
			id, err := strconv.ParseInt(h.ID, 10, 64)
			if err != nil {
				continue
			}
			docs[id] = h.Source
		}
		if len(res.Hits) < c.pageSize || int64(from+len(res.Hits)) >= res.Total {
			return docs, false, nil
		}
	}
}

// stale compares the fields a list view depends on.
func stale(rec *record.Record, doc map[string]any) bool {
	want, _ := rec.Dumps()["_workflow"].(map[string]any)
	got, _ := doc["_workflow"].(map[string]any)
	if got == nil {
		return true
	}
	for _, key := range []string{"status", "modified", "workflow_name"} {
		if fmt.Sprint(want[key]) != fmt.Sprint(got[key]) {
			return true
		}
	}
	return false
}
